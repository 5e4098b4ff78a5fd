package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/yashrajoria/shoptube-backend/common/auth"
	apperrors "github.com/yashrajoria/shoptube-backend/common/errors"
	"github.com/yashrajoria/shoptube-backend/common/logger"
	commonmw "github.com/yashrajoria/shoptube-backend/common/middleware"
	"github.com/yashrajoria/shoptube-backend/consumer"
	"github.com/yashrajoria/shoptube-backend/controllers"
	"github.com/yashrajoria/shoptube-backend/database"
	"github.com/yashrajoria/shoptube-backend/hasura"
	"github.com/yashrajoria/shoptube-backend/models"
	pkgaws "github.com/yashrajoria/shoptube-backend/pkg/aws"
	"github.com/yashrajoria/shoptube-backend/providers"
	"github.com/yashrajoria/shoptube-backend/repository"
	"github.com/yashrajoria/shoptube-backend/routes"
	"github.com/yashrajoria/shoptube-backend/services"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		logger.Initialize("development")
		logger.Log.Fatal("Failed to load configuration", zap.Error(err))
	}

	rootCtx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()

	// --- AWS and logging ---

	var awsCfg sdkaws.Config
	awsReady := false
	if cfg.usesAWS() {
		if awsCfg, err = pkgaws.LoadAWSConfig(rootCtx); err == nil {
			awsReady = true
		}
	}

	var cwWriter *pkgaws.CloudWatchLogsClient
	if cfg.CloudWatchEnabled && awsReady {
		cwWriter, err = pkgaws.NewCloudWatchLogsClient(rootCtx, awsCfg, cfg.CloudWatchLogGroup, routes.ServiceName)
		if err != nil {
			logger.Initialize(cfg.Env)
			logger.Log.Warn("CloudWatch Logs unavailable, logging to stdout only", zap.Error(err))
			cwWriter = nil
		}
	}
	if cwWriter != nil {
		logger.InitializeWithWriter(cfg.Env, cwWriter)
	} else {
		logger.Initialize(cfg.Env)
	}
	log := logger.Log
	defer func() { _ = log.Sync() }()

	if cfg.usesAWS() && !awsReady {
		log.Warn("AWS config could not be loaded, AWS-backed features are disabled")
	}

	var metricsClient *pkgaws.MetricsClient
	var businessMetrics services.MetricsRecorder
	var httpMetrics commonmw.MetricsRecorder
	if cfg.CloudWatchEnabled && awsReady {
		metricsClient = pkgaws.NewMetricsClient(awsCfg, cfg.CloudWatchNamespace, true)
		businessMetrics = metricsClient
		httpMetrics = metricsClient
	}

	// --- Storage ---

	db, err := database.ConnectPostgres(cfg.Postgres, log, &models.Payment{})
	if err != nil {
		log.Fatal("Failed to connect to Postgres", zap.Error(err))
	}

	redisClient, err := database.NewRedisClient(rootCtx, cfg.RedisURL, log)
	if err != nil {
		log.Warn("Redis unavailable, running without cache, locks and token denylist", zap.Error(err))
		redisClient = nil
	}

	gql := hasura.NewClient(cfg.HasuraEndpoint, cfg.HasuraAdminSecret)

	users := repository.NewHasuraUserRepository(gql)
	profiles := repository.NewHasuraSellerProfileRepository(gql)
	products := repository.NewHasuraProductRepository(gql)
	carts := repository.NewHasuraCartRepository(gql)
	wishlists := repository.NewHasuraWishlistRepository(gql)
	subscriptions := repository.NewHasuraSubscriptionRepository(gql)
	orders := repository.NewHasuraOrderRepository(gql)
	dashboards := repository.NewHasuraDashboardRepository(gql)
	notifications := repository.NewHasuraNotificationRepository(gql)
	payments := repository.NewGormPaymentRepo(db)

	cache := repository.NewCacheRepository(redisClient, 5*time.Minute, log)
	locks := repository.NewLockRepository(redisClient, 30*time.Second)
	denylist := repository.NewTokenDenylist(redisClient)

	// --- Events ---

	notificationService := services.NewNotificationService(notifications, subscriptions, log)

	var events services.EventPublisher
	var localEvents *services.LocalEventPublisher
	if cfg.EventsTopicArn != "" && awsReady {
		events = services.NewSNSEventPublisher(pkgaws.NewSNSClient(awsCfg), cfg.EventsTopicArn, log)
	} else {
		localEvents = services.NewLocalEventPublisher(notificationService.ProcessEvent, log)
		events = localEvents
	}

	// --- Payment gateways ---

	var gateways []providers.PaymentGateway
	var stripeGateway *providers.StripeGateway
	if cfg.StripeSecretKey != "" {
		stripeGateway = providers.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookKey, nil)
	}
	if cfg.ChapaSecretKey != "" {
		gateways = append(gateways, providers.NewChapaGateway(cfg.ChapaSecretKey, cfg.ChapaBaseURL))
	}
	if stripeGateway != nil {
		if cfg.PaymentGateway == models.GatewayStripe {
			gateways = append([]providers.PaymentGateway{stripeGateway}, gateways...)
		} else {
			gateways = append(gateways, stripeGateway)
		}
	}

	// --- Services ---

	tokens := auth.NewTokenManager(cfg.JWTSecret, 24*time.Hour)
	authService := services.NewAuthService(users, profiles, tokens, denylist, events, log)
	catalogService := services.NewCatalogService(products, users, profiles, cache, log)
	cartService := services.NewCartService(carts, products, log)
	wishlistService := services.NewWishlistService(wishlists, products, log)
	subscriptionService := services.NewSubscriptionService(subscriptions, users, profiles, events, log)
	orderService := services.NewOrderService(orders, users, log)
	customerService := services.NewCustomerService(dashboards, users, log)
	checkoutService := services.NewCheckoutService(
		orders, products, payments, carts, gateways, locks, events, businessMetrics,
		services.CheckoutConfig{
			BaseURL:       cfg.BaseURL,
			Currency:      cfg.PaymentCurrency,
			PaymentExpiry: cfg.PaymentExpiry,
		},
		log,
	)

	var images services.ImagePresigner
	if cfg.ProductImagesBucket != "" && awsReady {
		images = pkgaws.NewS3Presigner(awsCfg, cfg.ProductImagesBucket)
	}
	sellerService := services.NewSellerService(
		products, orders, subscriptions, users, profiles, dashboards, cache, images, events, businessMetrics, log,
	)
	adminService := services.NewAdminService(users, profiles, products, orders, dashboards, cache, events, businessMetrics, log)

	// --- Controllers ---

	var callbackQueue *pkgaws.SQSConsumer
	var callbacks pkgaws.QueueSender
	if cfg.CallbackQueueURL != "" && awsReady {
		callbackQueue = pkgaws.NewSQSConsumer(awsCfg, cfg.CallbackQueueURL, log).WithMetrics(metricsClient)
		callbacks = callbackQueue
	}
	var stripeWebhooks controllers.WebhookParser
	if stripeGateway != nil && cfg.StripeWebhookKey != "" {
		stripeWebhooks = stripeGateway
	}

	ctrls := routes.Controllers{
		Auth:          controllers.NewAuthController(authService, controllers.CookieConfig{Secure: cfg.IsProduction()}),
		Catalog:       controllers.NewCatalogController(catalogService),
		Cart:          controllers.NewCartController(cartService, wishlistService),
		Subscriptions: controllers.NewSubscriptionController(subscriptionService),
		Checkout:      controllers.NewCheckoutController(checkoutService, callbacks, stripeWebhooks, log),
		Orders:        controllers.NewOrderController(orderService, customerService),
		Seller:        controllers.NewSellerController(sellerService),
		Admin:         controllers.NewAdminController(adminService),
		Notifications: controllers.NewNotificationController(notificationService),
	}

	// --- HTTP server & middleware ---

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	limiter := commonmw.NewRateLimiter(rate.Every(time.Minute/time.Duration(cfg.RateLimitPerMinute)), cfg.RateLimitPerMinute, 5*time.Minute)
	defer limiter.Stop()
	authLimiter := commonmw.NewRateLimiter(rate.Every(time.Minute/time.Duration(cfg.AuthRateLimit)), cfg.AuthRateLimit, 5*time.Minute)
	defer authLimiter.Stop()

	r := gin.New()
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Error("Panic recovered", zap.Any("panic", recovered), zap.String("path", c.Request.URL.Path))
		apperrors.Respond(c, apperrors.ErrInternalServer)
	}))
	r.Use(logger.RequestID())
	r.Use(commonmw.RequestLogger(log))
	r.Use(commonmw.SecurityHeaders())
	r.Use(commonmw.CORSMiddleware(commonmw.ParseOrigins(cfg.AllowedOrigins)))
	r.Use(limiter.Middleware())
	r.Use(commonmw.Timeout(30 * time.Second))
	r.Use(commonmw.MetricsMiddleware(httpMetrics, routes.ServiceName))
	r.Use(apperrors.ErrorMiddleware())

	routes.RegisterRoutes(r, ctrls, authService, authLimiter.Middleware())

	// --- Background workers ---

	var workers sync.WaitGroup
	startWorker := func(run func(ctx context.Context)) {
		workers.Add(1)
		go func() {
			defer workers.Done()
			run(rootCtx)
		}()
	}

	startWorker(func(ctx context.Context) { checkoutService.StartReconciler(ctx, cfg.ReconcileInterval) })
	if cfg.EventsQueueURL != "" && awsReady {
		eventQueue := pkgaws.NewSQSConsumer(awsCfg, cfg.EventsQueueURL, log).WithMetrics(metricsClient)
		startWorker(consumer.NewEventConsumer(eventQueue, notificationService, log).Start)
	}
	if callbackQueue != nil {
		startWorker(consumer.NewCallbackConsumer(callbackQueue, checkoutService, log).Start)
	}

	// --- Graceful shutdown ---

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("ShopTube backend starting",
			zap.String("port", cfg.Port),
			zap.String("env", cfg.Env),
			zap.String("gateway", cfg.PaymentGateway),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down ShopTube backend...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	cancelRoot()
	workers.Wait()

	if localEvents != nil {
		drainCtx, cancelDrain := context.WithTimeout(context.Background(), 5*time.Second)
		if err := localEvents.Drain(drainCtx); err != nil {
			log.Warn("Pending notifications dropped at shutdown", zap.Error(err))
		}
		cancelDrain()
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis", zap.Error(err))
		}
	}
	if err := database.Close(db); err != nil {
		log.Error("Failed to close Postgres", zap.Error(err))
	}

	log.Info("ShopTube backend stopped gracefully")
}
