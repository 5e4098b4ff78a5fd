package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/yashrajoria/shoptube-backend/database"
	"github.com/yashrajoria/shoptube-backend/models"
	pkgaws "github.com/yashrajoria/shoptube-backend/pkg/aws"
)

type Config struct {
	Port    string
	Env     string
	BaseURL string

	HasuraEndpoint    string
	HasuraAdminSecret string
	JWTSecret         string
	Postgres          database.PostgresConfig
	RedisURL          string

	PaymentGateway   string
	PaymentCurrency  string
	ChapaSecretKey   string
	ChapaBaseURL     string
	StripeSecretKey  string
	StripeWebhookKey string

	EventsTopicArn      string
	EventsQueueURL      string
	CallbackQueueURL    string
	ProductImagesBucket string

	ReconcileInterval time.Duration
	PaymentExpiry     time.Duration

	AllowedOrigins     string
	RateLimitPerMinute int
	AuthRateLimit      int

	CloudWatchEnabled   bool
	CloudWatchNamespace string
	CloudWatchLogGroup  string
}

// secretSource is implemented by pkg/aws.SecretsClient.
type secretSource interface {
	GetSecret(ctx context.Context, name string) (string, error)
	GetSecretMap(ctx context.Context, name string) (map[string]string, error)
}

func LoadConfig() (*Config, error) {
	// .env is optional; real deployments use the environment.
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		Env:               getEnv("APP_ENV", "development"),
		BaseURL:           strings.TrimRight(getEnv("BASE_URL", "http://localhost:3000"), "/"),
		HasuraEndpoint:    os.Getenv("HASURA_ENDPOINT"),
		HasuraAdminSecret: os.Getenv("HASURA_ADMIN_SECRET"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		Postgres: database.PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			User:     os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			Name:     os.Getenv("POSTGRES_DB"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
			TimeZone: getEnv("POSTGRES_TIMEZONE", "Africa/Addis_Ababa"),
		},
		RedisURL:            os.Getenv("REDIS_URL"),
		PaymentGateway:      strings.ToLower(getEnv("PAYMENT_GATEWAY", models.GatewayChapa)),
		PaymentCurrency:     strings.ToUpper(getEnv("PAYMENT_CURRENCY", "ETB")),
		ChapaSecretKey:      os.Getenv("CHAPA_SECRET_KEY"),
		ChapaBaseURL:        os.Getenv("CHAPA_BASE_URL"),
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookKey:    os.Getenv("STRIPE_WEBHOOK_SECRET"),
		EventsTopicArn:      os.Getenv("EVENTS_SNS_TOPIC_ARN"),
		EventsQueueURL:      os.Getenv("EVENTS_SQS_QUEUE_URL"),
		CallbackQueueURL:    os.Getenv("CALLBACK_SQS_QUEUE_URL"),
		ProductImagesBucket: os.Getenv("PRODUCT_IMAGES_BUCKET"),
		ReconcileInterval:   getDuration("RECONCILE_INTERVAL", 5*time.Minute),
		PaymentExpiry:       getDuration("PAYMENT_EXPIRY", 24*time.Hour),
		AllowedOrigins:      os.Getenv("ALLOWED_ORIGINS"),
		RateLimitPerMinute:  getInt("RATE_LIMIT_PER_MINUTE", 100),
		AuthRateLimit:       getInt("AUTH_RATE_LIMIT_PER_MINUTE", 10),
		CloudWatchEnabled:   os.Getenv("CLOUDWATCH_ENABLED") == "true",
		CloudWatchNamespace: getEnv("CLOUDWATCH_NAMESPACE", "ShopTube"),
		CloudWatchLogGroup:  getEnv("CLOUDWATCH_LOG_GROUP", "/shoptube/backend"),
	}

	if os.Getenv("AWS_USE_SECRETS") == "true" {
		if awsCfg, err := pkgaws.LoadAWSConfig(context.Background()); err == nil {
			applySecrets(context.Background(), cfg, pkgaws.NewSecretsClient(awsCfg))
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applySecrets overrides credentials with the values stored in Secrets
// Manager. Missing secrets keep the environment values.
func applySecrets(ctx context.Context, cfg *Config, sm secretSource) {
	if m, err := sm.GetSecretMap(ctx, "shoptube/DB_CREDENTIALS"); err == nil {
		setIfPresent(m, "POSTGRES_USER", &cfg.Postgres.User)
		setIfPresent(m, "POSTGRES_PASSWORD", &cfg.Postgres.Password)
		setIfPresent(m, "POSTGRES_DB", &cfg.Postgres.Name)
		setIfPresent(m, "POSTGRES_HOST", &cfg.Postgres.Host)
		setIfPresent(m, "POSTGRES_PORT", &cfg.Postgres.Port)
	}

	for name, dst := range map[string]*string{
		"shoptube/JWT_SECRET":          &cfg.JWTSecret,
		"shoptube/HASURA_ADMIN_SECRET": &cfg.HasuraAdminSecret,
		"shoptube/CHAPA_SECRET_KEY":    &cfg.ChapaSecretKey,
		"shoptube/STRIPE_SECRET_KEY":   &cfg.StripeSecretKey,
	} {
		if v, err := sm.GetSecret(ctx, name); err == nil && v != "" {
			*dst = v
		}
	}
}

func (c *Config) validate() error {
	if c.HasuraEndpoint == "" {
		return fmt.Errorf("HASURA_ENDPOINT is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Postgres.User == "" || c.Postgres.Password == "" || c.Postgres.Name == "" {
		return fmt.Errorf("database config incomplete")
	}
	switch c.PaymentGateway {
	case models.GatewayChapa:
		if c.ChapaSecretKey == "" {
			return fmt.Errorf("CHAPA_SECRET_KEY is required")
		}
	case models.GatewayStripe:
		if c.StripeSecretKey == "" {
			return fmt.Errorf("STRIPE_SECRET_KEY is required")
		}
	default:
		return fmt.Errorf("unsupported PAYMENT_GATEWAY %q", c.PaymentGateway)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// usesAWS reports whether any AWS-backed component is configured.
func (c *Config) usesAWS() bool {
	return c.CloudWatchEnabled || c.EventsTopicArn != "" || c.EventsQueueURL != "" ||
		c.CallbackQueueURL != "" || c.ProductImagesBucket != ""
}

func setIfPresent(m map[string]string, key string, dst *string) {
	if v, ok := m[key]; ok && v != "" {
		*dst = v
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n > 0 {
		return n
	}
	return fallback
}
