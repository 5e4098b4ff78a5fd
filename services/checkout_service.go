package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yashrajoria/shoptube-backend/models"
	pkgaws "github.com/yashrajoria/shoptube-backend/pkg/aws"
	"github.com/yashrajoria/shoptube-backend/providers"
	"github.com/yashrajoria/shoptube-backend/repository"
	"go.uber.org/zap"
)

const (
	msgInvalidCheckout    = "Missing or invalid request data"
	msgInitializeFailed   = "Failed to initialize payment"
	msgVerifyFailed       = "Payment verification failed."
	msgVerified           = "Payment verified and order updated."
	msgAlreadyVerified    = "Payment already verified."
	msgGatewayUnreachable = "Payment gateway unreachable"

	txRefAttempts    = 3
	amountTolerance  = 1 // minor units
	reconcileBatch   = 50
	defaultSettleAge = 10 * time.Minute
	defaultExpiry    = 24 * time.Hour
)

// Locker is implemented by repository.LockRepository.
type Locker interface {
	Acquire(ctx context.Context, name string) (func(), error)
}

// CheckoutConfig holds the URLs and timings used by the checkout flow.
type CheckoutConfig struct {
	BaseURL       string
	Currency      string
	SettleAfter   time.Duration // unsettled rows younger than this are left to the browser flow
	PaymentExpiry time.Duration // unsettled rows older than this are closed as failed
}

// CheckoutService turns carts into paid orders.
type CheckoutService interface {
	Initiate(ctx context.Context, customerID string, req *models.CheckoutRequest) (*models.CheckoutResponse, *ServiceError)
	Verify(ctx context.Context, txRef string) (*models.VerifyResult, *ServiceError)
	Reconcile(ctx context.Context) (int, error)
	StartReconciler(ctx context.Context, interval time.Duration)
}

type checkoutServiceImpl struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	payments repository.PaymentRepository
	cart     repository.CartRepository
	gateway  providers.PaymentGateway
	gateways map[string]providers.PaymentGateway
	locker   Locker
	events   EventPublisher
	metrics  MetricsRecorder
	cfg      CheckoutConfig
	logger   *zap.Logger
	now      func() time.Time
}

// NewCheckoutService creates a new CheckoutService. New checkouts go to the
// first gateway; the others are only used to verify rows they opened.
func NewCheckoutService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	payments repository.PaymentRepository,
	cart repository.CartRepository,
	gateways []providers.PaymentGateway,
	locker Locker,
	events EventPublisher,
	metrics MetricsRecorder,
	cfg CheckoutConfig,
	logger *zap.Logger,
) CheckoutService {
	if cfg.Currency == "" {
		cfg.Currency = "ETB"
	}
	if cfg.SettleAfter <= 0 {
		cfg.SettleAfter = defaultSettleAge
	}
	if cfg.PaymentExpiry <= 0 {
		cfg.PaymentExpiry = defaultExpiry
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	byName := make(map[string]providers.PaymentGateway, len(gateways))
	for _, g := range gateways {
		byName[g.Name()] = g
	}
	var primary providers.PaymentGateway
	if len(gateways) > 0 {
		primary = gateways[0]
	}

	return &checkoutServiceImpl{
		orders:   orders,
		products: products,
		payments: payments,
		cart:     cart,
		gateway:  primary,
		gateways: byName,
		locker:   locker,
		events:   events,
		metrics:  metrics,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// newTxRef returns shoptube-<unix ms>-<12 hex>.
func newTxRef(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("shoptube-%d-%s", now.UnixMilli(), suffix)
}

func splitName(fullName string) (string, string) {
	parts := strings.Fields(fullName)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// Initiate validates and reprices the cart, creates the order in
// payment_pending with its ledger row, and opens a hosted checkout.
func (s *checkoutServiceImpl) Initiate(ctx context.Context, customerID string, req *models.CheckoutRequest) (*models.CheckoutResponse, *ServiceError) {
	if req == nil || req.CartItems == nil || req.ShippingAddress() == "" {
		return nil, badRequest(msgInvalidCheckout)
	}
	if err := validate.Struct(req); err != nil {
		return nil, badRequest(msgInvalidCheckout)
	}
	if req.UserID != customerID {
		return nil, forbidden("Unauthorized")
	}
	if s.gateway == nil {
		return nil, &ServiceError{StatusCode: 503, Message: "Payment gateway not configured"}
	}

	items, total, svcErr := s.reprice(ctx, req)
	if svcErr != nil {
		return nil, svcErr
	}

	order, txRef, svcErr := s.createOrder(ctx, customerID, req.ShippingAddress(), total, items)
	if svcErr != nil {
		return nil, svcErr
	}
	log := s.logger.With(zap.String("tx_ref", txRef), zap.String("order_id", order.ID))

	payment := &models.Payment{
		TxRef:      txRef,
		OrderID:    order.ID,
		CustomerID: customerID,
		Amount:     models.ToMinorUnits(total),
		Currency:   s.cfg.Currency,
		Gateway:    s.gateway.Name(),
		Status:     models.PaymentStatusInitiated,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		log.Error("Failed to record payment", zap.Error(err))
		s.failOrder(ctx, txRef)
		return nil, internal("Failed to create order")
	}

	firstName, lastName := splitName(req.FullName)
	checkout, err := s.gateway.Initialize(ctx, providers.InitializeRequest{
		TxRef:       txRef,
		OrderID:     order.ID,
		CustomerID:  customerID,
		Amount:      total,
		Currency:    s.cfg.Currency,
		Email:       req.Email,
		FirstName:   firstName,
		LastName:    lastName,
		PhoneNumber: req.PhoneNumber,
		CallbackURL: s.cfg.BaseURL + "/api/chapa/callback/" + url.PathEscape(txRef),
		ReturnURL:   s.cfg.BaseURL + "/customer/order-confirmation?tx_ref=" + url.QueryEscape(txRef),
		CancelURL:   s.cfg.BaseURL + "/customer/cart",
	})
	if err != nil {
		log.Error("Payment initialization failed", zap.String("gateway", s.gateway.Name()), zap.Error(err))
		s.failOrder(ctx, txRef)
		if mErr := s.payments.MarkFailed(ctx, txRef, gatewayErrorPayload(err)); mErr != nil {
			log.Error("Failed to mark payment failed", zap.Error(mErr))
		}
		recordCount(s.metrics, pkgaws.MetricPaymentFailed, map[string]string{"Gateway": s.gateway.Name()})

		msg := msgInitializeFailed
		var rejected *providers.RejectedError
		if errors.As(err, &rejected) && rejected.Message != "" {
			msg = msgInitializeFailed + ": " + rejected.Message
		}
		return nil, &ServiceError{StatusCode: 502, Message: msg}
	}

	if err := s.payments.MarkPending(ctx, txRef, checkout.CheckoutURL, checkout.ProviderRef); err != nil {
		log.Error("Failed to mark payment pending", zap.Error(err))
	}

	dims := map[string]string{"Gateway": s.gateway.Name()}
	recordCount(s.metrics, pkgaws.MetricCartCheckouts, dims)
	recordCount(s.metrics, pkgaws.MetricOrdersCreated, dims)
	s.events.Publish(ctx, models.Event{
		EventType:  models.EventCheckoutInitiated,
		UserID:     customerID,
		CustomerID: customerID,
		OrderID:    order.ID,
		TxRef:      txRef,
		Amount:     total,
	})
	log.Info("Checkout initiated", zap.Float64("amount", total))

	return &models.CheckoutResponse{
		Success:     true,
		CheckoutURL: checkout.CheckoutURL,
		TxRef:       txRef,
		OrderID:     order.ID,
	}, nil
}

// reprice checks every line against the live catalog and returns the lines at
// live prices along with their total.
func (s *checkoutServiceImpl) reprice(ctx context.Context, req *models.CheckoutRequest) ([]models.OrderItem, float64, *ServiceError) {
	ids := make([]string, 0, len(req.CartItems))
	wanted := make(map[string]int, len(req.CartItems))
	for _, it := range req.CartItems {
		if _, seen := wanted[it.ProductID]; !seen {
			ids = append(ids, it.ProductID)
		}
		wanted[it.ProductID] += it.Quantity
	}

	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("Failed to load products for checkout", zap.Error(err))
		return nil, 0, internal("Failed to create order")
	}
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, 0, badRequest("Product not found: " + id)
		}
		if wanted[id] > p.Stock {
			return nil, 0, conflict("Insufficient stock for " + p.Name)
		}
	}

	var totalMinor int64
	items := make([]models.OrderItem, 0, len(req.CartItems))
	for _, it := range req.CartItems {
		p := byID[it.ProductID]
		totalMinor += models.ToMinorUnits(p.Price) * int64(it.Quantity)
		items = append(items, models.OrderItem{
			ProductID:    it.ProductID,
			Quantity:     it.Quantity,
			PricePerUnit: p.Price,
		})
	}

	diff := totalMinor - models.ToMinorUnits(req.TotalAmount)
	if diff > amountTolerance || diff < -amountTolerance {
		return nil, 0, conflict("Cart total does not match current prices")
	}
	return items, models.FromMinorUnits(totalMinor), nil
}

func (s *checkoutServiceImpl) createOrder(ctx context.Context, customerID, address string, total float64, items []models.OrderItem) (*models.Order, string, *ServiceError) {
	for attempt := 0; attempt < txRefAttempts; attempt++ {
		txRef := newTxRef(s.now())

		if _, err := s.payments.FindByTxRef(ctx, txRef); err == nil {
			continue
		} else if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Error("Failed to check transaction reference", zap.Error(err))
			return nil, "", internal("Failed to create order")
		}

		order, err := s.orders.Create(ctx, models.NewOrder{
			CustomerID:      customerID,
			TotalAmount:     total,
			ShippingAddress: address,
			TxRef:           txRef,
			Items:           items,
		})
		if errors.Is(err, repository.ErrDuplicate) {
			s.logger.Warn("Transaction reference collision, regenerating", zap.String("tx_ref", txRef))
			continue
		}
		if err != nil {
			s.logger.Error("Failed to create order", zap.String("customer_id", customerID), zap.Error(err))
			return nil, "", internal("Failed to create order")
		}
		return order, txRef, nil
	}
	return nil, "", internal("Failed to allocate transaction reference")
}

func (s *checkoutServiceImpl) failOrder(ctx context.Context, txRef string) {
	if _, err := s.orders.UpdateStatusByTxRef(ctx, txRef, models.OrderStatusFailed); err != nil {
		s.logger.Error("Failed to mark order failed", zap.String("tx_ref", txRef), zap.Error(err))
	}
}

func gatewayErrorPayload(err error) string {
	return fmt.Sprintf(`{"error":%q}`, err.Error())
}

// Verify settles the payment for txRef. A settled row replays its recorded
// outcome without calling the gateway.
func (s *checkoutServiceImpl) Verify(ctx context.Context, txRef string) (*models.VerifyResult, *ServiceError) {
	txRef = strings.TrimSpace(txRef)
	if txRef == "" {
		return nil, badRequest("Transaction reference is required")
	}
	log := s.logger.With(zap.String("tx_ref", txRef))

	if s.locker != nil {
		release, err := s.locker.Acquire(ctx, "verify:"+txRef)
		switch {
		case errors.Is(err, repository.ErrLockHeld):
			return nil, conflict("Verification already in progress")
		case err != nil:
			if !errors.Is(err, repository.ErrLockUnavailable) {
				log.Warn("Verify lock unavailable, continuing without it", zap.Error(err))
			}
		default:
			defer release()
		}
	}

	payment, err := s.payments.FindByTxRef(ctx, txRef)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("Unknown transaction reference")
		}
		log.Error("Failed to load payment", zap.Error(err))
		return nil, internal("Internal server error.")
	}
	if payment.IsTerminal() {
		return replay(payment), nil
	}

	verification, svcErr := s.askGateway(ctx, payment)
	if svcErr != nil {
		return nil, svcErr
	}
	return s.settle(ctx, payment, s.outcome(payment, verification), verification.Raw)
}

// orderStatusFor maps a terminal ledger status to the order status it implies.
func orderStatusFor(p *models.Payment) string {
	if p.Status == models.PaymentStatusSucceeded {
		return models.OrderStatusPending
	}
	return models.OrderStatusFailed
}

func replay(p *models.Payment) *models.VerifyResult {
	if p.Status == models.PaymentStatusSucceeded {
		return &models.VerifyResult{Success: true, Message: msgAlreadyVerified, OrderID: p.OrderID, TxRef: p.TxRef}
	}
	return &models.VerifyResult{Success: false, Message: msgVerifyFailed}
}

func (s *checkoutServiceImpl) askGateway(ctx context.Context, p *models.Payment) (*providers.Verification, *ServiceError) {
	gateway, ok := s.gateways[p.Gateway]
	if !ok {
		s.logger.Error("No gateway for payment", zap.String("tx_ref", p.TxRef), zap.String("gateway", p.Gateway))
		return nil, &ServiceError{StatusCode: 502, Message: msgGatewayUnreachable}
	}
	providerRef := ""
	if p.ProviderRef != nil {
		providerRef = *p.ProviderRef
	}
	v, err := gateway.Verify(ctx, p.TxRef, providerRef)
	if err != nil {
		s.logger.Error("Gateway verify failed", zap.String("tx_ref", p.TxRef), zap.String("gateway", p.Gateway), zap.Error(err))
		return nil, &ServiceError{StatusCode: 502, Message: msgGatewayUnreachable}
	}
	return v, nil
}

// outcome accepts the gateway's success only if the amount and currency it
// reports, when present, match the ledger.
func (s *checkoutServiceImpl) outcome(p *models.Payment, v *providers.Verification) bool {
	if !v.Success {
		return false
	}
	if v.HasAmount && models.ToMinorUnits(v.Amount) != p.Amount {
		s.logger.Warn("Gateway amount mismatch",
			zap.String("tx_ref", p.TxRef),
			zap.Int64("expected", p.Amount),
			zap.Float64("reported", v.Amount),
		)
		return false
	}
	if v.Currency != "" && !strings.EqualFold(v.Currency, p.Currency) {
		s.logger.Warn("Gateway currency mismatch",
			zap.String("tx_ref", p.TxRef),
			zap.String("expected", p.Currency),
			zap.String("reported", v.Currency),
		)
		return false
	}
	return true
}

// settle moves the order and then the ledger row to the final state. The
// order update is keyed by tx_ref, so a retry after a partial failure is safe.
func (s *checkoutServiceImpl) settle(ctx context.Context, p *models.Payment, success bool, raw string) (*models.VerifyResult, *ServiceError) {
	log := s.logger.With(zap.String("tx_ref", p.TxRef), zap.String("order_id", p.OrderID))
	if raw == "" {
		raw = "{}"
	}

	orderStatus := models.OrderStatusFailed
	if success {
		orderStatus = models.OrderStatusPending
	}
	if _, err := s.orders.UpdateStatusByTxRef(ctx, p.TxRef, orderStatus); err != nil {
		log.Error("Failed to update order status", zap.String("status", orderStatus), zap.Error(err))
		return nil, internal("Internal server error.")
	}

	var err error
	if success {
		err = s.payments.MarkSucceeded(ctx, p.TxRef, raw)
	} else {
		err = s.payments.MarkFailed(ctx, p.TxRef, raw)
	}
	if errors.Is(err, repository.ErrNotFound) {
		// Settled concurrently. The row that reached a terminal status wins and
		// the order is put back in line with it.
		current, findErr := s.payments.FindByTxRef(ctx, p.TxRef)
		if findErr == nil && current.IsTerminal() {
			if succeeded := current.Status == models.PaymentStatusSucceeded; succeeded != success {
				if _, err := s.orders.UpdateStatusByTxRef(ctx, p.TxRef, orderStatusFor(current)); err != nil {
					log.Error("Failed to realign order with settled payment", zap.String("payment_status", current.Status), zap.Error(err))
					return nil, internal("Internal server error.")
				}
				log.Warn("Payment settled concurrently with a different outcome", zap.String("payment_status", current.Status))
			}
			return replay(current), nil
		}
	}
	if err != nil {
		log.Error("Failed to settle payment", zap.Bool("success", success), zap.Error(err))
		return nil, internal("Internal server error.")
	}

	dims := map[string]string{"Gateway": p.Gateway}
	amount := models.FromMinorUnits(p.Amount)
	if !success {
		recordCount(s.metrics, pkgaws.MetricPaymentFailed, dims)
		s.events.Publish(ctx, models.Event{
			EventType:  models.EventPaymentFailed,
			UserID:     p.CustomerID,
			CustomerID: p.CustomerID,
			OrderID:    p.OrderID,
			TxRef:      p.TxRef,
			Amount:     amount,
		})
		log.Info("Payment failed")
		return &models.VerifyResult{Success: false, Message: msgVerifyFailed}, nil
	}

	if _, err := s.cart.Clear(ctx, p.CustomerID); err != nil {
		log.Warn("Failed to clear cart after payment", zap.Error(err))
	}
	recordCount(s.metrics, pkgaws.MetricPaymentSucceeded, dims)
	recordCount(s.metrics, pkgaws.MetricOrdersCompleted, dims)
	recordValue(s.metrics, pkgaws.MetricPaymentAmount, amount, dims)
	s.events.Publish(ctx, models.Event{
		EventType:  models.EventPaymentSucceeded,
		UserID:     p.CustomerID,
		CustomerID: p.CustomerID,
		OrderID:    p.OrderID,
		TxRef:      p.TxRef,
		Amount:     amount,
	})
	log.Info("Payment verified", zap.Float64("amount", amount))
	return &models.VerifyResult{Success: true, Message: msgVerified, OrderID: p.OrderID, TxRef: p.TxRef}, nil
}

// Reconcile re-verifies unsettled rows that the browser flow left behind and
// closes the ones past expiry. It returns how many rows were settled.
func (s *checkoutServiceImpl) Reconcile(ctx context.Context) (int, error) {
	now := s.now()
	rows, err := s.payments.ListUnsettled(ctx, now.Add(-s.cfg.SettleAfter), reconcileBatch)
	if err != nil {
		return 0, fmt.Errorf("list unsettled payments: %w", err)
	}

	settled := 0
	for i := range rows {
		if ctx.Err() != nil {
			return settled, ctx.Err()
		}
		p := &rows[i]
		if s.reconcileOne(ctx, p, now.Sub(p.CreatedAt) > s.cfg.PaymentExpiry) {
			settled++
		}
	}
	return settled, nil
}

func (s *checkoutServiceImpl) reconcileOne(ctx context.Context, p *models.Payment, expired bool) bool {
	log := s.logger.With(zap.String("tx_ref", p.TxRef))
	if s.locker != nil {
		release, err := s.locker.Acquire(ctx, "verify:"+p.TxRef)
		if errors.Is(err, repository.ErrLockHeld) {
			return false
		}
		if err == nil {
			defer release()
		}
	}

	success := false
	raw := ""
	v, svcErr := s.askGateway(ctx, p)
	if svcErr == nil {
		success = s.outcome(p, v)
		raw = v.Raw
	}
	if !success && !expired {
		return false
	}
	if !success && raw == "" {
		raw = `{"error":"payment expired"}`
	}

	if _, svcErr := s.settle(ctx, p, success, raw); svcErr != nil {
		log.Warn("Reconciler could not settle payment", zap.String("error", svcErr.Message))
		return false
	}
	log.Info("Reconciled payment", zap.Bool("success", success), zap.Bool("expired", expired))
	return true
}

// StartReconciler runs Reconcile every interval until ctx is cancelled.
func (s *checkoutServiceImpl) StartReconciler(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		s.logger.Warn("Payment reconciler disabled")
		return
	}
	s.logger.Info("Payment reconciler started", zap.Duration("interval", interval))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Payment reconciler stopping")
			return
		case <-ticker.C:
			n, err := s.Reconcile(ctx)
			if err != nil && ctx.Err() == nil {
				s.logger.Error("Payment reconciliation failed", zap.Error(err))
				continue
			}
			if n > 0 {
				s.logger.Info("Payment reconciliation pass", zap.Int("settled", n))
			}
		}
	}
}
