package repository

import (
	"context"
	"errors"
	"time"

	"github.com/yashrajoria/shoptube-backend/models"
	"gorm.io/gorm"
)

// PaymentRepository defines data-access operations for the payment ledger.
// Transitions only apply to non-terminal rows, so a succeeded or failed row
// is never changed again.
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	FindByTxRef(ctx context.Context, txRef string) (*models.Payment, error)
	MarkPending(ctx context.Context, txRef, checkoutURL, providerRef string) error
	MarkSucceeded(ctx context.Context, txRef, payload string) error
	MarkFailed(ctx context.Context, txRef, payload string) error
	ListUnsettled(ctx context.Context, olderThan time.Time, limit int) ([]models.Payment, error)
}

type gormPaymentRepo struct {
	db *gorm.DB
}

// NewGormPaymentRepo creates a PaymentRepository backed by Postgres.
func NewGormPaymentRepo(db *gorm.DB) PaymentRepository {
	return &gormPaymentRepo{db: db}
}

var unsettledStatuses = []string{models.PaymentStatusInitiated, models.PaymentStatusPending}

func (r *gormPaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	err := r.db.WithContext(ctx).Create(payment).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

func (r *gormPaymentRepo) FindByTxRef(ctx context.Context, txRef string) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).Where("tx_ref = ?", txRef).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (r *gormPaymentRepo) MarkPending(ctx context.Context, txRef, checkoutURL, providerRef string) error {
	updates := map[string]interface{}{
		"status":       models.PaymentStatusPending,
		"checkout_url": checkoutURL,
	}
	if providerRef != "" {
		updates["provider_ref"] = providerRef
	}
	return r.transition(ctx, txRef, updates)
}

func (r *gormPaymentRepo) MarkSucceeded(ctx context.Context, txRef, payload string) error {
	return r.transition(ctx, txRef, map[string]interface{}{
		"status":          models.PaymentStatusSucceeded,
		"succeeded_at":    time.Now(),
		"gateway_payload": nullableJSON(payload),
	})
}

func (r *gormPaymentRepo) MarkFailed(ctx context.Context, txRef, payload string) error {
	return r.transition(ctx, txRef, map[string]interface{}{
		"status":          models.PaymentStatusFailed,
		"failed_at":       time.Now(),
		"gateway_payload": nullableJSON(payload),
	})
}

func (r *gormPaymentRepo) transition(ctx context.Context, txRef string, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("tx_ref = ? AND status IN ?", txRef, unsettledStatuses).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListUnsettled returns initiated or pending rows created before olderThan,
// oldest first.
func (r *gormPaymentRepo) ListUnsettled(ctx context.Context, olderThan time.Time, limit int) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("status IN ? AND created_at < ?", unsettledStatuses, olderThan).
		Order("created_at ASC").
		Limit(limit).
		Find(&payments).Error
	return payments, err
}

func nullableJSON(payload string) interface{} {
	if payload == "" {
		return nil
	}
	return payload
}
