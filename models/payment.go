package models

import (
	"time"

	"github.com/google/uuid"
)

// Ledger statuses. Succeeded and failed are terminal.
const (
	PaymentStatusInitiated = "initiated"
	PaymentStatusPending   = "pending"
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusFailed    = "failed"
)

// Gateways
const (
	GatewayChapa  = "chapa"
	GatewayStripe = "stripe"
)

// Payment is the local ledger row for one checkout attempt, keyed by tx_ref.
type Payment struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TxRef          string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"tx_ref"`
	OrderID        string     `gorm:"type:varchar(64);index;not null" json:"order_id"`
	CustomerID     string     `gorm:"type:varchar(64);index;not null" json:"customer_id"`
	Amount         int64      `gorm:"not null" json:"amount"` // minor units
	Currency       string     `gorm:"type:varchar(10);not null" json:"currency"`
	Gateway        string     `gorm:"type:varchar(20);not null" json:"gateway"`
	Status         string     `gorm:"type:varchar(20);not null;index" json:"status"`
	CheckoutURL    *string    `gorm:"type:varchar(1024)" json:"checkout_url,omitempty"`
	ProviderRef    *string    `gorm:"type:varchar(255)" json:"provider_ref,omitempty"`
	GatewayPayload *string    `gorm:"type:jsonb" json:"-"`
	SucceededAt    *time.Time `json:"succeeded_at,omitempty"`
	FailedAt       *time.Time `json:"failed_at,omitempty"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsTerminal reports whether the row can no longer change.
func (p *Payment) IsTerminal() bool {
	return p.Status == PaymentStatusSucceeded || p.Status == PaymentStatusFailed
}

// ToMinorUnits converts a decimal amount to cents, rounding half away from zero.
func ToMinorUnits(amount float64) int64 {
	if amount < 0 {
		return -int64(-amount*100 + 0.5)
	}
	return int64(amount*100 + 0.5)
}

// FromMinorUnits converts cents back to a decimal amount.
func FromMinorUnits(amount int64) float64 {
	return float64(amount) / 100
}

// CallbackMessage is queued when a gateway callback arrives, so the
// verification runs on the consumer instead of the request goroutine.
type CallbackMessage struct {
	TxRef string `json:"tx_ref"`
}
