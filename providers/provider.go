package providers

import (
	"context"
	"errors"
)

// PaymentGateway defines the interface every hosted checkout integration
// must implement.
type PaymentGateway interface {
	// Name identifies the gateway in the payment ledger.
	Name() string

	// Initialize opens a hosted checkout session for the request.
	Initialize(ctx context.Context, req InitializeRequest) (*Checkout, error)

	// Verify asks the gateway for the final state of a transaction. An error
	// means the gateway could not be reached or answered with garbage; a
	// definitive "not paid" answer is a Verification with Success false.
	Verify(ctx context.Context, txRef, providerRef string) (*Verification, error)
}

// InitializeRequest carries everything a gateway needs to open a checkout.
type InitializeRequest struct {
	TxRef       string
	OrderID     string
	CustomerID  string
	Amount      float64
	Currency    string
	Email       string
	FirstName   string
	LastName    string
	PhoneNumber string
	CallbackURL string
	ReturnURL   string
	CancelURL   string
}

// Checkout is the hosted payment page returned by Initialize.
type Checkout struct {
	CheckoutURL string
	ProviderRef string
}

// Verification is the gateway's verdict on a transaction.
type Verification struct {
	Success     bool
	Status      string
	Amount      float64
	HasAmount   bool
	Currency    string
	ProviderRef string
	Raw         string
}

// ErrRejected wraps a definitive refusal from the gateway.
var ErrRejected = errors.New("payment gateway rejected the request")

// RejectedError carries the gateway's own explanation.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	return "payment gateway rejected the request: " + e.Message
}

func (e *RejectedError) Unwrap() error { return ErrRejected }
