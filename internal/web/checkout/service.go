package checkout

import (
	"context"
	"errors"
)

// FlowType names the two checkout entry paths.
type FlowType string

const (
	// FlowNewOrder is the fresh cart checkout starting at the address step.
	FlowNewOrder FlowType = "NEW_ORDER"
	// FlowExistingOrder resumes payment for a pending order, skipping the
	// address step entirely.
	FlowExistingOrder FlowType = "EXISTING_ORDER"
)

// Wizard step numbers. The range is fixed.
const (
	StepAddress      = 1
	StepPayment      = 2
	StepConfirmation = 3
)

// MinAddressLength is the shortest shipping address accepted before any
// network call is made.
const MinAddressLength = 10

// PaymentAccount is a bank account eligible (or not) to pay an order.
type PaymentAccount struct {
	AccountID   string
	AccountType string
	Balance     float64
}

// AccountCheck partitions the customer's accounts by whether their balance
// covers the order total.
type AccountCheck struct {
	HasAccounts    bool
	WithBalance    []PaymentAccount
	WithoutBalance []PaymentAccount
}

// PendingOrder is the backend's answer to creating an order awaiting payment.
type PendingOrder struct {
	OrderID string
	Total   float64
}

// OrderInfo describes an existing pending order.
type OrderInfo struct {
	OrderID         string
	Total           float64
	ShippingAddress string
	Status          string
}

// PaymentRequest carries the confirmation parameters.
type PaymentRequest struct {
	AccountID   string
	AccountType string
	ClearCart   bool
}

// PaymentReceipt is the backend's answer to a confirmed payment.
type PaymentReceipt struct {
	OrderID string
	Message string
}

// Service talks to the checkout endpoints of the backend.
type Service interface {
	CreatePendingOrder(ctx context.Context, token, address string) (*PendingOrder, error)
	OrderInfo(ctx context.Context, token, orderID string) (*OrderInfo, error)
	VerifyAccounts(ctx context.Context, token, orderID string) (*AccountCheck, error)
	ConfirmPayment(ctx context.Context, token, orderID string, req PaymentRequest) (*PaymentReceipt, error)
	CancelOrder(ctx context.Context, token, orderID string) error
}

// ErrOrderNotFound is returned when the referenced pending order is gone.
var ErrOrderNotFound = errors.New("checkout: order not found")
