package checkout

import (
	"context"
	"strconv"
	"strings"
)

// StaticService is an in-memory Service for tests and backend-less runs.
type StaticService struct {
	Orders   map[string]*OrderInfo
	Accounts AccountCheck
	nextID   int64

	// CreateErr / InfoErr / ConfirmErr force failures for error-path tests.
	CreateErr  error
	InfoErr    error
	ConfirmErr error

	// LastPayment records the parameters of the most recent confirmation.
	LastPayment PaymentRequest

	// ClearCart, when set, empties the companion demo cart after a
	// confirmation that asked for it. The real backend clears the cart
	// server-side as part of the same payment.
	ClearCart func()
}

// NewStaticService constructs a StaticService with one eligible account.
func NewStaticService() *StaticService {
	return &StaticService{
		Orders: make(map[string]*OrderInfo),
		Accounts: AccountCheck{
			HasAccounts: true,
			WithBalance: []PaymentAccount{
				{AccountID: "901", AccountType: "AHORROS", Balance: 5000},
			},
			WithoutBalance: []PaymentAccount{
				{AccountID: "902", AccountType: "CORRIENTE", Balance: 3.50},
			},
		},
		nextID: 1000,
	}
}

// CreatePendingOrder records a new pending order with a fixed demo total.
func (s *StaticService) CreatePendingOrder(ctx context.Context, token, address string) (*PendingOrder, error) {
	if s.CreateErr != nil {
		return nil, s.CreateErr
	}
	s.nextID++
	id := strconv.FormatInt(s.nextID, 10)
	order := &OrderInfo{
		OrderID:         id,
		Total:           202.15,
		ShippingAddress: strings.TrimSpace(address),
		Status:          "PENDIENTE",
	}
	if s.Orders == nil {
		s.Orders = make(map[string]*OrderInfo)
	}
	s.Orders[id] = order
	return &PendingOrder{OrderID: id, Total: order.Total}, nil
}

// OrderInfo returns the recorded order.
func (s *StaticService) OrderInfo(ctx context.Context, token, orderID string) (*OrderInfo, error) {
	if s.InfoErr != nil {
		return nil, s.InfoErr
	}
	order, ok := s.Orders[strings.TrimSpace(orderID)]
	if !ok {
		return nil, ErrOrderNotFound
	}
	copied := *order
	return &copied, nil
}

// VerifyAccounts returns the configured account partition.
func (s *StaticService) VerifyAccounts(ctx context.Context, token, orderID string) (*AccountCheck, error) {
	check := s.Accounts
	check.WithBalance = append([]PaymentAccount(nil), s.Accounts.WithBalance...)
	check.WithoutBalance = append([]PaymentAccount(nil), s.Accounts.WithoutBalance...)
	return &check, nil
}

// ConfirmPayment marks the order paid and records the parameters.
func (s *StaticService) ConfirmPayment(ctx context.Context, token, orderID string, payment PaymentRequest) (*PaymentReceipt, error) {
	if s.ConfirmErr != nil {
		return nil, s.ConfirmErr
	}
	order, ok := s.Orders[strings.TrimSpace(orderID)]
	if !ok {
		return nil, ErrOrderNotFound
	}
	order.Status = "CONFIRMADO"
	s.LastPayment = payment
	if payment.ClearCart && s.ClearCart != nil {
		s.ClearCart()
	}
	return &PaymentReceipt{OrderID: order.OrderID, Message: "payment confirmed"}, nil
}

// CancelOrder drops the order.
func (s *StaticService) CancelOrder(ctx context.Context, token, orderID string) error {
	delete(s.Orders, strings.TrimSpace(orderID))
	return nil
}
