package checkout

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"motoshop.store/moto-web/internal/web/apiclient"
	"motoshop.store/moto-web/internal/web/session"
)

// State is the checkout store's full state. The wizard walks steps 1..3; the
// address step does not exist in the existing-order flow.
type State struct {
	Step            int
	Flow            FlowType
	ShouldClearCart bool

	OrderID         string
	OrderTotal      float64
	ShippingAddress string

	SelectedAccountID   string
	SelectedAccountType string
	SelectedBalance     float64

	Accounts *AccountCheck

	Loading bool
	Err     string
}

// Completed reports whether the wizard has reached the confirmation step.
func (s State) Completed() bool {
	return s.Step == StepConfirmation
}

// Result reports the outcome of a store operation.
type Result struct {
	Success bool
	Error   string
	Kind    apiclient.Kind
	OrderID string
	Message string
}

type action interface{ isAction() }

type initWizard struct {
	flow    FlowType
	orderID string
}
type setStep struct{ step int }
type setLoading struct{ loading bool }
type setError struct{ message string }
type orderCreated struct {
	orderID string
	total   float64
	address string
}
type orderLoaded struct{ order OrderInfo }
type accountsLoaded struct{ accounts AccountCheck }
type paymentSelected struct{ account PaymentAccount }
type resetWizard struct{}

func (initWizard) isAction()      {}
func (setStep) isAction()         {}
func (setLoading) isAction()      {}
func (setError) isAction()        {}
func (orderCreated) isAction()    {}
func (orderLoaded) isAction()     {}
func (accountsLoaded) isAction()  {}
func (paymentSelected) isAction() {}
func (resetWizard) isAction()     {}

// reduce is the pure transition function from (state, action) to state.
func reduce(state State, act action) State {
	switch a := act.(type) {
	case initWizard:
		next := State{Flow: a.flow, Step: StepAddress, ShouldClearCart: true}
		if a.flow == FlowExistingOrder {
			next.Step = StepPayment
			next.OrderID = a.orderID
			next.ShouldClearCart = false
		}
		return next
	case setStep:
		state.Step = a.step
		state.Err = ""
		return state
	case setLoading:
		state.Loading = a.loading
		if a.loading {
			state.Err = ""
		}
		return state
	case setError:
		state.Loading = false
		state.Err = a.message
		return state
	case orderCreated:
		state.OrderID = a.orderID
		state.OrderTotal = a.total
		state.ShippingAddress = a.address
		state.Step = StepPayment
		state.Loading = false
		state.Err = ""
		return state
	case orderLoaded:
		state.OrderID = a.order.OrderID
		state.OrderTotal = a.order.Total
		state.ShippingAddress = a.order.ShippingAddress
		state.Loading = false
		state.Err = ""
		return state
	case accountsLoaded:
		check := a.accounts
		state.Accounts = &check
		state.Loading = false
		state.Err = ""
		return state
	case paymentSelected:
		state.SelectedAccountID = a.account.AccountID
		state.SelectedAccountType = a.account.AccountType
		state.SelectedBalance = a.account.Balance
		return state
	case resetWizard:
		return State{}
	default:
		return state
	}
}

// Store owns the checkout wizard state and drives the payment flow against
// the backend.
type Store struct {
	state  State
	svc    Service
	authed func() (token string, ok bool)
	log    *zap.Logger
}

// NewStore constructs a checkout store. authed reports the current bearer
// token, or ok=false when the customer is signed out.
func NewStore(svc Service, authed func() (string, bool), log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{svc: svc, authed: authed, log: log}
}

func (s *Store) dispatch(act action) {
	s.state = reduce(s.state, act)
}

// State returns a copy of the current state.
func (s *Store) State() State {
	return s.state
}

// Initialize starts the wizard. A non-empty orderID resumes payment for an
// existing pending order at the payment step; otherwise a fresh checkout
// starts at the address step.
func (s *Store) Initialize(orderID string) {
	orderID = strings.TrimSpace(orderID)
	if orderID != "" {
		s.dispatch(initWizard{flow: FlowExistingOrder, orderID: orderID})
		return
	}
	s.dispatch(initWizard{flow: FlowNewOrder})
}

// GoToStep moves the wizard to step n. Steps outside 1..3 are rejected, as
// is the address step when resuming an existing order. Rejections leave the
// state untouched and return false.
func (s *Store) GoToStep(n int) bool {
	if n < StepAddress || n > StepConfirmation {
		return false
	}
	if n == StepAddress && s.state.Flow == FlowExistingOrder {
		return false
	}
	s.dispatch(setStep{step: n})
	return true
}

// NextStep advances one step when possible.
func (s *Store) NextStep() bool {
	return s.GoToStep(s.state.Step + 1)
}

// PrevStep steps back when possible.
func (s *Store) PrevStep() bool {
	return s.GoToStep(s.state.Step - 1)
}

// CreatePendingOrder validates the shipping address and creates the pending
// order. Signed-out customers and too-short addresses are rejected before
// any network call. Success advances to the payment step.
func (s *Store) CreatePendingOrder(ctx context.Context, address string) Result {
	token, ok := s.authed()
	if !ok {
		return Result{Success: false, Error: "sign in to check out", Kind: apiclient.KindUnauthorized}
	}

	address = strings.TrimSpace(address)
	if utf8.RuneCountInString(address) < MinAddressLength {
		message := "the shipping address is too short"
		s.dispatch(setError{message: message})
		return Result{Success: false, Error: message}
	}

	s.dispatch(setLoading{true})

	order, err := s.svc.CreatePendingOrder(ctx, token, address)
	if err != nil {
		return s.requestFailed(err, "could not create the order")
	}

	s.dispatch(orderCreated{orderID: order.OrderID, total: order.Total, address: address})
	return Result{Success: true, OrderID: order.OrderID}
}

// FetchOrderInfo loads the pending order being resumed, typically right
// after Initialize with an order id.
func (s *Store) FetchOrderInfo(ctx context.Context) Result {
	token, ok := s.authed()
	if !ok {
		return Result{Success: false, Kind: apiclient.KindUnauthorized}
	}
	if s.state.OrderID == "" {
		return Result{Success: false, Error: "no order to load"}
	}

	s.dispatch(setLoading{true})

	order, err := s.svc.OrderInfo(ctx, token, s.state.OrderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			message := "the order no longer exists"
			s.dispatch(setError{message: message})
			return Result{Success: false, Error: message, Kind: apiclient.KindNotFound}
		}
		return s.requestFailed(err, "could not load the order")
	}

	s.dispatch(orderLoaded{order: *order})
	return Result{Success: true, OrderID: order.OrderID}
}

// VerifyAccounts asks the backend which of the customer's accounts can cover
// the order total.
func (s *Store) VerifyAccounts(ctx context.Context) Result {
	token, ok := s.authed()
	if !ok {
		return Result{Success: false, Kind: apiclient.KindUnauthorized}
	}
	if s.state.OrderID == "" {
		return Result{Success: false, Error: "no order to verify"}
	}

	s.dispatch(setLoading{true})

	check, err := s.svc.VerifyAccounts(ctx, token, s.state.OrderID)
	if err != nil {
		return s.requestFailed(err, "could not check the payment accounts")
	}

	s.dispatch(accountsLoaded{accounts: *check})
	return Result{Success: true}
}

// SelectPayment records the account the customer picked. Accounts without
// enough balance are rejected.
func (s *Store) SelectPayment(account PaymentAccount) Result {
	if account.AccountID == "" {
		return Result{Success: false, Error: "pick a payment account"}
	}
	if account.Balance < s.state.OrderTotal {
		return Result{Success: false, Error: "that account does not cover the order total"}
	}
	s.dispatch(paymentSelected{account: account})
	return Result{Success: true}
}

// ConfirmPayment executes the payment with the selected account and, on
// success, advances to the confirmation step.
func (s *Store) ConfirmPayment(ctx context.Context) Result {
	token, ok := s.authed()
	if !ok {
		return Result{Success: false, Kind: apiclient.KindUnauthorized}
	}
	if s.state.OrderID == "" {
		return Result{Success: false, Error: "no order to pay"}
	}
	if s.state.SelectedAccountID == "" {
		message := "pick a payment account first"
		s.dispatch(setError{message: message})
		return Result{Success: false, Error: message}
	}

	s.dispatch(setLoading{true})

	receipt, err := s.svc.ConfirmPayment(ctx, token, s.state.OrderID, PaymentRequest{
		AccountID:   s.state.SelectedAccountID,
		AccountType: s.state.SelectedAccountType,
		ClearCart:   s.state.ShouldClearCart,
	})
	if err != nil {
		return s.requestFailed(err, "the payment could not be completed")
	}

	s.dispatch(setStep{step: StepConfirmation})
	s.dispatch(setLoading{false})
	return Result{Success: true, OrderID: s.state.OrderID, Message: receipt.Message}
}

// CancelOrder abandons the pending order and resets the wizard.
func (s *Store) CancelOrder(ctx context.Context) Result {
	token, ok := s.authed()
	if !ok {
		return Result{Success: false, Kind: apiclient.KindUnauthorized}
	}
	if s.state.OrderID != "" {
		if err := s.svc.CancelOrder(ctx, token, s.state.OrderID); err != nil {
			s.log.Warn("checkout: order cancellation failed", zap.String("order_id", s.state.OrderID), zap.Error(err))
		}
	}
	s.dispatch(resetWizard{})
	return Result{Success: true}
}

// Reset drops all wizard state, e.g. after logout or a finished purchase.
func (s *Store) Reset() {
	s.dispatch(resetWizard{})
}

// Snapshot converts the wizard state for session persistence. A zero-step
// state snapshots to nil so finished or unstarted wizards leave no trace in
// the cookie.
func (s *Store) Snapshot() *session.CheckoutSnapshot {
	if s.state.Step == 0 {
		return nil
	}
	return &session.CheckoutSnapshot{
		Step:            s.state.Step,
		Flow:            string(s.state.Flow),
		ShouldClearCart: s.state.ShouldClearCart,
		OrderID:         s.state.OrderID,
		OrderTotal:      s.state.OrderTotal,
		ShippingAddress: s.state.ShippingAddress,
		AccountID:       s.state.SelectedAccountID,
		AccountType:     s.state.SelectedAccountType,
		AccountBalance:  s.state.SelectedBalance,
	}
}

// Restore rehydrates the wizard from a persisted snapshot. Nil or
// out-of-range snapshots leave the store zeroed.
func (s *Store) Restore(snap *session.CheckoutSnapshot) {
	if snap == nil || snap.Step < StepAddress || snap.Step > StepConfirmation {
		return
	}
	flow := FlowType(snap.Flow)
	if flow != FlowNewOrder && flow != FlowExistingOrder {
		flow = FlowNewOrder
	}
	s.state = State{
		Step:                snap.Step,
		Flow:                flow,
		ShouldClearCart:     snap.ShouldClearCart,
		OrderID:             snap.OrderID,
		OrderTotal:          snap.OrderTotal,
		ShippingAddress:     snap.ShippingAddress,
		SelectedAccountID:   snap.AccountID,
		SelectedAccountType: snap.AccountType,
		SelectedBalance:     snap.AccountBalance,
	}
}

func (s *Store) requestFailed(err error, fallback string) Result {
	message := apiclient.MessageOf(err, fallback)
	s.dispatch(setError{message: message})
	return Result{Success: false, Error: message, Kind: apiclient.KindOf(err)}
}
