package checkout

import (
	"context"
	"math/rand"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"motoshop.store/moto-web/internal/web/apiclient"
)

// Payment-flow endpoints keep the backend's legacy Spanish paths.
const (
	createOrderEndpoint    = "/proceso-pago/crear-pedido-pendiente"
	orderEndpoint          = "/pedidos"
	verifyAccountsEndpoint = "/proceso-pago/verificar-cuentas"
	confirmEndpoint        = "/proceso-pago/confirmar-pago"
	cancelEndpoint         = "/proceso-pago/cancelar-pedido"

	idempotencyHeader = "Idempotency-Key"
)

// HTTPService implements Service backed by the REST checkout endpoints.
type HTTPService struct {
	api *apiclient.Client
}

// NewHTTPService constructs a Service over the shared API client.
func NewHTTPService(api *apiclient.Client) *HTTPService {
	return &HTTPService{api: api}
}

type createOrderPayload struct {
	Address string `json:"direccionEntrega"`
}

type pendingOrderResponse struct {
	OrderID int64   `json:"idPedido"`
	Total   float64 `json:"total"`
}

// CreatePendingOrder creates an order awaiting payment from the current cart.
func (s *HTTPService) CreatePendingOrder(ctx context.Context, token, address string) (*PendingOrder, error) {
	body := createOrderPayload{Address: strings.TrimSpace(address)}
	req, err := s.api.NewJSONRequest(ctx, http.MethodPost, createOrderEndpoint, body, token)
	if err != nil {
		return nil, err
	}
	resp, err := s.api.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, apiclient.ErrorFromResponse(resp)
	}

	var payload pendingOrderResponse
	if err := apiclient.DecodeJSON(resp, &payload); err != nil {
		return nil, err
	}
	return &PendingOrder{
		OrderID: strconv.FormatInt(payload.OrderID, 10),
		Total:   payload.Total,
	}, nil
}

type orderInfoResponse struct {
	OrderID int64   `json:"idPedido"`
	Total   float64 `json:"total"`
	Address string  `json:"direccionEntrega"`
	Status  string  `json:"estado"`
}

// OrderInfo loads the total and address of an existing pending order.
func (s *HTTPService) OrderInfo(ctx context.Context, token, orderID string) (*OrderInfo, error) {
	endpoint := path.Join(orderEndpoint, url.PathEscape(strings.TrimSpace(orderID)))
	req, err := s.api.NewRequest(ctx, http.MethodGet, endpoint, nil, token)
	if err != nil {
		return nil, err
	}
	resp, err := s.api.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		_ = resp.Body.Close()
		return nil, ErrOrderNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiclient.ErrorFromResponse(resp)
	}

	var payload orderInfoResponse
	if err := apiclient.DecodeJSON(resp, &payload); err != nil {
		return nil, err
	}
	return &OrderInfo{
		OrderID:         strconv.FormatInt(payload.OrderID, 10),
		Total:           payload.Total,
		ShippingAddress: payload.Address,
		Status:          payload.Status,
	}, nil
}

type wireAccount struct {
	AccountID   int64   `json:"cuentaId"`
	AccountType string  `json:"tipoCuenta"`
	Balance     float64 `json:"saldo"`
}

type verifyAccountsResponse struct {
	HasAccounts    bool          `json:"tieneCuentas"`
	WithBalance    []wireAccount `json:"cuentasConSaldo"`
	WithoutBalance []wireAccount `json:"cuentasSinSaldo"`
}

// VerifyAccounts lists the customer's accounts partitioned by whether each
// balance covers the order total.
func (s *HTTPService) VerifyAccounts(ctx context.Context, token, orderID string) (*AccountCheck, error) {
	endpoint := path.Join(verifyAccountsEndpoint, url.PathEscape(strings.TrimSpace(orderID)))
	req, err := s.api.NewRequest(ctx, http.MethodGet, endpoint, nil, token)
	if err != nil {
		return nil, err
	}
	resp, err := s.api.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiclient.ErrorFromResponse(resp)
	}

	var payload verifyAccountsResponse
	if err := apiclient.DecodeJSON(resp, &payload); err != nil {
		return nil, err
	}
	return &AccountCheck{
		HasAccounts:    payload.HasAccounts,
		WithBalance:    mapAccounts(payload.WithBalance),
		WithoutBalance: mapAccounts(payload.WithoutBalance),
	}, nil
}

type confirmResponse struct {
	OrderID int64  `json:"idPedido"`
	Message string `json:"mensaje"`
}

// ConfirmPayment settles the pending order from the selected account. The
// confirmation parameters travel as query values, matching the backend
// contract, and every attempt carries an idempotency key.
func (s *HTTPService) ConfirmPayment(ctx context.Context, token, orderID string, payment PaymentRequest) (*PaymentReceipt, error) {
	endpoint := path.Join(confirmEndpoint, url.PathEscape(strings.TrimSpace(orderID)))
	params := url.Values{}
	params.Set("cuentaId", payment.AccountID)
	params.Set("tipoCuenta", payment.AccountType)
	params.Set("clearCart", strconv.FormatBool(payment.ClearCart))

	req, err := s.api.NewRequest(ctx, http.MethodPost, endpoint+"?"+params.Encode(), nil, token)
	if err != nil {
		return nil, err
	}
	req.Header.Set(idempotencyHeader, newIdempotencyKey())

	resp, err := s.api.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiclient.ErrorFromResponse(resp)
	}

	var payload confirmResponse
	if err := apiclient.DecodeJSON(resp, &payload); err != nil {
		return nil, err
	}
	receipt := &PaymentReceipt{Message: payload.Message}
	if payload.OrderID != 0 {
		receipt.OrderID = strconv.FormatInt(payload.OrderID, 10)
	} else {
		receipt.OrderID = strings.TrimSpace(orderID)
	}
	return receipt, nil
}

// CancelOrder abandons a pending order.
func (s *HTTPService) CancelOrder(ctx context.Context, token, orderID string) error {
	endpoint := path.Join(cancelEndpoint, url.PathEscape(strings.TrimSpace(orderID)))
	req, err := s.api.NewRequest(ctx, http.MethodPost, endpoint, nil, token)
	if err != nil {
		return err
	}
	resp, err := s.api.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return apiclient.ErrorFromResponse(resp)
	}
	return nil
}

func mapAccounts(raw []wireAccount) []PaymentAccount {
	accounts := make([]PaymentAccount, 0, len(raw))
	for _, acc := range raw {
		accounts = append(accounts, PaymentAccount{
			AccountID:   strconv.FormatInt(acc.AccountID, 10),
			AccountType: acc.AccountType,
			Balance:     acc.Balance,
		})
	}
	return accounts
}

func newIdempotencyKey() string {
	now := time.Now()
	entropy := ulid.Monotonic(rand.New(rand.NewSource(now.UnixNano())), 0)
	return "pay_" + ulid.MustNew(ulid.Timestamp(now), entropy).String()
}
