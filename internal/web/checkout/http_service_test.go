package checkout

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"motoshop.store/moto-web/internal/web/apiclient"
)

func newHTTPService(t *testing.T, handler http.Handler) *HTTPService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	api, err := apiclient.New(srv.URL, srv.Client())
	require.NoError(t, err)
	return NewHTTPService(api)
}

func TestHTTPServiceVerifyAccountsPartition(t *testing.T) {
	svc := newHTTPService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/proceso-pago/verificar-cuentas/1001", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"tieneCuentas": true,
			"cuentasConSaldo": [{"cuentaId":901,"tipoCuenta":"AHORROS","saldo":5000}],
			"cuentasSinSaldo": [{"cuentaId":902,"tipoCuenta":"CORRIENTE","saldo":3.5}]
		}`))
	}))

	check, err := svc.VerifyAccounts(context.Background(), "token-1", "1001")
	require.NoError(t, err)
	assert.True(t, check.HasAccounts)
	require.Len(t, check.WithBalance, 1)
	assert.Equal(t, PaymentAccount{AccountID: "901", AccountType: "AHORROS", Balance: 5000}, check.WithBalance[0])
	require.Len(t, check.WithoutBalance, 1)
	assert.Equal(t, "902", check.WithoutBalance[0].AccountID)
}

func TestHTTPServiceConfirmPaymentWire(t *testing.T) {
	var gotQuery string
	var gotKey string
	svc := newHTTPService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/proceso-pago/confirmar-pago/1001", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		gotQuery = r.URL.RawQuery
		gotKey = r.Header.Get("Idempotency-Key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"idPedido":1001,"mensaje":"pago confirmado"}`))
	}))

	receipt, err := svc.ConfirmPayment(context.Background(), "token-1", "1001", PaymentRequest{
		AccountID:   "901",
		AccountType: "AHORROS",
		ClearCart:   true,
	})
	require.NoError(t, err)

	assert.Contains(t, gotQuery, "cuentaId=901")
	assert.Contains(t, gotQuery, "tipoCuenta=AHORROS")
	assert.Contains(t, gotQuery, "clearCart=true")
	assert.True(t, strings.HasPrefix(gotKey, "pay_"), "idempotency key %q", gotKey)
	assert.Equal(t, "1001", receipt.OrderID)
	assert.Equal(t, "pago confirmado", receipt.Message)
}

func TestHTTPServiceOrderInfoNotFound(t *testing.T) {
	svc := newHTTPService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"pedido no encontrado"}`, http.StatusNotFound)
	}))

	_, err := svc.OrderInfo(context.Background(), "token-1", "9999")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestHTTPServiceCreatePendingOrder(t *testing.T) {
	svc := newHTTPService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/proceso-pago/crear-pedido-pendiente", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"idPedido":1002,"total":202.15}`))
	}))

	order, err := svc.CreatePendingOrder(context.Background(), "token-1", "Calle 45 #12-34, Bogota")
	require.NoError(t, err)
	assert.Equal(t, "1002", order.OrderID)
	assert.Equal(t, 202.15, order.Total)
}
