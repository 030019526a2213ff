package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
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

func TestHTTPServiceGetNormalizesItems(t *testing.T) {
	svc := newHTTPService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/carrito", r.URL.Path)
		require.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[
			{"idProducto":1,"nombreProducto":"Trail Helmet","precioUnitario":149.90,"cantidad":2,"subtotal":0},
			{"idProducto":7,"nombreProducto":"Chain Lube","precioUnitario":12.75,"cantidad":1}
		]}`))
	}))

	items, err := svc.Get(context.Background(), "token-1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Trail Helmet", items[0].Name)
	assert.InDelta(t, 299.80, items[0].Subtotal, 0.001, "subtotals are recomputed locally")
}

func TestHTTPServiceAddSendsSpanishPayload(t *testing.T) {
	var got map[string]any
	svc := newHTTPService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/carrito/agregar", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"mensaje":"producto agregado"}`))
	}))

	msg, err := svc.Add(context.Background(), "token-1", 7, 3)
	require.NoError(t, err)
	assert.Equal(t, "producto agregado", msg)
	assert.Equal(t, float64(7), got["idProducto"])
	assert.Equal(t, float64(3), got["cantidad"])
}

func TestHTTPServiceUpdateZeroQuantityRemoves(t *testing.T) {
	var gotPath string
	svc := newHTTPService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"mensaje":"producto eliminado"}`))
	}))

	msg, err := svc.UpdateQuantity(context.Background(), "token-1", 7, 0)
	require.NoError(t, err)
	assert.Equal(t, "/carrito/quitar", gotPath)
	assert.Equal(t, "producto eliminado", msg)
}

func TestHTTPServiceInsufficientStock(t *testing.T) {
	svc := newHTTPService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"stock insuficiente"}`, http.StatusConflict)
	}))

	_, err := svc.Add(context.Background(), "token-1", 7, 99)
	require.Error(t, err)
	assert.Equal(t, apiclient.KindInsufficientStock, apiclient.KindOf(err))
}

func TestHTTPServiceCountFailuresCollapseToZero(t *testing.T) {
	svc := newHTTPService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	assert.Equal(t, 0, svc.Count(context.Background(), "token-1"))

	svc = newHTTPService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"cantidad":4}`))
	}))
	assert.Equal(t, 4, svc.Count(context.Background(), "token-1"))
}

func TestHTTPServiceMessageFallback(t *testing.T) {
	svc := newHTTPService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	msg, err := svc.Add(context.Background(), "token-1", 7, 1)
	require.NoError(t, err)
	assert.Equal(t, "product added to cart", msg)
}
