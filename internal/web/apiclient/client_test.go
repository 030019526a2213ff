package apiclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequest_BearerInjection(t *testing.T) {
	client, err := New("https://api.example.com/api/v1", nil)
	require.NoError(t, err)

	req, err := client.NewRequest(context.Background(), http.MethodGet, "/carrito", nil, "tok-123")
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-123", req.Header.Get("Authorization"))
	assert.Equal(t, "application/json", req.Header.Get("Accept"))
	assert.Contains(t, req.URL.String(), "/carrito")
}

func TestNewRequest_NoTokenNoHeader(t *testing.T) {
	client, err := New("https://api.example.com", nil)
	require.NoError(t, err)

	req, err := client.NewRequest(context.Background(), http.MethodGet, "/productos/todos", nil, "")
	require.NoError(t, err)

	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestResolve_KeepsQueryString(t *testing.T) {
	client, err := New("https://api.example.com", nil)
	require.NoError(t, err)

	cases := []struct {
		endpoint string
		want     string
	}{
		{"/productos?page=1&size=12&nombre=yamaha", "https://api.example.com/productos?page=1&size=12&nombre=yamaha"},
		{"/proceso-pago/confirmar-pago/1001?cuentaId=901&clearCart=true", "https://api.example.com/proceso-pago/confirmar-pago/1001?cuentaId=901&clearCart=true"},
		{"/carrito", "https://api.example.com/carrito"},
		{"", "https://api.example.com"},
		{"https://other.example.com/x?y=1", "https://other.example.com/x?y=1"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, client.Resolve(tc.endpoint), "endpoint %q", tc.endpoint)
	}
}

func TestErrorFromResponse_Classification(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		kind   Kind
		msg    string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":"token invalido"}`, KindUnauthorized, "token invalido"},
		{"not found", http.StatusNotFound, `{"error":"no existe"}`, KindNotFound, "no existe"},
		{"stock conflict", http.StatusConflict, `{"mensaje":"stock insuficiente"}`, KindInsufficientStock, "stock insuficiente"},
		{"server error", http.StatusInternalServerError, ``, KindServer, "Internal Server Error"},
		{"bad gateway", http.StatusBadGateway, ``, KindServer, "Bad Gateway"},
		{"other", http.StatusBadRequest, `{"error":"datos invalidos"}`, KindGeneric, "datos invalidos"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := &http.Response{
				StatusCode: tc.status,
				Body:       io.NopCloser(strings.NewReader(tc.body)),
			}
			err := ErrorFromResponse(resp)
			require.Error(t, err)

			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tc.kind, apiErr.Kind)
			assert.Equal(t, tc.status, apiErr.Status)
			assert.Equal(t, tc.msg, apiErr.Message)
		})
	}
}

func TestDo_TransportFailureIsNetworkKind(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close() // guarantee a connection refusal

	client, err := New(base, &http.Client{})
	require.NoError(t, err)

	req, err := client.NewRequest(context.Background(), http.MethodGet, "/carrito", nil, "tok")
	require.NoError(t, err)

	_, err = client.Do(req)
	require.Error(t, err)
	assert.Equal(t, KindNetwork, KindOf(err))
}

func TestKindOf_UnknownErrorIsGeneric(t *testing.T) {
	assert.Equal(t, KindGeneric, KindOf(errors.New("plain")))
}

func TestMessageOf(t *testing.T) {
	err := &Error{Kind: KindInsufficientStock, Message: "stock insuficiente"}
	assert.Equal(t, "stock insuficiente", MessageOf(err, "fallback"))
	assert.Equal(t, "fallback", MessageOf(errors.New("plain"), "fallback"))
	assert.Equal(t, "fallback", MessageOf(nil, "fallback"))
}

func TestIsUnauthorized(t *testing.T) {
	assert.True(t, IsUnauthorized(&Error{Kind: KindUnauthorized}))
	assert.False(t, IsUnauthorized(&Error{Kind: KindServer}))
	assert.False(t, IsUnauthorized(nil))
}
