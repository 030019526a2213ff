package cart

import (
	"context"
	"net/http"

	"motoshop.store/moto-web/internal/web/apiclient"
)

// Cart endpoints keep the backend's legacy Spanish paths.
const (
	cartEndpoint       = "/carrito"
	cartAddEndpoint    = "/carrito/agregar"
	cartUpdateEndpoint = "/carrito/actualizar-cantidad"
	cartRemoveEndpoint = "/carrito/quitar"
	cartCountEndpoint  = "/carrito/count"
)

// HTTPService implements Service backed by the REST cart endpoints.
type HTTPService struct {
	api *apiclient.Client
}

// NewHTTPService constructs a Service over the shared API client.
func NewHTTPService(api *apiclient.Client) *HTTPService {
	return &HTTPService{api: api}
}

type wireItem struct {
	ProductID int64   `json:"idProducto"`
	Name      string  `json:"nombreProducto"`
	UnitPrice float64 `json:"precioUnitario"`
	Quantity  int     `json:"cantidad"`
	Subtotal  float64 `json:"subtotal"`
	ImageURL  string  `json:"imagenUrl"`
}

type cartResponse struct {
	Items []wireItem `json:"items"`
}

type messageResponse struct {
	Message string `json:"mensaje"`
}

type itemPayload struct {
	ProductID int64 `json:"idProducto"`
	Quantity  int   `json:"cantidad,omitempty"`
}

// Get fetches the server cart. The returned items replace local state
// wholesale; subtotals are recomputed on this side of the wire.
func (s *HTTPService) Get(ctx context.Context, token string) ([]Item, error) {
	req, err := s.api.NewRequest(ctx, http.MethodGet, cartEndpoint, nil, token)
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

	var payload cartResponse
	if err := apiclient.DecodeJSON(resp, &payload); err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(payload.Items))
	for _, raw := range payload.Items {
		item := Item{
			ProductID: raw.ProductID,
			Name:      raw.Name,
			UnitPrice: raw.UnitPrice,
			Quantity:  raw.Quantity,
			ImageURL:  raw.ImageURL,
		}
		item.Normalize()
		items = append(items, item)
	}
	return items, nil
}

// Add sends an add request and returns the backend's confirmation message.
func (s *HTTPService) Add(ctx context.Context, token string, productID int64, quantity int) (string, error) {
	return s.mutate(ctx, token, http.MethodPost, cartAddEndpoint, itemPayload{ProductID: productID, Quantity: quantity}, "product added to cart")
}

// UpdateQuantity changes a line's quantity. Zero or negative quantities are a
// removal, not an error.
func (s *HTTPService) UpdateQuantity(ctx context.Context, token string, productID int64, quantity int) (string, error) {
	if quantity <= 0 {
		return s.Remove(ctx, token, productID)
	}
	return s.mutate(ctx, token, http.MethodPatch, cartUpdateEndpoint, itemPayload{ProductID: productID, Quantity: quantity}, "quantity updated")
}

// Remove drops a line from the cart.
func (s *HTTPService) Remove(ctx context.Context, token string, productID int64) (string, error) {
	return s.mutate(ctx, token, http.MethodPost, cartRemoveEndpoint, itemPayload{ProductID: productID}, "product removed from cart")
}

// Clear empties the server-side cart.
func (s *HTTPService) Clear(ctx context.Context, token string) (string, error) {
	req, err := s.api.NewRequest(ctx, http.MethodDelete, cartEndpoint, nil, token)
	if err != nil {
		return "", err
	}
	resp, err := s.api.Do(req)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return "", apiclient.ErrorFromResponse(resp)
	}
	return decodeMessage(resp, "cart cleared"), nil
}

// Count returns the badge counter; failures collapse to zero.
func (s *HTTPService) Count(ctx context.Context, token string) int {
	req, err := s.api.NewRequest(ctx, http.MethodGet, cartCountEndpoint, nil, token)
	if err != nil {
		return 0
	}
	resp, err := s.api.Do(req)
	if err != nil {
		return 0
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return 0
	}
	var payload struct {
		Count int `json:"cantidad"`
	}
	if err := apiclient.DecodeJSON(resp, &payload); err != nil {
		return 0
	}
	return payload.Count
}

func (s *HTTPService) mutate(ctx context.Context, token, method, endpoint string, payload itemPayload, fallback string) (string, error) {
	req, err := s.api.NewJSONRequest(ctx, method, endpoint, payload, token)
	if err != nil {
		return "", err
	}
	resp, err := s.api.Do(req)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", apiclient.ErrorFromResponse(resp)
	}
	return decodeMessage(resp, fallback), nil
}

func decodeMessage(resp *http.Response, fallback string) string {
	var payload messageResponse
	if err := apiclient.DecodeJSON(resp, &payload); err != nil || payload.Message == "" {
		return fallback
	}
	return payload.Message
}
