package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"motoshop.store/moto-web/internal/web/apiclient"
)

// Catalog endpoints keep the backend's legacy Spanish paths.
const (
	productsAllEndpoint = "/productos/todos"
	productsEndpoint    = "/productos"
	categoriesEndpoint  = "/categorias"
	productByIDFormat   = "/productos/%d"
	productsByCatFormat = "/categorias/%d/productos"
)

// HTTPService implements Service backed by the REST product endpoints.
// Catalog reads are public, so no bearer token is sent.
type HTTPService struct {
	api *apiclient.Client
}

// NewHTTPService constructs a Service over the shared API client.
func NewHTTPService(api *apiclient.Client) *HTTPService {
	return &HTTPService{api: api}
}

type wireProduct struct {
	ID           int64    `json:"idProducto"`
	Name         string   `json:"prodNombre"`
	Description  string   `json:"prodDescripcion"`
	Price        float64  `json:"prodPrecio"`
	Stock        int      `json:"prodStock"`
	Supplier     string   `json:"prodProveedor"`
	CategoryID   int64    `json:"idCategoria"`
	CategoryName string   `json:"categoriaNombre"`
	Images       []string `json:"imagenesUrl"`
}

func (w wireProduct) toProduct() Product {
	return Product{
		ID:           w.ID,
		Name:         w.Name,
		Description:  w.Description,
		Price:        w.Price,
		Stock:        w.Stock,
		Supplier:     w.Supplier,
		CategoryID:   w.CategoryID,
		CategoryName: w.CategoryName,
		Images:       append([]string(nil), w.Images...),
	}
}

type wireCategory struct {
	ID   int64  `json:"idCategoria"`
	Name string `json:"categoriaNombre"`
}

// wirePage mirrors the Spring Data page envelope the backend serves.
type wirePage struct {
	Content       []wireProduct `json:"content"`
	Number        int           `json:"number"`
	Size          int           `json:"size"`
	TotalPages    int           `json:"totalPages"`
	TotalElements int64         `json:"totalElements"`
}

// ListAll fetches the full catalog in one shot, used by the home page.
func (s *HTTPService) ListAll(ctx context.Context) ([]Product, error) {
	req, err := s.api.NewRequest(ctx, http.MethodGet, productsAllEndpoint, nil, "")
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

	var payload []wireProduct
	if err := apiclient.DecodeJSON(resp, &payload); err != nil {
		return nil, err
	}
	return toProducts(payload), nil
}

// List fetches one page of products, optionally filtered by name.
func (s *HTTPService) List(ctx context.Context, q Query) (*Page, error) {
	q = q.Normalize()

	params := url.Values{}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("size", strconv.Itoa(q.Size))
	if q.Name != "" {
		params.Set("nombre", q.Name)
	}

	req, err := s.api.NewRequest(ctx, http.MethodGet, productsEndpoint+"?"+params.Encode(), nil, "")
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

	var payload wirePage
	if err := apiclient.DecodeJSON(resp, &payload); err != nil {
		return nil, err
	}
	return &Page{
		Items:      toProducts(payload.Content),
		Number:     payload.Number,
		Size:       payload.Size,
		TotalPages: payload.TotalPages,
		TotalItems: payload.TotalElements,
	}, nil
}

// Get fetches a single product by id.
func (s *HTTPService) Get(ctx context.Context, id int64) (*Product, error) {
	req, err := s.api.NewRequest(ctx, http.MethodGet, fmt.Sprintf(productByIDFormat, id), nil, "")
	if err != nil {
		return nil, err
	}
	resp, err := s.api.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		_ = resp.Body.Close()
		return nil, ErrProductNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiclient.ErrorFromResponse(resp)
	}

	var payload wireProduct
	if err := apiclient.DecodeJSON(resp, &payload); err != nil {
		return nil, err
	}
	product := payload.toProduct()
	return &product, nil
}

// ByCategory fetches all products in one category.
func (s *HTTPService) ByCategory(ctx context.Context, categoryID int64) ([]Product, error) {
	req, err := s.api.NewRequest(ctx, http.MethodGet, fmt.Sprintf(productsByCatFormat, categoryID), nil, "")
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

	var payload []wireProduct
	if err := apiclient.DecodeJSON(resp, &payload); err != nil {
		return nil, err
	}
	return toProducts(payload), nil
}

// Categories fetches the category list used by the catalog filter bar.
func (s *HTTPService) Categories(ctx context.Context) ([]Category, error) {
	req, err := s.api.NewRequest(ctx, http.MethodGet, categoriesEndpoint, nil, "")
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

	var payload []wireCategory
	if err := apiclient.DecodeJSON(resp, &payload); err != nil {
		return nil, err
	}
	categories := make([]Category, 0, len(payload))
	for _, raw := range payload {
		categories = append(categories, Category{ID: raw.ID, Name: raw.Name})
	}
	return categories, nil
}

func toProducts(raw []wireProduct) []Product {
	products := make([]Product, 0, len(raw))
	for _, w := range raw {
		products = append(products, w.toProduct())
	}
	return products
}
