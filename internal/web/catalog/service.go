package catalog

import (
	"context"
	"errors"
	"html/template"
	"strings"
)

// Product is a catalog entry as the backend exposes it.
type Product struct {
	ID              int64
	Name            string
	Description     string
	DescriptionHTML template.HTML
	Price           float64
	Stock           int
	Supplier        string
	CategoryID      int64
	CategoryName    string
	Images          []string
}

// FirstImage returns the primary product image, or a placeholder path.
func (p Product) FirstImage() string {
	for _, img := range p.Images {
		if strings.TrimSpace(img) != "" {
			return img
		}
	}
	return "/public/static/img/product-placeholder.svg"
}

// InStock reports whether the product can be added to a cart.
func (p Product) InStock() bool {
	return p.Stock > 0
}

// StockLabel buckets availability for the product card badge.
func (p Product) StockLabel() string {
	switch {
	case p.Stock <= 0:
		return "out of stock"
	case p.Stock <= 3:
		return "low stock"
	default:
		return "in stock"
	}
}

// Category is a product grouping.
type Category struct {
	ID   int64
	Name string
}

// Page is one page of a product listing.
type Page struct {
	Items      []Product
	Number     int
	Size       int
	TotalPages int
	TotalItems int64
}

// HasPrev reports whether an earlier page exists.
func (p Page) HasPrev() bool { return p.Number > 0 }

// HasNext reports whether a later page exists.
func (p Page) HasNext() bool { return p.Number+1 < p.TotalPages }

// PrevNumber is the zero-based index of the previous page.
func (p Page) PrevNumber() int { return p.Number - 1 }

// NextNumber is the zero-based index of the next page.
func (p Page) NextNumber() int { return p.Number + 1 }

// DisplayNumber is the one-based page number shown to customers.
func (p Page) DisplayNumber() int { return p.Number + 1 }

// Query narrows a paginated listing.
type Query struct {
	Page       int
	Size       int
	Name       string
	CategoryID int64
}

// DefaultPageSize matches the storefront grid.
const DefaultPageSize = 12

// Normalize clamps the paging parameters into their valid ranges.
func (q Query) Normalize() Query {
	if q.Page < 0 {
		q.Page = 0
	}
	if q.Size <= 0 {
		q.Size = DefaultPageSize
	}
	q.Name = strings.TrimSpace(q.Name)
	return q
}

// Service reads the product catalog.
type Service interface {
	ListAll(ctx context.Context) ([]Product, error)
	List(ctx context.Context, q Query) (*Page, error)
	Get(ctx context.Context, id int64) (*Product, error)
	ByCategory(ctx context.Context, categoryID int64) ([]Product, error)
	Categories(ctx context.Context) ([]Category, error)
}

// ErrProductNotFound is returned when the requested product does not exist.
var ErrProductNotFound = errors.New("catalog: product not found")
