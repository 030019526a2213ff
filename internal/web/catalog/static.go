package catalog

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"sort"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"

	_ "embed"
)

//go:embed products.yaml
var staticCatalogYAML []byte

type staticFile struct {
	Categories []staticCategory `yaml:"categories"`
	Products   []staticProduct  `yaml:"products"`
}

type staticCategory struct {
	ID   int64  `yaml:"id"`
	Name string `yaml:"name"`
}

type staticProduct struct {
	ID           int64    `yaml:"id"`
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description"`
	Price        float64  `yaml:"price"`
	Stock        int      `yaml:"stock"`
	Supplier     string   `yaml:"supplier"`
	CategoryID   int64    `yaml:"category_id"`
	CategoryName string   `yaml:"category_name"`
	Images       []string `yaml:"images"`
}

var descriptionMarkdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

func newDescriptionPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.RequireNoFollowOnLinks(true)
	return policy
}

// StaticCatalog serves the embedded mock catalog. It backs tests, demo runs
// and the fallback path when the product backend is unreachable.
type StaticCatalog struct {
	mu         sync.RWMutex
	products   []Product
	categories []Category

	// ListErr / GetErr force failures for error-path tests.
	ListErr error
	GetErr  error
}

// NewStaticCatalog parses the embedded catalog data. Descriptions are
// authored in markdown and rendered to sanitized HTML once at load time.
func NewStaticCatalog() (*StaticCatalog, error) {
	var file staticFile
	if err := yaml.Unmarshal(staticCatalogYAML, &file); err != nil {
		return nil, fmt.Errorf("catalog: parse embedded data: %w", err)
	}

	policy := newDescriptionPolicy()
	products := make([]Product, 0, len(file.Products))
	for _, raw := range file.Products {
		html, err := renderDescription(raw.Description, policy)
		if err != nil {
			return nil, fmt.Errorf("catalog: render description for product %d: %w", raw.ID, err)
		}
		products = append(products, Product{
			ID:              raw.ID,
			Name:            raw.Name,
			Description:     strings.TrimSpace(raw.Description),
			DescriptionHTML: html,
			Price:           raw.Price,
			Stock:           raw.Stock,
			Supplier:        raw.Supplier,
			CategoryID:      raw.CategoryID,
			CategoryName:    raw.CategoryName,
			Images:          append([]string(nil), raw.Images...),
		})
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })

	categories := make([]Category, 0, len(file.Categories))
	for _, raw := range file.Categories {
		categories = append(categories, Category{ID: raw.ID, Name: raw.Name})
	}

	return &StaticCatalog{products: products, categories: categories}, nil
}

func renderDescription(markdown string, policy *bluemonday.Policy) (template.HTML, error) {
	var buf bytes.Buffer
	if err := descriptionMarkdown.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return template.HTML(policy.SanitizeBytes(buf.Bytes())), nil
}

// ListAll returns every embedded product.
func (c *StaticCatalog) ListAll(ctx context.Context) ([]Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.ListErr != nil {
		return nil, c.ListErr
	}
	return cloneProducts(c.products), nil
}

// List pages and filters the embedded products in memory.
func (c *StaticCatalog) List(ctx context.Context, q Query) (*Page, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.ListErr != nil {
		return nil, c.ListErr
	}
	q = q.Normalize()

	matched := make([]Product, 0, len(c.products))
	for _, p := range c.products {
		if q.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(q.Name)) {
			continue
		}
		if q.CategoryID != 0 && p.CategoryID != q.CategoryID {
			continue
		}
		matched = append(matched, p)
	}

	total := len(matched)
	totalPages := (total + q.Size - 1) / q.Size
	start := q.Page * q.Size
	if start > total {
		start = total
	}
	end := start + q.Size
	if end > total {
		end = total
	}

	return &Page{
		Items:      cloneProducts(matched[start:end]),
		Number:     q.Page,
		Size:       q.Size,
		TotalPages: totalPages,
		TotalItems: int64(total),
	}, nil
}

// Get returns the embedded product with the given id.
func (c *StaticCatalog) Get(ctx context.Context, id int64) (*Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.GetErr != nil {
		return nil, c.GetErr
	}
	for _, p := range c.products {
		if p.ID == id {
			cp := p
			cp.Images = append([]string(nil), p.Images...)
			return &cp, nil
		}
	}
	return nil, ErrProductNotFound
}

// ByCategory returns the embedded products in one category.
func (c *StaticCatalog) ByCategory(ctx context.Context, categoryID int64) ([]Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.ListErr != nil {
		return nil, c.ListErr
	}
	matched := make([]Product, 0, len(c.products))
	for _, p := range c.products {
		if p.CategoryID == categoryID {
			matched = append(matched, p)
		}
	}
	return cloneProducts(matched), nil
}

// Categories returns the embedded category list.
func (c *StaticCatalog) Categories(ctx context.Context) ([]Category, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Category(nil), c.categories...), nil
}

// SetStock overrides a product's stock, handy for stock-dependent tests.
func (c *StaticCatalog) SetStock(id int64, stock int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.products {
		if c.products[i].ID == id {
			c.products[i].Stock = stock
			return
		}
	}
}

func cloneProducts(in []Product) []Product {
	out := make([]Product, len(in))
	copy(out, in)
	for i := range out {
		out[i].Images = append([]string(nil), in[i].Images...)
	}
	return out
}
