package ui

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"motoshop.store/moto-web/internal/web/catalog"
)

type catalogData struct {
	Page       *catalog.Page
	Categories []catalog.Category
	Query      string
	CategoryID int64
	LoadErr    bool
}

// Catalog renders the paginated product listing with search and category
// filters.
func (h *Handlers) Catalog(w http.ResponseWriter, r *http.Request) {
	st := h.stores(r)

	q := catalog.Query{
		Page:       parseIntParam(r, "page", 0),
		Size:       catalog.DefaultPageSize,
		Name:       strings.TrimSpace(r.URL.Query().Get("q")),
		CategoryID: int64(parseIntParam(r, "category", 0)),
	}

	data := catalogData{Query: q.Name, CategoryID: q.CategoryID}

	listing, err := h.catalog.List(r.Context(), q)
	if err != nil {
		h.log.Warn("catalog: listing failed", zap.Error(err))
		data.LoadErr = true
	} else {
		data.Page = listing
	}

	if categories, err := h.catalog.Categories(r.Context()); err == nil {
		data.Categories = categories
	}

	h.render.Page(w, "catalog", h.newPage(r, st, "Catalog", data))
}

type productData struct {
	Product *catalog.Product
	Related []catalog.Product
}

// Product renders a single product page with related products from the same
// category.
func (h *Handlers) Product(w http.ResponseWriter, r *http.Request) {
	st := h.stores(r)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.NotFound(w, r)
		return
	}

	product, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			http.NotFound(w, r)
			return
		}
		h.log.Warn("catalog: product fetch failed", zap.Int64("product_id", id), zap.Error(err))
		pageData := h.newPage(r, st, "Product", productData{})
		pageData.Error = "the product could not be loaded, try again"
		h.render.Page(w, "product", pageData)
		return
	}

	data := productData{Product: product}
	if related, err := h.catalog.ByCategory(r.Context(), product.CategoryID); err == nil {
		for _, candidate := range related {
			if candidate.ID == product.ID {
				continue
			}
			data.Related = append(data.Related, candidate)
			if len(data.Related) == 4 {
				break
			}
		}
	}

	h.render.Page(w, "product", h.newPage(r, st, product.Name, data))
}

func parseIntParam(r *http.Request, name string, fallback int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
