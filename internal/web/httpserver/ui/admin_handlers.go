package ui

import (
	"net/http"

	"go.uber.org/zap"

	"motoshop.store/moto-web/internal/web/catalog"
)

type inventoryData struct {
	Products []catalog.Product
	LoadErr  bool
}

// InventoryPage is the staff stock overview: every product with its current
// stock level, unpaged.
func (h *Handlers) InventoryPage(w http.ResponseWriter, r *http.Request) {
	st := h.stores(r)

	var data inventoryData
	products, err := h.catalog.ListAll(r.Context())
	if err != nil {
		h.log.Warn("inventory: listing failed", zap.Error(err))
		data.LoadErr = true
	} else {
		data.Products = products
	}

	h.render.Page(w, "inventory", h.newPage(r, st, "Inventory", data))
}
