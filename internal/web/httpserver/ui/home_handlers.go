package ui

import (
	"net/http"

	"go.uber.org/zap"

	"motoshop.store/moto-web/internal/web/catalog"
)

const featuredCount = 6

type homeData struct {
	Featured []catalog.Product
	LoadErr  bool
}

// Home renders the landing page with the featured product strip.
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	st := h.stores(r)

	data := homeData{}
	products, err := h.catalog.ListAll(r.Context())
	if err != nil {
		h.log.Warn("home: product listing failed", zap.Error(err))
		data.LoadErr = true
	} else {
		if len(products) > featuredCount {
			products = products[:featuredCount]
		}
		data.Featured = products
	}

	h.render.Page(w, "home", h.newPage(r, st, "Motoshop", data))
}
