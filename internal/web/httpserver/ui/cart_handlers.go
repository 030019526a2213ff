package ui

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"motoshop.store/moto-web/internal/web/apiclient"
	"motoshop.store/moto-web/internal/web/cart"
	custommw "motoshop.store/moto-web/internal/web/httpserver/middleware"
)

type cartData struct {
	Cart    cart.State
	LoadErr string
}

// CartPage renders the cart, loading it fresh from the server. A failed load
// serves the session mirror with a retry panel.
func (h *Handlers) CartPage(w http.ResponseWriter, r *http.Request) {
	st := h.stores(r)

	result := st.cart.Load(r.Context(), true)
	if result.Kind == apiclient.KindUnauthorized {
		h.expireSession(w, r, st)
		return
	}
	data := cartData{Cart: st.cart.State()}
	if !result.Success {
		data.LoadErr = result.Error
	}

	h.render.Page(w, "cart", h.newPage(r, st, "Your cart", data))
}

// CartAdd handles the add-to-cart form on product pages.
func (h *Handlers) CartAdd(w http.ResponseWriter, r *http.Request) {
	st := h.stores(r)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	productID, err := strconv.ParseInt(r.PostFormValue("productId"), 10, 64)
	if err != nil || productID <= 0 {
		http.Error(w, "bad product id", http.StatusBadRequest)
		return
	}
	quantity, _ := strconv.Atoi(r.PostFormValue("quantity"))

	result := st.cart.AddItem(r.Context(), productID, quantity)
	if !result.Success {
		if result.Kind == apiclient.KindUnauthorized {
			h.expireSession(w, r, st)
			return
		}
		st.sess.AddFlash("error", result.Error)
	} else {
		st.sess.AddFlash("success", "added to your cart")
	}

	if custommw.IsHTMXRequest(r.Context()) {
		h.renderCartFragment(w, r, st)
		return
	}
	h.redirect(w, r, backTo(r, "/catalog"))
}

// CartUpdate changes a line's quantity. Quantity zero removes the line.
func (h *Handlers) CartUpdate(w http.ResponseWriter, r *http.Request) {
	st := h.stores(r)

	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || productID <= 0 {
		http.Error(w, "bad product id", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	quantity, err := strconv.Atoi(r.PostFormValue("quantity"))
	if err != nil {
		http.Error(w, "bad quantity", http.StatusBadRequest)
		return
	}

	result := st.cart.UpdateQuantity(r.Context(), productID, quantity)
	if result.Kind == apiclient.KindUnauthorized {
		h.expireSession(w, r, st)
		return
	}
	if !result.Success && result.Error != "" {
		st.sess.AddFlash("error", result.Error)
	}

	if custommw.IsHTMXRequest(r.Context()) {
		h.renderCartFragment(w, r, st)
		return
	}
	h.redirect(w, r, "/cart")
}

// CartRemove drops a line from the cart.
func (h *Handlers) CartRemove(w http.ResponseWriter, r *http.Request) {
	st := h.stores(r)

	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || productID <= 0 {
		http.Error(w, "bad product id", http.StatusBadRequest)
		return
	}

	result := st.cart.RemoveItem(r.Context(), productID)
	if result.Kind == apiclient.KindUnauthorized {
		h.expireSession(w, r, st)
		return
	}
	if !result.Success && result.Error != "" {
		st.sess.AddFlash("error", result.Error)
	}

	if custommw.IsHTMXRequest(r.Context()) {
		h.renderCartFragment(w, r, st)
		return
	}
	h.redirect(w, r, "/cart")
}

// CartClear empties the cart.
func (h *Handlers) CartClear(w http.ResponseWriter, r *http.Request) {
	st := h.stores(r)

	result := st.cart.Clear(r.Context())
	if result.Kind == apiclient.KindUnauthorized {
		h.expireSession(w, r, st)
		return
	}
	if !result.Success && result.Error != "" {
		st.sess.AddFlash("error", result.Error)
	}

	if custommw.IsHTMXRequest(r.Context()) {
		h.renderCartFragment(w, r, st)
		return
	}
	h.redirect(w, r, "/cart")
}

// CartBadge renders the navbar cart counter fragment. The counter endpoint is
// much cheaper than a full cart load, so the badge polls that instead.
func (h *Handlers) CartBadge(w http.ResponseWriter, r *http.Request) {
	st := h.stores(r)
	data := h.newPage(r, st, "", nil)
	if authState := st.auth.State(); authState.Authenticated {
		data.CartCount = h.cart.Count(r.Context(), authState.Token)
	}
	h.render.Fragment(w, "cart_badge", data)
}

func (h *Handlers) renderCartFragment(w http.ResponseWriter, r *http.Request, st *stores) {
	data := cartData{Cart: st.cart.State()}
	pageData := h.newPage(r, st, "", data)
	h.render.Fragment(w, "cart_table", pageData)
}

// backTo returns the submitted return path if it is a local one.
func backTo(r *http.Request, fallback string) string {
	target := r.PostFormValue("back")
	if target == "" || target[0] != '/' || len(target) > 1 && target[1] == '/' {
		return fallback
	}
	return target
}
