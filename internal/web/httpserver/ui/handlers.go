package ui

import (
	"net/http"

	"go.uber.org/zap"

	"motoshop.store/moto-web/internal/web/auth"
	"motoshop.store/moto-web/internal/web/cart"
	"motoshop.store/moto-web/internal/web/catalog"
	"motoshop.store/moto-web/internal/web/checkout"
	custommw "motoshop.store/moto-web/internal/web/httpserver/middleware"
	"motoshop.store/moto-web/internal/web/session"
)

// Handlers bundles the storefront page handlers and their collaborators.
type Handlers struct {
	auth     auth.Service
	cart     cart.Service
	checkout checkout.Service
	catalog  catalog.Service
	render   *Renderer
	log      *zap.Logger
}

// NewHandlers wires the page handlers.
func NewHandlers(authSvc auth.Service, cartSvc cart.Service, checkoutSvc checkout.Service, catalogSvc catalog.Service, render *Renderer, log *zap.Logger) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handlers{
		auth:     authSvc,
		cart:     cartSvc,
		checkout: checkoutSvc,
		catalog:  catalogSvc,
		render:   render,
		log:      log,
	}
}

// stores is the per-request state assembly. Each request rebuilds the three
// stores from the cookie session, runs its operations, and snapshots the
// results back before the session middleware saves the cookie.
type stores struct {
	sess     *session.Session
	auth     *auth.Store
	cart     *cart.Store
	checkout *checkout.Store
}

func (h *Handlers) stores(r *http.Request) *stores {
	sess, ok := custommw.SessionFromContext(r.Context())
	if !ok {
		sess = &session.Session{}
	}

	authStore := auth.NewStore(h.auth, &sessionPersister{sess: sess}, h.log)
	authStore.Restore(sess.Token(), sess.RefreshToken(), sessionUserToAuth(sess.User()))

	authed := func() (string, bool) {
		state := authStore.State()
		return state.Token, state.Authenticated
	}

	cartStore := cart.NewStore(h.cart, &sessionMirror{sess: sess}, authed, h.log)
	if backup := sess.CartBackup(); backup != nil {
		cartStore.Restore(backupItems(backup), backup.Timestamp)
	}

	checkoutStore := checkout.NewStore(h.checkout, authed, h.log)
	checkoutStore.Restore(sess.Checkout())

	return &stores{sess: sess, auth: authStore, cart: cartStore, checkout: checkoutStore}
}

// persistCheckout writes the wizard state back into the session.
func (s *stores) persistCheckout() {
	s.sess.SetCheckout(s.checkout.Snapshot())
}

// page is the view model every template receives.
type page struct {
	Title         string
	Authenticated bool
	IsAdmin       bool
	UserName      string
	CartCount     int
	CSRFToken     string
	Flashes       []session.Flash
	Error         string
	Data          any
}

func (h *Handlers) newPage(r *http.Request, st *stores, title string, data any) page {
	authState := st.auth.State()
	name := ""
	if authState.User != nil {
		name = authState.User.FullName()
	}
	return page{
		Title:         title,
		Authenticated: authState.Authenticated,
		IsAdmin:       st.auth.IsAdmin(),
		UserName:      name,
		CartCount:     st.cart.State().ItemCount,
		CSRFToken:     custommw.CSRFTokenFromContext(r.Context()),
		Flashes:       st.sess.ConsumeFlashes(),
		Data:          data,
	}
}

// expireSession handles an unauthorized answer from the backend: the whole
// session is wiped and the customer lands back on the home page.
func (h *Handlers) expireSession(w http.ResponseWriter, r *http.Request, st *stores) {
	st.auth.Logout()
	st.cart.Reset()
	st.checkout.Reset()
	st.persistCheckout()
	st.sess.AddFlash("warning", "your session expired, please sign in again")
	h.redirect(w, r, "/")
}

func (h *Handlers) redirect(w http.ResponseWriter, r *http.Request, target string) {
	if custommw.IsHTMXRequest(r.Context()) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
