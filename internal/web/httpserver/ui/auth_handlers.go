package ui

import (
	"net/http"
	"strings"

	"motoshop.store/moto-web/internal/web/auth"
)

type loginData struct {
	Cedula string
}

// LoginPage renders the sign-in form. Signed-in customers are sent home.
func (h *Handlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	st := h.stores(r)
	if st.auth.State().Authenticated {
		h.redirect(w, r, "/")
		return
	}
	h.render.Page(w, "login", h.newPage(r, st, "Sign in", loginData{}))
}

// Login handles the sign-in form submission.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	st := h.stores(r)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	creds := auth.Credentials{
		Cedula:   strings.TrimSpace(r.PostFormValue("cedula")),
		Password: r.PostFormValue("password"),
	}

	result := st.auth.Login(r.Context(), creds)
	if !result.Success {
		pageData := h.newPage(r, st, "Sign in", loginData{Cedula: creds.Cedula})
		pageData.Error = result.Error
		w.WriteHeader(http.StatusUnprocessableEntity)
		h.render.Page(w, "login", pageData)
		return
	}

	// The fresh bearer token makes the cart load possible now.
	st.cart.Load(r.Context(), false)
	st.sess.AddFlash("success", "welcome back")
	h.redirect(w, r, "/")
}

type registerData struct {
	Cedula string
}

// RegisterPage renders the sign-up form.
func (h *Handlers) RegisterPage(w http.ResponseWriter, r *http.Request) {
	st := h.stores(r)
	if st.auth.State().Authenticated {
		h.redirect(w, r, "/")
		return
	}
	h.render.Page(w, "register", h.newPage(r, st, "Create account", registerData{}))
}

// Register handles the sign-up form submission. A successful registration
// signs the customer in directly.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	st := h.stores(r)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	reg := auth.Registration{
		Cedula:          strings.TrimSpace(r.PostFormValue("cedula")),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirmPassword"),
	}

	result := st.auth.Register(r.Context(), reg)
	if !result.Success {
		pageData := h.newPage(r, st, "Create account", registerData{Cedula: reg.Cedula})
		pageData.Error = result.Error
		w.WriteHeader(http.StatusUnprocessableEntity)
		h.render.Page(w, "register", pageData)
		return
	}

	st.sess.AddFlash("success", "account created, complete your profile before checking out")
	h.redirect(w, r, "/profile")
}

// Logout signs the customer out and drops every piece of session state tied
// to the account, cart mirror included.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	st := h.stores(r)
	st.auth.Logout()
	st.cart.Reset()
	st.checkout.Reset()
	st.persistCheckout()
	st.sess.AddFlash("success", "signed out")
	h.redirect(w, r, "/")
}
