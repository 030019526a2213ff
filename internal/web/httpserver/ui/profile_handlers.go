package ui

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"motoshop.store/moto-web/internal/web/apiclient"
	"motoshop.store/moto-web/internal/web/auth"
)

type profileData struct {
	User            *auth.User
	ProfileComplete bool
}

// ProfilePage renders the account page, refreshing the profile from the
// backend when possible. A failed refresh serves the cached record.
func (h *Handlers) ProfilePage(w http.ResponseWriter, r *http.Request) {
	st := h.stores(r)

	st.auth.Enrich(r.Context())

	state := st.auth.State()
	data := profileData{User: state.User, ProfileComplete: st.auth.IsProfileComplete()}
	h.render.Page(w, "profile", h.newPage(r, st, "Your account", data))
}

// ProfileUpdate handles the profile edit form.
func (h *Handlers) ProfileUpdate(w http.ResponseWriter, r *http.Request) {
	st := h.stores(r)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	update := auth.ProfileUpdate{
		FirstName: strings.TrimSpace(r.PostFormValue("firstName")),
		LastName:  strings.TrimSpace(r.PostFormValue("lastName")),
		Email:     strings.TrimSpace(r.PostFormValue("email")),
		Phone:     strings.TrimSpace(r.PostFormValue("phone")),
	}

	token := st.auth.State().Token
	if err := h.auth.UpdateProfile(r.Context(), token, update); err != nil {
		if apiclient.IsUnauthorized(err) {
			h.expireSession(w, r, st)
			return
		}
		h.log.Warn("profile: update failed", zap.Error(err))
		st.sess.AddFlash("error", "the profile could not be saved, try again")
		h.redirect(w, r, "/profile")
		return
	}

	result := st.auth.UpdateUser(update)
	if !result.Success {
		st.sess.AddFlash("error", result.Error)
		h.redirect(w, r, "/profile")
		return
	}

	st.sess.AddFlash("success", "profile saved")
	h.redirect(w, r, "/profile")
}
