package session

import "time"

// ID returns the stable session identifier.
func (s *Session) ID() string {
	return s.data.ID
}

// CreatedAt returns the session creation timestamp.
func (s *Session) CreatedAt() time.Time {
	return s.data.CreatedAt
}

// Token returns the persisted bearer token.
func (s *Session) Token() string {
	return s.data.Token
}

// RefreshToken returns the persisted refresh token.
func (s *Session) RefreshToken() string {
	return s.data.RefreshToken
}

// SetTokens updates the persisted token pair.
func (s *Session) SetTokens(token, refresh string) {
	if s.data.Token == token && s.data.RefreshToken == refresh {
		return
	}
	s.data.Token = token
	s.data.RefreshToken = refresh
	s.dirty = true
}

// User returns the persisted profile record, if present.
func (s *Session) User() *User {
	return s.data.User
}

// SetUser replaces the persisted profile record.
func (s *Session) SetUser(user *User) {
	if user == nil {
		if s.data.User == nil {
			return
		}
		s.data.User = nil
		s.dirty = true
		return
	}
	copied := *user
	s.data.User = &copied
	s.dirty = true
}

// ProfileComplete returns the persisted completeness flag.
func (s *Session) ProfileComplete() bool {
	return s.data.ProfileComplete
}

// SetProfileComplete updates the persisted completeness flag.
func (s *Session) SetProfileComplete(complete bool) {
	if s.data.ProfileComplete == complete {
		return
	}
	s.data.ProfileComplete = complete
	s.dirty = true
}

// CartBackup returns the persisted cart mirror, if any.
func (s *Session) CartBackup() *CartBackup {
	return s.data.Cart
}

// SetCartBackup replaces the persisted cart mirror.
func (s *Session) SetCartBackup(backup *CartBackup) {
	if backup == nil {
		if s.data.Cart == nil {
			return
		}
		s.data.Cart = nil
		s.dirty = true
		return
	}
	copied := *backup
	copied.Items = append([]CartItem(nil), backup.Items...)
	s.data.Cart = &copied
	s.dirty = true
}

// Checkout returns the persisted wizard snapshot, if any.
func (s *Session) Checkout() *CheckoutSnapshot {
	return s.data.Checkout
}

// SetCheckout replaces the persisted wizard snapshot.
func (s *Session) SetCheckout(snap *CheckoutSnapshot) {
	if snap == nil {
		if s.data.Checkout == nil {
			return
		}
		s.data.Checkout = nil
		s.dirty = true
		return
	}
	copied := *snap
	s.data.Checkout = &copied
	s.dirty = true
}

// EnsureCSRFToken returns the existing CSRF token or generates a new one on demand.
func (s *Session) EnsureCSRFToken() (string, error) {
	if s.data.CSRFToken != "" {
		return s.data.CSRFToken, nil
	}
	token, err := generateToken(32)
	if err != nil {
		return "", err
	}
	s.data.CSRFToken = token
	s.dirty = true
	return token, nil
}

// CSRFToken returns the stored CSRF token value.
func (s *Session) CSRFToken() string {
	return s.data.CSRFToken
}

// AddFlash queues a one-shot notification for the next rendered page.
func (s *Session) AddFlash(kind, message string) {
	if message == "" {
		return
	}
	s.data.Flashes = append(s.data.Flashes, Flash{Kind: kind, Message: message})
	s.dirty = true
}

// ConsumeFlashes returns and clears queued notifications.
func (s *Session) ConsumeFlashes() []Flash {
	if len(s.data.Flashes) == 0 {
		return nil
	}
	flashes := s.data.Flashes
	s.data.Flashes = nil
	s.dirty = true
	return flashes
}

// ClearCredentials wipes the persisted auth state and cart mirror, the global
// reaction to a 401 from any backend call.
func (s *Session) ClearCredentials() {
	if s.data.Token == "" && s.data.RefreshToken == "" && s.data.User == nil &&
		s.data.Cart == nil && s.data.Checkout == nil && !s.data.ProfileComplete {
		return
	}
	s.data.Token = ""
	s.data.RefreshToken = ""
	s.data.User = nil
	s.data.ProfileComplete = false
	s.data.Cart = nil
	s.data.Checkout = nil
	s.dirty = true
}

// Destroy marks the session for deletion at the end of the request.
func (s *Session) Destroy() {
	s.destroyed = true
	s.dirty = true
}

// Destroyed exposes the destroy marker.
func (s *Session) Destroyed() bool {
	return s.destroyed
}

// Touch updates the last active timestamp.
func (s *Session) Touch(now time.Time) {
	now = now.UTC()
	if now.After(s.data.LastActive) {
		s.data.LastActive = now
		s.dirty = true
	}
}

// Dirty indicates whether the session contents have changed during this request.
func (s *Session) Dirty() bool {
	return s.dirty
}
