package ui

import (
	"time"

	"motoshop.store/moto-web/internal/web/auth"
	"motoshop.store/moto-web/internal/web/cart"
	"motoshop.store/moto-web/internal/web/session"
)

// sessionPersister writes auth store credentials through to the cookie
// session, the way the previous frontend wrote its fixed localStorage keys.
type sessionPersister struct {
	sess *session.Session
}

func (p *sessionPersister) SaveCredentials(token, refresh string, user *auth.User, profileComplete bool) {
	p.sess.SetTokens(token, refresh)
	p.sess.SetUser(authUserToSession(user))
	p.sess.SetProfileComplete(profileComplete)
}

func (p *sessionPersister) ClearCredentials() {
	p.sess.ClearCredentials()
}

// sessionMirror keeps the last known server cart in the session cookie, the
// fallback read when the backend is unreachable.
type sessionMirror struct {
	sess *session.Session
}

func (m *sessionMirror) Write(items []cart.Item, opID string, at time.Time) {
	backup := &session.CartBackup{
		Items:     make([]session.CartItem, 0, len(items)),
		Total:     cart.Total(items),
		ItemCount: cart.ItemCount(items),
		OpID:      opID,
		Timestamp: at,
	}
	for _, item := range items {
		backup.Items = append(backup.Items, session.CartItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal,
			ImageURL:  item.ImageURL,
		})
	}
	m.sess.SetCartBackup(backup)
}

func (m *sessionMirror) Read() []cart.Item {
	backup := m.sess.CartBackup()
	if backup == nil {
		return nil
	}
	return backupItems(backup)
}

func (m *sessionMirror) Clear() {
	m.sess.SetCartBackup(nil)
}

func backupItems(backup *session.CartBackup) []cart.Item {
	items := make([]cart.Item, 0, len(backup.Items))
	for _, raw := range backup.Items {
		item := cart.Item{
			ProductID: raw.ProductID,
			Name:      raw.Name,
			UnitPrice: raw.UnitPrice,
			Quantity:  raw.Quantity,
			ImageURL:  raw.ImageURL,
		}
		item.Normalize()
		items = append(items, item)
	}
	return items
}

func authUserToSession(user *auth.User) *session.User {
	if user == nil {
		return nil
	}
	return &session.User{
		Cedula:    user.Cedula,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Phone:     user.Phone,
		Role:      user.Role,
	}
}

func sessionUserToAuth(user *session.User) *auth.User {
	if user == nil {
		return nil
	}
	return &auth.User{
		Cedula:    user.Cedula,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Phone:     user.Phone,
		Role:      user.Role,
	}
}
