package auth

import (
	"context"
	"errors"
	"strings"
)

// Role values recognised by the backend. Historic backends emitted a couple
// of casings for the admin role, all of which must keep working.
const (
	RoleAdmin = "ROLE_ADMIN"
	RoleUser  = "ROLE_USER"
)

// User is the storefront's view of the authenticated customer.
type User struct {
	Cedula    string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Role      string
}

// Credentials carries the login form fields.
type Credentials struct {
	Cedula   string
	Password string
}

// Registration carries the sign-up form fields.
type Registration struct {
	Cedula          string
	Password        string
	ConfirmPassword string
}

// LoginResult bundles the session material returned by the auth backend.
type LoginResult struct {
	Token        string
	RefreshToken string
	User         User
}

// Profile carries the extended fields served by the who-am-I endpoint.
type Profile struct {
	Cedula    string
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// ProfileUpdate is a partial profile edit; empty fields are left untouched.
type ProfileUpdate struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// Service talks to the auth endpoints of the backend.
type Service interface {
	Login(ctx context.Context, creds Credentials) (*LoginResult, error)
	Register(ctx context.Context, reg Registration) (*LoginResult, error)
	UserInfo(ctx context.Context, token string) (*Profile, error)
	UpdateProfile(ctx context.Context, token string, update ProfileUpdate) error
}

// ErrInvalidCredentials is returned for rejected login attempts.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// ValidationError is a client-side rejection raised before any network call.
type ValidationError struct {
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}

func validationErr(message string) error {
	return &ValidationError{Message: message}
}

// ValidateCredentials applies the client-side checks performed before login.
func ValidateCredentials(creds Credentials) error {
	if strings.TrimSpace(creds.Cedula) == "" || creds.Password == "" {
		return validationErr("cedula and password are required")
	}
	return nil
}

// ValidateRegistration applies the client-side checks performed before sign-up.
func ValidateRegistration(reg Registration) error {
	if strings.TrimSpace(reg.Cedula) == "" || reg.Password == "" || reg.ConfirmPassword == "" {
		return validationErr("all fields are required")
	}
	if reg.Password != reg.ConfirmPassword {
		return validationErr("passwords do not match")
	}
	if len(reg.Password) < 6 {
		return validationErr("password must be at least 6 characters")
	}
	if len(DigitsOnly(reg.Cedula)) < 8 {
		return validationErr("cedula must have at least 8 digits")
	}
	return nil
}

// DigitsOnly strips every non-digit rune from the input.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsAdminRole reports whether the role names the admin role, tolerating the
// casings legacy tokens carry.
func IsAdminRole(role string) bool {
	switch strings.TrimSpace(role) {
	case RoleAdmin, "ADMIN", "admin":
		return true
	default:
		return false
	}
}

// IsComplete reports whether every profile field the checkout requires is set.
func (u *User) IsComplete() bool {
	if u == nil {
		return false
	}
	for _, field := range []string{u.FirstName, u.LastName, u.Phone, u.Email} {
		if strings.TrimSpace(field) == "" {
			return false
		}
	}
	return true
}

// FullName joins the name fields for display.
func (u *User) FullName() string {
	if u == nil {
		return ""
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Cedula
	}
	return name
}
