package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"motoshop.store/moto-web/internal/web/apiclient"
)

// Backend endpoints. The auth surface keeps the legacy Spanish paths.
const (
	loginEndpoint    = "/auth/login"
	registerEndpoint = "/usuarios/registro"
	userInfoEndpoint = "/auth/user-info"
	updateEndpoint   = "/usuarios/actualizar"
)

// HTTPService implements Service backed by the REST auth endpoints.
type HTTPService struct {
	api *apiclient.Client
}

// NewHTTPService constructs a Service over the shared API client.
func NewHTTPService(api *apiclient.Client) *HTTPService {
	return &HTTPService{api: api}
}

type loginPayload struct {
	Cedula   string `json:"cedula"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	Role         string `json:"role"`
}

// Login authenticates the customer and returns the issued session material.
func (s *HTTPService) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	if err := ValidateCredentials(creds); err != nil {
		return nil, err
	}

	body := loginPayload{Cedula: strings.TrimSpace(creds.Cedula), Password: creds.Password}
	req, err := s.api.NewJSONRequest(ctx, http.MethodPost, loginEndpoint, body, "")
	if err != nil {
		return nil, err
	}
	resp, err := s.api.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		_ = resp.Body.Close()
		return nil, ErrInvalidCredentials
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiclient.ErrorFromResponse(resp)
	}

	var payload loginResponse
	if err := apiclient.DecodeJSON(resp, &payload); err != nil {
		return nil, err
	}
	if payload.Token == "" {
		return nil, fmt.Errorf("auth: login response carried no token")
	}

	role := payload.Role
	if role == "" {
		role = RoleUser
	}
	return &LoginResult{
		Token:        payload.Token,
		RefreshToken: payload.RefreshToken,
		User: User{
			Cedula: strings.TrimSpace(creds.Cedula),
			Role:   role,
		},
	}, nil
}

type registerResponse struct {
	Estado  string `json:"estado"`
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

// Register creates the account and, when the backend answers with a
// message-only success, logs the new customer in.
func (s *HTTPService) Register(ctx context.Context, reg Registration) (*LoginResult, error) {
	if err := ValidateRegistration(reg); err != nil {
		return nil, err
	}

	cedula := DigitsOnly(reg.Cedula)
	body := loginPayload{Cedula: cedula, Password: reg.Password}
	req, err := s.api.NewJSONRequest(ctx, http.MethodPost, registerEndpoint, body, "")
	if err != nil {
		return nil, err
	}
	resp, err := s.api.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, apiclient.ErrorFromResponse(resp)
	}

	var payload registerResponse
	if err := apiclient.DecodeJSON(resp, &payload); err != nil {
		return nil, err
	}

	// Registration usually returns only a status message; complete the flow
	// with an immediate login.
	if payload.Token == "" {
		return s.Login(ctx, Credentials{Cedula: cedula, Password: reg.Password})
	}
	return &LoginResult{
		Token: payload.Token,
		User:  User{Cedula: cedula, Role: RoleUser},
	}, nil
}

type userInfoResponse struct {
	Cedula    string `json:"cedula"`
	FirstName string `json:"cliNombre"`
	LastName  string `json:"cliApellido"`
	Email     string `json:"cliCorreo"`
	Phone     string `json:"cliTelefono"`
}

// UserInfo fetches the extended profile fields for the token's owner.
func (s *HTTPService) UserInfo(ctx context.Context, token string) (*Profile, error) {
	req, err := s.api.NewRequest(ctx, http.MethodGet, userInfoEndpoint, nil, token)
	if err != nil {
		return nil, err
	}
	resp, err := s.api.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiclient.ErrorFromResponse(resp)
	}

	var payload userInfoResponse
	if err := apiclient.DecodeJSON(resp, &payload); err != nil {
		return nil, err
	}
	return &Profile{
		Cedula:    payload.Cedula,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Email:     payload.Email,
		Phone:     payload.Phone,
	}, nil
}

type updatePayload struct {
	FirstName string `json:"cliNombre,omitempty"`
	LastName  string `json:"cliApellido,omitempty"`
	Email     string `json:"cliCorreo,omitempty"`
	Phone     string `json:"cliTelefono,omitempty"`
}

// UpdateProfile pushes a partial profile edit to the backend.
func (s *HTTPService) UpdateProfile(ctx context.Context, token string, update ProfileUpdate) error {
	body := updatePayload{
		FirstName: strings.TrimSpace(update.FirstName),
		LastName:  strings.TrimSpace(update.LastName),
		Email:     strings.TrimSpace(update.Email),
		Phone:     strings.TrimSpace(update.Phone),
	}
	req, err := s.api.NewJSONRequest(ctx, http.MethodPut, updateEndpoint, body, token)
	if err != nil {
		return err
	}
	resp, err := s.api.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return apiclient.ErrorFromResponse(resp)
	}
	return nil
}
