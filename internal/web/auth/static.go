package auth

import (
	"context"
	"strings"
)

// StaticService is an in-memory Service used by tests and backend-less runs.
type StaticService struct {
	Accounts map[string]string // cedula -> password
	Profiles map[string]Profile
	Roles    map[string]string
	Token    string

	// LoginErr and InfoErr force failures for error-path tests.
	LoginErr error
	InfoErr  error
}

// NewStaticService constructs a StaticService with a single demo account.
func NewStaticService() *StaticService {
	return &StaticService{
		Accounts: map[string]string{"17000001": "secret123"},
		Profiles: map[string]Profile{
			"17000001": {
				Cedula:    "17000001",
				FirstName: "Dana",
				LastName:  "Rider",
				Email:     "dana@example.com",
				Phone:     "0990000000",
			},
		},
		Roles: map[string]string{"17000001": RoleUser},
		Token: "static-token",
	}
}

// Login checks the in-memory account table.
func (s *StaticService) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	if err := ValidateCredentials(creds); err != nil {
		return nil, err
	}
	if s.LoginErr != nil {
		return nil, s.LoginErr
	}
	cedula := strings.TrimSpace(creds.Cedula)
	if password, ok := s.Accounts[cedula]; !ok || password != creds.Password {
		return nil, ErrInvalidCredentials
	}
	role := s.Roles[cedula]
	if role == "" {
		role = RoleUser
	}
	return &LoginResult{
		Token: s.Token,
		User:  User{Cedula: cedula, Role: role},
	}, nil
}

// Register records the account and logs it in.
func (s *StaticService) Register(ctx context.Context, reg Registration) (*LoginResult, error) {
	if err := ValidateRegistration(reg); err != nil {
		return nil, err
	}
	cedula := DigitsOnly(reg.Cedula)
	if s.Accounts == nil {
		s.Accounts = make(map[string]string)
	}
	s.Accounts[cedula] = reg.Password
	return s.Login(ctx, Credentials{Cedula: cedula, Password: reg.Password})
}

// UserInfo returns the stored extended profile.
func (s *StaticService) UserInfo(ctx context.Context, token string) (*Profile, error) {
	if s.InfoErr != nil {
		return nil, s.InfoErr
	}
	for _, profile := range s.Profiles {
		p := profile
		return &p, nil
	}
	return &Profile{}, nil
}

// UpdateProfile merges the edit into the stored profile.
func (s *StaticService) UpdateProfile(ctx context.Context, token string, update ProfileUpdate) error {
	if s.Profiles == nil {
		s.Profiles = make(map[string]Profile)
	}
	for cedula, profile := range s.Profiles {
		if update.FirstName != "" {
			profile.FirstName = update.FirstName
		}
		if update.LastName != "" {
			profile.LastName = update.LastName
		}
		if update.Email != "" {
			profile.Email = update.Email
		}
		if update.Phone != "" {
			profile.Phone = update.Phone
		}
		s.Profiles[cedula] = profile
	}
	return nil
}
