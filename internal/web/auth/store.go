package auth

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"motoshop.store/moto-web/internal/web/apiclient"
)

var nowFunc = time.Now

// State is the authentication store's full state.
type State struct {
	User          *User
	Token         string
	RefreshToken  string
	Authenticated bool
	Loading       bool
	Err           string
}

// Result reports the outcome of a store operation to the caller.
type Result struct {
	Success bool
	Error   string
}

// Persister writes the session material through to durable storage. The
// store is the only writer of its own state; the persister is the only way
// that state leaves the process boundary.
type Persister interface {
	SaveCredentials(token, refresh string, user *User, profileComplete bool)
	ClearCredentials()
}

type action interface{ isAction() }

type setLoading struct{ loading bool }
type loginSuccess struct {
	user    *User
	token   string
	refresh string
}
type loginError struct{ message string }
type updateUser struct{ user *User }
type loggedOut struct{}

func (setLoading) isAction()   {}
func (loginSuccess) isAction() {}
func (loginError) isAction()   {}
func (updateUser) isAction()   {}
func (loggedOut) isAction()    {}

// reduce is the pure transition function from (state, action) to state.
func reduce(state State, act action) State {
	switch a := act.(type) {
	case setLoading:
		state.Loading = a.loading
		if a.loading {
			state.Err = ""
		}
		return state
	case loginSuccess:
		state.User = a.user
		state.Token = a.token
		state.RefreshToken = a.refresh
		state.Authenticated = a.user != nil && a.token != ""
		state.Loading = false
		state.Err = ""
		return state
	case loginError:
		state.User = nil
		state.Token = ""
		state.RefreshToken = ""
		state.Authenticated = false
		state.Loading = false
		state.Err = a.message
		return state
	case updateUser:
		state.User = a.user
		state.Authenticated = a.user != nil && state.Token != ""
		state.Err = ""
		return state
	case loggedOut:
		return State{}
	default:
		return state
	}
}

// Store owns the authentication state for the current request.
type Store struct {
	state   State
	svc     Service
	persist Persister
	log     *zap.Logger
}

// NewStore constructs an authentication store.
func NewStore(svc Service, persist Persister, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{svc: svc, persist: persist, log: log}
}

func (s *Store) dispatch(act action) {
	s.state = reduce(s.state, act)
}

// State returns a copy of the current state.
func (s *Store) State() State {
	return s.state
}

// Restore rebuilds the authenticated state from persisted session material
// without any network round-trip. Half-written storage (a token with no user
// record, or the reverse) is wiped and resolves to the logged-out state.
func (s *Store) Restore(token, refresh string, user *User) {
	if token == "" && user == nil {
		s.dispatch(loggedOut{})
		return
	}
	if token == "" || user == nil {
		s.log.Warn("auth: malformed persisted session, wiping storage")
		s.persist.ClearCredentials()
		s.dispatch(loggedOut{})
		return
	}
	s.dispatch(loginSuccess{user: user, token: token, refresh: refresh})
}

// Enrich merges the extended profile fields from the who-am-I endpoint into
// the current user. Failures are logged and swallowed; stale cached fields
// are an acceptable price for a fast perceived login.
func (s *Store) Enrich(ctx context.Context) {
	if !s.state.Authenticated {
		return
	}
	profile, err := s.svc.UserInfo(ctx, s.state.Token)
	if err != nil {
		s.log.Warn("auth: profile enrichment failed", zap.Error(err))
		return
	}

	merged := *s.state.User
	if profile.FirstName != "" {
		merged.FirstName = profile.FirstName
	}
	if profile.LastName != "" {
		merged.LastName = profile.LastName
	}
	if profile.Email != "" {
		merged.Email = profile.Email
	}
	if profile.Phone != "" {
		merged.Phone = profile.Phone
	}
	if merged.Cedula == "" {
		merged.Cedula = profile.Cedula
	}

	s.dispatch(updateUser{user: &merged})
	s.persist.SaveCredentials(s.state.Token, s.state.RefreshToken, &merged, merged.IsComplete())
}

// Login authenticates against the backend, persists the session material and
// best-effort enriches the profile.
func (s *Store) Login(ctx context.Context, creds Credentials) Result {
	s.dispatch(setLoading{true})

	result, err := s.svc.Login(ctx, creds)
	if err != nil {
		message := loginErrorMessage(err)
		s.dispatch(loginError{message: message})
		return Result{Success: false, Error: message}
	}

	user := result.User
	s.dispatch(loginSuccess{user: &user, token: result.Token, refresh: result.RefreshToken})
	s.persist.SaveCredentials(result.Token, result.RefreshToken, &user, user.IsComplete())

	s.Enrich(ctx)
	return Result{Success: true}
}

// Register signs the customer up and, on success, behaves like Login.
func (s *Store) Register(ctx context.Context, reg Registration) Result {
	s.dispatch(setLoading{true})

	result, err := s.svc.Register(ctx, reg)
	if err != nil {
		message := loginErrorMessage(err)
		s.dispatch(loginError{message: message})
		return Result{Success: false, Error: message}
	}

	user := result.User
	s.dispatch(loginSuccess{user: &user, token: result.Token, refresh: result.RefreshToken})
	s.persist.SaveCredentials(result.Token, result.RefreshToken, &user, user.IsComplete())

	s.Enrich(ctx)
	return Result{Success: true}
}

// Logout clears persisted session material (including the cart mirror, which
// lives in the same storage) and resets to the unauthenticated state.
func (s *Store) Logout() {
	s.persist.ClearCredentials()
	s.dispatch(loggedOut{})
}

// UpdateUser merges a partial edit into the current user and persists it.
func (s *Store) UpdateUser(update ProfileUpdate) Result {
	if !s.state.Authenticated {
		return Result{Success: false, Error: "not authenticated"}
	}

	merged := *s.state.User
	if update.FirstName != "" {
		merged.FirstName = update.FirstName
	}
	if update.LastName != "" {
		merged.LastName = update.LastName
	}
	if update.Email != "" {
		merged.Email = update.Email
	}
	if update.Phone != "" {
		merged.Phone = update.Phone
	}

	s.dispatch(updateUser{user: &merged})
	s.persist.SaveCredentials(s.state.Token, s.state.RefreshToken, &merged, merged.IsComplete())
	return Result{Success: true}
}

// IsAdmin reports whether the current user holds the admin role. When the
// cached record carries no role, the bearer token's claims break the tie.
func (s *Store) IsAdmin() bool {
	if s.state.User == nil {
		return false
	}
	role := s.state.User.Role
	if role == "" {
		role = RoleFromToken(s.state.Token)
	}
	return IsAdminRole(role)
}

// IsProfileComplete reports whether every checkout-required field is set.
func (s *Store) IsProfileComplete() bool {
	return s.state.User.IsComplete()
}

func loginErrorMessage(err error) string {
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return valErr.Message
	}
	if errors.Is(err, ErrInvalidCredentials) {
		return "cedula or password is incorrect"
	}
	return apiclient.MessageOf(err, "could not sign in, try again")
}
