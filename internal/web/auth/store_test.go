package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPersister struct {
	Token           string
	Refresh         string
	User            *User
	ProfileComplete bool
	Saves           int
	Clears          int
}

func (p *recordingPersister) SaveCredentials(token, refresh string, user *User, profileComplete bool) {
	p.Token = token
	p.Refresh = refresh
	p.User = user
	p.ProfileComplete = profileComplete
	p.Saves++
}

func (p *recordingPersister) ClearCredentials() {
	p.Token = ""
	p.Refresh = ""
	p.User = nil
	p.ProfileComplete = false
	p.Clears++
}

func TestLoginPersistsAndEnriches(t *testing.T) {
	persist := &recordingPersister{}
	store := NewStore(NewStaticService(), persist, nil)

	res := store.Login(context.Background(), Credentials{Cedula: "17000001", Password: "secret123"})
	require.True(t, res.Success)

	st := store.State()
	assert.True(t, st.Authenticated)
	assert.Equal(t, "static-token", st.Token)
	require.NotNil(t, st.User)
	assert.Equal(t, "Dana", st.User.FirstName, "profile fields come from enrichment")
	assert.Equal(t, "dana@example.com", st.User.Email)

	assert.Equal(t, "static-token", persist.Token)
	require.NotNil(t, persist.User)
	assert.True(t, persist.ProfileComplete)
}

func TestLoginRejectedCredentials(t *testing.T) {
	persist := &recordingPersister{}
	store := NewStore(NewStaticService(), persist, nil)

	res := store.Login(context.Background(), Credentials{Cedula: "17000001", Password: "wrong"})
	assert.False(t, res.Success)
	assert.Equal(t, "cedula or password is incorrect", res.Error)
	assert.False(t, store.State().Authenticated)
	assert.Equal(t, 0, persist.Saves)
}

func TestLoginValidationBeforeNetwork(t *testing.T) {
	svc := NewStaticService()
	svc.LoginErr = errors.New("backend must not be reached")
	store := NewStore(svc, &recordingPersister{}, nil)

	res := store.Login(context.Background(), Credentials{Cedula: "  ", Password: "x"})
	assert.False(t, res.Success)
	assert.Equal(t, "cedula and password are required", res.Error)
}

func TestEnrichFailureIsSwallowed(t *testing.T) {
	svc := NewStaticService()
	svc.InfoErr = errors.New("profile endpoint down")
	persist := &recordingPersister{}
	store := NewStore(svc, persist, nil)

	res := store.Login(context.Background(), Credentials{Cedula: "17000001", Password: "secret123"})
	require.True(t, res.Success)

	st := store.State()
	assert.True(t, st.Authenticated)
	assert.Empty(t, st.Err)
	assert.Empty(t, st.User.FirstName, "login still succeeds with the bare user record")
	assert.False(t, persist.ProfileComplete)
}

func TestRegisterValidationRules(t *testing.T) {
	store := NewStore(NewStaticService(), &recordingPersister{}, nil)

	cases := []struct {
		name string
		reg  Registration
		want string
	}{
		{"missing fields", Registration{Cedula: "17000002"}, "all fields are required"},
		{"password mismatch", Registration{Cedula: "17000002", Password: "abcdef", ConfirmPassword: "abcdeg"}, "passwords do not match"},
		{"short password", Registration{Cedula: "17000002", Password: "abc", ConfirmPassword: "abc"}, "password must be at least 6 characters"},
		{"short cedula", Registration{Cedula: "123", Password: "abcdef", ConfirmPassword: "abcdef"}, "cedula must have at least 8 digits"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := store.Register(context.Background(), tc.reg)
			assert.False(t, res.Success)
			assert.Equal(t, tc.want, res.Error)
		})
	}
}

func TestRegisterSignsIn(t *testing.T) {
	persist := &recordingPersister{}
	store := NewStore(NewStaticService(), persist, nil)

	res := store.Register(context.Background(), Registration{
		Cedula:          "17.000.002",
		Password:        "abcdef",
		ConfirmPassword: "abcdef",
	})
	require.True(t, res.Success)
	assert.True(t, store.State().Authenticated)
	assert.Equal(t, "17000002", store.State().User.Cedula)
	assert.NotZero(t, persist.Saves)
}

func TestRestoreWithoutNetwork(t *testing.T) {
	persist := &recordingPersister{}
	store := NewStore(NewStaticService(), persist, nil)

	store.Restore("token-abc", "refresh-abc", &User{Cedula: "17000001", Role: RoleUser})

	st := store.State()
	assert.True(t, st.Authenticated)
	assert.Equal(t, "token-abc", st.Token)
	assert.Equal(t, "refresh-abc", st.RefreshToken)
	assert.Equal(t, 0, persist.Saves)
}

func TestRestoreHalfWrittenStorageIsWiped(t *testing.T) {
	persist := &recordingPersister{}
	store := NewStore(NewStaticService(), persist, nil)

	store.Restore("token-abc", "", nil)
	assert.False(t, store.State().Authenticated)
	assert.Equal(t, 1, persist.Clears)

	persist = &recordingPersister{}
	store = NewStore(NewStaticService(), persist, nil)
	store.Restore("", "", &User{Cedula: "17000001"})
	assert.False(t, store.State().Authenticated)
	assert.Equal(t, 1, persist.Clears)
}

func TestRestoreEmptyIsLoggedOut(t *testing.T) {
	persist := &recordingPersister{}
	store := NewStore(NewStaticService(), persist, nil)

	store.Restore("", "", nil)
	assert.False(t, store.State().Authenticated)
	assert.Equal(t, 0, persist.Clears, "an empty session is not an error")
}

func TestLogoutClearsEverything(t *testing.T) {
	persist := &recordingPersister{}
	store := NewStore(NewStaticService(), persist, nil)
	require.True(t, store.Login(context.Background(), Credentials{Cedula: "17000001", Password: "secret123"}).Success)

	store.Logout()
	assert.Equal(t, State{}, store.State())
	assert.Equal(t, 1, persist.Clears)
}

func TestUpdateUserMergesAndPersists(t *testing.T) {
	persist := &recordingPersister{}
	store := NewStore(NewStaticService(), persist, nil)
	require.True(t, store.Login(context.Background(), Credentials{Cedula: "17000001", Password: "secret123"}).Success)

	res := store.UpdateUser(ProfileUpdate{Phone: "0991112233"})
	require.True(t, res.Success)

	st := store.State()
	assert.Equal(t, "0991112233", st.User.Phone)
	assert.Equal(t, "Dana", st.User.FirstName, "untouched fields survive the merge")
	assert.Equal(t, "0991112233", persist.User.Phone)
}

func TestUpdateUserRequiresAuth(t *testing.T) {
	store := NewStore(NewStaticService(), &recordingPersister{}, nil)
	res := store.UpdateUser(ProfileUpdate{Phone: "0991112233"})
	assert.False(t, res.Success)
}

func TestIsAdminFallsBackToTokenRole(t *testing.T) {
	store := NewStore(NewStaticService(), &recordingPersister{}, nil)
	// Unsigned token with {"role":"ROLE_ADMIN"} claims, display use only.
	token := "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0.eyJyb2xlIjoiUk9MRV9BRE1JTiJ9."
	store.Restore(token, "", &User{Cedula: "17000001"})

	assert.True(t, store.IsAdmin())

	store.Restore(token, "", &User{Cedula: "17000001", Role: RoleUser})
	assert.False(t, store.IsAdmin(), "an explicit role on the record wins over the token")
}

func TestIsAdminRoleCasings(t *testing.T) {
	assert.True(t, IsAdminRole("ROLE_ADMIN"))
	assert.True(t, IsAdminRole("ADMIN"))
	assert.True(t, IsAdminRole("admin"))
	assert.False(t, IsAdminRole("ROLE_USER"))
	assert.False(t, IsAdminRole(""))
}

func TestUserIsComplete(t *testing.T) {
	var nilUser *User
	assert.False(t, nilUser.IsComplete())
	assert.False(t, (&User{FirstName: "Dana", LastName: "Rider", Email: "d@example.com"}).IsComplete())
	assert.True(t, (&User{FirstName: "Dana", LastName: "Rider", Email: "d@example.com", Phone: "099"}).IsComplete())
}

func TestFullNameFallsBackToCedula(t *testing.T) {
	assert.Equal(t, "Dana Rider", (&User{FirstName: "Dana", LastName: "Rider"}).FullName())
	assert.Equal(t, "17000001", (&User{Cedula: "17000001"}).FullName())
}
