package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	token string
	err   error
	calls int
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (string, error) {
	f.calls++
	return f.token, f.err
}

func signToken(t *testing.T, userID int, exp time.Time) string {
	t.Helper()
	tenant := 9
	claims := Claims{
		UserID:   userID,
		Email:    "founder@startup.io",
		Role:     RoleStartup,
		TenantID: &tenant,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func TestHydrateExpiredTokenClearsSession(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Set(KeyToken, signToken(t, 5, time.Now().Add(-time.Minute))))
	require.NoError(t, store.Set(KeyUser, `{"userId":5}`))

	m := NewManager(store, &fakeAuth{}, nil)
	require.NoError(t, m.Hydrate())

	assert.False(t, m.IsAuthenticated())
	assert.True(t, m.SessionExpired())
	_, ok, _ := store.Get(KeyToken)
	assert.False(t, ok)
	_, ok, _ = store.Get(KeyUser)
	assert.False(t, ok)
}

func TestHydrateValidTokenRestoresSession(t *testing.T) {
	store := NewMemoryStore()
	tok := signToken(t, 5, time.Now().Add(time.Hour))
	require.NoError(t, store.Set(KeyToken, tok))
	require.NoError(t, store.Set(KeyUser, `{"userId":5,"email":"founder@startup.io","role":"STARTUP"}`))

	m := NewManager(store, &fakeAuth{}, nil)
	require.NoError(t, m.Hydrate())

	sess, err := m.Current()
	require.NoError(t, err)
	assert.Equal(t, tok, sess.Token)
	assert.Equal(t, 5, sess.User.UserID)
	assert.Equal(t, RoleStartup, sess.User.Role)
	assert.False(t, m.SessionExpired())
	stored, _, _ := store.Get(KeyToken)
	assert.Equal(t, tok, stored)
}

func TestHydrateWithoutStoredToken(t *testing.T) {
	m := NewManager(NewMemoryStore(), &fakeAuth{}, nil)
	require.NoError(t, m.Hydrate())
	assert.False(t, m.IsAuthenticated())
	assert.False(t, m.SessionExpired())
	assert.Equal(t, "", m.Token())
}

func TestLoginPersistsDecodedUser(t *testing.T) {
	store := NewMemoryStore()
	tok := signToken(t, 12, time.Now().Add(time.Hour))
	m := NewManager(store, &fakeAuth{token: tok}, nil)

	sess, err := m.LoginUser(context.Background(), "founder@startup.io", "pw")
	require.NoError(t, err)
	assert.Equal(t, 12, sess.User.UserID)
	require.NotNil(t, sess.User.TenantID)
	assert.Equal(t, 9, *sess.User.TenantID)
	assert.Equal(t, tok, m.Token())

	raw, ok, _ := store.Get(KeyUser)
	require.True(t, ok)
	assert.Contains(t, raw, `"userId":12`)
}

func TestLoginFailureClearsPriorSession(t *testing.T) {
	store := NewMemoryStore()
	auth := &fakeAuth{token: signToken(t, 1, time.Now().Add(time.Hour))}
	m := NewManager(store, auth, nil)
	_, err := m.LoginUser(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)

	auth.err = errors.New("Invalid credentials")
	_, err = m.LoginUser(context.Background(), "a@b.c", "wrong")

	var aerr *AuthenticationError
	require.ErrorAs(t, err, &aerr)
	assert.False(t, m.IsAuthenticated())
	_, ok, _ := store.Get(KeyToken)
	assert.False(t, ok)
}

func TestLogoutAlwaysNotifies(t *testing.T) {
	m := NewManager(NewMemoryStore(), &fakeAuth{}, nil)
	notified := 0
	m.OnLogout = func() { notified++ }

	require.NoError(t, m.Logout())
	assert.Equal(t, 1, notified)
	_, err := m.Current()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestHandleUnauthorized(t *testing.T) {
	store := NewMemoryStore()
	m := NewManager(store, &fakeAuth{token: signToken(t, 2, time.Now().Add(time.Hour))}, nil)
	_, err := m.LoginUser(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)

	m.HandleUnauthorized()
	assert.False(t, m.IsAuthenticated())
	assert.True(t, m.SessionExpired())
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	s := NewFileStore(path)

	_, ok, err := s.Get(KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(KeyToken, "abc"))
	require.NoError(t, s.Set(KeyUser, `{"userId":1}`))

	reopened := NewFileStore(path)
	v, ok, err := reopened.Get(KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", v)

	require.NoError(t, reopened.Delete(KeyToken, KeyUser))
	_, ok, _ = s.Get(KeyUser)
	assert.False(t, ok)
}

func TestHydrateCorruptFileStartsLoggedOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store := NewFileStore(path)
	_, _, err := store.Get(KeyToken)
	require.ErrorIs(t, err, ErrCorruptStore)

	m := NewManager(store, &fakeAuth{token: signToken(t, 3, time.Now().Add(time.Hour))}, nil)
	require.NoError(t, m.Hydrate())
	assert.False(t, m.IsAuthenticated())
	assert.False(t, m.SessionExpired())

	// The corrupt file was replaced, so logging in works again.
	_, err = m.LoginUser(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)
	v, ok, err := NewFileStore(path).Get(KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, m.Token(), v)
}

func TestFileStoreSetOverwritesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{\"token\":"), 0o600))

	s := NewFileStore(path)
	require.NoError(t, s.Set(KeyToken, "fresh"))
	v, ok, err := s.Get(KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "fresh", v)
}
