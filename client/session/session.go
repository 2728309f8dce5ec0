// Package session owns the authenticated user: login, logout, hydration from
// durable storage and the client-side expiry check.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"incubator/portal/logger"
)

// Role is the portal role carried in the token.
type Role string

const (
	RoleSuperAdmin  Role = "SUPER_ADMIN"
	RoleTenantAdmin Role = "TENANT_ADMIN"
	RoleStartup     Role = "STARTUP"
	RoleMentor      Role = "MENTOR"
	RoleCoach       Role = "COACH"
	RoleFacilitator Role = "FACILITATOR"
	RoleInvestor    Role = "INVESTOR"
	RoleAlumni      Role = "ALUMNI"
)

// User is the profile decoded from the token payload.
type User struct {
	UserID   int    `json:"userId"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	TenantID *int   `json:"tenantId,omitempty"`
}

// Session is an authenticated user plus its bearer token.
type Session struct {
	Token string
	User  User
}

// Claims mirrors the token payload issued by the backend.
type Claims struct {
	UserID   int    `json:"userId"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	TenantID *int   `json:"tenantId,omitempty"`
	jwt.RegisteredClaims
}

var ErrNoSession = errors.New("no active session")

// AuthenticationError is returned when login fails for any reason.
type AuthenticationError struct {
	Err error
}

func (e *AuthenticationError) Error() string {
	return "authentication failed: " + e.Err.Error()
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// Authenticator exchanges credentials for a token; *api.Client implements it.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
}

// Manager is the single owner of the session. Reads are snapshots; writes
// happen only through LoginUser, Logout, Hydrate and HandleUnauthorized.
type Manager struct {
	store Store
	auth  Authenticator
	log   logger.Logger
	now   func() time.Time

	// OnLogout runs after every logout, e.g. to show the login screen.
	OnLogout func()

	mu      sync.RWMutex
	current *Session
	expired bool
}

func NewManager(store Store, auth Authenticator, log logger.Logger) *Manager {
	if log == nil {
		log = logger.Discard
	}
	return &Manager{store: store, auth: auth, log: log, now: time.Now}
}

// DecodeClaims reads the token payload without verifying the signature.
// The backend stays the authority; this is only a client-side expiry check.
func DecodeClaims(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("decoding token: %w", err)
	}
	return claims, nil
}

func expired(c *Claims, now time.Time) bool {
	return c.ExpiresAt != nil && c.ExpiresAt.Time.Unix() < now.Unix()
}

func userFromClaims(c *Claims) User {
	return User{UserID: c.UserID, Email: c.Email, Role: c.Role, TenantID: c.TenantID}
}

// Hydrate restores the stored session. An expired token clears storage and
// raises SessionExpired; a missing or unreadable one leaves the manager logged out.
func (m *Manager) Hydrate() error {
	token, ok, err := m.store.Get(KeyToken)
	if err != nil {
		m.log.Warn("discarding unreadable session store", err)
		if cerr := m.clear(false); cerr != nil {
			m.log.Error("clearing unreadable session store", cerr)
		}
		return nil
	}
	if !ok || token == "" {
		return nil
	}

	claims, err := DecodeClaims(token)
	if err != nil {
		m.log.Warn("discarding unreadable stored token", err)
		return m.clear(false)
	}
	if expired(claims, m.now()) {
		m.log.Info("stored session expired", map[string]interface{}{"userId": claims.UserID})
		return m.clear(true)
	}

	user := userFromClaims(claims)
	if raw, ok, err := m.store.Get(KeyUser); err == nil && ok {
		var stored User
		if err := json.Unmarshal([]byte(raw), &stored); err == nil {
			user = stored
		}
	}

	m.mu.Lock()
	m.current = &Session{Token: token, User: user}
	m.expired = false
	m.mu.Unlock()
	return nil
}

// LoginUser authenticates and persists the session. Any failure clears the prior session.
func (m *Manager) LoginUser(ctx context.Context, email, password string) (*Session, error) {
	token, err := m.auth.Login(ctx, email, password)
	if err == nil && token == "" {
		err = errors.New("empty token in login response")
	}
	var claims *Claims
	if err == nil {
		claims, err = DecodeClaims(token)
	}
	if err != nil {
		if cerr := m.clear(false); cerr != nil {
			m.log.Error("clearing session after failed login", cerr)
		}
		return nil, &AuthenticationError{Err: err}
	}

	sess := &Session{Token: token, User: userFromClaims(claims)}
	userJSON, err := json.Marshal(sess.User)
	if err != nil {
		return nil, &AuthenticationError{Err: err}
	}
	if err := m.store.Set(KeyToken, token); err != nil {
		return nil, fmt.Errorf("persisting token: %w", err)
	}
	if err := m.store.Set(KeyUser, string(userJSON)); err != nil {
		return nil, fmt.Errorf("persisting user: %w", err)
	}

	m.mu.Lock()
	m.current = sess
	m.expired = false
	m.mu.Unlock()

	out := *sess
	return &out, nil
}

// Logout clears memory and storage and always fires OnLogout.
func (m *Manager) Logout() error {
	err := m.clear(false)
	if m.OnLogout != nil {
		m.OnLogout()
	}
	return err
}

// HandleUnauthorized is wired as the REST client's 401 hook.
func (m *Manager) HandleUnauthorized() {
	if !m.IsAuthenticated() {
		return
	}
	m.log.Warn("backend rejected token; clearing session")
	if err := m.clear(true); err != nil {
		m.log.Error("clearing session", err)
	}
	if m.OnLogout != nil {
		m.OnLogout()
	}
}

func (m *Manager) clear(markExpired bool) error {
	m.mu.Lock()
	m.current = nil
	m.expired = markExpired
	m.mu.Unlock()
	return m.store.Delete(KeyToken, KeyUser)
}

func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current != nil
}

// SessionExpired reports whether the last hydration or request found the session expired.
func (m *Manager) SessionExpired() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.expired
}

// Current returns a copy of the active session.
func (m *Manager) Current() (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return Session{}, ErrNoSession
	}
	return *m.current, nil
}

// Token returns the bearer token or "" when logged out.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return ""
	}
	return m.current.Token
}
