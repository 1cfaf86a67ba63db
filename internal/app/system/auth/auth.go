// internal/app/system/auth/auth.go

// Package auth owns session state. A SessionManager wraps a cookie
// store, loads the current user into the request context, and gates
// routes by sign-in state and role. Role and account status are
// re-derived on every request through a pluggable UserFetcher, so an
// approval, role change, or deletion takes effect immediately.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	isAuthKey = "is_authenticated"
	userIDKey = "user_id"
	userName  = "user_name"
	userEmail = "user_email"
	userRole  = "user_role"
	minKeyLen = 32
)

// SessionUser is what we cache in the session and inject into
// r.Context().
type SessionUser struct {
	ID    string
	Name  string
	Email string
	Role  string
}

// UserFetcher loads fresh user data for a session's user id. Returning
// nil means the session is no longer valid (user deleted or demoted to
// a state that cannot hold a session).
type UserFetcher interface {
	FetchUser(ctx context.Context, userID string) *SessionUser
}

// ChangeFunc is notified after every session state transition, with
// the new user on sign-in and nil on sign-out.
type ChangeFunc func(u *SessionUser)

// SessionManager creates, reads, and clears sessions.
type SessionManager struct {
	store   *sessions.CookieStore
	name    string
	log     *zap.Logger
	fetcher UserFetcher

	mu        sync.RWMutex
	listeners []ChangeFunc
}

// NewSessionManager builds a manager with the given signing key,
// cookie name, domain, and lifetime. The secure flag controls the
// Secure cookie attribute; leave it off for http://localhost.
func NewSessionManager(sessionKey, name, domain string, ttl time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if len(sessionKey) < minKeyLen {
		return nil, fmt.Errorf("auth: session key must be at least %d bytes", minKeyLen)
	}
	if name == "" {
		return nil, fmt.Errorf("auth: session name is required")
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts

	logger.Info("session store initialized",
		zap.Bool("secure", secure),
		zap.String("domain", domain),
		zap.Duration("ttl", ttl))

	return &SessionManager{store: store, name: name, log: logger}, nil
}

// SetUserFetcher installs the fetcher used by LoadSessionUser.
func (m *SessionManager) SetUserFetcher(f UserFetcher) {
	m.fetcher = f
}

// OnChange registers a listener for session state transitions.
func (m *SessionManager) OnChange(fn ChangeFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

func (m *SessionManager) notify(u *SessionUser) {
	m.mu.RLock()
	fns := make([]ChangeFunc, len(m.listeners))
	copy(fns, m.listeners)
	m.mu.RUnlock()
	for _, fn := range fns {
		fn(u)
	}
}

// Store exposes the underlying cookie store.
func (m *SessionManager) Store() *sessions.CookieStore {
	return m.store
}

// GetSession returns the request's session, decoding errors included
// so callers can log them. A fresh session is returned either way.
func (m *SessionManager) GetSession(r *http.Request) (*sessions.Session, error) {
	sess, err := m.store.Get(r, m.name)
	if err != nil {
		if scErr, ok := err.(securecookie.Error); ok && scErr.IsDecode() {
			// Tampered or stale cookie. The fresh session Get returned
			// replaces it on the next save.
			return sess, fmt.Errorf("auth: decode session: %w", err)
		}
		return sess, err
	}
	return sess, nil
}

// SignIn writes an authenticated session for u and emits the
// session-changed signal.
func (m *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, u *SessionUser) error {
	sess, _ := m.GetSession(r)
	sess.Values[isAuthKey] = true
	sess.Values[userIDKey] = u.ID
	sess.Values[userName] = u.Name
	sess.Values[userEmail] = u.Email
	sess.Values[userRole] = u.Role
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("auth: save session: %w", err)
	}
	m.notify(u)
	return nil
}

// SignOut clears the session unconditionally. It is idempotent:
// signing out without a session is a no-op that still succeeds.
func (m *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, err := m.GetSession(r)
	if err != nil {
		m.log.Warn("session decode failed during sign-out", zap.Error(err))
	}
	opts := m.store.Options
	if opts != nil {
		sess.Options.Domain = opts.Domain
		sess.Options.Path = opts.Path
		sess.Options.Secure = opts.Secure
		sess.Options.HttpOnly = opts.HttpOnly
		sess.Options.SameSite = opts.SameSite
	}
	sess.Options.MaxAge = -1 // delete immediately
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("auth: clear session: %w", err)
	}
	m.notify(nil)
	return nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Current-user context                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user and a "found?" flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// WithUser injects a user into the request context. Handler tests use
// it to simulate an authenticated request.
func WithUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

/*─────────────────────────────────────────────────────────────────────────────*
| Middleware                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// LoadSessionUser injects the user into context if they are signed in.
// With a fetcher installed, the cached session identity is replaced by
// a fresh record; a nil fetch result drops the session user.
func (m *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := m.GetSession(r)

		if isAuth, _ := sess.Values[isAuthKey].(bool); isAuth {
			u := &SessionUser{
				ID:    getString(sess, userIDKey),
				Name:  getString(sess, userName),
				Email: getString(sess, userEmail),
				Role:  getString(sess, userRole),
			}
			if m.fetcher != nil {
				u = m.fetcher.FetchUser(r.Context(), u.ID)
			}
			if u != nil {
				r = WithUser(r, u)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn rejects anonymous requests with 401. The dashboard
// front-end is an API client, so the response is JSON, not a redirect.
func (m *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			writeJSONError(w, http.StatusUnauthorized, "sign in required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects requests whose user lacks one of the allowed
// roles: 401 when anonymous, 403 when signed in with the wrong role.
func (m *SessionManager) RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "sign in required")
				return
			}
			if _, has := set[strings.ToLower(u.Role)]; !has {
				writeJSONError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// helpers

func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}

func writeJSONError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
