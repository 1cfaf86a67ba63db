package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/krcapps/orderdash/internal/app/system/auth"
	"go.uber.org/zap"
)

func newManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	m, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", 24*time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	return m
}

func TestNewSessionManager_RejectsWeakKey(t *testing.T) {
	if _, err := auth.NewSessionManager("short", "s", "", time.Hour, false, zap.NewNop()); err == nil {
		t.Error("expected weak key to be rejected")
	}
}

func TestSignInThenLoad(t *testing.T) {
	m := newManager(t)

	// Sign in and capture the cookie.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/login", nil)
	u := &auth.SessionUser{ID: "u1", Name: "Budi", Email: "budi@krc.id", Role: "user"}
	if err := m.SignIn(rec, req, u); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a session cookie")
	}

	// Replay the cookie through LoadSessionUser.
	var got *auth.SessionUser
	h := m.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
	}))
	req2 := httptest.NewRequest("GET", "/", nil)
	for _, c := range cookies {
		req2.AddCookie(c)
	}
	h.ServeHTTP(httptest.NewRecorder(), req2)

	if got == nil {
		t.Fatal("expected a session user")
	}
	if got.ID != "u1" || got.Role != "user" || got.Email != "budi@krc.id" {
		t.Errorf("session user: got %+v", got)
	}
}

func TestSignOut_DeletesCookie(t *testing.T) {
	m := newManager(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/logout", nil)
	if err := m.SignOut(rec, req); err != nil {
		t.Fatalf("SignOut failed: %v", err)
	}

	found := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" {
			found = true
			if c.MaxAge != -1 {
				t.Errorf("cookie MaxAge: got %d, want -1 (delete)", c.MaxAge)
			}
		}
	}
	if !found {
		t.Error("expected session cookie to be set for deletion")
	}
}

func TestOnChange_Notifications(t *testing.T) {
	m := newManager(t)

	var events []*auth.SessionUser
	m.OnChange(func(u *auth.SessionUser) { events = append(events, u) })

	req := httptest.NewRequest("POST", "/login", nil)
	_ = m.SignIn(httptest.NewRecorder(), req, &auth.SessionUser{ID: "u1", Role: "admin"})
	_ = m.SignOut(httptest.NewRecorder(), req)

	if len(events) != 2 {
		t.Fatalf("events: got %d, want 2", len(events))
	}
	if events[0] == nil || events[0].ID != "u1" {
		t.Errorf("sign-in event: got %+v", events[0])
	}
	if events[1] != nil {
		t.Errorf("sign-out event: got %+v, want nil", events[1])
	}
}

func TestRequireSignedIn(t *testing.T) {
	m := newManager(t)
	h := m.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: got %d, want 401", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := auth.WithUser(httptest.NewRequest("GET", "/", nil), &auth.SessionUser{ID: "u1", Role: "user"})
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("signed in: got %d, want 200", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	m := newManager(t)
	h := m.RequireRole("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: got %d, want 401", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := auth.WithUser(httptest.NewRequest("GET", "/", nil), &auth.SessionUser{ID: "u1", Role: "user"})
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("wrong role: got %d, want 403", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = auth.WithUser(httptest.NewRequest("GET", "/", nil), &auth.SessionUser{ID: "u2", Role: "Admin"})
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("admin (case-insensitive): got %d, want 200", rec.Code)
	}
}

type staticFetcher struct{ u *auth.SessionUser }

func (f staticFetcher) FetchUser(ctx context.Context, id string) *auth.SessionUser { return f.u }

func TestLoadSessionUser_FetcherOverridesAndDrops(t *testing.T) {
	m := newManager(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/login", nil)
	_ = m.SignIn(rec, req, &auth.SessionUser{ID: "u1", Role: "user"})
	cookies := rec.Result().Cookies()

	// Fetcher promotes the cached role.
	m.SetUserFetcher(staticFetcher{u: &auth.SessionUser{ID: "u1", Role: "admin"}})
	var got *auth.SessionUser
	h := m.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
	}))
	req2 := httptest.NewRequest("GET", "/", nil)
	for _, c := range cookies {
		req2.AddCookie(c)
	}
	h.ServeHTTP(httptest.NewRecorder(), req2)
	if got == nil || got.Role != "admin" {
		t.Errorf("fetched user: got %+v, want role admin", got)
	}

	// Fetcher returning nil drops the session user (deleted account).
	m.SetUserFetcher(staticFetcher{u: nil})
	got = nil
	var found bool
	h = m.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, found = auth.CurrentUser(r)
	}))
	req3 := httptest.NewRequest("GET", "/", nil)
	for _, c := range cookies {
		req3.AddCookie(c)
	}
	h.ServeHTTP(httptest.NewRecorder(), req3)
	if found || got != nil {
		t.Errorf("deleted user should not be in context, got %+v", got)
	}
}
