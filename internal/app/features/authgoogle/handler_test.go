package authgoogle_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/krcapps/orderdash/internal/app/features/authgoogle"
	"github.com/krcapps/orderdash/internal/app/store/oauthstate"
	"github.com/krcapps/orderdash/internal/app/store/users"
	"github.com/krcapps/orderdash/internal/app/system/auth"
	"github.com/krcapps/orderdash/internal/testutil"
)

func newTestHandler(t *testing.T, clientID, clientSecret string) (*authgoogle.Handler, *oauthstate.Store) {
	t.Helper()
	logger := testutil.Logger()

	sessionMgr, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", 24*time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}

	db := testutil.SetupTestStore(t)
	dir := users.NewDirectory(db, logger)
	states := oauthstate.NewStore(db)
	h := authgoogle.NewHandler(dir, users.NewAllowList(nil), sessionMgr, states,
		clientID, clientSecret, "http://localhost:3000", logger)
	return h, states
}

func TestServeLogin_NotConfigured(t *testing.T) {
	h, _ := newTestHandler(t, "", "")

	rec := httptest.NewRecorder()
	h.ServeLogin(rec, httptest.NewRequest("GET", "/auth/google", nil))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "error=google_not_configured") {
		t.Errorf("Location: got %q", loc)
	}
}

func TestServeLogin_RedirectsToConsent(t *testing.T) {
	h, states := newTestHandler(t, "client-id", "client-secret")

	rec := httptest.NewRecorder()
	h.ServeLogin(rec, httptest.NewRequest("GET", "/auth/google?return=/dashboard", nil))

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status: got %d, want 307", rec.Code)
	}
	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse redirect: %v", err)
	}
	if loc.Host != "accounts.google.com" {
		t.Errorf("redirect host: got %q", loc.Host)
	}

	// The state parameter was persisted and is valid exactly once.
	state := loc.Query().Get("state")
	if state == "" {
		t.Fatal("redirect missing state parameter")
	}
	ctx := testutil.TestContext(t)
	returnURL, valid, err := states.Validate(ctx, state)
	if err != nil || !valid {
		t.Fatalf("state should validate: valid=%v err=%v", valid, err)
	}
	if returnURL != "/dashboard" {
		t.Errorf("return URL: got %q", returnURL)
	}
	if _, valid, _ = states.Validate(ctx, state); valid {
		t.Error("state must be single use")
	}
}

func TestServeCallback_InvalidState(t *testing.T) {
	h, _ := newTestHandler(t, "client-id", "client-secret")

	rec := httptest.NewRecorder()
	h.ServeCallback(rec, httptest.NewRequest("GET", "/auth/google/callback?state=bogus&code=x", nil))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "error=invalid_state") {
		t.Errorf("Location: got %q", loc)
	}
}

func TestServeCallback_ProviderError(t *testing.T) {
	h, _ := newTestHandler(t, "client-id", "client-secret")

	rec := httptest.NewRecorder()
	h.ServeCallback(rec, httptest.NewRequest("GET", "/auth/google/callback?error=access_denied", nil))

	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "error=google_denied") {
		t.Errorf("Location: got %q", loc)
	}
}
