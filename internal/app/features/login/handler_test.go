package login_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	uierrors "github.com/krcapps/orderdash/internal/app/features/errors"
	"github.com/krcapps/orderdash/internal/app/features/login"
	"github.com/krcapps/orderdash/internal/app/identity"
	"github.com/krcapps/orderdash/internal/app/store/users"
	"github.com/krcapps/orderdash/internal/app/system/auth"
	"github.com/krcapps/orderdash/internal/testutil"
)

func newTestHandler(t *testing.T, adminEmails ...string) (*login.Handler, *users.Directory) {
	t.Helper()
	logger := testutil.Logger()

	sessionMgr, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", 24*time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}

	dir := users.NewDirectory(testutil.SetupTestStore(t), logger)
	svc := identity.NewService(dir, users.NewAllowList(adminEmails), logger)
	return login.NewHandler(svc, sessionMgr, uierrors.NewErrorLogger(logger), logger), dir
}

func postLogin(t *testing.T, h *login.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleLoginPost(rec, req)
	return rec
}

func TestHandleLoginPost_ApprovedUser(t *testing.T) {
	h, dir := newTestHandler(t)
	ctx := testutil.TestContext(t)
	u, _ := dir.Register(ctx, "Budi", "Marketing", "budi@krc.id", "secret1")
	_ = dir.Approve(ctx, u.ID)

	rec := postLogin(t, h, `{"email":"budi@krc.id","password":"secret1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	var resp struct {
		ID   string `json:"id"`
		Role string `json:"role"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID != u.ID || resp.Role != "user" {
		t.Errorf("response: got %+v", resp)
	}

	found := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" && c.Value != "" {
			found = true
		}
	}
	if !found {
		t.Error("expected a session cookie to be set")
	}
}

func TestHandleLoginPost_PendingUser(t *testing.T) {
	h, dir := newTestHandler(t)
	_, _ = dir.Register(testutil.TestContext(t), "Budi", "Marketing", "budi@krc.id", "secret1")

	rec := postLogin(t, h, `{"email":"budi@krc.id","password":"secret1"}`)
	if rec.Code != http.StatusForbidden {
		t.Errorf("pending login: got %d, want 403", rec.Code)
	}
	// No session cookie for pending accounts.
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" && c.MaxAge >= 0 && c.Value != "" {
			t.Error("pending account must not receive a session cookie")
		}
	}
}

func TestHandleLoginPost_BadCredentials(t *testing.T) {
	h, dir := newTestHandler(t)
	ctx := testutil.TestContext(t)
	u, _ := dir.Register(ctx, "Budi", "Marketing", "budi@krc.id", "secret1")
	_ = dir.Approve(ctx, u.ID)

	if rec := postLogin(t, h, `{"email":"budi@krc.id","password":"wrong"}`); rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: got %d, want 401", rec.Code)
	}
	if rec := postLogin(t, h, `{"email":"nobody@krc.id","password":"secret1"}`); rec.Code != http.StatusUnauthorized {
		t.Errorf("unknown email: got %d, want 401", rec.Code)
	}
}

func TestHandleLoginPost_AdminAllowList(t *testing.T) {
	h, dir := newTestHandler(t, "admin@krc.id")
	// Registered but never approved; the allow-list carries them in.
	_, _ = dir.Register(testutil.TestContext(t), "Admin", "HQ", "admin@krc.id", "secret1")

	rec := postLogin(t, h, `{"email":"admin@krc.id","password":"secret1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d (body %s)", rec.Code, rec.Body.String())
	}
	var resp struct {
		Role string `json:"role"`
	}
	_ = json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Role != "admin" {
		t.Errorf("role: got %q, want admin", resp.Role)
	}
}

func TestServeSession(t *testing.T) {
	h, _ := newTestHandler(t)

	// Anonymous: 401.
	rec := httptest.NewRecorder()
	h.ServeSession(rec, httptest.NewRequest("GET", "/login/session", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: got %d, want 401", rec.Code)
	}

	// Signed in: identity echoed back.
	rec = httptest.NewRecorder()
	req := auth.WithUser(httptest.NewRequest("GET", "/login/session", nil),
		&auth.SessionUser{ID: "u1", Name: "Budi", Email: "budi@krc.id", Role: "user"})
	h.ServeSession(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("signed in: got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"budi@krc.id"`) {
		t.Errorf("body missing identity: %s", rec.Body.String())
	}
}
