package users_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	uierrors "github.com/krcapps/orderdash/internal/app/features/errors"
	usersfeature "github.com/krcapps/orderdash/internal/app/features/users"
	userstore "github.com/krcapps/orderdash/internal/app/store/users"
	"github.com/krcapps/orderdash/internal/domain/models"
	"github.com/krcapps/orderdash/internal/testutil"
)

func newTestHandler(t *testing.T, adminEmails ...string) (*usersfeature.Handler, *userstore.Directory) {
	t.Helper()
	logger := testutil.Logger()
	dir := userstore.NewDirectory(testutil.SetupTestStore(t), logger)
	h := usersfeature.NewHandler(dir, userstore.NewAllowList(adminEmails), uierrors.NewErrorLogger(logger), logger)
	return h, dir
}

func TestServeList_ExcludesSelfAndHidesHashes(t *testing.T) {
	h, dir := newTestHandler(t, "admin@krc.id")
	ctx := testutil.TestContext(t)

	admin, _ := dir.Register(ctx, "Admin", "HQ", "admin@krc.id", "secret1")
	_, _ = dir.Register(ctx, "Budi", "Marketing", "budi@krc.id", "secret2")
	_, _ = dir.Register(ctx, "Sari", "Sales", "sari@krc.id", "secret3")

	req := testutil.AsUser(httptest.NewRequest("GET", "/users", nil), admin.ID, "Admin", models.RoleAdmin)
	rec := httptest.NewRecorder()
	h.ServeList(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}

	var views []map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&views); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("got %d users, want 2 (self excluded)", len(views))
	}
	for _, v := range views {
		if v["email"] == "admin@krc.id" {
			t.Error("requesting admin should be excluded from the listing")
		}
		if _, leaked := v["password_hash"]; leaked {
			t.Error("password hash must never appear in responses")
		}
	}
}

func TestHandleApprove(t *testing.T) {
	h, dir := newTestHandler(t)
	ctx := testutil.TestContext(t)
	u, _ := dir.Register(ctx, "Budi", "Marketing", "budi@krc.id", "secret1")

	req := httptest.NewRequest("POST", "/users/"+u.ID+"/approve", nil)
	req = testutil.WithChiURLParam(req, "id", u.ID)
	req = testutil.AsUser(req, "a1", "Admin", models.RoleAdmin)

	rec := httptest.NewRecorder()
	h.HandleApprove(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}

	got, _ := dir.GetByID(ctx, u.ID)
	if got.Status != models.StatusApproved {
		t.Errorf("status: got %q, want approved", got.Status)
	}

	// Second approval is still 200.
	rec = httptest.NewRecorder()
	h.HandleApprove(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("repeat approval: got %d, want 200", rec.Code)
	}
}

func TestHandleApprove_NotFound(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest("POST", "/users/missing/approve", nil)
	req = testutil.WithChiURLParam(req, "id", "missing")
	req = testutil.AsUser(req, "a1", "Admin", models.RoleAdmin)

	rec := httptest.NewRecorder()
	h.HandleApprove(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rec.Code)
	}
}

func TestHandleUpdate_EmailAndPassword(t *testing.T) {
	h, dir := newTestHandler(t)
	ctx := testutil.TestContext(t)
	u, _ := dir.Register(ctx, "Budi", "Marketing", "budi@krc.id", "secret1")

	req := httptest.NewRequest("PATCH", "/users/"+u.ID,
		strings.NewReader(`{"email":"budi.baru@krc.id","password":"newsecret"}`))
	req = testutil.WithChiURLParam(req, "id", u.ID)
	req = testutil.AsUser(req, "a1", "Admin", models.RoleAdmin)

	rec := httptest.NewRecorder()
	h.HandleUpdate(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d (body %s)", rec.Code, rec.Body.String())
	}

	got, _ := dir.GetByID(ctx, u.ID)
	if got.Email != "budi.baru@krc.id" {
		t.Errorf("email: got %q", got.Email)
	}
	if !dir.VerifyPassword(got, "newsecret") {
		t.Error("new password should verify")
	}
}

func TestHandleUpdate_EmailConflict(t *testing.T) {
	h, dir := newTestHandler(t)
	ctx := testutil.TestContext(t)
	_, _ = dir.Register(ctx, "Budi", "Marketing", "budi@krc.id", "secret1")
	other, _ := dir.Register(ctx, "Sari", "Sales", "sari@krc.id", "secret2")

	req := httptest.NewRequest("PATCH", "/users/"+other.ID, strings.NewReader(`{"email":"budi@krc.id"}`))
	req = testutil.WithChiURLParam(req, "id", other.ID)
	req = testutil.AsUser(req, "a1", "Admin", models.RoleAdmin)

	rec := httptest.NewRecorder()
	h.HandleUpdate(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("status: got %d, want 409", rec.Code)
	}
}

func TestHandleUpdate_EmptyPatch(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest("PATCH", "/users/u1", strings.NewReader(`{}`))
	req = testutil.WithChiURLParam(req, "id", "u1")
	req = testutil.AsUser(req, "a1", "Admin", models.RoleAdmin)

	rec := httptest.NewRecorder()
	h.HandleUpdate(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rec.Code)
	}
}

func TestHandleDelete(t *testing.T) {
	h, dir := newTestHandler(t)
	ctx := testutil.TestContext(t)
	u, _ := dir.Register(ctx, "Budi", "Marketing", "budi@krc.id", "secret1")

	req := httptest.NewRequest("DELETE", "/users/"+u.ID, nil)
	req = testutil.WithChiURLParam(req, "id", u.ID)
	req = testutil.AsUser(req, "a1", "Admin", models.RoleAdmin)

	rec := httptest.NewRecorder()
	h.HandleDelete(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if _, err := dir.GetByID(ctx, u.ID); err == nil {
		t.Error("account should be gone")
	}
}

func TestHandleDelete_SelfRejected(t *testing.T) {
	h, dir := newTestHandler(t)
	admin, _ := dir.Register(testutil.TestContext(t), "Admin", "HQ", "admin@krc.id", "secret1")

	req := httptest.NewRequest("DELETE", "/users/"+admin.ID, nil)
	req = testutil.WithChiURLParam(req, "id", admin.ID)
	req = testutil.AsUser(req, admin.ID, "Admin", models.RoleAdmin)

	rec := httptest.NewRecorder()
	h.HandleDelete(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rec.Code)
	}
}
