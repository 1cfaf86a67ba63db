package register_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	uierrors "github.com/krcapps/orderdash/internal/app/features/errors"
	"github.com/krcapps/orderdash/internal/app/features/register"
	"github.com/krcapps/orderdash/internal/app/store/users"
	"github.com/krcapps/orderdash/internal/domain/models"
	"github.com/krcapps/orderdash/internal/testutil"
)

func newTestHandler(t *testing.T) (*register.Handler, *users.Directory) {
	t.Helper()
	logger := testutil.Logger()
	dir := users.NewDirectory(testutil.SetupTestStore(t), logger)
	return register.NewHandler(dir, uierrors.NewErrorLogger(logger), logger), dir
}

func postRegister(t *testing.T, h *register.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleRegister(rec, req)
	return rec
}

func TestHandleRegister_CreatesPendingAccount(t *testing.T) {
	h, dir := newTestHandler(t)

	rec := postRegister(t, h, `{"name":"Budi","division":"Marketing","email":"budi@krc.id","password":"secret1"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}

	var resp struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != models.StatusPending {
		t.Errorf("status: got %q, want pending", resp.Status)
	}

	u, err := dir.GetByID(testutil.TestContext(t), resp.ID)
	if err != nil {
		t.Fatalf("account not persisted: %v", err)
	}
	if u.Status != models.StatusPending {
		t.Errorf("persisted status: got %q", u.Status)
	}
}

func TestHandleRegister_DuplicateEmailConflicts(t *testing.T) {
	h, _ := newTestHandler(t)

	body := `{"name":"Budi","division":"Marketing","email":"budi@krc.id","password":"secret1"}`
	if rec := postRegister(t, h, body); rec.Code != http.StatusCreated {
		t.Fatalf("first registration: got %d", rec.Code)
	}
	if rec := postRegister(t, h, body); rec.Code != http.StatusConflict {
		t.Errorf("duplicate registration: got %d, want 409", rec.Code)
	}
}

func TestHandleRegister_Validation(t *testing.T) {
	h, _ := newTestHandler(t)

	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"short name", `{"name":"B","division":"Marketing","email":"budi@krc.id","password":"secret1"}`},
		{"missing division", `{"name":"Budi","division":"","email":"budi@krc.id","password":"secret1"}`},
		{"bad email", `{"name":"Budi","division":"Marketing","email":"not-an-email","password":"secret1"}`},
		{"short password", `{"name":"Budi","division":"Marketing","email":"budi@krc.id","password":"abc"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if rec := postRegister(t, h, tc.body); rec.Code != http.StatusBadRequest {
				t.Errorf("got %d, want 400", rec.Code)
			}
		})
	}
}
