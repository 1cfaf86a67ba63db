// Package testutil provides shared helpers for package tests: an
// isolated file-backed store, request builders, and fixtures.
package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/krcapps/orderdash/internal/app/store"
	"github.com/krcapps/orderdash/internal/app/store/localstore"
	"github.com/krcapps/orderdash/internal/app/system/auth"
)

// SetupTestStore returns a file-backed adapter rooted in a per-test
// temp directory, so tests run hermetically without a database.
func SetupTestStore(t *testing.T) store.Adapter {
	t.Helper()
	adapter, err := localstore.New(t.TempDir())
	if err != nil {
		t.Fatalf("localstore.New failed: %v", err)
	}
	return adapter
}

// TestContext returns a context with a generous deadline for store
// operations under test.
func TestContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// Logger returns a no-op logger for constructing stores and handlers.
func Logger() *zap.Logger { return zap.NewNop() }

// WithChiURLParam attaches a chi route parameter to a request, for
// testing handlers outside a router.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// AsUser attaches a signed-in session user to a request.
func AsUser(r *http.Request, id, name, role string) *http.Request {
	return auth.WithUser(r, &auth.SessionUser{ID: id, Name: name, Email: id + "@example.test", Role: role})
}
