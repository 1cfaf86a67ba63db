// internal/app/store/store.go

// Package store defines the persistence adapter the repositories are
// built on. Two interchangeable backends implement it: localstore (a
// JSON file per collection, the local-only prototype) and mongostore
// (a hosted document collection store). Application code depends only
// on the Adapter interface so either backend can be swapped without
// touching the repositories.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Doc is one persisted document. Typed stores convert their models to
// and from Doc at the adapter boundary.
type Doc = map[string]any

// ErrNotFound is returned when an operation targets a document that
// does not exist. Callers treat it as an error for updates and as
// already-satisfied for deletes.
var ErrNotFound = errors.New("document not found")

// Adapter is the backend-neutral document store.
//
// List and Query return documents in insertion order; the unsorted
// table views rely on that.
type Adapter interface {
	List(ctx context.Context, collection string) ([]Doc, error)
	Get(ctx context.Context, collection, id string) (Doc, error)
	Put(ctx context.Context, collection, id string, doc Doc) error
	Patch(ctx context.Context, collection, id string, fields Doc) error
	Delete(ctx context.Context, collection, id string) error
	Query(ctx context.Context, collection, field string, value any) ([]Doc, error)
	Ping(ctx context.Context) error
}

// Encode converts a model into a Doc via its JSON form. The bson/json
// field names of the models are kept identical where it matters, so
// one encoding serves both backends.
func Encode(v any) (Doc, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var d Doc
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return d, nil
}

// Decode converts a Doc back into the typed model pointed to by v.
func Decode(d Doc, v any) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}
