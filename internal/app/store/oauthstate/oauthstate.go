// Package oauthstate persists one-time OAuth state tokens so the
// callback can verify the flow started here.
package oauthstate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/krcapps/orderdash/internal/app/store"
)

// Collection is the backing collection name for state tokens.
const Collection = "oauth_states"

type Store struct {
	db store.Adapter
}

func NewStore(db store.Adapter) *Store {
	return &Store{db: db}
}

type record struct {
	State     string    `json:"_id" bson:"_id"`
	ReturnURL string    `json:"returnUrl" bson:"returnUrl"`
	ExpiresAt time.Time `json:"expiresAt" bson:"expiresAt"`
}

// Save stores a state token until expiresAt.
func (s *Store) Save(ctx context.Context, state, returnURL string, expiresAt time.Time) error {
	doc, err := store.Encode(record{State: state, ReturnURL: returnURL, ExpiresAt: expiresAt})
	if err != nil {
		return err
	}
	if err := s.db.Put(ctx, Collection, state, doc); err != nil {
		return fmt.Errorf("oauthstate: save: %w", err)
	}
	return nil
}

// Validate consumes a state token. It is single use: a second call
// with the same token reports invalid.
func (s *Store) Validate(ctx context.Context, state string) (returnURL string, valid bool, err error) {
	doc, err := s.db.Get(ctx, Collection, state)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("oauthstate: lookup: %w", err)
	}

	// Consume regardless of expiry.
	if err := s.db.Delete(ctx, Collection, state); err != nil && !errors.Is(err, store.ErrNotFound) {
		return "", false, fmt.Errorf("oauthstate: consume: %w", err)
	}

	var rec record
	if err := store.Decode(doc, &rec); err != nil {
		return "", false, err
	}
	if time.Now().UTC().After(rec.ExpiresAt) {
		return "", false, nil
	}
	return rec.ReturnURL, true, nil
}
