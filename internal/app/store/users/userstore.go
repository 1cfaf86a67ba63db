// Package users implements the user directory: registration, the
// pending/approved lifecycle, admin edits, and credential checks.
package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/krcapps/orderdash/internal/app/store"
	"github.com/krcapps/orderdash/internal/app/system/normalize"
	"github.com/krcapps/orderdash/internal/domain/models"
)

// Collection is the backing collection name for the directory.
const Collection = "users"

var (
	// ErrEmailExists is returned when a registration or email update
	// collides with another account's email.
	ErrEmailExists = errors.New("email already registered")

	// ErrNotFound is returned when an account does not exist.
	ErrNotFound = errors.New("user not found")
)

// Directory is the user store. All lookups normalize the email before
// matching, so the stored form is the canonical one.
type Directory struct {
	db  store.Adapter
	log *zap.Logger
}

func NewDirectory(db store.Adapter, log *zap.Logger) *Directory {
	return &Directory{db: db, log: log}
}

// Register creates a pending account. The account cannot sign in until
// an admin approves it.
func (d *Directory) Register(ctx context.Context, name, division, email, password string) (*models.User, error) {
	email = normalize.Email(email)
	name = normalize.Name(name)
	division = normalize.Name(division)

	if existing, err := d.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, ErrEmailExists
	} else if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("users: hash password: %w", err)
	}

	now := time.Now().UTC()
	u := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		NameCI:       normalize.Fold(name),
		Division:     division,
		Email:        email,
		PasswordHash: string(hash),
		Status:       models.StatusPending,
		Role:         models.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	doc, err := store.Encode(u)
	if err != nil {
		return nil, err
	}
	if err := d.db.Put(ctx, Collection, u.ID, doc); err != nil {
		return nil, fmt.Errorf("users: create: %w", err)
	}

	d.log.Info("user registered",
		zap.String("user_id", u.ID),
		zap.String("email", u.Email))
	return u, nil
}

// Approve moves a pending account to approved. Approving an already
// approved account is a no-op.
func (d *Directory) Approve(ctx context.Context, id string) error {
	u, err := d.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if u.Status == models.StatusApproved {
		return nil
	}
	fields := store.Doc{
		"status":     models.StatusApproved,
		"updated_at": time.Now().UTC().Format(time.RFC3339Nano),
	}
	if err := d.db.Patch(ctx, Collection, id, fields); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("users: approve: %w", err)
	}
	d.log.Info("user approved", zap.String("user_id", id))
	return nil
}

// UpdateEmail changes an account's email after checking that no other
// account already holds it.
func (d *Directory) UpdateEmail(ctx context.Context, id, email string) error {
	email = normalize.Email(email)

	other, err := d.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if other != nil && other.ID != id {
		return ErrEmailExists
	}

	fields := store.Doc{
		"email":      email,
		"updated_at": time.Now().UTC().Format(time.RFC3339Nano),
	}
	if err := d.db.Patch(ctx, Collection, id, fields); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("users: update email: %w", err)
	}
	return nil
}

// UpdatePassword replaces an account's credential with a new bcrypt
// hash. The plaintext is never stored.
func (d *Directory) UpdatePassword(ctx context.Context, id, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("users: hash password: %w", err)
	}
	fields := store.Doc{
		"password_hash": string(hash),
		"updated_at":    time.Now().UTC().Format(time.RFC3339Nano),
	}
	if err := d.db.Patch(ctx, Collection, id, fields); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("users: update password: %w", err)
	}
	return nil
}

// Delete removes an account and its credential. The credential lives
// in the same document, so the cascade is a single delete.
func (d *Directory) Delete(ctx context.Context, id string) error {
	if err := d.db.Delete(ctx, Collection, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("users: delete: %w", err)
	}
	d.log.Info("user deleted", zap.String("user_id", id))
	return nil
}

// List returns every account in insertion order.
func (d *Directory) List(ctx context.Context) ([]*models.User, error) {
	docs, err := d.db.List(ctx, Collection)
	if err != nil {
		return nil, fmt.Errorf("users: list: %w", err)
	}
	return decodeAll(docs)
}

// ListOthers returns every account except the given one. Admin user
// management excludes the acting admin from its own listing.
func (d *Directory) ListOthers(ctx context.Context, excludeID string) ([]*models.User, error) {
	all, err := d.List(ctx)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, u := range all {
		if u.ID != excludeID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (d *Directory) GetByID(ctx context.Context, id string) (*models.User, error) {
	doc, err := d.db.Get(ctx, Collection, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("users: get: %w", err)
	}
	var u models.User
	if err := store.Decode(doc, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (d *Directory) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	docs, err := d.db.Query(ctx, Collection, "email", normalize.Email(email))
	if err != nil {
		return nil, fmt.Errorf("users: query email: %w", err)
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	var u models.User
	if err := store.Decode(docs[0], &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// VerifyPassword checks a plaintext password against the stored hash.
func (d *Directory) VerifyPassword(u *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

func decodeAll(docs []store.Doc) ([]*models.User, error) {
	out := make([]*models.User, 0, len(docs))
	for _, doc := range docs {
		var u models.User
		if err := store.Decode(doc, &u); err != nil {
			return nil, err
		}
		out = append(out, &u)
	}
	return out, nil
}
