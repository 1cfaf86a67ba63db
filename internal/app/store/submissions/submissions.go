// Package submissions implements the submission repository: creation
// with image upload, list/filter/sort views, admin edits, and bulk
// deletion with blob release.
package submissions

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/krcapps/orderdash/internal/app/blob"
	"github.com/krcapps/orderdash/internal/app/store"
	"github.com/krcapps/orderdash/internal/app/system/htmlsanitize"
	"github.com/krcapps/orderdash/internal/app/system/inputval"
	"github.com/krcapps/orderdash/internal/app/system/normalize"
	"github.com/krcapps/orderdash/internal/domain/models"
)

// Collection is the backing collection name for submissions.
const Collection = "submissions"

// ErrNotFound is returned when a submission does not exist.
var ErrNotFound = errors.New("submission not found")

// Upload is one image arriving with a submission.
type Upload struct {
	Reader      io.Reader
	ContentType string
	Size        int64
}

// Repository mediates all submission reads and writes.
type Repository struct {
	db    store.Adapter
	blobs blob.Store
	log   *zap.Logger
}

func NewRepository(db store.Adapter, blobs blob.Store, log *zap.Logger) *Repository {
	return &Repository{db: db, blobs: blobs, log: log}
}

// Blobs exposes the image store for consumers that read blobs back,
// like the Word export.
func (r *Repository) Blobs() blob.Store { return r.blobs }

// Create validates and persists a new submission. The owner's name and
// division are copied into the record and never refreshed afterwards.
func (r *Repository) Create(ctx context.Context, ownerID, ownerName, ownerDivision string, description string, uploads []Upload) (*models.Submission, error) {
	description = htmlsanitize.Text(description)
	if verr := inputval.Description(description); verr != nil {
		return nil, verr
	}
	if verr := inputval.ImageCount(len(uploads)); verr != nil {
		return nil, verr
	}
	for _, up := range uploads {
		if verr := inputval.Image(up.ContentType, up.Size); verr != nil {
			return nil, verr
		}
	}

	now := time.Now().UTC()
	images := make([]models.Image, 0, len(uploads))
	for _, up := range uploads {
		key := blob.NewKey(now, extFor(up.ContentType))
		ref, err := r.blobs.Upload(ctx, key, up.Reader, up.Size, up.ContentType)
		if err != nil {
			// Release anything already stored so a failed create
			// leaves no orphaned blobs behind.
			r.release(ctx, images)
			return nil, fmt.Errorf("submissions: upload image: %w", err)
		}
		images = append(images, models.Image{
			Path:        key,
			Ref:         ref,
			ContentType: up.ContentType,
			Size:        up.Size,
		})
	}

	sub := &models.Submission{
		ID:           uuid.NewString(),
		UserID:       ownerID,
		UserName:     ownerName,
		UserDivision: ownerDivision,
		Description:  description,
		Images:       images,
		Timestamp:    now,
	}

	doc, err := store.Encode(sub)
	if err != nil {
		r.release(ctx, images)
		return nil, err
	}
	if err := r.db.Put(ctx, Collection, sub.ID, doc); err != nil {
		r.release(ctx, images)
		return nil, fmt.Errorf("submissions: create: %w", err)
	}

	r.log.Info("submission created",
		zap.String("submission_id", sub.ID),
		zap.String("user_id", ownerID),
		zap.Int("images", len(images)))
	return sub, nil
}

// ListAll returns every submission in insertion order.
func (r *Repository) ListAll(ctx context.Context) ([]*models.Submission, error) {
	docs, err := r.db.List(ctx, Collection)
	if err != nil {
		return nil, fmt.Errorf("submissions: list: %w", err)
	}
	return decodeAll(docs)
}

// ListByOwner returns one user's submissions in insertion order.
func (r *Repository) ListByOwner(ctx context.Context, userID string) ([]*models.Submission, error) {
	docs, err := r.db.Query(ctx, Collection, "userId", userID)
	if err != nil {
		return nil, fmt.Errorf("submissions: list by owner: %w", err)
	}
	return decodeAll(docs)
}

func (r *Repository) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	doc, err := r.db.Get(ctx, Collection, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("submissions: get: %w", err)
	}
	var sub models.Submission
	if err := store.Decode(doc, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// UpdatePatch is the owner-editable subset an admin may change.
type UpdatePatch struct {
	UserName    *string
	Description *string
}

// Update applies an admin edit and refreshes the timestamp.
func (r *Repository) Update(ctx context.Context, id string, patch UpdatePatch) error {
	fields := store.Doc{
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	}
	if patch.UserName != nil {
		fields["userName"] = normalize.Name(*patch.UserName)
	}
	if patch.Description != nil {
		desc := htmlsanitize.Text(*patch.Description)
		if verr := inputval.Description(desc); verr != nil {
			return verr
		}
		fields["description"] = desc
	}

	if err := r.db.Patch(ctx, Collection, id, fields); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("submissions: update: %w", err)
	}
	return nil
}

// Delete removes submissions and releases their image blobs. Blob
// release failures are logged but never block record deletion, and
// already missing records are skipped.
func (r *Repository) Delete(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		sub, err := r.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return err
		}
		if err := r.db.Delete(ctx, Collection, id); err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("submissions: delete: %w", err)
		}
		r.release(ctx, sub.Images)
		r.log.Info("submission deleted", zap.String("submission_id", id))
	}
	return nil
}

func (r *Repository) release(ctx context.Context, images []models.Image) {
	for _, img := range images {
		if err := r.blobs.Delete(ctx, img.Path); err != nil {
			r.log.Warn("failed to release image blob",
				zap.String("path", img.Path),
				zap.Error(err))
		}
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Pure views                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// DateRange bounds a filter by day. Zero times leave that end open.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Filter narrows records by a case-insensitive substring over name,
// division, and description, and by an inclusive day-granular date
// range. Both conditions compose with AND. An empty query and zero
// range return the input unchanged.
func Filter(records []*models.Submission, textQuery string, dr DateRange) []*models.Submission {
	query := normalize.Fold(strings.TrimSpace(textQuery))
	from, to := dr.From, dr.To
	if !from.IsZero() {
		from = startOfDay(from)
	}
	if !to.IsZero() {
		to = endOfDay(to)
	}
	if query == "" && from.IsZero() && to.IsZero() {
		return records
	}

	out := make([]*models.Submission, 0, len(records))
	for _, rec := range records {
		if query != "" && !matchesText(rec, query) {
			continue
		}
		if !from.IsZero() && rec.Timestamp.Before(from) {
			continue
		}
		if !to.IsZero() && rec.Timestamp.After(to) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func matchesText(rec *models.Submission, foldedQuery string) bool {
	return strings.Contains(normalize.Fold(rec.UserName), foldedQuery) ||
		strings.Contains(normalize.Fold(rec.UserDivision), foldedQuery) ||
		strings.Contains(normalize.Fold(rec.Description), foldedQuery)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).Add(24*time.Hour - time.Nanosecond)
}

// Sort keys accepted by Sort. Unknown keys leave the order unchanged.
const (
	SortByName        = "name"
	SortByDivision    = "division"
	SortByDescription = "description"
	SortByTimestamp   = "timestamp"
)

// Sort returns a stably sorted copy. Ties keep their original relative
// order so table rows do not jump between renders.
func Sort(records []*models.Submission, key, direction string) []*models.Submission {
	out := make([]*models.Submission, len(records))
	copy(out, records)

	var less func(a, b *models.Submission) bool
	switch key {
	case SortByName:
		less = func(a, b *models.Submission) bool {
			return normalize.Fold(a.UserName) < normalize.Fold(b.UserName)
		}
	case SortByDivision:
		less = func(a, b *models.Submission) bool {
			return normalize.Fold(a.UserDivision) < normalize.Fold(b.UserDivision)
		}
	case SortByDescription:
		less = func(a, b *models.Submission) bool {
			return normalize.Fold(a.Description) < normalize.Fold(b.Description)
		}
	case SortByTimestamp:
		less = func(a, b *models.Submission) bool {
			return a.Timestamp.Before(b.Timestamp)
		}
	default:
		return out
	}

	if strings.EqualFold(direction, "desc") {
		inner := less
		less = func(a, b *models.Submission) bool { return inner(b, a) }
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func extFor(contentType string) string {
	switch strings.ToLower(contentType) {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

func decodeAll(docs []store.Doc) ([]*models.Submission, error) {
	out := make([]*models.Submission, 0, len(docs))
	for _, doc := range docs {
		var sub models.Submission
		if err := store.Decode(doc, &sub); err != nil {
			return nil, err
		}
		out = append(out, &sub)
	}
	return out, nil
}
