// internal/app/store/localstore/localstore.go

// Package localstore implements store.Adapter on top of plain JSON
// files, one per collection, each holding an ordered array of
// documents. It is the direct descendant of the prototype's
// browser-local storage and doubles as the hermetic test backend.
package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/krcapps/orderdash/internal/app/store"
)

type collection struct {
	docs  []store.Doc
	index map[string]int // id -> position in docs
}

// Store is a file-backed store.Adapter. All operations are guarded by
// a single mutex and flushed to disk before returning, so a crashed
// process never loses an acknowledged write.
type Store struct {
	mu   sync.Mutex
	dir  string
	cols map[string]*collection
}

// New opens (or creates) a local store rooted at dir.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("localstore: create %s: %w", dir, err)
	}
	return &Store{dir: dir, cols: make(map[string]*collection)}, nil
}

func (s *Store) load(name string) (*collection, error) {
	if c, ok := s.cols[name]; ok {
		return c, nil
	}
	c := &collection{index: make(map[string]int)}
	raw, err := os.ReadFile(s.path(name))
	switch {
	case os.IsNotExist(err):
		// new collection
	case err != nil:
		return nil, fmt.Errorf("localstore: read %s: %w", name, err)
	default:
		if err := json.Unmarshal(raw, &c.docs); err != nil {
			return nil, fmt.Errorf("localstore: parse %s: %w", name, err)
		}
		for i, d := range c.docs {
			if id, ok := d["_id"].(string); ok {
				c.index[id] = i
			}
		}
	}
	s.cols[name] = c
	return c, nil
}

func (s *Store) flush(name string, c *collection) error {
	raw, err := json.MarshalIndent(c.docs, "", "  ")
	if err != nil {
		return fmt.Errorf("localstore: marshal %s: %w", name, err)
	}
	tmp := s.path(name) + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("localstore: write %s: %w", name, err)
	}
	if err := os.Rename(tmp, s.path(name)); err != nil {
		return fmt.Errorf("localstore: rename %s: %w", name, err)
	}
	return nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// List returns every document in the collection in insertion order.
func (s *Store) List(ctx context.Context, collection string) ([]store.Doc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.load(collection)
	if err != nil {
		return nil, err
	}
	out := make([]store.Doc, len(c.docs))
	for i, d := range c.docs {
		out[i] = cloneDoc(d)
	}
	return out, nil
}

// Get returns the document with the given id, or store.ErrNotFound.
func (s *Store) Get(ctx context.Context, collection, id string) (store.Doc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.load(collection)
	if err != nil {
		return nil, err
	}
	i, ok := c.index[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneDoc(c.docs[i]), nil
}

// Put inserts or replaces the document with the given id. An insert
// appends, so insertion order is the file order.
func (s *Store) Put(ctx context.Context, collection, id string, doc store.Doc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.load(collection)
	if err != nil {
		return err
	}
	d := cloneDoc(doc)
	d["_id"] = id
	if i, ok := c.index[id]; ok {
		c.docs[i] = d
	} else {
		c.index[id] = len(c.docs)
		c.docs = append(c.docs, d)
	}
	return s.flush(collection, c)
}

// Patch merges fields into an existing document. Returns
// store.ErrNotFound if the document does not exist.
func (s *Store) Patch(ctx context.Context, collection, id string, fields store.Doc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.load(collection)
	if err != nil {
		return err
	}
	i, ok := c.index[id]
	if !ok {
		return store.ErrNotFound
	}
	for k, v := range fields {
		if k == "_id" {
			continue
		}
		c.docs[i][k] = v
	}
	return s.flush(collection, c)
}

// Delete removes the document with the given id. Deleting a missing
// document returns store.ErrNotFound so callers can decide whether
// that matters (for deletes it usually doesn't).
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.load(collection)
	if err != nil {
		return err
	}
	i, ok := c.index[id]
	if !ok {
		return store.ErrNotFound
	}
	c.docs = append(c.docs[:i], c.docs[i+1:]...)
	delete(c.index, id)
	for j := i; j < len(c.docs); j++ {
		if id2, ok := c.docs[j]["_id"].(string); ok {
			c.index[id2] = j
		}
	}
	return s.flush(collection, c)
}

// Query returns documents whose field equals value, in insertion
// order. Comparison happens on the JSON representation, matching the
// equality the hosted backend applies.
func (s *Store) Query(ctx context.Context, collection, field string, value any) ([]store.Doc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.load(collection)
	if err != nil {
		return nil, err
	}
	var out []store.Doc
	for _, d := range c.docs {
		if jsonEqual(d[field], value) {
			out = append(out, cloneDoc(d))
		}
	}
	return out, nil
}

// Ping reports whether the backing directory is usable.
func (s *Store) Ping(ctx context.Context) error {
	_, err := os.Stat(s.dir)
	return err
}

// cloneDoc deep-copies a document so callers can never reach the
// store's in-memory state through a returned or stored doc. Documents
// are JSON-shaped (maps, slices, scalars), so those three cases cover
// everything that can appear.
func cloneDoc(d store.Doc) store.Doc {
	out := make(store.Doc, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// jsonEqual compares two values by their JSON encoding. Documents that
// went through a file round trip hold float64/string/bool, while
// freshly encoded ones may not; comparing encodings sidesteps that.
func jsonEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ra, err := json.Marshal(a)
	if err != nil {
		return false
	}
	rb, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return string(ra) == string(rb)
}
