// internal/app/store/mongostore/mongostore.go

// Package mongostore implements store.Adapter on a hosted MongoDB
// database. Documents keep the opaque string ids generated by the
// application as their _id, so records are portable between this
// backend and localstore.
package mongostore

import (
	"context"
	"errors"
	"fmt"

	"github.com/krcapps/orderdash/internal/app/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	db *mongo.Database
}

// New wraps the given database as a store.Adapter.
func New(db *mongo.Database) *Store {
	return &Store{db: db}
}

// List returns every document in natural (insertion) order.
func (s *Store) List(ctx context.Context, collection string) ([]store.Doc, error) {
	return s.find(ctx, collection, bson.M{})
}

// Get returns one document by id, or store.ErrNotFound.
func (s *Store) Get(ctx context.Context, collection, id string) (store.Doc, error) {
	var d store.Doc
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongostore: get %s/%s: %w", collection, id, err)
	}
	return d, nil
}

// Put inserts or replaces the document with the given id.
func (s *Store) Put(ctx context.Context, collection, id string, doc store.Doc) error {
	d := make(store.Doc, len(doc)+1)
	for k, v := range doc {
		d[k] = v
	}
	d["_id"] = id

	opts := options.Replace().SetUpsert(true)
	if _, err := s.db.Collection(collection).ReplaceOne(ctx, bson.M{"_id": id}, d, opts); err != nil {
		return fmt.Errorf("mongostore: put %s/%s: %w", collection, id, err)
	}
	return nil
}

// Patch merges fields into an existing document via $set.
func (s *Store) Patch(ctx context.Context, collection, id string, fields store.Doc) error {
	set := bson.M{}
	for k, v := range fields {
		if k == "_id" {
			continue
		}
		set[k] = v
	}
	res, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("mongostore: patch %s/%s: %w", collection, id, err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Delete removes one document; store.ErrNotFound if nothing matched.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	res, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("mongostore: delete %s/%s: %w", collection, id, err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Query returns documents whose field equals value.
func (s *Store) Query(ctx context.Context, collection, field string, value any) ([]store.Doc, error) {
	return s.find(ctx, collection, bson.M{field: value})
}

// Ping verifies connectivity to the server.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, nil)
}

func (s *Store) find(ctx context.Context, collection string, filter bson.M) ([]store.Doc, error) {
	cur, err := s.db.Collection(collection).Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("mongostore: find %s: %w", collection, err)
	}
	defer cur.Close(ctx)

	var out []store.Doc
	for cur.Next(ctx) {
		var d store.Doc
		if err := cur.Decode(&d); err != nil {
			return nil, fmt.Errorf("mongostore: decode %s: %w", collection, err)
		}
		out = append(out, d)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("mongostore: cursor %s: %w", collection, err)
	}
	return out, nil
}
