// Package mongo stores key-value pairs as documents in a MongoDB collection.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tapstampr/internal/domain/repositories"
)

// CollectionName is the collection key-value documents live in
const CollectionName = "kv_store"

type kvDocument struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// KVStore implements repositories.KeyValueStore over a MongoDB collection
type KVStore struct {
	c *mongo.Collection
}

var _ repositories.KeyValueStore = (*KVStore)(nil)

// New creates a key-value store backed by db
func New(db *mongo.Database) *KVStore {
	return &KVStore{c: db.Collection(CollectionName)}
}

// Connect dials uri and verifies the connection with a ping
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

func (s *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	var doc kvDocument
	err := s.c.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get key %q: %w", key, err)
	}
	return doc.Value, true, nil
}

func (s *KVStore) Set(ctx context.Context, key, value string) error {
	doc := kvDocument{Key: key, Value: value, UpdatedAt: time.Now()}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.c.ReplaceOne(ctx, bson.M{"_id": key}, doc, opts); err != nil {
		return fmt.Errorf("set key %q: %w", key, err)
	}
	return nil
}

func (s *KVStore) Remove(ctx context.Context, key string) error {
	if _, err := s.c.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("remove key %q: %w", key, err)
	}
	return nil
}
