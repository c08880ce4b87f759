// internal/app/store/userlogs/userlogstore.go
package userlogstore

import (
	"context"

	"github.com/dalemusser/ejchub/internal/app/store/docstore"
	"github.com/dalemusser/ejchub/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store manages the append-only activity log.
type Store struct {
	c *mongo.Collection
}

// New creates a new log Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(docstore.LogsCollection)}
}

// Add appends an entry. An empty ID is filled with a new UUID.
func (s *Store) Add(ctx context.Context, entry models.UserLog) (models.UserLog, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if _, err := s.c.InsertOne(ctx, entry); err != nil {
		return models.UserLog{}, err
	}
	return entry, nil
}

// List returns entries newest first. limit <= 0 means all.
func (s *Store) List(ctx context.Context, limit int64) ([]models.UserLog, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.UserLog{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountSince counts entries with timestamp >= sinceMillis.
func (s *Store) CountSince(ctx context.Context, sinceMillis int64) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"timestamp": bson.M{"$gte": sinceMillis}})
}
