package registrationstore

import (
	"context"

	"github.com/dalemusser/ejchub/internal/app/store/docstore"
	"github.com/dalemusser/ejchub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(docstore.RegistrationsCollection)}
}

// List returns every registration, newest first.
func (s *Store) List(ctx context.Context) ([]models.Registration, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Registration{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID loads a registration. Returns docstore.ErrNotFound if absent.
func (s *Store) GetByID(ctx context.Context, id string) (*models.Registration, error) {
	var r models.Registration
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		return nil, docstore.NotFound(err)
	}
	return &r, nil
}

// Put fully replaces the stored document (insert when new).
func (s *Store) Put(ctx context.Context, r models.Registration) error {
	_, err := s.c.ReplaceOne(ctx, bson.M{"_id": r.ID}, r, options.Replace().SetUpsert(true))
	return err
}

// Delete removes a registration. Returns docstore.ErrNotFound if nothing was deleted.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

// Count returns the number of registrations.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.D{})
}
