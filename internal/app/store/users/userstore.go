package userstore

import (
	"context"
	"errors"

	"github.com/dalemusser/ejchub/internal/app/store/docstore"
	"github.com/dalemusser/ejchub/internal/app/system/normalize"
	"github.com/dalemusser/ejchub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicateUsername is returned when a write would give two accounts the same username.
var ErrDuplicateUsername = errors.New("a user with this username already exists")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(docstore.UsersCollection)}
}

// List returns every account, oldest first.
func (s *Store) List(ctx context.Context) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.User{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID loads a user by id. Returns docstore.ErrNotFound if absent.
func (s *Store) GetByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, docstore.NotFound(err)
	}
	return &u, nil
}

// GetByUsername looks up a user by case-insensitive username.
func (s *Store) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"username": normalize.Username(username)}).Decode(&u); err != nil {
		return nil, docstore.NotFound(err)
	}
	return &u, nil
}

// Put writes the full document, inserting it when the id is new.
func (s *Store) Put(ctx context.Context, u models.User) error {
	u.Username = normalize.Username(u.Username)
	_, err := s.c.ReplaceOne(ctx, bson.M{"_id": u.ID}, u, options.Replace().SetUpsert(true))
	if wafflemongo.IsDup(err) {
		return ErrDuplicateUsername
	}
	return err
}

// Create inserts a new account. Fails with ErrDuplicateUsername when the
// username (or id) is already taken.
func (s *Store) Create(ctx context.Context, u models.User) error {
	u.Username = normalize.Username(u.Username)
	_, err := s.c.InsertOne(ctx, u)
	if wafflemongo.IsDup(err) {
		return ErrDuplicateUsername
	}
	return err
}

// Delete removes the account. Returns docstore.ErrNotFound if nothing was deleted.
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

// Count returns the number of accounts.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.D{})
}
