package userstore

import (
	"context"

	"github.com/dalemusser/ejchub/internal/app/store/docstore"
	"github.com/dalemusser/ejchub/internal/app/system/auth"
	"github.com/dalemusser/ejchub/internal/app/system/timeouts"
	"github.com/dalemusser/ejchub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Fetcher implements auth.UserFetcher to load fresh user data on each request.
type Fetcher struct {
	users *mongo.Collection
}

// NewFetcher creates a UserFetcher that queries the given database.
func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{users: db.Collection(docstore.UsersCollection)}
}

// FetchUser retrieves a user by ID and returns nil if the user is not found,
// deactivated, or if any error occurs.
func (f *Fetcher) FetchUser(ctx context.Context, userID string) *auth.SessionUser {
	if userID == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	var u models.User
	proj := options.FindOne().SetProjection(bson.M{
		"_id":            1,
		"username":       1,
		"full_name":      1,
		"role":           1,
		"is_active":      1,
		"is_first_login": 1,
	})
	if err := f.users.FindOne(ctx, bson.M{"_id": userID}, proj).Decode(&u); err != nil {
		return nil
	}
	if !u.IsActive {
		return nil
	}

	return SessionUser(u)
}

// SessionUser is the session view of u.
func SessionUser(u models.User) *auth.SessionUser {
	return &auth.SessionUser{
		ID:         u.ID,
		Username:   u.Username,
		Name:       u.FullName,
		Role:       u.Role,
		FirstLogin: u.IsFirstLogin,
	}
}
