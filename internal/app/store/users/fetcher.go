package userstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/hrms/internal/app/system/auth"
	"github.com/dalemusser/hrms/internal/app/system/timeouts"
	"github.com/dalemusser/hrms/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Fetcher implements auth.UserFetcher to load fresh user data on each request.
type Fetcher struct {
	users *mongo.Collection
}

// NewFetcher creates a UserFetcher that queries the given database.
func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{users: db.Collection(models.EntityUsers)}
}

// FetchSessionUser reloads the user with id. Missing or disabled users
// yield auth.ErrUserGone; database failures are returned as-is.
func (f *Fetcher) FetchSessionUser(ctx context.Context, id string) (*auth.SessionUser, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, auth.ErrUserGone
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	var u models.User
	proj := options.FindOne().SetProjection(bson.M{
		"_id":        1,
		"tenant_id":  1,
		"email":      1,
		"first_name": 1,
		"last_name":  1,
		"roles":      1,
		"status":     1,
	})
	if err := f.users.FindOne(ctx, bson.M{"_id": oid}, proj).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, auth.ErrUserGone
		}
		return nil, fmt.Errorf("fetch session user: %w", err)
	}
	if u.Status == models.StatusDisabled {
		return nil, auth.ErrUserGone
	}
	return SessionUser(u), nil
}

// SessionUser projects u onto the session shape.
func SessionUser(u models.User) *auth.SessionUser {
	return &auth.SessionUser{
		ID:        u.ID.Hex(),
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Roles:     append([]string(nil), u.Roles...),
		TenantID:  u.TenantID,
	}
}
