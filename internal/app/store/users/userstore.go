package userstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	recordstore "github.com/dalemusser/hrms/internal/app/store/records"
	"github.com/dalemusser/hrms/internal/app/system/tenant"
	"github.com/dalemusser/hrms/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
var ErrDuplicateEmail = errors.New("a user with this email already exists")

type Store struct {
	c        *mongo.Collection
	users    recordstore.Collection[models.User]
	profiles recordstore.Collection[models.UserProfile]
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:        db.Collection(models.EntityUsers),
		users:    recordstore.NewCollection[models.User](db, models.EntityUsers, "created_at"),
		profiles: recordstore.NewCollection[models.UserProfile](db, models.EntityUsers, "created_at"),
	}
}

func filterFor(q models.UserQuery) bson.M {
	f := bson.M{}
	recordstore.MatchID(f, "_id", q.ID)
	if e := strings.TrimSpace(q.Email); e != "" {
		f["email_ci"] = text.Fold(e)
	}
	return f
}

// List returns one page of the tenant's users.
func (s *Store) List(ctx context.Context, q models.UserQuery, lq models.ListQuery) (models.Paginated[models.User], error) {
	return s.users.List(ctx, filterFor(q), lq)
}

// ListProfiles returns one page of the tenant's user profiles.
func (s *Store) ListProfiles(ctx context.Context, lq models.ListQuery) (models.Paginated[models.UserProfile], error) {
	return s.profiles.List(ctx, bson.M{}, lq)
}

// GetByID loads a user of the caller's tenant.
func (s *Store) GetByID(ctx context.Context, id string) (models.User, error) {
	return s.users.Get(ctx, id)
}

// Exists reports whether id is a user of the caller's tenant.
func (s *Store) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	filter := bson.M{"_id": id}
	if err := tenant.FilterCtx(ctx, filter); err != nil {
		return false, err
	}
	n, err := s.c.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check user: %w", err)
	}
	return n > 0, nil
}

// GetByEmail looks up a user by case-insensitive email across tenants.
// It is used by sign-in, before any tenant is known.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"email_ci": text.Fold(strings.TrimSpace(email))}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, recordstore.ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// Create inserts u into the caller's tenant.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	tid := tenant.IDFromContext(ctx)
	if tid == "" {
		return models.User{}, tenant.ErrNoTenant
	}
	u.TenantID = tid
	return s.insert(ctx, u)
}

func (s *Store) insert(ctx context.Context, u models.User) (models.User, error) {
	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	u.EmailCI = text.Fold(strings.TrimSpace(u.Email))
	if u.Status == "" {
		u.Status = models.StatusActive
	}
	if u.AuthMethod == "" {
		u.AuthMethod = models.AuthMethodTrust
	}
	u.CreatedAt, u.UpdatedAt = now, now
	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// EnsureUser creates u (in u.TenantID) unless a user with its email
// already exists; the existing user's password hash and roles are then
// refreshed. It seeds the first owner at startup.
func (s *Store) EnsureUser(ctx context.Context, u models.User) (models.User, bool, error) {
	existing, err := s.GetByEmail(ctx, u.Email)
	switch {
	case err == nil:
		set := bson.M{"roles": u.Roles, "updated_at": time.Now().UTC()}
		if u.PasswordHash != "" {
			set["password_hash"] = u.PasswordHash
			set["auth_method"] = models.AuthMethodPassword
		}
		if _, err := s.c.UpdateOne(ctx, bson.M{"_id": existing.ID}, bson.M{"$set": set}); err != nil {
			return models.User{}, false, fmt.Errorf("refresh user: %w", err)
		}
		return existing, false, nil
	case errors.Is(err, recordstore.ErrNotFound):
		created, err := s.insert(ctx, u)
		return created, err == nil, err
	default:
		return models.User{}, false, err
	}
}

// SetStatus enables or disables a user of the caller's tenant.
func (s *Store) SetStatus(ctx context.Context, id, status string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return recordstore.ErrNotFound
	}
	filter := bson.M{"_id": oid}
	if err := tenant.FilterCtx(ctx, filter); err != nil {
		return err
	}
	res, err := s.c.UpdateOne(ctx, filter,
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}})
	if err != nil {
		return fmt.Errorf("set user status: %w", err)
	}
	if res.MatchedCount == 0 {
		return recordstore.ErrNotFound
	}
	return nil
}
