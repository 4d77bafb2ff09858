package vacationstore

import (
	"context"
	"time"

	recordstore "github.com/dalemusser/hrms/internal/app/store/records"
	"github.com/dalemusser/hrms/internal/app/system/tenant"
	"github.com/dalemusser/hrms/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	col recordstore.Collection[models.Vacation]
}

func New(db *mongo.Database) *Store {
	return &Store{col: recordstore.NewCollection[models.Vacation](db, models.EntityVacations, "start_date")}
}

func filterFor(q models.VacationQuery) bson.M {
	f := bson.M{}
	recordstore.MatchID(f, "_id", q.ID)
	recordstore.MatchID(f, "user_id", q.UserID)
	return f
}

// List returns one page of the tenant's vacations, newest start first.
func (s *Store) List(ctx context.Context, q models.VacationQuery, lq models.ListQuery) (models.Paginated[models.Vacation], error) {
	return s.col.List(ctx, filterFor(q), lq)
}

// All returns every matching vacation for export.
func (s *Store) All(ctx context.Context, q models.VacationQuery) ([]models.Vacation, error) {
	return s.col.All(ctx, filterFor(q))
}

func (s *Store) Get(ctx context.Context, id string) (models.Vacation, error) {
	return s.col.Get(ctx, id)
}

// Create inserts v into the caller's tenant and returns the stored record.
func (s *Store) Create(ctx context.Context, v models.Vacation) (models.Vacation, error) {
	tid := tenant.IDFromContext(ctx)
	if tid == "" {
		return models.Vacation{}, tenant.ErrNoTenant
	}
	now := time.Now().UTC()
	v.ID = primitive.NewObjectID()
	v.TenantID = tid
	v.CreatedAt, v.UpdatedAt = now, now
	if err := s.col.Insert(ctx, v); err != nil {
		return models.Vacation{}, err
	}
	return v, nil
}

// Update replaces the editable fields of vacation id with those of v.
func (s *Store) Update(ctx context.Context, id string, v models.Vacation) (models.Vacation, error) {
	cur, err := s.col.Get(ctx, id)
	if err != nil {
		return models.Vacation{}, err
	}
	v.ID, v.TenantID, v.CreatedAt = cur.ID, cur.TenantID, cur.CreatedAt
	v.UpdatedAt = time.Now().UTC()
	if err := s.col.Replace(ctx, id, v); err != nil {
		return models.Vacation{}, err
	}
	return v, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	return s.col.Delete(ctx, id)
}
