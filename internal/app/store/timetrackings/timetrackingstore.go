package timetrackingstore

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
	col recordstore.Collection[models.TimeTracking]
}

func New(db *mongo.Database) *Store {
	return &Store{col: recordstore.NewCollection[models.TimeTracking](db, models.EntityTimeTrackings, "date")}
}

func filterFor(q models.TimeTrackingQuery) bson.M {
	f := bson.M{}
	recordstore.MatchID(f, "_id", q.ID)
	recordstore.MatchID(f, "user_id", q.UserID)
	return f
}

// List returns one page of the tenant's time tracking entries.
func (s *Store) List(ctx context.Context, q models.TimeTrackingQuery, lq models.ListQuery) (models.Paginated[models.TimeTracking], error) {
	return s.col.List(ctx, filterFor(q), lq)
}

// All returns every matching time tracking entry for export.
func (s *Store) All(ctx context.Context, q models.TimeTrackingQuery) ([]models.TimeTracking, error) {
	return s.col.All(ctx, filterFor(q))
}

func (s *Store) Get(ctx context.Context, id string) (models.TimeTracking, error) {
	return s.col.Get(ctx, id)
}

// Create inserts t into the caller's tenant and returns the stored record.
func (s *Store) Create(ctx context.Context, t models.TimeTracking) (models.TimeTracking, error) {
	tid := tenant.IDFromContext(ctx)
	if tid == "" {
		return models.TimeTracking{}, tenant.ErrNoTenant
	}
	now := time.Now().UTC()
	t.ID = primitive.NewObjectID()
	t.TenantID = tid
	t.CreatedAt, t.UpdatedAt = now, now
	if err := s.col.Insert(ctx, t); err != nil {
		return models.TimeTracking{}, err
	}
	return t, nil
}

// Update replaces the editable fields of time tracking entry id with those of t.
func (s *Store) Update(ctx context.Context, id string, t models.TimeTracking) (models.TimeTracking, error) {
	cur, err := s.col.Get(ctx, id)
	if err != nil {
		return models.TimeTracking{}, err
	}
	t.ID, t.TenantID, t.CreatedAt = cur.ID, cur.TenantID, cur.CreatedAt
	t.UpdatedAt = time.Now().UTC()
	if err := s.col.Replace(ctx, id, t); err != nil {
		return models.TimeTracking{}, err
	}
	return t, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	return s.col.Delete(ctx, id)
}
