package payrollstore

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
	col recordstore.Collection[models.Payroll]
}

func New(db *mongo.Database) *Store {
	return &Store{col: recordstore.NewCollection[models.Payroll](db, models.EntityPayrolls, "pay_date")}
}

func filterFor(q models.PayrollQuery) bson.M {
	f := bson.M{}
	recordstore.MatchID(f, "_id", q.ID)
	recordstore.MatchID(f, "user_id", q.UserID)
	return f
}

// List returns one page of the tenant's payrolls, latest pay date first.
func (s *Store) List(ctx context.Context, q models.PayrollQuery, lq models.ListQuery) (models.Paginated[models.Payroll], error) {
	return s.col.List(ctx, filterFor(q), lq)
}

// All returns every matching payroll for export.
func (s *Store) All(ctx context.Context, q models.PayrollQuery) ([]models.Payroll, error) {
	return s.col.All(ctx, filterFor(q))
}

func (s *Store) Get(ctx context.Context, id string) (models.Payroll, error) {
	return s.col.Get(ctx, id)
}

// Create inserts p into the caller's tenant and returns the stored record.
func (s *Store) Create(ctx context.Context, p models.Payroll) (models.Payroll, error) {
	tid := tenant.IDFromContext(ctx)
	if tid == "" {
		return models.Payroll{}, tenant.ErrNoTenant
	}
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.TenantID = tid
	p.CreatedAt, p.UpdatedAt = now, now
	if err := s.col.Insert(ctx, p); err != nil {
		return models.Payroll{}, err
	}
	return p, nil
}

// Update replaces the editable fields of payroll id with those of p.
func (s *Store) Update(ctx context.Context, id string, p models.Payroll) (models.Payroll, error) {
	cur, err := s.col.Get(ctx, id)
	if err != nil {
		return models.Payroll{}, err
	}
	p.ID, p.TenantID, p.CreatedAt = cur.ID, cur.TenantID, cur.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	if err := s.col.Replace(ctx, id, p); err != nil {
		return models.Payroll{}, err
	}
	return p, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	return s.col.Delete(ctx, id)
}
