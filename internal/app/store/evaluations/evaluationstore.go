package evaluationstore

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
	col recordstore.Collection[models.PerformanceEvaluation]
}

func New(db *mongo.Database) *Store {
	return &Store{col: recordstore.NewCollection[models.PerformanceEvaluation](db, models.EntityPerformanceEvaluations, "evaluation_date")}
}

func filterFor(q models.PerformanceEvaluationQuery) bson.M {
	f := bson.M{}
	recordstore.MatchID(f, "_id", q.ID)
	recordstore.MatchString(f, "comments", q.Comments)
	recordstore.MatchID(f, "user_id", q.UserID)
	recordstore.MatchID(f, "evaluator_id", q.EvaluatorID)
	return f
}

// List returns one page of the tenant's performance evaluations,
// most recent evaluation first.
func (s *Store) List(ctx context.Context, q models.PerformanceEvaluationQuery, lq models.ListQuery) (models.Paginated[models.PerformanceEvaluation], error) {
	return s.col.List(ctx, filterFor(q), lq)
}

// All returns every matching evaluation for export.
func (s *Store) All(ctx context.Context, q models.PerformanceEvaluationQuery) ([]models.PerformanceEvaluation, error) {
	return s.col.All(ctx, filterFor(q))
}

func (s *Store) Get(ctx context.Context, id string) (models.PerformanceEvaluation, error) {
	return s.col.Get(ctx, id)
}

// Create inserts e into the caller's tenant and returns the stored record.
func (s *Store) Create(ctx context.Context, e models.PerformanceEvaluation) (models.PerformanceEvaluation, error) {
	tid := tenant.IDFromContext(ctx)
	if tid == "" {
		return models.PerformanceEvaluation{}, tenant.ErrNoTenant
	}
	now := time.Now().UTC()
	e.ID = primitive.NewObjectID()
	e.TenantID = tid
	e.CreatedAt, e.UpdatedAt = now, now
	if err := s.col.Insert(ctx, e); err != nil {
		return models.PerformanceEvaluation{}, err
	}
	return e, nil
}

// Update replaces the editable fields of evaluation id with those of e.
func (s *Store) Update(ctx context.Context, id string, e models.PerformanceEvaluation) (models.PerformanceEvaluation, error) {
	cur, err := s.col.Get(ctx, id)
	if err != nil {
		return models.PerformanceEvaluation{}, err
	}
	e.ID, e.TenantID, e.CreatedAt = cur.ID, cur.TenantID, cur.CreatedAt
	e.UpdatedAt = time.Now().UTC()
	if err := s.col.Replace(ctx, id, e); err != nil {
		return models.PerformanceEvaluation{}, err
	}
	return e, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	return s.col.Delete(ctx, id)
}
