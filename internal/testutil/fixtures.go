package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/hrms/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures inserts test documents directly, bypassing the stores.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) insert(ctx context.Context, coll string, doc any) {
	f.t.Helper()
	if _, err := f.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("insert %s fixture: %v", coll, err)
	}
}

// CreateUser inserts an active user in tenantID.
func (f *Fixtures) CreateUser(ctx context.Context, tenantID, first, last, email string, roles ...string) models.User {
	f.t.Helper()
	now := time.Now().UTC()
	u := models.User{
		ID:         primitive.NewObjectID(),
		TenantID:   tenantID,
		Email:      email,
		EmailCI:    text.Fold(email),
		FirstName:  first,
		LastName:   last,
		Roles:      roles,
		AuthMethod: models.AuthMethodTrust,
		Status:     models.StatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	f.insert(ctx, models.EntityUsers, u)
	return u
}

// CreateVacation inserts a vacation of days days starting at start.
func (f *Fixtures) CreateVacation(ctx context.Context, tenantID string, userID primitive.ObjectID, start time.Time, days int) models.Vacation {
	f.t.Helper()
	now := time.Now().UTC()
	v := models.Vacation{
		ID:        primitive.NewObjectID(),
		TenantID:  tenantID,
		StartDate: start,
		EndDate:   start.AddDate(0, 0, days),
		DaysTaken: days,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, models.EntityVacations, v)
	return v
}

// CreatePayroll inserts a payroll paid on payDate.
func (f *Fixtures) CreatePayroll(ctx context.Context, tenantID string, userID primitive.ObjectID, payDate time.Time, gross, deductions float64) models.Payroll {
	f.t.Helper()
	now := time.Now().UTC()
	p := models.Payroll{
		ID:          primitive.NewObjectID(),
		TenantID:    tenantID,
		PayDate:     payDate,
		GrossSalary: gross,
		Deductions:  deductions,
		NetSalary:   gross - deductions,
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.insert(ctx, models.EntityPayrolls, p)
	return p
}

// CreateTimeTracking inserts a time tracking entry.
func (f *Fixtures) CreateTimeTracking(ctx context.Context, tenantID string, userID primitive.ObjectID, day time.Time, hours float64) models.TimeTracking {
	f.t.Helper()
	now := time.Now().UTC()
	tt := models.TimeTracking{
		ID:          primitive.NewObjectID(),
		TenantID:    tenantID,
		Date:        day,
		HoursWorked: hours,
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.insert(ctx, models.EntityTimeTrackings, tt)
	return tt
}

// CreateEvaluation inserts a performance evaluation.
func (f *Fixtures) CreateEvaluation(ctx context.Context, tenantID string, userID, evaluatorID primitive.ObjectID, day time.Time, score float64) models.PerformanceEvaluation {
	f.t.Helper()
	now := time.Now().UTC()
	e := models.PerformanceEvaluation{
		ID:             primitive.NewObjectID(),
		TenantID:       tenantID,
		EvaluationDate: day,
		Score:          score,
		UserID:         userID,
		EvaluatorID:    evaluatorID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	f.insert(ctx, models.EntityPerformanceEvaluations, e)
	return e
}
