// Package indexes reconciles the MongoDB indexes the stores rely on.
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dalemusser/hrms/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each collection set is idempotent.
Errors are aggregated so every problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	var problems []string
	for _, set := range Desired() {
		if err := ensureIndexSet(ctx, db.Collection(set.Collection), set.Indexes, logger); err != nil {
			problems = append(problems, set.Collection+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// Set is the desired index list for one collection.
type Set struct {
	Collection string
	Indexes    []mongo.IndexModel
}

// tenantSorted is the list index every entity collection needs:
// tenant first, then the list sort field newest-first.
func tenantSorted(coll, sortField string) mongo.IndexModel {
	return mongo.IndexModel{
		Keys: bson.D{
			{Key: "tenant_id", Value: 1},
			{Key: sortField, Value: -1},
			{Key: "_id", Value: -1},
		},
		Options: options.Index().SetName(fmt.Sprintf("idx_%s_tenant_%s", coll, sortField)),
	}
}

func tenantUser(coll string) mongo.IndexModel {
	return mongo.IndexModel{
		Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "user_id", Value: 1}},
		Options: options.Index().SetName(fmt.Sprintf("idx_%s_tenant_user", coll)),
	}
}

// Desired lists every index the application expects.
func Desired() []Set {
	return []Set{
		{
			Collection: models.EntityUsers,
			Indexes: []mongo.IndexModel{
				// Sign-in looks users up by email before a tenant is known,
				// so email is unique across tenants.
				{
					Keys:    bson.D{{Key: "email_ci", Value: 1}},
					Options: options.Index().SetUnique(true).SetName("uniq_users_emailci"),
				},
				tenantSorted(models.EntityUsers, "created_at"),
			},
		},
		{
			Collection: models.EntityPayrolls,
			Indexes: []mongo.IndexModel{
				tenantSorted(models.EntityPayrolls, "pay_date"),
				tenantUser(models.EntityPayrolls),
			},
		},
		{
			Collection: models.EntityVacations,
			Indexes: []mongo.IndexModel{
				tenantSorted(models.EntityVacations, "start_date"),
				tenantUser(models.EntityVacations),
			},
		},
		{
			Collection: models.EntityTimeTrackings,
			Indexes: []mongo.IndexModel{
				tenantSorted(models.EntityTimeTrackings, "date"),
				tenantUser(models.EntityTimeTrackings),
			},
		},
		{
			Collection: models.EntityPerformanceEvaluations,
			Indexes: []mongo.IndexModel{
				tenantSorted(models.EntityPerformanceEvaluations, "evaluation_date"),
				tenantUser(models.EntityPerformanceEvaluations),
				{
					Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "evaluator_id", Value: 1}},
					Options: options.Index().SetName("idx_performance_evaluations_tenant_evaluator"),
				},
			},
		},
		{
			Collection: "audit_events",
			Indexes: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "timestamp", Value: -1}},
					Options: options.Index().SetName("idx_audit_tenant_ts"),
				},
				{
					Keys: bson.D{
						{Key: "category", Value: 1},
						{Key: "event_type", Value: 1},
						{Key: "timestamp", Value: -1},
					},
					Options: options.Index().SetName("idx_audit_category_type_ts"),
				},
			},
		},
	}
}

/* -------------------------------------------------------------------------- */
/* Reconcile a set of desired indexes for one collection                      */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func isUnique(b *bool) bool { return b != nil && *b }

func listExisting(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := map[string]existingIndex{}
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			continue
		}
		out[keySig(idx.Key)] = idx
	}
	return out, cur.Err()
}

// ensureIndexSet creates missing indexes. An index whose keys exist under a
// different name is renamed; one whose uniqueness differs is rebuilt.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, want []mongo.IndexModel, logger *zap.Logger) error {
	existing, err := listExisting(ctx, coll)
	if err != nil {
		// Collection may not exist yet; CreateOne will create it.
		existing = map[string]existingIndex{}
	}

	var errs []string
	for _, m := range want {
		name := *m.Options.Name
		sig := keySig(m.Keys.(bson.D))

		if ex, ok := existing[sig]; ok {
			if ex.Name == name && isUnique(ex.Unique) == isUnique(m.Options.Unique) {
				continue
			}
			logger.Info("rebuilding index",
				zap.String("collection", coll.Name()),
				zap.String("from", ex.Name),
				zap.String("to", name),
				zap.String("keys", sig))
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s: drop %s: %v", name, ex.Name, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			logger.Warn("create index failed",
				zap.String("collection", coll.Name()),
				zap.String("name", name),
				zap.Error(err))
			errs = append(errs, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		logger.Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
