// Package validators attaches $jsonSchema validators to the HR collections.
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/hrms/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if err := ensureCollection(ctx, db, coll, logger); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				logger.Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
			return
		}
		logger.Info("validator ensured", zap.String("collection", coll))
	}

	for _, s := range Schemas() {
		ensure(s.Collection, s.Schema)
	}
	ensure("audit_events", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// CollectionSchema pairs a collection with its validator document.
type CollectionSchema struct {
	Collection string
	Schema     bson.M
}

// Schemas returns the validator for every entity collection.
func Schemas() []CollectionSchema {
	return []CollectionSchema{
		{models.EntityUsers, usersSchema()},
		{models.EntityPayrolls, payrollsSchema()},
		{models.EntityVacations, vacationsSchema()},
		{models.EntityTimeTrackings, timeTrackingsSchema()},
		{models.EntityPerformanceEvaluations, evaluationsSchema()},
	}
}

/* ---------------------- collection helpers ---------------------- */

func ensureCollection(ctx context.Context, db *mongo.Database, name string, logger *zap.Logger) error {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err == nil && len(names) > 0 {
		return nil
	}
	if err := db.CreateCollection(ctx, name); err != nil {
		if isNamespaceExistsErr(err) {
			return nil
		}
		logger.Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return err
	}
	logger.Info("created collection", zap.String("collection", name))
	return nil
}

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	return db.RunCommand(ctx, cmd).Decode(&out)
}

/* ------------------------- error helpers ------------------------- */

func commandErrorMatches(err error, code int32, fragments ...string) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == code {
		return true
	}
	s := strings.ToLower(err.Error())
	for _, f := range fragments {
		if strings.Contains(s, f) {
			return true
		}
	}
	return false
}

func isNamespaceExistsErr(err error) bool {
	return commandErrorMatches(err, 48, "already exists", "namespace exists")
}

func isNoSuchCommand(err error) bool {
	return commandErrorMatches(err, 59, "no such command")
}

func isNotImplemented(err error) bool {
	return commandErrorMatches(err, 115, "not implemented", "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var (
	nonEmpty = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}
	objectID = bson.M{"bsonType": "objectId"}
	date     = bson.M{"bsonType": "date"}
	number   = bson.M{"bsonType": bson.A{"double", "int", "long", "decimal"}}
)

func entitySchema(required bson.A, props bson.M) bson.M {
	props["tenant_id"] = nonEmpty
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType":   "object",
			"required":   append(bson.A{"tenant_id"}, required...),
			"properties": props,
		},
	}
}

func usersSchema() bson.M {
	methods := bson.A{}
	for _, m := range models.AllAuthMethods {
		methods = append(methods, m.Value)
	}
	return entitySchema(
		bson.A{"email", "email_ci", "status", "auth_method"},
		bson.M{
			"email":       nonEmpty,
			"email_ci":    nonEmpty,
			"first_name":  bson.M{"bsonType": "string"},
			"last_name":   bson.M{"bsonType": "string"},
			"roles":       bson.M{"bsonType": bson.A{"array", "null"}, "items": bson.M{"bsonType": "string"}},
			"status":      bson.M{"enum": bson.A{models.StatusActive, models.StatusDisabled}},
			"auth_method": bson.M{"enum": methods},
		},
	)
}

func payrollsSchema() bson.M {
	return entitySchema(
		bson.A{"pay_date", "gross_salary", "deductions", "net_salary", "user_id"},
		bson.M{
			"pay_date":     date,
			"gross_salary": bson.M{"bsonType": number["bsonType"], "minimum": 0},
			"deductions":   bson.M{"bsonType": number["bsonType"], "minimum": 0},
			"net_salary":   number,
			"user_id":      objectID,
		},
	)
}

func vacationsSchema() bson.M {
	return entitySchema(
		bson.A{"start_date", "end_date", "days_taken", "user_id"},
		bson.M{
			"start_date": date,
			"end_date":   date,
			"days_taken": bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
			"user_id":    objectID,
		},
	)
}

func timeTrackingsSchema() bson.M {
	return entitySchema(
		bson.A{"date", "hours_worked", "user_id"},
		bson.M{
			"date":         date,
			"hours_worked": bson.M{"bsonType": number["bsonType"], "minimum": 0, "maximum": 24},
			"user_id":      objectID,
		},
	)
}

func evaluationsSchema() bson.M {
	return entitySchema(
		bson.A{"evaluation_date", "score", "user_id", "evaluator_id"},
		bson.M{
			"evaluation_date": date,
			"score":           bson.M{"bsonType": number["bsonType"], "minimum": 0, "maximum": 100},
			"comments":        bson.M{"bsonType": "string"},
			"user_id":         objectID,
			"evaluator_id":    objectID,
		},
	)
}
