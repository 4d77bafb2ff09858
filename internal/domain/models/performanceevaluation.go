// internal/domain/models/performanceevaluation.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PerformanceEvaluation is a scored review of one user by an evaluator.
type PerformanceEvaluation struct {
	ID             primitive.ObjectID `bson:"_id" json:"id"`
	TenantID       string             `bson:"tenant_id" json:"tenant_id"`
	EvaluationDate time.Time          `bson:"evaluation_date" json:"evaluation_date"`
	Score          float64            `bson:"score" json:"score"`
	Comments       string             `bson:"comments,omitempty" json:"comments,omitempty"`
	UserID         primitive.ObjectID `bson:"user_id" json:"user_id"`
	EvaluatorID    primitive.ObjectID `bson:"evaluator_id" json:"evaluator_id"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// PerformanceEvaluationQuery filters evaluation lists (exact match, AND).
type PerformanceEvaluationQuery struct {
	ID          string
	Comments    string
	UserID      string
	EvaluatorID string
}
