// internal/domain/models/timetracking.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TimeTracking records the hours a user worked on a given day.
type TimeTracking struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	TenantID    string             `bson:"tenant_id" json:"tenant_id"`
	Date        time.Time          `bson:"date" json:"date"`
	HoursWorked float64            `bson:"hours_worked" json:"hours_worked"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// TimeTrackingQuery filters time tracking lists (exact match, AND).
type TimeTrackingQuery struct {
	ID     string
	UserID string
}
