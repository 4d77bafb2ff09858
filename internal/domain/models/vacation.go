// internal/domain/models/vacation.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Vacation is a block of leave taken by a user.
type Vacation struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	TenantID  string             `bson:"tenant_id" json:"tenant_id"`
	StartDate time.Time          `bson:"start_date" json:"start_date"`
	EndDate   time.Time          `bson:"end_date" json:"end_date"`
	DaysTaken int                `bson:"days_taken" json:"days_taken"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// VacationQuery filters vacation lists (exact match, AND).
type VacationQuery struct {
	ID     string
	UserID string
}
