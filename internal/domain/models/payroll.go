// internal/domain/models/payroll.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payroll is a single pay run for one user.
// NetSalary is derived (GrossSalary - Deductions) when the record is written.
type Payroll struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	TenantID    string             `bson:"tenant_id" json:"tenant_id"`
	PayDate     time.Time          `bson:"pay_date" json:"pay_date"`
	GrossSalary float64            `bson:"gross_salary" json:"gross_salary"`
	Deductions  float64            `bson:"deductions" json:"deductions"`
	NetSalary   float64            `bson:"net_salary" json:"net_salary"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// PayrollQuery filters payroll lists (exact match, AND).
type PayrollQuery struct {
	ID     string
	UserID string
}
