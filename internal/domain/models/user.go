// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an employee account inside a tenant.
//
// Roles are stored as the identity provider reports them (e.g. "owner",
// "hr-manager"); role comparisons normalize them first.
type User struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	TenantID     string             `bson:"tenant_id" json:"tenant_id"`
	Email        string             `bson:"email" json:"email"`
	EmailCI      string             `bson:"email_ci" json:"-"`
	FirstName    string             `bson:"first_name" json:"first_name"`
	LastName     string             `bson:"last_name" json:"last_name"`
	AvatarURL    string             `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`
	Roles        []string           `bson:"roles" json:"roles"`
	AuthMethod   string             `bson:"auth_method" json:"auth_method"` // trust | password
	PasswordHash string             `bson:"password_hash,omitempty" json:"-"`
	Status       string             `bson:"status" json:"status"` // active | disabled

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// UserProfile is the public projection of a User shown in user lists.
type UserProfile struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	FirstName string             `bson:"first_name" json:"first_name"`
	LastName  string             `bson:"last_name" json:"last_name"`
	AvatarURL string             `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`
	Email     string             `bson:"email" json:"email"`
}

// UserQuery filters user lists. Empty fields are ignored.
type UserQuery struct {
	ID    string
	Email string
}
