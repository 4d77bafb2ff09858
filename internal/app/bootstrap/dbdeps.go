// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/hrms/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// LoginLimiter throttles sign-in attempts; Shutdown stops it.
	LoginLimiter *ratelimit.LoginLimiter
}
