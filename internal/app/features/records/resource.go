// Package records serves list/view/create/update/delete/export endpoints
// for one tenant-scoped HR entity. Per-entity packages describe their
// entity with a Resource and mount the generic Handler.
package records

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dalemusser/hrms/internal/app/system/inputval"
	"github.com/dalemusser/hrms/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store is the persistence surface the generic handler needs.
type Store[T, Q any] interface {
	List(ctx context.Context, q Q, lq models.ListQuery) (models.Paginated[T], error)
	All(ctx context.Context, q Q) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Create(ctx context.Context, v T) (T, error)
	Update(ctx context.Context, id string, v T) (T, error)
	Delete(ctx context.Context, id string) error
}

// UserChecker reports whether a user belongs to the caller's tenant.
type UserChecker interface {
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// Resource describes one entity to the generic handler.
type Resource[T, Q any] struct {
	Entity string // collection and cache name, e.g. "payrolls"
	Label  string // singular display name, e.g. "payroll"
	Store  Store[T, Q]

	// ParseQuery reads the exact-match filters from the request.
	ParseQuery func(r *http.Request) Q
	// FilterKey canonically encodes q for the fetch cache key.
	FilterKey func(q Q) string
	// Build decodes and validates a request body into a record.
	Build func(body []byte) (T, inputval.Result)
	// ID returns the record's hex id.
	ID func(v T) string
	// UserRefs maps body field names to the users a record points at.
	// Each must be a user of the caller's tenant. nil skips the check.
	UserRefs func(v T) map[string]primitive.ObjectID

	// CSVHeader and CSVRow define the export; nil disables it.
	CSVHeader []string
	CSVRow    func(v T) []string
}

// FilterKey encodes name/value pairs, dropping empty values.
// The encoding is order-independent.
func FilterKey(pairs ...string) string {
	v := url.Values{}
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] != "" {
			v.Set(pairs[i], pairs[i+1])
		}
	}
	return v.Encode()
}
