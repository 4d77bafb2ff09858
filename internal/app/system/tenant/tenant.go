// Package tenant scopes requests and store queries to one tenant.
//
// The tenant comes from the signed-in user's session; every store filter
// and every inserted document carries tenant_id.
package tenant

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/hrms/internal/app/system/auth"
)

type ctxKey string

const tenantKey ctxKey = "tenant"

// ErrNoTenant is returned by store calls made outside a tenant context.
var ErrNoTenant = errors.New("no tenant in context")

// Info holds tenant context for the current request.
type Info struct {
	ID   string // tenant identifier from the identity provider
	Name string // display label, e.g. "Organization"
}

// Middleware puts the signed-in user's tenant on the request context.
// Visitors and users without a tenant pass through unscoped.
func Middleware(label string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if u, ok := auth.CurrentUser(r); ok && strings.TrimSpace(u.TenantID) != "" {
				r = r.WithContext(WithTenant(r.Context(), &Info{ID: u.TenantID, Name: label}))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithTenant returns ctx carrying t.
func WithTenant(ctx context.Context, t *Info) context.Context {
	return context.WithValue(ctx, tenantKey, t)
}

// FromContext returns the tenant, or nil.
func FromContext(ctx context.Context) *Info {
	if t, ok := ctx.Value(tenantKey).(*Info); ok && t != nil && t.ID != "" {
		return t
	}
	return nil
}

// FromRequest returns the tenant for r, or nil.
func FromRequest(r *http.Request) *Info { return FromContext(r.Context()) }

// IDFromContext returns the tenant ID, or "".
func IDFromContext(ctx context.Context) string {
	if t := FromContext(ctx); t != nil {
		return t.ID
	}
	return ""
}

// FilterCtx adds tenant_id to a filter. It returns ErrNoTenant, leaving the
// filter unchanged, when ctx has no tenant.
func FilterCtx(ctx context.Context, filter map[string]interface{}) error {
	t := FromContext(ctx)
	if t == nil {
		return ErrNoTenant
	}
	filter["tenant_id"] = t.ID
	return nil
}

// RequireTenant rejects signed-in requests that carry no tenant.
func RequireTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if FromRequest(r) == nil {
			if r.Header.Get("HX-Request") == "true" {
				w.Header().Set("HX-Redirect", "/forbidden")
				w.WriteHeader(http.StatusForbidden)
				return
			}
			http.Error(w, "Tenant required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
