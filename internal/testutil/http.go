package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/dalemusser/hrms/internal/app/system/auth"
	"github.com/dalemusser/hrms/internal/app/system/tenant"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestTenant is the tenant every test user belongs to unless stated otherwise.
const TestTenant = "tenant-test"

// TestUser represents user data for testing HTTP handlers.
type TestUser struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Roles     []string
	TenantID  string
}

// OwnerUser returns a TestUser holding the Owner role.
func OwnerUser() TestUser {
	return TestUser{
		ID:        primitive.NewObjectID().Hex(),
		FirstName: "Olive",
		LastName:  "Owner",
		Email:     "owner@test.com",
		Roles:     []string{"owner"},
		TenantID:  TestTenant,
	}
}

// HRManagerUser returns a TestUser holding the HR Manager role.
func HRManagerUser() TestUser {
	return TestUser{
		ID:        primitive.NewObjectID().Hex(),
		FirstName: "Hana",
		LastName:  "Reyes",
		Email:     "hr@test.com",
		Roles:     []string{"hr-manager"},
		TenantID:  TestTenant,
	}
}

// EmployeeUser returns a TestUser with no management role.
func EmployeeUser() TestUser {
	return TestUser{
		ID:        primitive.NewObjectID().Hex(),
		FirstName: "Eli",
		LastName:  "Employee",
		Email:     "employee@test.com",
		Roles:     []string{"employee"},
		TenantID:  TestTenant,
	}
}

// SessionUser converts u to the session shape.
func (u TestUser) SessionUser() *auth.SessionUser {
	return &auth.SessionUser{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Roles:     u.Roles,
		TenantID:  u.TenantID,
	}
}

// WithUser adds a user and their tenant to the request context, bypassing
// the session and tenant middleware.
func WithUser(r *http.Request, user TestUser) *http.Request {
	r = auth.WithTestUser(r, user.SessionUser())
	if user.TenantID != "" {
		r = r.WithContext(tenant.WithTenant(r.Context(), &tenant.Info{ID: user.TenantID}))
	}
	return r
}

// TenantContext returns a context scoped to tenant id.
func TenantContext(ctx context.Context, id string) context.Context {
	return tenant.WithTenant(ctx, &tenant.Info{ID: id})
}

// NewAuthenticatedRequest creates an HTTP request with a user in context.
func NewAuthenticatedRequest(method, target string, user TestUser) *http.Request {
	return WithUser(httptest.NewRequest(method, target, nil), user)
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d (body %q)", r.Code, expected, r.Body.String())
	}
}
