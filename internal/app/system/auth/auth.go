package auth

import (
	"context"
	"net/http"
	"strings"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Current-User helper                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionUser is the signed-in user as the session boundary reports it.
// Handlers only read it; nothing downstream mutates a SessionUser.
type SessionUser struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Roles     []string `json:"roles"`
	TenantID  string   `json:"tenant_id"`
}

// FullName joins the non-empty name parts with a space.
func (u *SessionUser) FullName() string {
	if u == nil {
		return ""
	}
	parts := make([]string, 0, 2)
	for _, p := range []string{u.FirstName, u.LastName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// PrimaryRole returns the first role, or "" when the user has none.
func (u *SessionUser) PrimaryRole() string {
	if u == nil || len(u.Roles) == 0 {
		return ""
	}
	return u.Roles[0]
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & “found?” flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	return FromContext(r.Context())
}

// FromContext is CurrentUser for code that only holds a context.
func FromContext(ctx context.Context) (*SessionUser, bool) {
	u, ok := ctx.Value(currentUserKey).(*SessionUser)
	return u, ok && u != nil
}

// WithTestUser injects u into the request context, bypassing the session.
// Tests use it to exercise handlers behind RequireSignedIn.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// NormalizeRole lowercases a role label and turns hyphens and underscores
// into spaces, so "hr-manager" and "HR Manager" compare equal.
func NormalizeRole(role string) string {
	role = strings.NewReplacer("-", " ", "_", " ").Replace(role)
	return strings.ToLower(strings.Join(strings.Fields(role), " "))
}

// HasAnyRole reports whether u holds any of the given roles (normalized).
func (u *SessionUser) HasAnyRole(roles ...string) bool {
	if u == nil {
		return false
	}
	for _, have := range u.Roles {
		h := NormalizeRole(have)
		for _, want := range roles {
			if h == NormalizeRole(want) {
				return true
			}
		}
	}
	return false
}

func wantsHTML(r *http.Request) bool {
	// Very light heuristic: treat it as HTML if it's HTMX or Accepts text/html.
	if r.Header.Get("HX-Request") == "true" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func currentURI(r *http.Request) string {
	u := *r.URL
	return u.RequestURI()
}
