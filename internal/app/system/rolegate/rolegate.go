// Package rolegate decides whether role-gated page sections are shown.
package rolegate

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dalemusser/hrms/internal/app/system/appmeta"
	"github.com/dalemusser/hrms/internal/app/system/auth"
)

// Humanize lowercases s, drops a trailing "_id"/"_ids", turns underscores
// into spaces and capitalises the first letter: "hr_manager" -> "Hr manager".
// Whitespace is kept, so " owner" and "owner_" do not humanize to "Owner".
func Humanize(s string) string {
	s = strings.ToLower(s)
	s = strings.TrimSuffix(s, "_ids")
	s = strings.TrimSuffix(s, "_id")
	s = strings.ReplaceAll(s, "_", " ")
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// NormalizeRole turns hyphens into spaces and humanizes the result,
// so "customer-rep" becomes "Customer rep".
func NormalizeRole(role string) string {
	return Humanize(strings.ReplaceAll(role, "-", " "))
}

// IsCustomer reports whether role, once normalized, exactly matches one of
// the configured customer roles.
func IsCustomer(role string, customerRoles []string) bool {
	n := NormalizeRole(role)
	for _, c := range customerRoles {
		if n == c {
			return true
		}
	}
	return false
}

// ShowAllUsers gates the "All Users" dashboard section. It is hidden when
// the user or their roles are missing, and otherwise shown unless the
// primary role is a customer role.
func ShowAllUsers(u *auth.SessionUser, meta appmeta.Metadata) bool {
	if u == nil || len(u.Roles) == 0 {
		return false
	}
	return !IsCustomer(u.PrimaryRole(), meta.CustomerRoles)
}
