// internal/domain/models/authmethods.go
package models

import "strings"

// Auth method values stored on User.AuthMethod.
const (
	AuthMethodTrust    = "trust"
	AuthMethodPassword = "password"
)

// AuthMethod is a sign-in option with its display label.
type AuthMethod struct {
	Value string
	Label string
}

// AllAuthMethods lists the sign-in methods this service handles itself.
// Everything else (SSO, magic links) belongs to the identity provider.
var AllAuthMethods = []AuthMethod{
	{Value: AuthMethodTrust, Label: "Trust"},
	{Value: AuthMethodPassword, Label: "Password"},
}

// IsValidAuthMethod reports whether v names a supported auth method.
// Matching ignores case and surrounding whitespace.
func IsValidAuthMethod(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, m := range AllAuthMethods {
		if m.Value == v {
			return true
		}
	}
	return false
}

// User status values.
const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)
