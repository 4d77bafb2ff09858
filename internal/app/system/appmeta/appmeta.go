// Package appmeta holds the static application metadata: role lists,
// tenant label, enabled add-ons and abilities. It is loaded once at startup
// and passed by value to whoever needs it; nothing mutates it at runtime.
package appmeta

import "strings"

// Metadata is the read-only application descriptor.
type Metadata struct {
	ApplicationName   string
	TenantName        string
	OwnerRoles        []string
	CustomerRoles     []string
	TenantRoles       []string
	AddOns            []string
	OwnerAbilities    []string
	CustomerAbilities []string
	GetQuoteURL       string
}

// Default returns the metadata the HR application ships with.
// CustomerRoles is intentionally empty: there is no customer-facing role,
// so customer-gated sections are visible to everyone.
func Default() Metadata {
	return Metadata{
		ApplicationName: "HR Management System",
		TenantName:      "Organization",
		OwnerRoles:      []string{"Owner"},
		CustomerRoles:   []string{},
		TenantRoles:     []string{"Owner", "HR Manager"},
		AddOns:          []string{"file upload", "chat", "notifications", "file"},
		OwnerAbilities: []string{
			"Manage employee data",
			"Invite HR Managers to the application",
		},
		CustomerAbilities: []string{},
		GetQuoteURL:       "https://app.roq.ai/proposal/61284021-3330-4066-a606-e23204017a52",
	}
}

// Clone returns a deep copy so callers can hand out its slices.
func (m Metadata) Clone() Metadata {
	out := m
	out.OwnerRoles = cloneStrings(m.OwnerRoles)
	out.CustomerRoles = cloneStrings(m.CustomerRoles)
	out.TenantRoles = cloneStrings(m.TenantRoles)
	out.AddOns = cloneStrings(m.AddOns)
	out.OwnerAbilities = cloneStrings(m.OwnerAbilities)
	out.CustomerAbilities = cloneStrings(m.CustomerAbilities)
	return out
}

// SplitList parses a comma-separated config value into a trimmed list.
// Empty items are dropped, so "" yields an empty (non-nil) list.
func SplitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
