// Package authroles maps identity-provider groups onto application roles.
package authroles

import (
	"fmt"
	"strings"

	domainauth "github.com/target/aihub-dashboard/internal/domain/auth"
)

// StaticRoleMapper maps groups by string membership.
// Admin membership wins over user membership; Extra is consulted last, in group order.
type StaticRoleMapper struct {
	AdminGroup string
	UserGroup  string
	// Extra maps additional groups onto custom roles, e.g. {"ai-auditors": "auditor"}.
	Extra map[string]domainauth.Role
}

func (m StaticRoleMapper) Map(groups []string) domainauth.Role {
	for _, g := range groups {
		if m.AdminGroup != "" && g == m.AdminGroup {
			return domainauth.RoleAdmin
		}
	}
	for _, g := range groups {
		if m.UserGroup != "" && g == m.UserGroup {
			return domainauth.RoleUser
		}
	}
	for _, g := range groups {
		if role, ok := m.Extra[g]; ok && role != "" {
			return role
		}
	}
	return domainauth.RoleGuest
}

// ParseExtra parses "group=role" pairs such as "ai-auditors=auditor,ops=admin".
func ParseExtra(pairs []string) (map[string]domainauth.Role, error) {
	out := make(map[string]domainauth.Role, len(pairs))
	for _, p := range pairs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		group, role, ok := strings.Cut(p, "=")
		group, role = strings.TrimSpace(group), strings.TrimSpace(role)
		if !ok || group == "" || role == "" {
			return nil, fmt.Errorf("invalid group mapping %q: want group=role", p)
		}
		out[group] = domainauth.Role(role)
	}
	return out, nil
}
