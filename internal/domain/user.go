package domain

import "strings"

// Role is the authorization role attached to an identity.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// DefaultRole is assigned to every newly registered identity.
const DefaultRole = RoleUser

var knownRoles = []Role{RoleUser, RoleAdmin}

// ParseRole resolves a role name case-insensitively.
func ParseRole(name string) (Role, bool) {
	name = strings.TrimSpace(name)
	for _, r := range knownRoles {
		if strings.EqualFold(string(r), name) {
			return r, true
		}
	}
	return "", false
}

// Is reports whether r names the same role as other, ignoring case.
func (r Role) Is(other Role) bool {
	return strings.EqualFold(string(r), string(other))
}
