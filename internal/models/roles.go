package models

import "strings"

// Role is the closed set of account roles used by every authorization check.
type Role string

const (
	RoleAppAdmin       Role = "app_admin"
	RoleManagement     Role = "management"
	RoleAdministration Role = "administration"
	RoleResident       Role = "resident"
	RoleSecurity       Role = "security"
	RoleOther          Role = "other"
)

// Roles lists every valid role in display order.
var Roles = []Role{
	RoleAppAdmin,
	RoleManagement,
	RoleAdministration,
	RoleResident,
	RoleSecurity,
	RoleOther,
}

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAppAdmin, RoleManagement, RoleAdministration, RoleResident, RoleSecurity, RoleOther:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// ParseRole normalizes raw input and returns ok=false for unknown roles.
func ParseRole(raw string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(raw)))
	return r, r.Valid()
}

// RoleSet is an immutable set of roles allowed to perform an operation.
type RoleSet struct {
	roles map[Role]struct{}
}

// NewRoleSet builds a set from the given roles.
func NewRoleSet(roles ...Role) RoleSet {
	set := RoleSet{roles: make(map[Role]struct{}, len(roles))}
	for _, r := range roles {
		set.roles[r] = struct{}{}
	}
	return set
}

// Contains reports whether r is in the set.
func (s RoleSet) Contains(r Role) bool {
	_, ok := s.roles[r]
	return ok
}

var (
	// AccountAdmins may create accounts, reset credentials and change roles.
	AccountAdmins = NewRoleSet(RoleAppAdmin, RoleManagement)
	// ResetResolvers may approve or reject password reset requests.
	ResetResolvers = NewRoleSet(RoleAppAdmin, RoleManagement, RoleAdministration)
)
