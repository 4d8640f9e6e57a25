package models

import (
	"fmt"
	"strings"
)

// Role represents a user's access level.
type Role string

const (
	RoleIndividual Role = "individual"
	RoleCarrier    Role = "carrier"
	RoleCompany    Role = "company"
	RoleAdmin      Role = "admin"
)

// Valid checks if the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleIndividual, RoleCarrier, RoleCompany, RoleAdmin:
		return true
	}
	return false
}

// ParseRole turns user input into a Role, rejecting anything outside the enumeration.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// In reports whether r is one of roles.
func (r Role) In(roles ...Role) bool {
	for _, candidate := range roles {
		if r == candidate {
			return true
		}
	}
	return false
}
