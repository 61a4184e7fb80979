// Floodwatch - Real-Time Flood Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/floodwatch-io/floodwatch

package models

import "fmt"

// Role is the closed set of user roles. It is the single role type shared by
// the identity verifier and the access-control checks; strings from the wire
// or the database are converted exactly once, at the boundary, via ParseRole.
type Role string

const (
	RoleAdmin              Role = "admin"
	RoleFieldResponder     Role = "field_responder"
	RoleCommander          Role = "commander"
	RoleGovernmentOfficial Role = "government_official"
	RoleViewer             Role = "viewer"
)

// Roles lists every valid role.
var Roles = []Role{
	RoleAdmin,
	RoleFieldResponder,
	RoleCommander,
	RoleGovernmentOfficial,
	RoleViewer,
}

// ParseRole converts a string to a Role, rejecting anything outside the
// closed set.
func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if s == string(r) {
			return r, nil
		}
	}
	return "", fmt.Errorf("unrecognized role %q", s)
}

// String returns the wire representation of the role.
func (r Role) String() string {
	return string(r)
}

// Valid reports whether the role belongs to the closed set.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// In reports whether the role is one of the given roles.
func (r Role) In(roles ...Role) bool {
	for _, candidate := range roles {
		if r == candidate {
			return true
		}
	}
	return false
}
