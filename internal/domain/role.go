package domain

import "strconv"

// Role is the access tier an author holds on a document.
// The integer values are part of the wire format and the
// ordering backs every permission comparison.
type Role int

const (
	RoleNone        Role = -1
	RoleRead        Role = 0
	RoleCollaborate Role = 1
	RoleOwner       Role = 2
)

// Valid reports whether r is a grantable role value.
func (r Role) Valid() bool {
	return r >= RoleRead && r <= RoleOwner
}

func (r Role) String() string {
	switch r {
	case RoleRead:
		return "read"
	case RoleCollaborate:
		return "collaborate"
	case RoleOwner:
		return "owner"
	}
	return "none"
}

// ParseRole parses the numeric role used in URLs and payloads.
func ParseRole(s string) (Role, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return RoleNone, false
	}
	role := Role(n)
	return role, role.Valid()
}
