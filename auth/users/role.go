package users

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
)

// Role codes are part of the token wire format.
type Role int

const (
	RoleNormal Role = 0
	RoleAdmin  Role = 1
)

func (r Role) Valid() bool {
	switch r {
	case RoleNormal, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string {
	switch r {
	case RoleNormal:
		return "NORMAL"
	case RoleAdmin:
		return "ADMIN"
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// AllRoles returns a fresh set with every known role.
func AllRoles() mapset.Set[Role] {
	return mapset.NewThreadUnsafeSet(RoleNormal, RoleAdmin)
}

func ParseRole(code int) (Role, error) {
	r := Role(code)
	if !r.Valid() {
		return 0, fmt.Errorf("%w: unknown role code %d", ErrMalformedIdentity, code)
	}
	return r, nil
}
