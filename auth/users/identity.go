package users

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
)

// Claim keys of an identity inside a token.
const (
	ClaimUserID         = "user_id"
	ClaimEmail          = "email"
	ClaimRoles          = "roles"
	ClaimIsRefreshToken = "is_refresh_token"
)

var ErrMalformedIdentity = errors.New("malformed identity")

// Identity is an authenticated principal. The zero value is not a valid identity.
type Identity struct {
	userID uuid.UUID
	email  string
	roles  []Role
}

// NewIdentity requires at least one role and only known roles. Duplicate roles are dropped.
func NewIdentity(userID uuid.UUID, email string, roles ...Role) (Identity, error) {
	if userID == uuid.Nil {
		return Identity{}, fmt.Errorf("%w: empty user id", ErrMalformedIdentity)
	}
	seen := mapset.NewThreadUnsafeSet[Role]()
	unique := make([]Role, 0, len(roles))
	for _, r := range roles {
		if !r.Valid() {
			return Identity{}, fmt.Errorf("%w: unknown role code %d", ErrMalformedIdentity, int(r))
		}
		if seen.Add(r) {
			unique = append(unique, r)
		}
	}
	if len(unique) == 0 {
		return Identity{}, fmt.Errorf("%w: no roles", ErrMalformedIdentity)
	}
	return Identity{userID: userID, email: email, roles: unique}, nil
}

func (i Identity) UserID() uuid.UUID { return i.userID }

func (i Identity) Email() string { return i.email }

func (i Identity) Roles() []Role {
	return append([]Role(nil), i.roles...)
}

func (i Identity) RoleSet() mapset.Set[Role] {
	return mapset.NewThreadUnsafeSet(i.roles...)
}

func (i Identity) IsAdmin() bool {
	return i.RoleSet().Contains(RoleAdmin)
}

// HasAnyRole reports whether the identity holds at least one of required.
func (i Identity) HasAnyRole(required mapset.Set[Role]) bool {
	for _, r := range i.roles {
		if required.Contains(r) {
			return true
		}
	}
	return false
}

func (i Identity) ToClaims() map[string]any {
	codes := make([]int, 0, len(i.roles))
	for _, r := range i.roles {
		codes = append(codes, int(r))
	}
	return map[string]any{
		ClaimUserID: i.userID.String(),
		ClaimEmail:  i.email,
		ClaimRoles:  codes,
	}
}

// FromClaims rebuilds an identity from decoded token claims. Unknown keys are ignored.
func FromClaims(claims map[string]any) (Identity, error) {
	rawID, ok := claims[ClaimUserID].(string)
	if !ok {
		return Identity{}, fmt.Errorf("%w: %s missing", ErrMalformedIdentity, ClaimUserID)
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %s: %v", ErrMalformedIdentity, ClaimUserID, err)
	}
	email, ok := claims[ClaimEmail].(string)
	if !ok {
		return Identity{}, fmt.Errorf("%w: %s missing", ErrMalformedIdentity, ClaimEmail)
	}
	roles, err := rolesFromClaim(claims[ClaimRoles])
	if err != nil {
		return Identity{}, err
	}
	return NewIdentity(id, email, roles...)
}

// IsRefreshClaims reports whether claims carry a truthy refresh marker.
func IsRefreshClaims(claims map[string]any) bool {
	switch v := claims[ClaimIsRefreshToken].(type) {
	case bool:
		return v
	case json.Number:
		f, err := v.Float64()
		return err == nil && f != 0
	case float64:
		return v != 0
	case int:
		return v != 0
	case string:
		return v != ""
	}
	return false
}

func rolesFromClaim(raw any) ([]Role, error) {
	switch v := raw.(type) {
	case []Role:
		return v, nil
	case []int:
		roles := make([]Role, 0, len(v))
		for _, code := range v {
			r, err := ParseRole(code)
			if err != nil {
				return nil, err
			}
			roles = append(roles, r)
		}
		return roles, nil
	case []any:
		roles := make([]Role, 0, len(v))
		for _, item := range v {
			code, err := roleCode(item)
			if err != nil {
				return nil, err
			}
			r, err := ParseRole(code)
			if err != nil {
				return nil, err
			}
			roles = append(roles, r)
		}
		return roles, nil
	case nil:
		return nil, fmt.Errorf("%w: %s missing", ErrMalformedIdentity, ClaimRoles)
	default:
		return nil, fmt.Errorf("%w: %s has type %T", ErrMalformedIdentity, ClaimRoles, raw)
	}
}

func roleCode(item any) (int, error) {
	switch v := item.(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: role code %q", ErrMalformedIdentity, v.String())
		}
		return int(n), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%w: role code %v", ErrMalformedIdentity, v)
		}
		return int(v), nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case Role:
		return int(v), nil
	default:
		return 0, fmt.Errorf("%w: role code has type %T", ErrMalformedIdentity, item)
	}
}
