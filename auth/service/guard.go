package service

import (
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/sirupsen/logrus"

	"github.com/goserg/todoserver/auth/token"
	"github.com/goserg/todoserver/auth/users"
)

// BearerScheme is matched case-insensitively.
const BearerScheme = "Bearer"

// Guard is the per-request access check. It holds no state between calls.
type Guard struct {
	tokens *token.Codec
	log    *logrus.Entry
}

func NewGuard(l *logrus.Logger, codec *token.Codec) *Guard {
	return &Guard{
		tokens: codec,
		log:    l.WithField("from", "access-guard"),
	}
}

// Authorize validates the Authorization header value and checks that the caller holds
// at least one of roles. No roles means any known role.
func (g *Guard) Authorize(header string, roles ...users.Role) (users.Identity, error) {
	credential, ok := ParseBearer(header)
	if !ok {
		return users.Identity{}, g.unauthenticated("missing bearer credential")
	}
	if !g.tokens.IsValid(credential) {
		return users.Identity{}, g.unauthenticated("invalid or expired token")
	}
	claims, err := g.tokens.Data(credential)
	if err != nil {
		return users.Identity{}, g.unauthenticated(err.Error())
	}
	if users.IsRefreshClaims(claims) {
		return users.Identity{}, g.unauthenticated("refresh token used as access token")
	}
	identity, err := users.FromClaims(claims)
	if err != nil {
		return users.Identity{}, g.unauthenticated(err.Error())
	}

	required := mapset.NewThreadUnsafeSet(roles...)
	if required.Cardinality() == 0 {
		required = users.AllRoles()
	}
	if !identity.HasAnyRole(required) {
		AuthorizationsTotal.WithLabelValues(ResultForbidden).Inc()
		g.log.WithField("id", identity.UserID()).Debug("insufficient role")
		return users.Identity{}, ErrForbidden
	}
	AuthorizationsTotal.WithLabelValues(ResultSuccess).Inc()
	return identity, nil
}

func (g *Guard) unauthenticated(reason string) error {
	AuthorizationsTotal.WithLabelValues(ResultUnauthenticated).Inc()
	g.log.WithField("reason", reason).Debug("request not authenticated")
	return ErrUnauthenticated
}

// ParseBearer extracts the credential from an "Authorization: Bearer <token>" value.
func ParseBearer(header string) (string, bool) {
	scheme, credential, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, BearerScheme) {
		return "", false
	}
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return "", false
	}
	return credential, true
}
