// Package token creates and validates signed, time-limited tokens.
package token

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/golang-jwt/jwt"

	"github.com/goserg/todoserver/internal/clock"
)

// ExpirationClaim holds the expiration instant as integer seconds since the Unix epoch.
const ExpirationClaim = "exp"

var ErrNoExpiration = errors.New("token has no expiration")

type Codec struct {
	secret []byte
	method jwt.SigningMethod
	clock  clock.Clock
}

// New returns an HS256 codec. The secret is read-only for the lifetime of the codec.
func New(secret string, clk clock.Clock) *Codec {
	return &Codec{
		secret: []byte(secret),
		method: jwt.SigningMethodHS256,
		clock:  clk,
	}
}

// Create signs claims together with an exp claim set to expiration, truncated to whole seconds.
// An exp key inside claims is overwritten.
func (c *Codec) Create(expiration time.Time, claims map[string]any) (string, error) {
	mc := make(jwt.MapClaims, len(claims)+1)
	for k, v := range claims {
		mc[k] = v
	}
	mc[ExpirationClaim] = expiration.Unix()
	return jwt.NewWithClaims(c.method, mc).SignedString(c.secret)
}

// IsValid reports whether the signature and algorithm check out and exp is after the current instant.
func (c *Codec) IsValid(tokenString string) bool {
	claims, err := c.parse(tokenString)
	if err != nil {
		return false
	}
	exp, err := expiration(claims)
	if err != nil {
		return false
	}
	return c.clock.Now().Before(exp)
}

// Data verifies the signature and returns the claims. Expiration is not checked here,
// callers gate on IsValid first.
func (c *Codec) Data(tokenString string) (map[string]any, error) {
	claims, err := c.parse(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// Expiration returns the exp instant of a correctly signed token.
func (c *Codec) Expiration(tokenString string) (time.Time, error) {
	claims, err := c.parse(tokenString)
	if err != nil {
		return time.Time{}, err
	}
	return expiration(claims)
}

func (c *Codec) parse(tokenString string) (jwt.MapClaims, error) {
	parser := jwt.Parser{
		ValidMethods:         []string{c.method.Alg()},
		UseJSONNumber:        true,
		SkipClaimsValidation: true,
	}
	token, err := parser.Parse(tokenString, c.key)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("parse token: unexpected claims")
	}
	return claims, nil
}

func (c *Codec) key(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return c.secret, nil
}

func expiration(claims jwt.MapClaims) (time.Time, error) {
	switch exp := claims[ExpirationClaim].(type) {
	case json.Number:
		if n, err := exp.Int64(); err == nil {
			return time.Unix(n, 0).UTC(), nil
		}
		f, err := exp.Float64()
		if err != nil {
			return time.Time{}, fmt.Errorf("exp claim: %w", err)
		}
		return fromFloat(f)
	case float64:
		return fromFloat(exp)
	case int64:
		return time.Unix(exp, 0).UTC(), nil
	case nil:
		return time.Time{}, ErrNoExpiration
	default:
		return time.Time{}, fmt.Errorf("exp claim has type %T", exp)
	}
}

func fromFloat(f float64) (time.Time, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return time.Time{}, errors.New("exp claim is not finite")
	}
	return time.Unix(int64(f), 0).UTC(), nil
}
