package auth

import (
	"errors"
	"time"

	"chatgate/internal/domain/auth"

	"github.com/golang-jwt/jwt/v5"
)

// SessionTokenTTL is the validity window of a minted first-party token.
const SessionTokenTTL = time.Hour

// ErrInvalidSessionToken is the single outcome for every first-party token
// failure. Malformed, bad signature, expired and wrong tenant all collapse
// into it so unauthenticated callers learn nothing about why.
var ErrInvalidSessionToken = errors.New("invalid session token")

// TokenCodec mints and verifies the first-party session token. It is the
// only thing the callback handler and the request gate share, beyond the
// cookie name itself.
type TokenCodec struct {
	Secret   string
	TenantID string
}

// Mint creates a signed session token for a verified identity. The token
// expires exactly SessionTokenTTL after now.
func (c TokenCodec) Mint(identity *auth.IdentityClaims, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"tid":                identity.TenantID,
		"oid":                identity.ObjectID,
		"name":               identity.Name,
		"preferred_username": identity.PreferredUsername,
		"iat":                now.Unix(),
		"exp":                now.Add(SessionTokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(c.Secret))
}

// Verify decodes and validates a session token. The exp claim is required,
// and tid must match the configured tenant.
func (c TokenCodec) Verify(tokenString string) (*auth.SessionClaims, error) {
	parsed, err := jwt.Parse(tokenString,
		func(t *jwt.Token) (interface{}, error) { return []byte(c.Secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidSessionToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidSessionToken
	}

	if getStringClaim(claims, "tid") != c.TenantID {
		return nil, ErrInvalidSessionToken
	}

	return &auth.SessionClaims{
		TenantID:          getStringClaim(claims, "tid"),
		ObjectID:          getStringClaim(claims, "oid"),
		Name:              getStringClaim(claims, "name"),
		PreferredUsername: getStringClaim(claims, "preferred_username"),
		IssuedAt:          getInt64Claim(claims, "iat"),
		ExpiresAt:         getInt64Claim(claims, "exp"),
	}, nil
}
