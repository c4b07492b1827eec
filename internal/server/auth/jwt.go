// Package auth holds the cryptographic building blocks of the session layer:
// the RS256 token codec, RSA key loading and the bcrypt password hasher.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/gopherblog/internal/common"
)

// TokenKind tells an access claim from a refresh claim.
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// Claims is the JWT payload: registered claims (sub, exp, iat, nbf, jti)
// plus the token kind.
type Claims struct {
	jwt.RegisteredClaims
	Type TokenKind `json:"type"`
}

// Codec signs and verifies claims with an RSA key pair.
type Codec struct {
	keys *Keys
}

func NewCodec(keys *Keys) *Codec {
	return &Codec{keys: keys}
}

// Issue signs a claim of the given kind for subject. The expiry is
// issuedAt+ttl and is returned so callers can align cookie lifetimes.
func (c *Codec) Issue(subject string, kind TokenKind, issuedAt time.Time, ttl time.Duration) (string, time.Time, error) {
	expiresAt := issuedAt.Add(ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ID:        uuid.NewString(),
		},
		Type: kind,
	})

	signed, err := token.SignedString(c.keys.Private)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", kind, err)
	}

	return signed, expiresAt, nil
}

// Parse verifies signature, algorithm, expiry and kind as of now.
// Expired tokens yield common.ErrTokenExpired; every other failure,
// including a kind mismatch, yields common.ErrInvalidToken.
func (c *Codec) Parse(tokenString string, kind TokenKind, now time.Time) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			return c.keys.Public, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.Type != kind {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
