// Package identity verifies the signed tokens owners present with every
// vault operation.
package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that fails verification
var ErrInvalidToken = errors.New("invalid identity token")

// Claims carries the owner identity asserted by a token
type Claims struct {
	OwnerIdentity string `json:"owner_identity"`
	jwt.RegisteredClaims
}

// Verifier validates identity tokens signed with a shared HMAC secret
type Verifier struct {
	secret []byte
}

// NewVerifier creates a new verifier for the given secret
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify checks the token signature and expiry and returns the owner
// identity it asserts
func (v *Verifier) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})

	if err != nil {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}

	if claims.OwnerIdentity == "" {
		return "", ErrInvalidToken
	}

	return claims.OwnerIdentity, nil
}

// Issue signs a token asserting the given owner identity. Used by tests and
// the local development CLI; production tokens come from the identity
// service that shares the secret.
func (v *Verifier) Issue(ownerIdentity string, ttl time.Duration) (string, error) {
	claims := &Claims{
		OwnerIdentity: ownerIdentity,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}
