package security

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserIdentity is the signed-in back office user.
type UserIdentity struct {
	ID       uint
	UserName string
	Provider string
	Email    string
}

type Identity struct {
	ID         uint   `json:"nameid"`
	UniqueName string `json:"unique_name"`
	Email      string `json:"email"`
	SID        string `json:"sid"`
	Provider   string `json:"provider"`
}

// IdentityClaims includes Identity and standard JWT claims
type IdentityClaims struct {
	Identity
	jwt.RegisteredClaims
}

type TokenOptions struct {
	Issuer    string
	SessionID string
	TTL       time.Duration
}

// DecodeSecret decodes the base64 signing secret shared with the auth server.
func DecodeSecret(base64Secret string) ([]byte, error) {
	secret, err := base64.StdEncoding.DecodeString(base64Secret)
	if err != nil {
		return nil, fmt.Errorf("failed to decode signing secret: %w", err)
	}
	if len(secret) == 0 {
		return nil, fmt.Errorf("signing secret is empty")
	}
	return secret, nil
}

func CreateIdentityToken(identity *UserIdentity, secret []byte, opts TokenOptions) (string, error) {
	now := time.Now()
	claims := IdentityClaims{
		Identity: Identity{
			ID:         identity.ID,
			UniqueName: identity.UserName,
			Email:      identity.Email,
			SID:        opts.SessionID,
			Provider:   identity.Provider,
		},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    opts.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(opts.TTL)),
		},
	}

	// Use HS256 signing method (symmetric key)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(secret)
}

// ParseIdentityToken validates an HMAC-signed token and returns its claims.
func ParseIdentityToken(tokenStr string, secret []byte) (*IdentityClaims, error) {
	claims := &IdentityClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
