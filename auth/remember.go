// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RememberIssuer is the iss claim of remember-me tokens.
const RememberIssuer = "gvisit"

// Remembered is the identity a remember-me token vouches for. Version must
// match the user's current remember version for the token to be honoured.
type Remembered struct {
	Username string
	Version  int
}

type rememberClaims struct {
	Version int `json:"ver"`
	jwt.RegisteredClaims
}

// GenerateRememberToken signs a remember-me token for username valid for ttl
func GenerateRememberToken(username string, version int, secret string, ttl time.Duration) (string, error) {
	return generateRememberToken(username, version, secret, time.Now(), ttl)
}

func generateRememberToken(username string, version int, secret string, now time.Time, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("remember token secret is empty")
	}
	jti, err := GenerateID(16)
	if err != nil {
		return "", err
	}
	claims := rememberClaims{
		Version: version,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    RememberIssuer,
			Subject:   NormalizeUsername(username),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign remember token: %w", err)
	}
	return signed, nil
}

// VerifyRememberToken returns who a remember-me token was issued for.
// Any malformed, expired or wrongly signed token yields ErrInvalidToken.
func VerifyRememberToken(token, secret string) (Remembered, error) {
	if token == "" || secret == "" {
		return Remembered{}, ErrInvalidToken
	}

	var claims rememberClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(RememberIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Remembered{}, ErrInvalidToken
	}
	if claims.Subject == "" {
		return Remembered{}, ErrInvalidToken
	}
	return Remembered{Username: claims.Subject, Version: claims.Version}, nil
}
