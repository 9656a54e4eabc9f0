// Package auth issues and verifies the access tokens the API authenticates
// with. Tokens are HS256 JWTs carrying the user id as subject.
package auth

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

const (
	// Issuer tags tokens minted by this server.
	Issuer = "attune"
	// AccessTokenDuration is how long a token stays valid.
	AccessTokenDuration = 7 * 24 * time.Hour
)

// GenerateAccessToken mints a signed token for the user.
func GenerateAccessToken(userID int32, now time.Time, secret string) (string, error) {
	claims := &jwt.RegisteredClaims{
		Issuer:    Issuer,
		Subject:   strconv.Itoa(int(userID)),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenDuration)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", errors.Wrap(err, "sign access token")
	}
	return signed, nil
}

// VerifyAccessToken checks signature, issuer and expiry, returning the user
// id the token was minted for.
func VerifyAccessToken(tokenString, secret string) (int32, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return []byte(secret), nil },
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return 0, errors.Wrap(err, "parse access token")
	}
	if !token.Valid {
		return 0, errors.New("invalid access token")
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 32)
	if err != nil {
		return 0, errors.Wrap(err, "parse token subject")
	}
	return int32(userID), nil
}
