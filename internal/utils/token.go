package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer is the iss claim of operator tokens minted by glctl.
const TokenIssuer = "gl-engine"

// ErrTokenSubjectMissing rejects tokens that would post entries with no author.
var ErrTokenSubjectMissing = errors.New("token carries no subject")

var tokenParser = jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

// IssueToken signs an HS256 bearer token whose subject becomes the acting
// user on every posting made with it.
func IssueToken(subject string, secret string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", ErrTokenSubjectMissing
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    TokenIssuer,
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken validates signature, algorithm and time claims and returns the
// claims of a token that names a subject.
func ParseToken(raw string, secret string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := tokenParser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	if claims.Subject == "" {
		return nil, ErrTokenSubjectMissing
	}
	return claims, nil
}
