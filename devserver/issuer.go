package devserver

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims is the payload of the bearer tokens this server mints.
type AccessClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	SID      string `json:"sid"`
	jwt.RegisteredClaims
}

type issuer struct {
	key  []byte
	ttl  time.Duration
	name string
}

func (i *issuer) Mint(username, role, sid string) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		Username: username,
		Role:     role,
		SID:      sid,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    i.name,
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
}

func (i *issuer) Parse(raw string) (*AccessClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.name),
		jwt.WithExpirationRequired(),
	)

	tok, err := parser.ParseWithClaims(raw, &AccessClaims{}, func(*jwt.Token) (any, error) {
		return i.key, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := tok.Claims.(*AccessClaims)
	if !ok || !tok.Valid {
		return nil, errors.New("invalid access claims")
	}
	return claims, nil
}
