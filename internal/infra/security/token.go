package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"

	domainauth "rento/internal/domain/auth"
	domainuser "rento/internal/domain/user"
)

var ErrSecretRequired = errors.New("security: jwt secret is required")

type tokenClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.StandardClaims
}

// JWTCodec signs tokens with HS256. Subject carries the user id and Id the token id used
// for revocation.
type JWTCodec struct {
	secret []byte
	issuer string
}

func NewJWTCodec(secret, issuer string) (*JWTCodec, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrSecretRequired
	}
	return &JWTCodec{secret: []byte(secret), issuer: issuer}, nil
}

func (c *JWTCodec) Encode(claims domainauth.Claims) (domainauth.Token, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Email: claims.Email,
		Name:  claims.Name,
		StandardClaims: jwt.StandardClaims{
			Id:        claims.TokenID,
			Subject:   string(claims.UserID),
			Issuer:    c.issuer,
			IssuedAt:  claims.IssuedAt.Unix(),
			ExpiresAt: claims.ExpiresAt.Unix(),
		},
	})
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return domainauth.Token(signed), nil
}

func (c *JWTCodec) Decode(token domainauth.Token) (domainauth.Claims, error) {
	raw := strings.TrimSpace(string(token))
	if raw == "" {
		return domainauth.Claims{}, domainauth.ErrTokenRequired
	}
	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil || !parsed.Valid {
		return domainauth.Claims{}, domainauth.ErrTokenInvalid
	}
	if claims.Subject == "" || (c.issuer != "" && claims.Issuer != c.issuer) {
		return domainauth.Claims{}, domainauth.ErrTokenInvalid
	}
	return domainauth.Claims{
		TokenID:   claims.Id,
		UserID:    domainuser.ID(claims.Subject),
		Email:     claims.Email,
		Name:      claims.Name,
		IssuedAt:  time.Unix(claims.IssuedAt, 0).UTC(),
		ExpiresAt: time.Unix(claims.ExpiresAt, 0).UTC(),
	}, nil
}

var _ domainauth.Codec = (*JWTCodec)(nil)
