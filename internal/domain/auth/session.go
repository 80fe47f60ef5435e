// Package auth models bearer-token sessions.
package auth

import (
	"context"
	"strings"
	"time"

	"rento/internal/domain/shared/fault"
	"rento/internal/domain/user"
)

var (
	ErrTokenRequired      = fault.New(fault.Unauthenticated, "Not authorized, no token")
	ErrTokenInvalid       = fault.New(fault.Unauthenticated, "Not authorized, token failed")
	ErrTokenRevoked       = fault.New(fault.Unauthenticated, "Not authorized, token revoked")
	ErrInvalidCredentials = fault.New(fault.Unauthenticated, "Invalid email or password")
	ErrUserRequired       = fault.New(fault.Validation, "User is required")
	ErrTTLInvalid         = fault.New(fault.Internal, "Token ttl must be positive")
)

type Token string

// Claims are the facts carried by a signed token.
type Claims struct {
	TokenID   string
	UserID    user.ID
	Email     string
	Name      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type IssueParams struct {
	TokenID string
	User    *user.User
	TTL     time.Duration
	Now     time.Time
}

func NewClaims(params IssueParams) (Claims, error) {
	if params.User == nil || strings.TrimSpace(string(params.User.ID)) == "" {
		return Claims{}, ErrUserRequired
	}
	if params.TTL <= 0 {
		return Claims{}, ErrTTLInvalid
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	return Claims{
		TokenID:   params.TokenID,
		UserID:    params.User.ID,
		Email:     params.User.Email,
		Name:      params.User.Name,
		IssuedAt:  now,
		ExpiresAt: now.Add(params.TTL),
	}, nil
}

func (c Claims) Expired(at time.Time) bool {
	if at.IsZero() {
		at = time.Now()
	}
	return !c.ExpiresAt.After(at.UTC())
}

// Codec signs and verifies tokens.
type Codec interface {
	Encode(claims Claims) (Token, error)
	Decode(token Token) (Claims, error)
}

// RevocationStore remembers logged-out tokens until they would have expired anyway.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
