package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"rento/internal/app/clock"
	"rento/internal/app/dto"
	"rento/internal/app/uow"
	domainauth "rento/internal/domain/auth"
	"rento/internal/domain/shared/fault"
	domainuser "rento/internal/domain/user"
)

const DefaultTokenTTL = 7 * 24 * time.Hour

var (
	ErrRegistrationFields = fault.New(fault.Validation, "Name, email, and password are required")
	ErrLoginFields        = fault.New(fault.Validation, "Email and password are required")
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Matches(hash, password string) (bool, error)
}

// Principal is the authenticated caller resolved from a bearer token.
type Principal struct {
	UserID    string
	Email     string
	Name      string
	TokenID   string
	ExpiresAt time.Time
}

type Service struct {
	UoWFactory  uow.UoWFactory
	Passwords   PasswordHasher
	Tokens      domainauth.Codec
	Revocations domainauth.RevocationStore
	TokenTTL    time.Duration
	Clock       clock.Clock
	Logger      *slog.Logger
}

type RegisterParams struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

type LoginParams struct {
	Email    string
	Password string
}

func (s *Service) Register(ctx context.Context, params RegisterParams) (*dto.AuthResult, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.Name) == "" || strings.TrimSpace(params.Email) == "" || params.Password == "" {
		return nil, ErrRegistrationFields
	}
	if err := domainuser.ValidatePassword(params.Password); err != nil {
		return nil, err
	}
	hash, err := s.Passwords.Hash(params.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user, err := domainuser.NewUser(domainuser.CreateParams{
		ID:           domainuser.ID(uuid.NewString()),
		Email:        params.Email,
		Name:         params.Name,
		Phone:        params.Phone,
		PasswordHash: hash,
		CreatedAt:    s.Clock.Now(),
	})
	if err != nil {
		return nil, err
	}

	scope, err := uow.Join(ctx, s.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer scope.Close()
	if _, err := scope.Unit.Users().ByEmail(scope.Ctx, user.Email); err == nil {
		return nil, domainuser.ErrEmailAlreadyUsed
	} else if !errors.Is(err, domainuser.ErrNotFound) {
		return nil, err
	}
	if err := scope.Unit.Users().Save(scope.Ctx, user); err != nil {
		return nil, err
	}
	if err := scope.Commit(); err != nil {
		return nil, err
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	s.logger().Info("user registered", "user_id", user.ID)
	return result, nil
}

func (s *Service) Login(ctx context.Context, params LoginParams) (*dto.AuthResult, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.Email) == "" || params.Password == "" {
		return nil, ErrLoginFields
	}
	scope, err := uow.Join(ctx, s.UoWFactory, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer scope.Close()

	user, err := scope.Unit.Users().ByEmail(scope.Ctx, params.Email)
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			return nil, domainauth.ErrInvalidCredentials
		}
		return nil, err
	}
	ok, err := s.Passwords.Matches(user.PasswordHash, params.Password)
	if err != nil {
		return nil, fmt.Errorf("compare password: %w", err)
	}
	if !ok {
		return nil, domainauth.ErrInvalidCredentials
	}
	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	s.logger().Info("user authenticated", "user_id", user.ID)
	return result, nil
}

// Logout revokes the token until it would have expired.
func (s *Service) Logout(ctx context.Context, principal Principal) error {
	if err := s.ensureDependencies(); err != nil {
		return err
	}
	if principal.TokenID == "" {
		return domainauth.ErrTokenInvalid
	}
	if err := s.Revocations.Revoke(ctx, principal.TokenID, principal.ExpiresAt); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	s.logger().Info("session terminated", "user_id", principal.UserID)
	return nil
}

// Resolve verifies a bearer token and rejects revoked or expired ones.
func (s *Service) Resolve(ctx context.Context, token string) (Principal, error) {
	if err := s.ensureDependencies(); err != nil {
		return Principal{}, err
	}
	claims, err := s.Tokens.Decode(domainauth.Token(token))
	if err != nil {
		return Principal{}, err
	}
	if claims.Expired(s.Clock.Now()) {
		return Principal{}, domainauth.ErrTokenInvalid
	}
	revoked, err := s.Revocations.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return Principal{}, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return Principal{}, domainauth.ErrTokenRevoked
	}
	return Principal{
		UserID:    string(claims.UserID),
		Email:     claims.Email,
		Name:      claims.Name,
		TokenID:   claims.TokenID,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}

func (s *Service) issue(user *domainuser.User) (*dto.AuthResult, error) {
	claims, err := domainauth.NewClaims(domainauth.IssueParams{
		TokenID: uuid.NewString(),
		User:    user,
		TTL:     s.tokenTTL(),
		Now:     s.Clock.Now(),
	})
	if err != nil {
		return nil, err
	}
	token, err := s.Tokens.Encode(claims)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResult{Token: string(token), ExpiresAt: claims.ExpiresAt, User: dto.MapUser(user)}, nil
}

func (s *Service) tokenTTL() time.Duration {
	if s.TokenTTL > 0 {
		return s.TokenTTL
	}
	return DefaultTokenTTL
}

func (s *Service) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func (s *Service) ensureDependencies() error {
	switch {
	case s.UoWFactory == nil:
		return errors.New("auth: unit of work factory required")
	case s.Revocations == nil:
		return errors.New("auth: revocation store required")
	case s.Passwords == nil:
		return errors.New("auth: password hasher required")
	case s.Tokens == nil:
		return errors.New("auth: token codec required")
	default:
		return nil
	}
}
