package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"rento/internal/app/clock"
	"rento/internal/app/services/auth"
	domainauth "rento/internal/domain/auth"
	"rento/internal/domain/shared/fault"
	domainuser "rento/internal/domain/user"
	"rento/internal/infra/security"
	"rento/internal/infra/storage/memory"
)

func newService(t *testing.T) *auth.Service {
	t.Helper()
	codec, err := security.NewJWTCodec("test-secret", "rento")
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	return &auth.Service{
		UoWFactory:  memory.NewFactory(memory.NewStore()),
		Passwords:   security.BcryptHasher{Cost: bcrypt.MinCost},
		Tokens:      codec,
		Revocations: memory.NewRevocationStore(),
		TokenTTL:    time.Hour,
		Clock:       clock.New(time.UTC),
	}
}

func TestRegisterLoginLogout(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	reg, err := svc.Register(ctx, auth.RegisterParams{Name: "Sara", Email: " Sara@Example.com ", Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.User.Email != "sara@example.com" || reg.Token == "" {
		t.Fatalf("unexpected registration %+v", reg)
	}

	login, err := svc.Login(ctx, auth.LoginParams{Email: "sara@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	principal, err := svc.Resolve(ctx, login.Token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if principal.UserID != reg.User.ID {
		t.Fatalf("principal %q does not match user %q", principal.UserID, reg.User.ID)
	}

	if err := svc.Logout(ctx, principal); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.Resolve(ctx, login.Token); !errors.Is(err, domainauth.ErrTokenRevoked) {
		t.Fatalf("expected revoked token, got %v", err)
	}
	if _, err := svc.Resolve(ctx, reg.Token); err != nil {
		t.Fatalf("other sessions must survive logout: %v", err)
	}
}

func TestRegisterRejects(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	if _, err := svc.Register(ctx, auth.RegisterParams{Name: "A", Email: "a@b.c", Password: "secret1"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	cases := []struct {
		name   string
		params auth.RegisterParams
		want   error
	}{
		{"missing fields", auth.RegisterParams{Email: "x@y.z", Password: "secret1"}, auth.ErrRegistrationFields},
		{"short password", auth.RegisterParams{Name: "B", Email: "b@b.c", Password: "12345"}, domainuser.ErrPasswordTooShort},
		{"duplicate email", auth.RegisterParams{Name: "C", Email: "A@B.C", Password: "secret1"}, domainuser.ErrEmailAlreadyUsed},
	}
	for _, tc := range cases {
		if _, err := svc.Register(ctx, tc.params); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
	_, err := svc.Register(ctx, auth.RegisterParams{Name: "C", Email: "a@b.c", Password: "secret1"})
	if fault.KindOf(err) != fault.Conflict {
		t.Fatalf("duplicate email must be a conflict, got %v", fault.KindOf(err))
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	if _, err := svc.Register(ctx, auth.RegisterParams{Name: "A", Email: "a@b.c", Password: "secret1"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	for _, params := range []auth.LoginParams{
		{Email: "a@b.c", Password: "wrong-pass"},
		{Email: "nobody@b.c", Password: "secret1"},
	} {
		if _, err := svc.Login(ctx, params); !errors.Is(err, domainauth.ErrInvalidCredentials) {
			t.Fatalf("%s: expected ErrInvalidCredentials, got %v", params.Email, err)
		}
	}
	if _, err := svc.Login(ctx, auth.LoginParams{Email: "a@b.c"}); !errors.Is(err, auth.ErrLoginFields) {
		t.Fatalf("expected ErrLoginFields, got %v", err)
	}
}
