package user

import (
	"errors"
	"testing"
	"time"
)

func TestNewUserNormalizesEmail(t *testing.T) {
	u, err := NewUser(CreateParams{ID: "u1", Email: "  Mona@Example.COM ", Name: " Mona ", PasswordHash: "hash"})
	if err != nil {
		t.Fatalf("new user: %v", err)
	}
	if u.Email != "mona@example.com" || u.Name != "Mona" {
		t.Fatalf("unexpected user %+v", u)
	}
}

func TestNewUserValidation(t *testing.T) {
	cases := []struct {
		name   string
		params CreateParams
		want   error
	}{
		{"missing id", CreateParams{Email: "a@b.c", Name: "A", PasswordHash: "h"}, ErrIDRequired},
		{"missing email", CreateParams{ID: "u", Name: "A", PasswordHash: "h"}, ErrEmailRequired},
		{"bad email", CreateParams{ID: "u", Email: "nope", Name: "A", PasswordHash: "h"}, ErrEmailInvalid},
		{"missing name", CreateParams{ID: "u", Email: "a@b.c", PasswordHash: "h"}, ErrNameRequired},
		{"missing hash", CreateParams{ID: "u", Email: "a@b.c", Name: "A"}, ErrPasswordHashMissing},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewUser(tc.params); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestUpdateProfileIsAllOrNothing(t *testing.T) {
	u, err := NewUser(CreateParams{ID: "u1", Email: "a@b.c", Name: "A", PasswordHash: "h"})
	if err != nil {
		t.Fatalf("new user: %v", err)
	}
	name, email := "B", "broken"
	if err := u.UpdateProfile(ProfileChanges{Name: &name, Email: &email}, time.Now()); !errors.Is(err, ErrEmailInvalid) {
		t.Fatalf("expected ErrEmailInvalid, got %v", err)
	}
	if u.Name != "A" {
		t.Fatalf("name changed on failed update: %q", u.Name)
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("12345"); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
	if err := ValidatePassword("123456"); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}
