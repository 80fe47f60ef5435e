package security

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"golang.org/x/crypto/bcrypt"

	domainauth "rento/internal/domain/auth"
	domainuser "rento/internal/domain/user"
)

func TestBcryptHasher(t *testing.T) {
	h := BcryptHasher{Cost: bcrypt.MinCost}
	hash, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if ok, err := h.Matches(hash, "secret1"); err != nil || !ok {
		t.Fatalf("expected match, got %v %v", ok, err)
	}
	if ok, err := h.Matches(hash, "wrong"); err != nil || ok {
		t.Fatalf("expected mismatch without error, got %v %v", ok, err)
	}
	if _, err := h.Matches("not-a-hash", "secret1"); err == nil {
		t.Fatalf("expected error for malformed hash")
	}
}

func TestJWTCodecRoundTrip(t *testing.T) {
	codec, err := NewJWTCodec("test-secret", "rento")
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	claims, err := domainauth.NewClaims(domainauth.IssueParams{
		TokenID: "tok-1",
		User:    &domainuser.User{ID: "u-1", Email: "a@b.c", Name: "Ali"},
		TTL:     time.Hour,
		Now:     time.Now(),
	})
	if err != nil {
		t.Fatalf("claims: %v", err)
	}
	token, err := codec.Encode(claims)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := codec.Decode(token)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.UserID != "u-1" || got.TokenID != "tok-1" || got.Email != "a@b.c" || got.Name != "Ali" {
		t.Fatalf("unexpected claims %+v", got)
	}
}

func TestJWTCodecRejects(t *testing.T) {
	codec, _ := NewJWTCodec("test-secret", "rento")
	other, _ := NewJWTCodec("other-secret", "rento")
	user := &domainuser.User{ID: "u-1"}

	valid, _ := domainauth.NewClaims(domainauth.IssueParams{TokenID: "t", User: user, TTL: time.Hour})
	foreign, _ := other.Encode(valid)

	expired := valid
	expired.IssuedAt = time.Now().Add(-2 * time.Hour)
	expired.ExpiresAt = time.Now().Add(-time.Hour)
	stale, _ := codec.Encode(expired)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.StandardClaims{Subject: "u-1"})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)

	cases := map[string]domainauth.Token{
		"foreign secret": foreign,
		"expired":        stale,
		"alg none":       domainauth.Token(unsigned),
		"garbage":        "abc.def.ghi",
	}
	for name, token := range cases {
		if _, err := codec.Decode(token); !errors.Is(err, domainauth.ErrTokenInvalid) {
			t.Fatalf("%s: expected ErrTokenInvalid, got %v", name, err)
		}
	}
	if _, err := codec.Decode(""); !errors.Is(err, domainauth.ErrTokenRequired) {
		t.Fatalf("expected ErrTokenRequired, got %v", err)
	}
	if _, err := NewJWTCodec(" ", ""); !errors.Is(err, ErrSecretRequired) {
		t.Fatalf("expected ErrSecretRequired, got %v", err)
	}
}
