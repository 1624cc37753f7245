package utils

import (
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/salon-reservation/internal/model"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("secret", 42, model.RoleStaff, 5)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	id, role, err := ParseAccessToken("secret", tok.Token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if id != 42 || role != model.RoleStaff {
		t.Fatalf("unexpected claims %d %s", id, role)
	}
}

func TestParseAccessTokenRejects(t *testing.T) {
	good, _ := NewAccessToken("secret", 42, model.RoleClient, 5)
	expired, _ := NewAccessToken("secret", 42, model.RoleClient, -5)
	badRole, _ := NewAccessToken("secret", 42, model.Role("owner"), 5)
	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, AccessClaims{Role: model.RoleAdmin}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)

	for name, raw := range map[string]string{
		"wrong secret": good.Token,
		"expired":      expired.Token,
		"bad role":     badRole.Token,
		"alg none":     none,
		"garbage":      "a.b.c",
	} {
		secret := "secret"
		if name == "wrong secret" {
			secret = "other"
		}
		if _, _, err := ParseAccessToken(secret, raw); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestRefreshTokenHash(t *testing.T) {
	a, err := NewRefreshToken(7)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := NewRefreshToken(7)
	if len(a.Raw) != 96 || a.Raw == b.Raw {
		t.Fatalf("unexpected raw tokens %q %q", a.Raw, b.Raw)
	}
	if HashRefreshRaw(a.Raw) != HashRefreshRaw(a.Raw) || HashRefreshRaw(a.Raw) == HashRefreshRaw(b.Raw) {
		t.Fatal("hash must be deterministic and distinct")
	}
	if len(HashRefreshRaw(a.Raw)) != 64 {
		t.Fatal("expected hex sha-256")
	}
}

func TestPasswordHashing(t *testing.T) {
	h, err := HashPassword("s3cret", bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	if !VerifyPassword(h, "s3cret") || VerifyPassword(h, "wrong") {
		t.Fatal("verify mismatch")
	}
}
