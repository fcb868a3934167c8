package security

import (
	"strings"
	"testing"

	"github.com/angelmondragon/shopzone-backend/pkg/config"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse", config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Fatalf("unexpected hash format: %s", hash)
	}

	ok, err := VerifyPassword("correct horse", hash)
	if err != nil {
		t.Fatalf("verify password: %v", err)
	}
	if !ok {
		t.Fatal("expected matching password to verify")
	}

	ok, err = VerifyPassword("wrong horse", hash)
	if err != nil {
		t.Fatalf("verify wrong password: %v", err)
	}
	if ok {
		t.Fatal("expected mismatching password to fail")
	}
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	if _, err := VerifyPassword("whatever", "not-a-hash"); err != ErrInvalidHash {
		t.Fatalf("expected ErrInvalidHash, got %v", err)
	}
}

func TestResetTokenRoundTrip(t *testing.T) {
	raw, err := NewResetToken()
	if err != nil {
		t.Fatalf("new reset token: %v", err)
	}
	if len(raw) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(raw))
	}

	other, err := NewResetToken()
	if err != nil {
		t.Fatalf("second reset token: %v", err)
	}
	if raw == other {
		t.Fatal("expected distinct tokens")
	}

	if HashResetToken(raw) == raw {
		t.Fatal("hash must differ from raw token")
	}
	if HashResetToken(raw) != HashResetToken(raw) {
		t.Fatal("hash must be deterministic")
	}
}
