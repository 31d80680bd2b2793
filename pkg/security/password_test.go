package security_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/delizzia/pos-backend/pkg/config"
	"github.com/delizzia/pos-backend/pkg/security"
)

var fastArgon = config.PasswordConfig{
	ArgonMemoryKB:    8192,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := security.HashPassword("cocina2024", fastArgon)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Fatalf("unexpected hash format %q", hash)
	}

	ok, err := security.VerifyPassword("cocina2024", hash)
	if err != nil || !ok {
		t.Fatalf("VerifyPassword failed for the correct password: ok=%v err=%v", ok, err)
	}

	ok, err = security.VerifyPassword("bogus-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error for invalid password: %v", err)
	}
	if ok {
		t.Fatal("VerifyPassword returned true for incorrect password")
	}
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	if _, err := security.HashPassword("", fastArgon); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestVerifyPasswordBadHash(t *testing.T) {
	for _, encoded := range []string{
		"not-a-hash",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdA$aGFzaA",
		"$bcrypt$v=19$m=8192,t=1,p=1$c2FsdA$aGFzaA",
	} {
		if _, err := security.VerifyPassword("irrelevant", encoded); !errors.Is(err, security.ErrInvalidHash) {
			t.Fatalf("expected ErrInvalidHash for %q, got %v", encoded, err)
		}
	}
}

func TestValidatePasswordStrength(t *testing.T) {
	if err := security.ValidatePasswordStrength("short1"); err == nil {
		t.Fatal("expected short password to fail")
	}
	if err := security.ValidatePasswordStrength("onlyletters"); err == nil {
		t.Fatal("expected letters-only password to fail")
	}
	if err := security.ValidatePasswordStrength("pizza1234"); err != nil {
		t.Fatalf("expected valid password, got %v", err)
	}
}
