package security

import (
	"strings"
	"testing"
)

func TestArgon2HasherHashAndVerify(t *testing.T) {
	hasher, err := NewArgon2Hasher(DefaultArgon2Config())
	if err != nil {
		t.Fatalf("NewArgon2Hasher returned error: %v", err)
	}

	password := "correct horse battery staple"

	encoded, err := hasher.Hash(password)
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}

	parts := strings.Split(encoded, "$")
	if len(parts) != 5 {
		t.Fatalf("unexpected hash format: %q", encoded)
	}
	if parts[0] != argon2Variant {
		t.Fatalf("unexpected variant: %s", parts[0])
	}
	if parts[1] != argon2Version {
		t.Fatalf("unexpected version: %s", parts[1])
	}

	ok, err := hasher.Verify(password, encoded)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if !ok {
		t.Fatal("Verify returned false for correct password")
	}
}

func TestArgon2HasherVerifyIncorrectPassword(t *testing.T) {
	hasher, err := NewArgon2Hasher(DefaultArgon2Config())
	if err != nil {
		t.Fatalf("NewArgon2Hasher returned error: %v", err)
	}

	encoded, err := hasher.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}

	ok, err := hasher.Verify("Tr0ub4dor&3", encoded)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if ok {
		t.Fatal("Verify returned true for incorrect password")
	}
}

func TestArgon2HasherVerifyInvalidFormat(t *testing.T) {
	hasher, err := NewArgon2Hasher(DefaultArgon2Config())
	if err != nil {
		t.Fatalf("NewArgon2Hasher returned error: %v", err)
	}

	if _, err := hasher.Verify("password", "invalid-format"); err == nil {
		t.Fatal("Verify expected to return error for invalid format")
	}
}

func TestArgon2HasherVerifyEmptyInputs(t *testing.T) {
	hasher, err := NewArgon2Hasher(DefaultArgon2Config())
	if err != nil {
		t.Fatalf("NewArgon2Hasher returned error: %v", err)
	}

	ok, err := hasher.Verify("", "")
	if err != nil {
		t.Fatalf("Verify returned error for empty inputs: %v", err)
	}
	if ok {
		t.Fatal("Verify should return false for empty inputs")
	}
}

func TestArgon2HasherParametersEmbeddedInHash(t *testing.T) {
	cfg := Argon2Config{
		Memory:      128 * 1024,
		Iterations:  4,
		Parallelism: 2,
		SaltLength:  24,
		KeyLength:   48,
	}

	hasher, err := NewArgon2Hasher(cfg)
	if err != nil {
		t.Fatalf("NewArgon2Hasher returned error: %v", err)
	}

	encoded, err := hasher.Hash("change-me")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}

	parts := strings.Split(encoded, "$")
	if !strings.Contains(parts[2], "m=131072") || !strings.Contains(parts[2], "t=4") || !strings.Contains(parts[2], "p=2") {
		t.Fatalf("encoded hash does not reflect configured parameters: %s", parts[2])
	}

	// A hasher with different parameters still verifies because the
	// parameters travel inside the encoded hash.
	other, err := NewArgon2Hasher(DefaultArgon2Config())
	if err != nil {
		t.Fatalf("NewArgon2Hasher returned error: %v", err)
	}

	ok, err := other.Verify("change-me", encoded)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if !ok {
		t.Fatal("Verify failed across differing hasher parameters")
	}
}

func TestNewArgon2HasherRejectsInvalidConfig(t *testing.T) {
	if _, err := NewArgon2Hasher(Argon2Config{}); err == nil {
		t.Fatal("NewArgon2Hasher expected to reject zero config")
	}
}
