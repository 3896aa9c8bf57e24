package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hashed, err := h.Hash("pw")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hashed == "pw" {
		t.Fatal("hash equals plaintext")
	}
	if err := h.Compare(hashed, "pw"); err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if err := h.Compare(hashed, "other"); err == nil {
		t.Fatal("expected mismatch")
	}
}

func TestNewBcryptHasher_ClampsCost(t *testing.T) {
	if got := NewBcryptHasher(0).cost; got != bcrypt.DefaultCost {
		t.Errorf("cost = %d, want %d", got, bcrypt.DefaultCost)
	}
	if got := NewBcryptHasher(99).cost; got != bcrypt.DefaultCost {
		t.Errorf("cost = %d, want %d", got, bcrypt.DefaultCost)
	}
}
