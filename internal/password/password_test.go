package password

import "testing"

func TestHashAndCompare(t *testing.T) {
	// MinCost keeps the test fast; the work factor does not change behavior.
	h := NewHasher(4)

	hash, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "secret1" {
		t.Fatal("hash equals plaintext")
	}

	if !h.Compare("secret1", hash) {
		t.Error("correct password did not match")
	}
	if h.Compare("secret2", hash) {
		t.Error("wrong password matched")
	}
}

func TestNewHasherClampsCost(t *testing.T) {
	h := NewHasher(99)
	if h.cost != DefaultCost {
		t.Errorf("cost = %d, want %d", h.cost, DefaultCost)
	}
}
