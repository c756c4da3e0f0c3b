package utils

import "testing"

func TestHashAndComparePassword(t *testing.T) {
	hashed, err := HashPassword("s3cret-pw")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := ComparePassword(hashed, "s3cret-pw"); err != nil {
		t.Errorf("expected matching password to compare clean, got %v", err)
	}
	if err := ComparePassword(hashed, "wrong-pw"); err == nil {
		t.Error("expected mismatched password to be rejected")
	}
}

// A stored value bcrypt cannot parse (truncated or legacy plaintext) must
// error out; login treats any compare failure as bad credentials.
func TestComparePasswordRejectsUnparseableHash(t *testing.T) {
	if err := ComparePassword("not-a-bcrypt-hash", "whatever"); err == nil {
		t.Error("expected error for unparseable stored hash")
	}
	if err := ComparePassword("", "whatever"); err == nil {
		t.Error("expected error for empty stored hash")
	}
}
