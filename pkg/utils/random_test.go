package utils

import "testing"

func TestGenerateSecret(t *testing.T) {
	secret := GenerateSecret(64)
	if len(secret) != 64 {
		t.Fatalf("len = %d, want 64", len(secret))
	}
	for _, c := range secret {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		default:
			t.Fatalf("unexpected character %q in secret", c)
		}
	}

	if GenerateSecret(64) == secret {
		t.Error("two secrets should not collide")
	}
}

func TestRandomSuffix(t *testing.T) {
	suffix := RandomSuffix(8)
	if len(suffix) != 8 {
		t.Fatalf("len = %d, want 8", len(suffix))
	}
	// n<=0 回退到默认长度
	if len(RandomSuffix(0)) != 8 {
		t.Error("zero length should fall back to 8")
	}
}

func TestGenerateID(t *testing.T) {
	if GenerateID() == GenerateID() {
		t.Error("ids should be unique")
	}
}
