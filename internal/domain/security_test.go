package domain

import "testing"

// ─── PIN Hashing Tests ──────────────────────────────────────────────────────

func TestHashPIN_KnownVector(t *testing.T) {
	got := HashPIN("1234")
	want := "03ac674216f3e15c761ee1a5e255f067953623c8b388b4459e13f978d7c846f4"
	if got != want {
		t.Errorf("HashPIN(1234) = %q, want %q", got, want)
	}
	if len(got) != 64 {
		t.Errorf("digest length = %d, want 64", len(got))
	}
}

func TestHashPIN_Deterministic(t *testing.T) {
	if HashPIN("8842") != HashPIN("8842") {
		t.Error("HashPIN should be deterministic")
	}
}

func TestHashPIN_Blank(t *testing.T) {
	for _, pin := range []string{"", "   ", "\t"} {
		if got := HashPIN(pin); got != "" {
			t.Errorf("HashPIN(%q) = %q, want empty (no credential set)", pin, got)
		}
	}
}

func TestValidatePIN(t *testing.T) {
	stored := HashPIN("1234")

	tests := []struct {
		name   string
		pin    string
		stored string
		want   bool
	}{
		{"correct pin", "1234", stored, true},
		{"wrong pin", "0000", stored, false},
		{"empty stored hash", "1234", "", false},
		{"blank stored hash", "1234", "  ", false},
		{"empty pin against stored", "", stored, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidatePIN(tt.pin, tt.stored); got != tt.want {
				t.Errorf("ValidatePIN(%q, %q) = %v, want %v", tt.pin, tt.stored, got, tt.want)
			}
		})
	}
}
