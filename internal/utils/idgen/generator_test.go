package idgen

import (
	"strings"
	"testing"
)

func TestGenerateSecureID(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		length int
	}{
		{"room id", "room", 16},
		{"message id", "msg", 16},
		{"short id", "x", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := GenerateSecureID(tt.prefix, tt.length)
			if err != nil {
				t.Fatalf("GenerateSecureID() error = %v", err)
			}
			if !strings.HasPrefix(id, tt.prefix+"_") {
				t.Errorf("GenerateSecureID() = %q, want prefix %q", id, tt.prefix+"_")
			}
			if got := len(id); got != len(tt.prefix)+1+tt.length {
				t.Errorf("GenerateSecureID() length = %d, want %d", got, len(tt.prefix)+1+tt.length)
			}
			for _, c := range id[len(tt.prefix)+1:] {
				if (c < '0' || c > '9') && (c < 'a' || c > 'z') {
					t.Errorf("GenerateSecureID() contains invalid character %q", c)
				}
			}
		})
	}
}

func TestGenerateSecureIDUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id, err := GenerateSecureID("msg", 16)
		if err != nil {
			t.Fatalf("GenerateSecureID() error = %v", err)
		}
		if seen[id] {
			t.Fatalf("GenerateSecureID() produced duplicate %q", id)
		}
		seen[id] = true
	}
}

func TestValidateIDFormat(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		prefix string
		want   bool
	}{
		{"valid room id", "room_abc123def456gh78", "room", true},
		{"valid message id", "msg_0000000000000000", "msg", true},
		{"wrong prefix", "conv_abc123", "room", false},
		{"missing body", "room_", "room", false},
		{"uppercase body", "room_ABC123", "room", false},
		{"special characters", "room_abc-123", "room", false},
		{"empty id", "", "room", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateIDFormat(tt.id, tt.prefix); got != tt.want {
				t.Errorf("ValidateIDFormat(%q, %q) = %v, want %v", tt.id, tt.prefix, got, tt.want)
			}
		})
	}
}
