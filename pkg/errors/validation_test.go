package errors

import (
	"strings"
	"testing"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"simple", "client-42", false},
		{"uuid", "3f1c9a2e-6a57-4d2b-9a55-0f6a2d1e7c11", false},
		{"empty", "", true},
		{"too long", strings.Repeat("a", MaxIDLength+1), true},
		{"whitespace", "acme corp", true},
		{"control", "a\x00b", true},
		{"slash", "a/b", true},
		{"backslash", `a\b`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID("client", tt.id)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("expected INVALID_INPUT, got %v", GetCode(err))
			}
		})
	}
}

func TestValidateSearch(t *testing.T) {
	if err := ValidateSearch(""); err != nil {
		t.Errorf("empty search should be valid: %v", err)
	}
	if err := ValidateSearch("Acme"); err != nil {
		t.Errorf("plain search should be valid: %v", err)
	}
	if err := ValidateSearch(strings.Repeat("x", MaxSearchLength+1)); err == nil {
		t.Error("overlong search should be rejected")
	}
	if err := ValidateSearch("a\nb"); err == nil {
		t.Error("search with control characters should be rejected")
	}
}
