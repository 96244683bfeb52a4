package handler

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestValidateLuhn(t *testing.T) {
	tests := []struct {
		number string
		want   bool
	}{
		{"79927398713", true},
		{"4561261212345467", true},
		{"79927398710", false},
		{"4561261212345464", false},
		{"1", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := validateLuhn(tt.number); got != tt.want {
			t.Errorf("validateLuhn(%q) = %v, want %v", tt.number, got, tt.want)
		}
	}
}

func TestReadOrderNumber(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{"plain number", "79927398713", "79927398713", false},
		{"surrounding whitespace", "  79927398713\n", "79927398713", false},
		{"empty body", "", "", true},
		{"non-digits", "abc123", "", true},
		{"too large", strings.Repeat("9", 2048), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/orders", strings.NewReader(tt.body))
			got, err := readOrderNumber(req)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
