package models

import "testing"

func TestIsValidAuthMethod(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"trust", true},
		{"password", true},
		{" Password ", true},
		{"TRUST", true},
		{"google", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsValidAuthMethod(tt.in); got != tt.want {
			t.Errorf("IsValidAuthMethod(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
