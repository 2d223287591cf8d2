package model

import (
	"strings"
	"testing"
)

func TestDeriveChatName(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"short query kept as is", "help with dp", "help with dp"},
		{"exactly at limit kept as is", strings.Repeat("a", ChatNameMaxLen), strings.Repeat("a", ChatNameMaxLen)},
		{"long query truncated with ellipsis", strings.Repeat("b", 50), strings.Repeat("b", ChatNameMaxLen) + "..."},
		{"empty query", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveChatName(tt.query); got != tt.want {
				t.Errorf("DeriveChatName(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestDeriveChatNameMultibyte(t *testing.T) {
	query := strings.Repeat("日", 40)
	got := DeriveChatName(query)
	want := strings.Repeat("日", ChatNameMaxLen) + "..."
	if got != want {
		t.Errorf("DeriveChatName truncated mid-rune: got %q, want %q", got, want)
	}
}
