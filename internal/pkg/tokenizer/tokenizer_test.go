package tokenizer

import (
	"strings"
	"testing"
)

func TestEstimatorCount(t *testing.T) {
	c := NewEstimator()

	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"abc", 1},
		{"abcd", 1},
		{"abcde", 2},
		{strings.Repeat("ж", 8), 2},
	}
	for _, tt := range tests {
		if got := c.Count(tt.text); got != tt.want {
			t.Errorf("Count(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestEstimatorTruncate(t *testing.T) {
	c := NewEstimator()

	text := strings.Repeat("x", 100)
	got, cut := c.Truncate(text, 10)
	if !cut || len(got) != 40 {
		t.Errorf("Truncate = %d chars, cut=%v", len(got), cut)
	}

	got, cut = c.Truncate("short", 10)
	if cut || got != "short" {
		t.Errorf("Truncate(short) = %q, cut=%v", got, cut)
	}

	got, cut = c.Truncate(text, 0)
	if cut || got != text {
		t.Error("zero limit should leave text unchanged")
	}
}
