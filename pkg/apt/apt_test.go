package apt

import (
	"strings"
	"testing"
)

func TestTail(t *testing.T) {
	tests := []struct {
		name  string
		input string
		n     int
		want  string
	}{
		{"short input unchanged", "a\nb", 5, "a\nb"},
		{"long input truncated", "a\nb\nc\nd", 2, "c\nd"},
		{"trailing newline trimmed", "a\nb\n", 5, "a\nb"},
		{"single line", "only", 1, "only"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tail(tt.input, tt.n); got != tt.want {
				t.Errorf("tail(%q, %d) = %q, want %q", tt.input, tt.n, got, tt.want)
			}
		})
	}
}

func TestTailLongTranscript(t *testing.T) {
	lines := make([]string, 100)
	for i := range lines {
		lines[i] = "Get:1 http://archive.ubuntu.com/ubuntu noble InRelease"
	}
	got := tail(strings.Join(lines, "\n"), 20)
	if count := strings.Count(got, "\n") + 1; count != 20 {
		t.Errorf("tail kept %d lines, want 20", count)
	}
}
