package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitleMatches(t *testing.T) {
	tests := []struct {
		title string
		want  bool
	}{
		{"New ransomware strain hits hospitals", true},
		{"Critical Vulnerability in popular router", true},
		{"Zero-Day exploited in the wild", true},
		{"Ten recipes for summer salads", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, titleMatches(tt.title), "title %q", tt.title)
	}
}

func TestShortDate(t *testing.T) {
	assert.Equal(t, "Mon, 01 Se", shortDate("Mon, 01 Sep 2025 10:00:00 GMT"))
	assert.Equal(t, "2025-09-01", shortDate("2025-09-01"))
	assert.Equal(t, "", shortDate(""))
}

func TestPlainSummary(t *testing.T) {
	got := plainSummary("<p>Attackers   exploited a <b>flaw</b></p>")
	assert.Equal(t, "Attackers exploited a flaw", got)

	assert.Empty(t, plainSummary(""))

	long := plainSummary("<p>" + longWords(80) + "</p>")
	assert.LessOrEqual(t, len(long), 200)
}

func longWords(n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += "word "
	}
	return out
}
