package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		strength string
	}{
		{
			name:     "long mixed password is strong",
			password: "Tr!ckyPelican#2042x",
			strength: "STRONG",
		},
		{
			name:     "short password without specials is weak",
			password: "aB1",
			strength: "WEAK",
		},
		{
			name:     "common pattern drags the score down",
			password: "Password123!",
			strength: "MEDIUM",
		},
		{
			name:     "lowercase only is weak",
			password: "correcthorsebatterystaple",
			strength: "WEAK",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := AnalyzePassword(tt.password)
			assert.Equal(t, tt.strength, result.Strength)
			assert.GreaterOrEqual(t, result.Score, 0)
			assert.LessOrEqual(t, result.Score, 100)
			assert.NotEmpty(t, result.Feedback)
			assert.Contains(t, result.Message, tt.strength)
		})
	}
}

func TestAnalyzePasswordScoring(t *testing.T) {
	// 16+ chars, all four classes, no penalties: 25+15+15+15+20 = 90.
	result := AnalyzePassword("Xk9!mQw2#zR5vT8p")
	assert.Equal(t, 90, result.Score)
	assert.Equal(t, []string{"Good password!"}, result.Feedback)
}

func TestAnalyzePasswordPenalties(t *testing.T) {
	clean := AnalyzePassword("Xk9!mQw2#zR5vT8p")
	repeated := AnalyzePassword("Xk9!mQwww2#zR5vT")
	assert.Equal(t, clean.Score-10, repeated.Score)
	assert.Contains(t, repeated.Feedback, "Repeating characters detected")
}

func TestHasRepeatedRun(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"abc", false},
		{"aabbcc", false},
		{"aaab", true},
		{"baaa", true},
		{"", false},
		{"aa", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, hasRepeatedRun(tt.input, 3), "input %q", tt.input)
	}
}
