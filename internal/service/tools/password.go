package tools

import (
	"fmt"
	"regexp"
	"strings"
)

type StrengthResult struct {
	Score    int      `json:"score"`
	Strength string   `json:"strength"`
	Feedback []string `json:"feedback"`
	Message  string   `json:"message"`
}

var (
	lowerRe   = regexp.MustCompile(`[a-z]`)
	upperRe   = regexp.MustCompile(`[A-Z]`)
	digitRe   = regexp.MustCompile(`[0-9]`)
	specialRe = regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{};:'",.<>?/\\|` + "`" + `~]`)
)

var commonPatterns = []string{"password", "123456", "qwerty", "admin", "letmein"}

// AnalyzePassword scores a password 0..100 and explains what is missing.
// Pure computation, no external calls.
func AnalyzePassword(password string) StrengthResult {
	score := 0
	var feedback []string

	switch {
	case len(password) >= 16:
		score += 25
	case len(password) >= 12:
		score += 20
	case len(password) >= 8:
		score += 10
	default:
		feedback = append(feedback, "Password too short (min 12 chars)")
	}

	if lowerRe.MatchString(password) {
		score += 15
	} else {
		feedback = append(feedback, "No lowercase letters")
	}
	if upperRe.MatchString(password) {
		score += 15
	} else {
		feedback = append(feedback, "No uppercase letters")
	}
	if digitRe.MatchString(password) {
		score += 15
	} else {
		feedback = append(feedback, "No numbers")
	}
	if specialRe.MatchString(password) {
		score += 20
	} else {
		feedback = append(feedback, "No special characters")
	}

	if hasRepeatedRun(password, 3) {
		score -= 10
		feedback = append(feedback, "Repeating characters detected")
	}

	lowered := strings.ToLower(password)
	for _, pattern := range commonPatterns {
		if strings.Contains(lowered, pattern) {
			score -= 15
			feedback = append(feedback, "Contains common patterns")
			break
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	var strength string
	switch {
	case score >= 80:
		strength = "STRONG"
	case score >= 60:
		strength = "MEDIUM"
	default:
		strength = "WEAK"
	}

	if len(feedback) == 0 {
		feedback = []string{"Good password!"}
	}

	return StrengthResult{
		Score:    score,
		Strength: strength,
		Feedback: feedback,
		Message:  fmt.Sprintf("Password strength: %s (%d/100)", strength, score),
	}
}

// hasRepeatedRun reports whether any character repeats n or more times in a
// row. Go's regexp has no backreferences, so this is a plain scan.
func hasRepeatedRun(s string, n int) bool {
	run := 1
	var prev rune
	for i, r := range s {
		if i > 0 && r == prev {
			run++
			if run >= n {
				return true
			}
		} else {
			run = 1
		}
		prev = r
	}
	return false
}
