package chat

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"github.com/sandevgo/lisbot/internal/core"
)

type TokenCounter interface {
	Count(text string) int
}

// NewTokenCounter returns a cl100k_base counter. When the encoding cannot be
// loaded (offline hosts) it falls back to a bytes/4 estimate, which only
// affects how aggressively history is trimmed.
func NewTokenCounter() TokenCounter {
	return &tiktokenCounter{}
}

type tiktokenCounter struct {
	once sync.Once
	enc  *tiktoken.Tiktoken
}

func (c *tiktokenCounter) Count(text string) int {
	c.once.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			c.enc = enc
		}
	})
	if c.enc == nil {
		return estimateTokens(text)
	}
	return len(c.enc.Encode(text, nil, nil))
}

func estimateTokens(text string) int {
	return (len(text) + 3) / 4
}

// trimToBudget drops the oldest history turns until the remainder fits the
// token budget. The newest turn is always kept.
func trimToBudget(history []core.Turn, budget int, tc TokenCounter) []core.Turn {
	if budget <= 0 || len(history) == 0 {
		return history
	}

	total := 0
	start := len(history)
	for i := len(history) - 1; i >= 0; i-- {
		total += tc.Count(history[i].Message)
		if total > budget && start < len(history) {
			break
		}
		start = i
	}
	return history[start:]
}
