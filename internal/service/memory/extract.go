package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/lisbot/internal/core"
	"github.com/sandevgo/lisbot/pkg/retry"
)

const (
	extractionTemperature = 0.2
	topicTemperature      = 0.3
	evolutionTemperature  = 0.3
)

// stripCodeFences removes the markdown wrapper some models put around JSON
// output despite being told not to.
func stripCodeFences(content string) string {
	content = strings.ReplaceAll(content, "```json", "")
	content = strings.ReplaceAll(content, "```", "")
	return strings.TrimSpace(content)
}

// callExtraction runs one structured-extraction round trip and returns the
// raw response text with fences stripped. Retries are bounded: a failed
// extraction costs one turn of memory, nothing more.
func callExtraction(ctx context.Context, ai core.AIProvider, retrier *retry.Retrier, system, user string, temperature float64, maxTokens int) (string, error) {
	var reply core.Message

	err := retrier.Do(ctx, func() error {
		var err error
		reply, err = ai.Chat(ctx, []core.Message{
			{Role: core.RoleSystem, Content: system},
			{Role: core.RoleUser, Content: user},
		}, core.ChatOptions{
			Temperature: core.Temp(temperature),
			MaxTokens:   maxTokens,
		})
		return err
	})
	if err != nil {
		return "", fmt.Errorf("extraction call: %w", err)
	}

	return stripCodeFences(reply.Content), nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
