package telegram

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitHTML(t *testing.T) {
	t.Run("short text stays whole", func(t *testing.T) {
		chunks := splitHTML("hello", 100)
		assert.Equal(t, []string{"hello"}, chunks)
	})

	t.Run("long text is chunked under the limit", func(t *testing.T) {
		text := strings.Repeat("0123456789", 30)
		chunks := splitHTML(text, 100)
		assert.Greater(t, len(chunks), 1)
		for _, chunk := range chunks {
			assert.LessOrEqual(t, len(chunk), 100)
		}
		assert.Equal(t, text, strings.Join(chunks, ""))
	})

	t.Run("prefers newline break points", func(t *testing.T) {
		text := strings.Repeat("x", 80) + "\n" + strings.Repeat("y", 80)
		chunks := splitHTML(text, 100)
		assert.Equal(t, strings.Repeat("x", 80), chunks[0])
	})
}
