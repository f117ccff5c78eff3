package tools

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateDorks(t *testing.T) {
	links := GenerateDorks("  Jane Doe  ")
	require.Len(t, links, 6)

	platforms := make([]string, 0, len(links))
	for _, l := range links {
		platforms = append(platforms, l.Platform)

		parsed, err := url.Parse(l.URL)
		require.NoError(t, err)
		assert.Equal(t, "www.google.com", parsed.Host)
		assert.Contains(t, parsed.Query().Get("q"), "Jane Doe")
	}

	assert.Equal(t, []string{
		"Facebook", "LinkedIn", "Instagram", "Twitter/X", "General OSINT", "Public Documents",
	}, platforms)
}

func TestGenerateDorksEscapesQuery(t *testing.T) {
	links := GenerateDorks(`a&b "c"`)
	for _, l := range links {
		assert.NotContains(t, l.URL[len("https://www.google.com/search?q="):], " ")
	}
}

func TestCameraPicker(t *testing.T) {
	picker := NewCameraPicker([]string{"http://cam.example/1", "http://cam.example/2"}, 1)
	for i := 0; i < 10; i++ {
		link, ok := picker.Pick()
		require.True(t, ok)
		assert.Contains(t, []string{"http://cam.example/1", "http://cam.example/2"}, link)
	}

	empty := NewCameraPicker(nil, 1)
	_, ok := empty.Pick()
	assert.False(t, ok)
}
