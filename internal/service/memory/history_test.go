package memory

import (
	"context"
	"testing"

	"github.com/sandevgo/lisbot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryRing_Append(t *testing.T) {
	repo := newFakeRepo()
	ring := NewHistoryRing(repo, 100)
	ctx := context.Background()

	require.NoError(t, ring.Append(ctx, "u1", core.RoleUser, "hello"))
	require.NoError(t, ring.Append(ctx, "u1", core.RoleAssistant, "what"))

	stored, err := repo.Load(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, stored.History, 2)
	assert.Equal(t, core.RoleUser, stored.History[0].Role)
	assert.Equal(t, "hello", stored.History[0].Message)
	assert.False(t, stored.History[0].Timestamp.IsZero())
}

func TestHistoryRing_TrimsOldestFirst(t *testing.T) {
	repo := newFakeRepo()
	ring := NewHistoryRing(repo, 3)
	ctx := context.Background()

	for _, msg := range []string{"A", "B", "C", "D"} {
		require.NoError(t, ring.Append(ctx, "u1", core.RoleUser, msg))
	}

	stored, err := repo.Load(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, stored.History, 3)

	var got []string
	for _, turn := range stored.History {
		got = append(got, turn.Message)
	}
	assert.Equal(t, []string{"B", "C", "D"}, got)
}

func TestHistoryRing_NeverExceedsBound(t *testing.T) {
	repo := newFakeRepo()
	ring := NewHistoryRing(repo, 5)
	ctx := context.Background()

	for i := 0; i < 37; i++ {
		require.NoError(t, ring.Append(ctx, "u1", core.RoleUser, "m"))

		stored, err := repo.Load(ctx, "u1")
		require.NoError(t, err)
		assert.LessOrEqual(t, len(stored.History), 5)
	}
}
