package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/sandevgo/lisbot/internal/core"
	"github.com/sandevgo/lisbot/pkg/log"
)

// HistoryRing is the third memory level: a bounded log of raw turns.
type HistoryRing struct {
	repo  core.MemoryRepository
	limit int
}

func NewHistoryRing(repo core.MemoryRepository, limit int) *HistoryRing {
	return &HistoryRing{repo: repo, limit: limit}
}

// Append stores one turn, trimming the oldest entries past the bound.
func (h *HistoryRing) Append(ctx context.Context, userID, role, message string) error {
	mem, err := h.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return fmt.Errorf("load memory: %w", err)
	}

	now := time.Now()
	mem.History = append(mem.History, core.Turn{
		Role:      role,
		Message:   message,
		Timestamp: now,
	})
	if len(mem.History) > h.limit {
		mem.History = mem.History[len(mem.History)-h.limit:]
	}

	mem.LastUpdated = now
	if err := h.repo.Save(ctx, mem); err != nil {
		return fmt.Errorf("save history: %w", err)
	}

	log.FromCtx(ctx).Debug().
		Str("user_id", userID).
		Str("role", role).
		Int("length", len(mem.History)).
		Msg("history appended")
	return nil
}
