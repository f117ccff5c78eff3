package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sandevgo/lisbot/internal/core"
	"github.com/sandevgo/lisbot/pkg/log"
	"github.com/sandevgo/lisbot/pkg/retry"
)

// Evolution maintains the bounded character-trait state: each turn the model
// proposes deltas, and every trait is clamped back into [0,1].
type Evolution struct {
	repo    core.MemoryRepository
	ai      core.AIProvider
	retrier *retry.Retrier
}

func NewEvolution(repo core.MemoryRepository, ai core.AIProvider) *Evolution {
	return &Evolution{
		repo:    repo,
		ai:      ai,
		retrier: retry.NewRetrier(retry.NewExtractionConfig()),
	}
}

func (e *Evolution) Update(ctx context.Context, userID, userInput, aiResponse string) error {
	mem, err := e.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return fmt.Errorf("load memory: %w", err)
	}

	if mem.Evolution == nil {
		mem.Evolution = core.DefaultTraits()
	}
	ev := mem.Evolution

	system := buildEvolutionPrompt(ev)
	user := fmt.Sprintf("User said: %s\n\nResponse was: %s", userInput, aiResponse)

	raw, err := callExtraction(ctx, e.ai, e.retrier, system, user, evolutionTemperature, 200)
	if err != nil {
		return err
	}

	var delta TraitDelta
	if err := json.Unmarshal([]byte(raw), &delta); err != nil {
		return fmt.Errorf("parse evolution extraction: %w", err)
	}

	now := time.Now()
	ev.Empathy = clamp01(ev.Empathy + delta.EmpathyDelta)
	ev.Trust = clamp01(ev.Trust + delta.TrustDelta)
	ev.Openness = clamp01(ev.Openness + delta.OpennessDelta)

	// Append then trim, so the newest entry survives even at capacity.
	ev.Changes = append(ev.Changes, fmt.Sprintf("[%s] %s", now.Format(time.RFC3339), delta.Reason))
	if len(ev.Changes) > core.TraitChangeLogSize {
		ev.Changes = ev.Changes[len(ev.Changes)-core.TraitChangeLogSize:]
	}
	ev.LastAnalyzed = now

	mem.LastUpdated = now
	if err := e.repo.Save(ctx, mem); err != nil {
		return fmt.Errorf("save evolution: %w", err)
	}

	log.FromCtx(ctx).Debug().
		Str("user_id", userID).
		Float64("empathy", ev.Empathy).
		Float64("trust", ev.Trust).
		Float64("openness", ev.Openness).
		Msg("character evolved")
	return nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func buildEvolutionPrompt(ev *core.TraitState) string {
	return fmt.Sprintf(`Analyze how the character should evolve based on this interaction.

Current state:
- Empathy level: %.2f (0=cold, 1=very empathetic)
- Trust level: %.2f (0=mistrusts, 1=trusts)
- Openness: %.2f (0=closed off, 1=very open)

Based on the user's messages and the responses, determine:
1. Should empathy increase/decrease/stay same?
2. Should trust in this user increase/decrease?
3. Should the character become more/less open?
4. What specific change occurred?

Return ONLY JSON (no markdown):
{
    "empathy_delta": -0.1,
    "trust_delta": 0.1,
    "openness_delta": 0.05,
    "reason": "User showed vulnerability about past trauma, respond with subtle empathy"
}`, ev.Empathy, ev.Trust, ev.Openness)
}
