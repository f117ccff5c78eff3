package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/sandevgo/lisbot/internal/core"
	"github.com/sandevgo/lisbot/pkg/log"
	"github.com/sandevgo/lisbot/pkg/retry"
)

// FactExtractor is the first memory level: it pulls durable personal facts
// out of a single user utterance and merges them into the profile.
type FactExtractor struct {
	repo    core.MemoryRepository
	ai      core.AIProvider
	retrier *retry.Retrier
}

func NewFactExtractor(repo core.MemoryRepository, ai core.AIProvider) *FactExtractor {
	return &FactExtractor{
		repo:    repo,
		ai:      ai,
		retrier: retry.NewRetrier(retry.NewExtractionConfig()),
	}
}

func (e *FactExtractor) Update(ctx context.Context, userID, userInput string) error {
	mem, err := e.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return fmt.Errorf("load memory: %w", err)
	}

	currentProfile, err := json.Marshal(mem.Profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	system := buildProfilePrompt(string(currentProfile))
	raw, err := callExtraction(ctx, e.ai, e.retrier, system, userInput, extractionTemperature, 200)
	if err != nil {
		return err
	}

	var update ProfileUpdate
	if err := json.Unmarshal([]byte(raw), &update); err != nil {
		return fmt.Errorf("parse profile extraction: %w", err)
	}

	mergeProfile(&mem.Profile, update)
	mem.LastUpdated = time.Now()

	if err := e.repo.Save(ctx, mem); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}

	log.FromCtx(ctx).Debug().Str("user_id", userID).Msg("profile updated")
	return nil
}

// mergeProfile applies the declared merge rule per field: scalars overwrite
// when present, lists are set-union merged.
func mergeProfile(p *core.Profile, u ProfileUpdate) {
	if u.Name.set {
		p.Name = u.Name.val
	}
	if u.Profession.set {
		p.Profession = u.Profession.val
	}
	if u.Age.set {
		p.Age = u.Age.val
	}
	if u.Location.set {
		p.Location = u.Location.val
	}
	if len(u.Interests) > 0 {
		p.Interests = lo.Union(p.Interests, u.Interests)
	}
	if len(u.OtherFacts) > 0 {
		p.OtherFacts = lo.Union(p.OtherFacts, u.OtherFacts)
	}
}

func buildProfilePrompt(currentProfile string) string {
	return fmt.Sprintf(`Extract ONLY personal facts from the text. Current profile: %s

Return ONLY JSON (no markdown):
{
    "name": "name or null",
    "profession": "profession or null",
    "age": "age or null",
    "location": "city or null",
    "interests": ["list of interests"],
    "other_facts": ["other facts"]
}

Only fields with information, rest null. Keep old values if not contradicted by new information.`, currentProfile)
}
