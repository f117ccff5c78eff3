package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/sandevgo/lisbot/internal/core"
	"github.com/sandevgo/lisbot/pkg/log"
	"github.com/sandevgo/lisbot/pkg/retry"
)

// replyContextLimit bounds how much of the assistant reply is sent as
// classification context. The classifier needs the gist, not the prose.
const replyContextLimit = 300

// TopicTracker is the second memory level: it classifies each turn into a
// named topic and accumulates the user's positions on it.
type TopicTracker struct {
	repo    core.MemoryRepository
	ai      core.AIProvider
	retrier *retry.Retrier
}

func NewTopicTracker(repo core.MemoryRepository, ai core.AIProvider) *TopicTracker {
	return &TopicTracker{
		repo:    repo,
		ai:      ai,
		retrier: retry.NewRetrier(retry.NewExtractionConfig()),
	}
}

func (t *TopicTracker) Update(ctx context.Context, userID, userInput, aiResponse string) error {
	mem, err := t.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return fmt.Errorf("load memory: %w", err)
	}

	currentTopics, err := json.Marshal(mem.Topics)
	if err != nil {
		return fmt.Errorf("marshal topics: %w", err)
	}

	system := buildTopicPrompt(string(currentTopics))
	user := fmt.Sprintf("User said: %s\n\nResponse context: %s", userInput, truncate(aiResponse, replyContextLimit))

	raw, err := callExtraction(ctx, t.ai, t.retrier, system, user, topicTemperature, 300)
	if err != nil {
		return err
	}

	var update TopicUpdate
	if err := json.Unmarshal([]byte(raw), &update); err != nil {
		return fmt.Errorf("parse topic extraction: %w", err)
	}

	name := NormalizeTopic(update.MainTopic)
	now := time.Now()

	record, exists := mem.Topics[name]
	if !exists {
		record = core.TopicRecord{FirstDiscussed: now}
	}

	// Summary is replace-on-update by design, positions and points only grow.
	if update.Summary != "" {
		record.Summary = update.Summary
	}
	record.KeyPositions = lo.Union(record.KeyPositions, update.KeyPositions)
	record.KeyPoints = lo.Union(record.KeyPoints, update.KeyPoints)
	record.DiscussionCount++
	record.LastDiscussed = now
	mem.Topics[name] = record

	mem.LastUpdated = now
	if err := t.repo.Save(ctx, mem); err != nil {
		return fmt.Errorf("save topics: %w", err)
	}

	log.FromCtx(ctx).Debug().
		Str("user_id", userID).
		Str("topic", name).
		Int("discussed", record.DiscussionCount).
		Msg("topic updated")
	return nil
}

// NormalizeTopic lowercases and underscores a classifier topic name so it is
// stable as a map key. Empty input falls back to "general".
func NormalizeTopic(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	name = strings.ReplaceAll(name, " ", "_")
	if name == "" {
		return "general"
	}
	return name
}

func buildTopicPrompt(currentTopics string) string {
	return fmt.Sprintf(`Analyze the conversation. Current topics: %s

Return ONLY JSON (no markdown):
{
    "main_topic": "topic name (data_science, feminism, digital_inequality, etc.)",
    "summary": "2-3 sentences about what the user said on this topic",
    "key_positions": ["position 1", "position 2", "position 3"],
    "key_points": ["key point 1", "key point 2"]
}`, currentTopics)
}
