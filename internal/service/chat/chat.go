package chat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sandevgo/lisbot/internal/config"
	"github.com/sandevgo/lisbot/internal/core"
	"github.com/sandevgo/lisbot/internal/service/memory"
	"github.com/sandevgo/lisbot/pkg/log"
)

// Reply is the outcome of one conversational turn.
type Reply struct {
	Text   string
	Glitch bool
}

// Service orchestrates a turn: glitch gate, prompt composition, the persona
// completion, then the four memory channels in fixed order.
type Service struct {
	repo      core.MemoryRepository
	ai        core.AIProvider
	persona   string
	glitch    *Glitch
	profile   *memory.FactExtractor
	topics    *memory.TopicTracker
	history   *memory.HistoryRing
	evolution *memory.Evolution // nil when the deployment variant is off
	tokens    TokenCounter
	budget    int

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewService(cfg *config.AppConfig, content *config.Content, repo core.MemoryRepository, ai core.AIProvider) *Service {
	s := &Service{
		repo:    repo,
		ai:      ai,
		persona: content.Persona,
		glitch:  NewGlitch(cfg.GlitchProbability, content.FactLists),
		profile: memory.NewFactExtractor(repo, ai),
		topics:  memory.NewTopicTracker(repo, ai),
		history: memory.NewHistoryRing(repo, cfg.HistoryLimit),
		tokens:  NewTokenCounter(),
		budget:  cfg.ContextTokenBudget,
		locks:   make(map[string]*sync.Mutex),
	}
	if cfg.EnableEvolution {
		s.evolution = memory.NewEvolution(repo, ai)
	}
	return s
}

// Turn runs one full conversational turn for a user.
func (s *Service) Turn(ctx context.Context, userID, message string) (Reply, error) {
	logger := log.FromCtx(ctx)

	if s.glitch.Hit() {
		logger.Info().Str("user_id", userID).Msg("glitch triggered, skipping pipeline")
		return Reply{Text: s.glitch.Fact(), Glitch: true}, nil
	}

	// Concurrent turns for the same user must not interleave their
	// read-modify-write windows. Different users stay fully parallel.
	unlock := s.lockUser(userID)
	defer unlock()

	mem, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return Reply{}, fmt.Errorf("load memory: %w", err)
	}

	system := memory.ComposeSystemPrompt(s.persona, mem)
	messages := []core.Message{{Role: core.RoleSystem, Content: system}}
	for _, turn := range trimToBudget(mem.History, s.budget, s.tokens) {
		messages = append(messages, core.Message{Role: turn.Role, Content: turn.Message})
	}
	messages = append(messages, core.Message{Role: core.RoleUser, Content: message})

	logger.Debug().
		Str("user_id", userID).
		Int("context_messages", len(messages)).
		Int("prior_conversations", mem.ConversationCount).
		Msg("requesting persona completion")

	replyMsg, err := s.ai.Chat(ctx, messages, core.ChatOptions{})
	if err != nil {
		// Surfaced as-is: no memory channel runs without a reply.
		return Reply{}, fmt.Errorf("persona completion: %w", err)
	}
	reply := replyMsg.Content

	// Best-effort enrichment channels. Memory quality degrades quietly on
	// failure; the conversation itself never breaks.
	if err := s.profile.Update(ctx, userID, message); err != nil {
		logger.Warn().Err(err).Str("user_id", userID).Msg("profile channel skipped")
	}
	if err := s.topics.Update(ctx, userID, message, reply); err != nil {
		logger.Warn().Err(err).Str("user_id", userID).Msg("topic channel skipped")
	}

	// History writes are store operations, not enrichment: failures surface.
	if err := s.history.Append(ctx, userID, core.RoleUser, message); err != nil {
		return Reply{}, fmt.Errorf("store user turn: %w", err)
	}
	if err := s.history.Append(ctx, userID, core.RoleAssistant, reply); err != nil {
		return Reply{}, fmt.Errorf("store assistant turn: %w", err)
	}

	if s.evolution != nil {
		if err := s.evolution.Update(ctx, userID, message, reply); err != nil {
			logger.Warn().Err(err).Str("user_id", userID).Msg("evolution channel skipped")
		}
	}

	final, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return Reply{}, fmt.Errorf("reload memory: %w", err)
	}
	final.ConversationCount++
	final.LastUpdated = time.Now()
	if err := s.repo.Save(ctx, final); err != nil {
		return Reply{}, fmt.Errorf("commit turn: %w", err)
	}

	logger.Info().
		Str("user_id", userID).
		Int("conversations", final.ConversationCount).
		Msg("turn completed")
	return Reply{Text: reply}, nil
}

// GetMemory returns the full record or core.ErrNotFound.
func (s *Service) GetMemory(ctx context.Context, userID string) (*core.UserMemory, error) {
	return s.repo.Load(ctx, userID)
}

// ClearMemory removes the record, reporting whether it existed.
func (s *Service) ClearMemory(ctx context.Context, userID string) (bool, error) {
	unlock := s.lockUser(userID)
	defer unlock()
	return s.repo.Delete(ctx, userID)
}

func (s *Service) lockUser(userID string) func() {
	s.mu.Lock()
	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
