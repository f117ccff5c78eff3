package chat

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sandevgo/lisbot/internal/config"
	"github.com/sandevgo/lisbot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	records map[string]*core.UserMemory
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: make(map[string]*core.UserMemory)}
}

func deepCopy(mem *core.UserMemory) *core.UserMemory {
	data, _ := json.Marshal(mem)
	out := &core.UserMemory{}
	_ = json.Unmarshal(data, out)
	if out.Topics == nil {
		out.Topics = make(map[string]core.TopicRecord)
	}
	return out
}

func (r *fakeRepo) GetOrCreate(_ context.Context, userID string) (*core.UserMemory, error) {
	if mem, ok := r.records[userID]; ok {
		return deepCopy(mem), nil
	}
	mem := &core.UserMemory{
		UserID:      userID,
		Topics:      make(map[string]core.TopicRecord),
		LastUpdated: time.Now(),
	}
	r.records[userID] = deepCopy(mem)
	return mem, nil
}

func (r *fakeRepo) Load(_ context.Context, userID string) (*core.UserMemory, error) {
	mem, ok := r.records[userID]
	if !ok {
		return nil, core.ErrNotFound
	}
	return deepCopy(mem), nil
}

func (r *fakeRepo) Save(_ context.Context, mem *core.UserMemory) error {
	r.records[mem.UserID] = deepCopy(mem)
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, userID string) (bool, error) {
	_, ok := r.records[userID]
	delete(r.records, userID)
	return ok, nil
}

// step is one scripted completion: either content or an error.
type step struct {
	content string
	err     error
}

type scriptedAI struct {
	steps []step
	calls int
}

func (a *scriptedAI) Chat(_ context.Context, _ []core.Message, _ core.ChatOptions) (core.Message, error) {
	idx := a.calls
	if idx >= len(a.steps) {
		idx = len(a.steps) - 1
	}
	a.calls++
	s := a.steps[idx]
	if s.err != nil {
		return core.Message{}, s.err
	}
	return core.Message{Role: core.RoleAssistant, Content: s.content}, nil
}

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		HistoryLimit:       100,
		ContextTokenBudget: 3000,
		EnableEvolution:    true,
		GlitchProbability:  0, // deterministic tests
	}
}

func testContent() *config.Content {
	return &config.Content{
		Persona:   "You are a test persona.",
		FactLists: map[string][]string{"facts": {"canned fact"}},
	}
}

func TestTurn_FullPipeline(t *testing.T) {
	repo := newFakeRepo()
	ai := &scriptedAI{steps: []step{
		{content: "Kayaking. At least it's not small talk."},
		{content: `{"name": "Ana", "profession": null, "age": null, "location": null, "interests": ["kayaking"], "other_facts": []}`},
		{content: `{"main_topic": "hobbies", "summary": "User loves kayaking.", "key_positions": [], "key_points": []}`},
		{content: `{"empathy_delta": 0.05, "trust_delta": 0.05, "openness_delta": 0, "reason": "user shared an interest"}`},
	}}
	svc := NewService(testConfig(), testContent(), repo, ai)

	reply, err := svc.Turn(context.Background(), "u1", "My name is Ana, I love kayaking")
	require.NoError(t, err)
	assert.False(t, reply.Glitch)
	assert.Equal(t, "Kayaking. At least it's not small talk.", reply.Text)

	mem, err := repo.Load(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", mem.Profile.Name)
	assert.Equal(t, []string{"kayaking"}, mem.Profile.Interests)
	assert.Equal(t, 1, mem.Topics["hobbies"].DiscussionCount)
	require.Len(t, mem.History, 2)
	assert.Equal(t, core.RoleUser, mem.History[0].Role)
	assert.Equal(t, core.RoleAssistant, mem.History[1].Role)
	require.NotNil(t, mem.Evolution)
	assert.InDelta(t, 0.35, mem.Evolution.Empathy, 1e-9)
	assert.Equal(t, 1, mem.ConversationCount)
}

func TestTurn_CompletionFailureLeavesMemoryUntouched(t *testing.T) {
	repo := newFakeRepo()
	ai := &scriptedAI{steps: []step{{err: errors.New("upstream down")}}}
	svc := NewService(testConfig(), testContent(), repo, ai)

	_, err := svc.Turn(context.Background(), "u1", "hello")
	require.Error(t, err)

	mem, err := repo.Load(context.Background(), "u1")
	require.NoError(t, err)
	assert.Zero(t, mem.ConversationCount)
	assert.Empty(t, mem.History)
	assert.True(t, mem.Profile.IsEmpty())
}

func TestTurn_EnrichmentFailuresAreAbsorbed(t *testing.T) {
	repo := newFakeRepo()
	ai := &scriptedAI{steps: []step{
		{content: "the reply"},
		{content: "garbage, not json"}, // profile channel
		{content: "also garbage"},      // topic channel
		{content: "still garbage"},     // evolution channel
	}}
	svc := NewService(testConfig(), testContent(), repo, ai)

	reply, err := svc.Turn(context.Background(), "u1", "hello")
	require.NoError(t, err, "the turn survives broken extraction output")
	assert.Equal(t, "the reply", reply.Text)

	mem, err := repo.Load(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, mem.Profile.IsEmpty())
	assert.Empty(t, mem.Topics)
	assert.Len(t, mem.History, 2, "history still recorded")
	assert.Equal(t, 1, mem.ConversationCount)
}

func TestTurn_EvolutionDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.EnableEvolution = false

	repo := newFakeRepo()
	ai := &scriptedAI{steps: []step{
		{content: "the reply"},
		{content: `{"name": null, "interests": []}`},
		{content: `{"main_topic": "general", "summary": "s", "key_positions": [], "key_points": []}`},
	}}
	svc := NewService(cfg, testContent(), repo, ai)

	_, err := svc.Turn(context.Background(), "u1", "hello")
	require.NoError(t, err)

	mem, err := repo.Load(context.Background(), "u1")
	require.NoError(t, err)
	assert.Nil(t, mem.Evolution)
	assert.Equal(t, 3, ai.calls, "no evolution extraction call")
}

func TestTurn_GlitchSkipsEverything(t *testing.T) {
	cfg := testConfig()
	cfg.GlitchProbability = 1.0

	repo := newFakeRepo()
	ai := &scriptedAI{steps: []step{{content: "should never be used"}}}
	svc := NewService(cfg, testContent(), repo, ai)

	reply, err := svc.Turn(context.Background(), "u1", "hello")
	require.NoError(t, err)
	assert.True(t, reply.Glitch)
	assert.Equal(t, "canned fact", reply.Text)

	assert.Zero(t, ai.calls, "no completion call on a glitch turn")
	_, err = repo.Load(context.Background(), "u1")
	assert.ErrorIs(t, err, core.ErrNotFound, "no record created on a glitch turn")
}

func TestClearMemory(t *testing.T) {
	repo := newFakeRepo()
	ai := &scriptedAI{steps: []step{{content: "x"}}}
	svc := NewService(testConfig(), testContent(), repo, ai)

	existed, err := svc.ClearMemory(context.Background(), "nobody")
	require.NoError(t, err)
	assert.False(t, existed)

	_, err = repo.GetOrCreate(context.Background(), "u1")
	require.NoError(t, err)

	existed, err = svc.ClearMemory(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, existed)
}
