package memory

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sandevgo/lisbot/internal/core"
)

// fakeRepo is an in-memory MemoryRepository. It hands out deep copies so a
// mutation only becomes visible after Save, like the real store.
type fakeRepo struct {
	records map[string]*core.UserMemory
	saves   int
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
	r.saves++
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, userID string) (bool, error) {
	_, ok := r.records[userID]
	delete(r.records, userID)
	return ok, nil
}

// scriptedAI returns canned completions in order, then repeats the last one.
type scriptedAI struct {
	replies []string
	err     error
	calls   int
}

func (a *scriptedAI) Chat(_ context.Context, _ []core.Message, _ core.ChatOptions) (core.Message, error) {
	a.calls++
	if a.err != nil {
		return core.Message{}, a.err
	}
	idx := a.calls - 1
	if idx >= len(a.replies) {
		idx = len(a.replies) - 1
	}
	return core.Message{Role: core.RoleAssistant, Content: a.replies[idx]}, nil
}

var errAPIDown = errors.New("api unavailable")
