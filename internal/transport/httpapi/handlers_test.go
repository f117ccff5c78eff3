package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/sandevgo/lisbot/internal/config"
	"github.com/sandevgo/lisbot/internal/core"
	"github.com/sandevgo/lisbot/internal/service/chat"
	"github.com/sandevgo/lisbot/internal/service/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	records map[string]*core.UserMemory
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: make(map[string]*core.UserMemory)}
}

func (r *fakeRepo) GetOrCreate(_ context.Context, userID string) (*core.UserMemory, error) {
	if mem, ok := r.records[userID]; ok {
		return deepCopy(mem), nil
	}
	mem := &core.UserMemory{UserID: userID, Topics: make(map[string]core.TopicRecord)}
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

func deepCopy(mem *core.UserMemory) *core.UserMemory {
	raw, _ := json.Marshal(mem)
	out := &core.UserMemory{}
	_ = json.Unmarshal(raw, out)
	if out.Topics == nil {
		out.Topics = make(map[string]core.TopicRecord)
	}
	return out
}

type cannedAI struct {
	reply string
}

func (a *cannedAI) Chat(context.Context, []core.Message, core.ChatOptions) (core.Message, error) {
	return core.Message{Role: core.RoleAssistant, Content: a.reply}, nil
}

func newTestHandlers(repo core.MemoryRepository, ai core.AIProvider) *Handlers {
	cfg := &config.AppConfig{
		HistoryLimit:       100,
		ContextTokenBudget: 0,
		EnableEvolution:    false,
		GlitchProbability:  0,
	}
	content := &config.Content{
		Persona: "You are a terse hacker.",
		Cameras: []string{"http://cam.example/1"},
	}
	chatSvc := chat.NewService(cfg, content, repo, ai)
	return NewHandlers(
		chatSvc,
		tools.NewBreachChecker(""),
		tools.NewNewsFetcher(nil),
		tools.NewCameraPicker(content.Cameras, 1),
	)
}

func newTestRouter(h *Handlers) http.Handler {
	router := chi.NewRouter()
	router.Post("/chat", h.Chat)
	router.Get("/user-memory/{user_id}", h.UserMemory)
	router.Delete("/clear-memory/{user_id}", h.ClearMemory)
	router.Post("/check-password", h.CheckPassword)
	router.Get("/security-news", h.SecurityNews)
	router.Get("/surveillance", h.Surveillance)
	router.Post("/osint-dorks", h.OsintDorks)
	return router
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return rec, payload
}

func TestChatRunsTurn(t *testing.T) {
	repo := newFakeRepo()
	router := newTestRouter(newTestHandlers(repo, &cannedAI{reply: "interesting"}))

	rec, payload := doJSON(t, router, http.MethodPost, "/chat", `{"message":"hello","user_id":"u1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "interesting", payload["response"])
	assert.NotContains(t, payload, "glitch")

	require.Contains(t, repo.records, "u1")
	assert.Equal(t, 1, repo.records["u1"].ConversationCount)
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	router := newTestRouter(newTestHandlers(newFakeRepo(), &cannedAI{}))

	rec, payload := doJSON(t, router, http.MethodPost, "/chat", `{"message":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, payload, "error")
}

func TestChatAssignsAnonymousUserID(t *testing.T) {
	repo := newFakeRepo()
	router := newTestRouter(newTestHandlers(repo, &cannedAI{reply: "hi"}))

	rec, _ := doJSON(t, router, http.MethodPost, "/chat", `{"message":"hello"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, repo.records, 1)
	for userID := range repo.records {
		assert.True(t, strings.HasPrefix(userID, "anonymous-"))
	}
}

func TestChatPasswordShortcut(t *testing.T) {
	repo := newFakeRepo()
	router := newTestRouter(newTestHandlers(repo, &cannedAI{}))

	rec, payload := doJSON(t, router, http.MethodPost, "/chat", `{"message":"check password Tr!ckyPelican#2042x","user_id":"u1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "password_checker", payload["tool"])
	assert.Contains(t, payload["response"], "STRONG")
	// Tool shortcuts never touch memory.
	assert.Empty(t, repo.records)
}

func TestChatPasswordShortcutUsage(t *testing.T) {
	router := newTestRouter(newTestHandlers(newFakeRepo(), &cannedAI{}))

	rec, payload := doJSON(t, router, http.MethodPost, "/chat", `{"message":"check password","user_id":"u1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "No password provided", payload["error"])
	assert.Contains(t, payload["response"], "Usage:")
}

func TestChatSurveillanceKeyword(t *testing.T) {
	router := newTestRouter(newTestHandlers(newFakeRepo(), &cannedAI{}))

	for _, message := range []string{"show me surveillance", "any survelliance feeds?"} {
		rec, payload := doJSON(t, router, http.MethodPost, "/chat", `{"message":"`+message+`","user_id":"u1"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "surveillance", payload["tool"])
		assert.Contains(t, payload["response"], "http://cam.example/1")
	}
}

func TestUserMemoryNotFound(t *testing.T) {
	router := newTestRouter(newTestHandlers(newFakeRepo(), &cannedAI{}))

	rec, payload := doJSON(t, router, http.MethodGet, "/user-memory/ghost", "{}")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No memory found for this user", payload["message"])
}

func TestUserMemoryReturnsRecord(t *testing.T) {
	repo := newFakeRepo()
	repo.records["u1"] = &core.UserMemory{
		UserID:            "u1",
		Profile:           core.Profile{Name: "Ana"},
		Topics:            map[string]core.TopicRecord{"kayaking": {Summary: "loves rivers"}},
		ConversationCount: 4,
	}
	router := newTestRouter(newTestHandlers(repo, &cannedAI{}))

	rec, payload := doJSON(t, router, http.MethodGet, "/user-memory/u1", "{}")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(4), payload["conversation_count"])
	profile := payload["profile"].(map[string]any)
	assert.Equal(t, "Ana", profile["name"])
	assert.Contains(t, payload["topics"], "kayaking")
	assert.NotContains(t, payload, "evolution")
}

func TestClearMemory(t *testing.T) {
	repo := newFakeRepo()
	repo.records["u1"] = &core.UserMemory{UserID: "u1"}
	router := newTestRouter(newTestHandlers(repo, &cannedAI{}))

	rec, payload := doJSON(t, router, http.MethodDelete, "/clear-memory/u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Memory cleared for user u1", payload["message"])

	rec, _ = doJSON(t, router, http.MethodDelete, "/clear-memory/u1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckPasswordRequiresPassword(t *testing.T) {
	router := newTestRouter(newTestHandlers(newFakeRepo(), &cannedAI{}))

	rec, payload := doJSON(t, router, http.MethodPost, "/check-password", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Password required", payload["error"])
}

func TestSecurityNewsEmptyFeeds(t *testing.T) {
	router := newTestRouter(newTestHandlers(newFakeRepo(), &cannedAI{}))

	rec, payload := doJSON(t, router, http.MethodGet, "/security-news", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), payload["count"])
}

func TestSurveillanceEndpoint(t *testing.T) {
	router := newTestRouter(newTestHandlers(newFakeRepo(), &cannedAI{}))

	rec, payload := doJSON(t, router, http.MethodGet, "/surveillance", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://cam.example/1", payload["link"])
}

func TestOsintDorks(t *testing.T) {
	router := newTestRouter(newTestHandlers(newFakeRepo(), &cannedAI{}))

	rec, payload := doJSON(t, router, http.MethodPost, "/osint-dorks", `{"target":"Jane Doe"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Jane Doe", payload["target"])
	assert.Equal(t, float64(6), payload["count"])

	rec, payload = doJSON(t, router, http.MethodPost, "/osint-dorks", `{"target":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Target required", payload["error"])
}
