package httpapi

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sandevgo/lisbot/internal/core"
	"github.com/sandevgo/lisbot/internal/service/chat"
	"github.com/sandevgo/lisbot/internal/service/tools"
	"github.com/sandevgo/lisbot/pkg/log"
)

//go:embed static/index.html
var indexPage []byte

// Handlers binds the chat pipeline and the security tools to HTTP routes.
type Handlers struct {
	chat    *chat.Service
	breach  *tools.BreachChecker
	news    *tools.NewsFetcher
	cameras *tools.CameraPicker
}

func NewHandlers(chatSvc *chat.Service, breach *tools.BreachChecker, news *tools.NewsFetcher, cameras *tools.CameraPicker) *Handlers {
	return &Handlers{chat: chatSvc, breach: breach, news: news, cameras: cameras}
}

func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexPage)
}

type chatRequest struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

// Chat handles one conversational turn. A handful of literal commands
// bypass the persona and run a tool directly, like a chat shortcut.
func (h *Handlers) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "Message required")
		return
	}
	if req.UserID == "" {
		req.UserID = "anonymous-" + uuid.NewString()
	}

	if handled := h.chatCommand(w, r, req.Message); handled {
		return
	}

	reply, err := h.chat.Turn(r.Context(), req.UserID, req.Message)
	if err != nil {
		log.FromCtx(r.Context()).Error().Err(err).Str("user_id", req.UserID).Msg("chat turn failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if reply.Glitch {
		writeJSON(w, http.StatusOK, map[string]any{
			"response": reply.Text,
			"glitch":   true,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"response": reply.Text})
}

// chatCommand intercepts tool shortcuts typed into the chat box. Returns
// true when the message was consumed.
func (h *Handlers) chatCommand(w http.ResponseWriter, r *http.Request, message string) bool {
	switch {
	case strings.HasPrefix(message, "check password"):
		password := strings.TrimSpace(strings.TrimPrefix(message, "check password"))
		if password == "" {
			writeJSON(w, http.StatusOK, map[string]any{
				"response": "Usage: check password your_password_here",
				"tool":     "password_checker",
				"error":    "No password provided",
			})
			return true
		}
		result := tools.AnalyzePassword(password)
		writeJSON(w, http.StatusOK, map[string]any{
			"response": result.Message,
			"tool":     "password_checker",
			"data":     result,
		})
		return true

	case strings.HasPrefix(message, "check email"):
		email := strings.TrimSpace(strings.TrimPrefix(message, "check email"))
		if email == "" {
			writeJSON(w, http.StatusOK, map[string]any{
				"response": "Usage: check email your_email@example.com",
				"tool":     "email_checker",
				"error":    "No email provided",
			})
			return true
		}
		result, err := h.breach.CheckEmail(r.Context(), email)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return true
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"response": result.Message,
			"tool":     "email_checker",
			"data":     result,
		})
		return true

	// The misspelling is deliberate, users type it often enough.
	case strings.Contains(strings.ToLower(message), "surveillance"),
		strings.Contains(strings.ToLower(message), "survelliance"):
		link, ok := h.cameras.Pick()
		if !ok {
			writeError(w, http.StatusInternalServerError, "no cameras configured")
			return true
		}
		msg := fmt.Sprintf("Accessing surveillance feed... Found one: %s", link)
		writeJSON(w, http.StatusOK, map[string]any{
			"response": msg,
			"tool":     "surveillance",
			"data":     map[string]any{"link": link, "message": msg},
		})
		return true
	}
	return false
}

func (h *Handlers) UserMemory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	mem, err := h.chat.GetMemory(r.Context(), userID)
	if errors.Is(err, core.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "No memory found for this user"})
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	payload := map[string]any{
		"profile":            mem.Profile,
		"topics":             mem.Topics,
		"chat_history":       mem.History,
		"conversation_count": mem.ConversationCount,
	}
	if mem.Evolution != nil {
		payload["evolution"] = mem.Evolution
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *Handlers) ClearMemory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	existed, err := h.chat.ClearMemory(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !existed {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "User not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("Memory cleared for user %s", userID),
	})
}

func (h *Handlers) CheckPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Password required")
		return
	}

	strength := tools.AnalyzePassword(req.Password)
	payload := map[string]any{
		"strength": strength,
	}
	if breach, err := h.breach.CheckPassword(r.Context(), req.Password); err != nil {
		log.FromCtx(r.Context()).Warn().Err(err).Msg("breach lookup skipped")
	} else {
		payload["breach"] = breach
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *Handlers) CheckEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeError(w, http.StatusBadRequest, "Email required")
		return
	}

	result, err := h.breach.CheckEmail(r.Context(), req.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) SecurityNews(w http.ResponseWriter, r *http.Request) {
	news := h.news.Fetch(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"count":   len(news),
		"news":    news,
		"message": fmt.Sprintf("Latest cybersecurity news (%d stories)", len(news)),
	})
}

func (h *Handlers) Surveillance(w http.ResponseWriter, r *http.Request) {
	link, ok := h.cameras.Pick()
	if !ok {
		writeError(w, http.StatusInternalServerError, "no cameras configured")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"link":    link,
		"message": fmt.Sprintf("Accessing surveillance feed... Found one: %s", link),
	})
}

func (h *Handlers) OsintDorks(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Target string `json:"target"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Target) == "" {
		writeError(w, http.StatusBadRequest, "Target required")
		return
	}

	links := tools.GenerateDorks(req.Target)
	writeJSON(w, http.StatusOK, map[string]any{
		"target":  strings.TrimSpace(req.Target),
		"results": links,
		"count":   len(links),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
