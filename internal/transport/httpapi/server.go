package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/sandevgo/lisbot/internal/config"
	"github.com/sandevgo/lisbot/pkg/log"
)

// Server exposes the chat and tool endpoints over HTTP. It satisfies the
// srv.Service lifecycle.
type Server struct {
	httpServer *http.Server
}

func NewServer(ctx context.Context, cfg *config.HTTPConfig, h *Handlers) *Server {
	router := chi.NewRouter()
	router.Use(chimw.Recoverer)
	router.Use(requestLogger(ctx))
	router.Use(cors.New(cors.Options{
		AllowCredentials: true,
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Accept"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
	}).Handler)

	router.Get("/", h.Index)
	router.Post("/chat", h.Chat)
	router.Get("/user-memory/{user_id}", h.UserMemory)
	router.Delete("/clear-memory/{user_id}", h.ClearMemory)
	router.Post("/check-password", h.CheckPassword)
	router.Post("/check-email", h.CheckEmail)
	router.Get("/security-news", h.SecurityNews)
	router.Get("/surveillance", h.Surveillance)
	router.Post("/osint-dorks", h.OsintDorks)

	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (s *Server) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Str("addr", s.httpServer.Addr).Msg("http api listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

// requestLogger injects the app logger into every request context so
// handlers and services can use log.FromCtx.
func requestLogger(appCtx context.Context) func(http.Handler) http.Handler {
	logger := log.FromCtx(appCtx)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := logger.WithContext(r.Context())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
