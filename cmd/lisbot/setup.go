package main

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/sandevgo/lisbot/internal/config"
	"github.com/sandevgo/lisbot/internal/core"
	"github.com/sandevgo/lisbot/internal/providers/llm"
	"github.com/sandevgo/lisbot/internal/service/chat"
	"github.com/sandevgo/lisbot/internal/service/tools"
	"github.com/sandevgo/lisbot/internal/storage/sqlite"
	"github.com/sandevgo/lisbot/internal/transport/httpapi"
	"github.com/sandevgo/lisbot/internal/transport/telegram"
	"github.com/sandevgo/lisbot/pkg/log"
	"github.com/sandevgo/lisbot/pkg/srv"
)

func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	// init env
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	llmCfg := config.NewLLMConfig(ctx)
	toolsCfg := config.NewToolsConfig(ctx)
	content := config.LoadContent(ctx, appCfg)

	// 2. Storage
	db, memoryRepo, err := initStorage(ctx, appCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, srv.NewCleanup(db.Close))

	// 3. AI Provider
	aiProvider, err := llm.NewProvider(ctx, llmCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize LLM provider")
	}

	// 4. Chat pipeline
	chatSvc := chat.NewService(appCfg, content, memoryRepo, aiProvider)

	// 5. Transports
	transports, err := initTransports(ctx, appCfg, toolsCfg, content, chatSvc)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize transports")
	}
	services = append(services, transports...)

	return services
}

func initStorage(ctx context.Context, cfg *config.AppConfig) (*sql.DB, core.MemoryRepository, error) {
	db, err := sqlite.NewDB(ctx, cfg.GetDatabasePath())
	if err != nil {
		return nil, nil, err
	}
	return db, sqlite.NewMemoryRepo(db), nil
}

func initTransports(
	ctx context.Context,
	appCfg *config.AppConfig,
	toolsCfg *config.ToolsConfig,
	content *config.Content,
	chatSvc *chat.Service,
) ([]srv.Service, error) {
	var services []srv.Service

	if appCfg.EnableHTTP {
		httpCfg := config.NewHTTPConfig(ctx)
		handlers := httpapi.NewHandlers(
			chatSvc,
			tools.NewBreachChecker(toolsCfg.HIBPAPIKey),
			tools.NewNewsFetcher(toolsCfg.NewsFeeds),
			tools.NewCameraPicker(content.Cameras, time.Now().UnixNano()),
		)
		services = append(services, httpapi.NewServer(ctx, httpCfg, handlers))
	}

	if appCfg.EnableTelegram {
		tgCfg := config.NewTelegramConfig(ctx)
		bot, err := telegram.NewBot(ctx, tgCfg, chatSvc)
		if err != nil {
			return nil, err
		}
		services = append(services, bot)
	}

	return services, nil
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
