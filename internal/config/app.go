package config

import (
	"context"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/lisbot/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"LISBOT_RUNTIME_PATH" envDefault:".lisbot"`

	// Transport flags
	EnableHTTP     bool `env:"ENABLE_HTTP" envDefault:"true"`
	EnableTelegram bool `env:"ENABLE_TELEGRAM" envDefault:"false"`

	// Memory bounds
	HistoryLimit       int `env:"HISTORY_LIMIT" envDefault:"100"`
	ContextTokenBudget int `env:"CONTEXT_TOKEN_BUDGET" envDefault:"3000"`

	// Deployment variants
	EnableEvolution   bool    `env:"ENABLE_EVOLUTION" envDefault:"true"`
	GlitchProbability float64 `env:"GLITCH_PROBABILITY" envDefault:"0.01"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "lisbot.db")
}

func (c AppConfig) GetPersonaPath() string {
	return filepath.Join(c.RuntimePath, "PERSONA.md")
}

func (c AppConfig) GetContentPath() string {
	return filepath.Join(c.RuntimePath, "content.json")
}
