package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/lisbot/pkg/log"
)

type ToolsConfig struct {
	// HIBPAPIKey enables the per-account breach lookup; the password range
	// API needs no key.
	HIBPAPIKey string `env:"HIBP_API_KEY"`

	NewsFeeds []string `env:"NEWS_FEEDS" envSeparator:"," envDefault:"https://www.bleepingcomputer.com/feed/,https://feeds.arstechnica.com/arstechnica/security,https://krebsonsecurity.com/feed/,https://threatpost.com/feed/"`
}

func NewToolsConfig(ctx context.Context) *ToolsConfig {
	c := &ToolsConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Tools config")
	}
	return c
}
