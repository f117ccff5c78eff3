package config

import (
	"context"
	_ "embed"
	"encoding/json"
	"os"

	"github.com/sandevgo/lisbot/pkg/log"
)

//go:embed defaults/persona.md
var defaultPersona string

//go:embed defaults/content.json
var defaultContent []byte

// Content is the static prompt material: the persona preamble, the canned
// glitch fact lists and the surveillance camera links. Operators override it
// by dropping PERSONA.md / content.json into the runtime directory.
type Content struct {
	Persona   string
	FactLists map[string][]string `json:"fact_lists"`
	Cameras   []string            `json:"cameras"`
}

func LoadContent(ctx context.Context, cfg *AppConfig) *Content {
	logger := log.FromCtx(ctx)

	c := &Content{Persona: defaultPersona}
	if err := json.Unmarshal(defaultContent, c); err != nil {
		logger.Fatal().Err(err).Msg("broken embedded content defaults")
	}

	if data, err := os.ReadFile(cfg.GetPersonaPath()); err == nil {
		c.Persona = string(data)
		logger.Info().Str("path", cfg.GetPersonaPath()).Msg("loaded persona override")
	}

	if data, err := os.ReadFile(cfg.GetContentPath()); err == nil {
		override := &Content{Persona: c.Persona}
		if err := json.Unmarshal(data, override); err != nil {
			logger.Error().Err(err).Str("path", cfg.GetContentPath()).Msg("ignoring broken content override")
		} else {
			c = override
			logger.Info().Str("path", cfg.GetContentPath()).Msg("loaded content override")
		}
	}

	return c
}
