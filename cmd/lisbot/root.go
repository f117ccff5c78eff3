package main

import (
	"context"
	"os"

	"github.com/sandevgo/lisbot/internal/config"
	"github.com/sandevgo/lisbot/pkg/log"
	"github.com/spf13/cobra"
)

var (
	debug bool
)

var rootCmd = &cobra.Command{
	Use:   "lisbot",
	Short: "Lisbot — a persona chat service with per-user memory",
	Long:  `Lisbot runs a persona-driven chat service that remembers its users across conversations.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags available to all subcommands
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", config.IsDebug(), "enable debug logging")
}

func setupLogger(ctx context.Context) (context.Context, func()) {
	isDebug := debug || config.IsDebug()
	return log.NewContextWithLogger(ctx, isDebug)
}
