package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Asar007/claude-code-compact-mcp/internal/config"
	"github.com/Asar007/claude-code-compact-mcp/internal/extract"
	"github.com/Asar007/claude-code-compact-mcp/internal/tools"
	"github.com/Asar007/claude-code-compact-mcp/pkg/navigate"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:           "compact",
	Short:         "Compact Claude conversations into visualizations and publish them to Navigate Chat",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultPath(), "config file path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig reads .env files (working directory, then next to the config
// file) and the config file. It exits on failure.
func loadConfig() *config.Config {
	if err := config.LoadDotEnv(".env", filepath.Join(filepath.Dir(cfgPath), ".env")); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load .env: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func setupLogging(cfg *config.Config) {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// newNavigateClient builds a client from cfg, or returns
// config.ErrNavigateNotConfigured.
func newNavigateClient(cfg *config.Config) (*navigate.Client, error) {
	if err := cfg.NavigateReady(); err != nil {
		return nil, err
	}
	return navigate.New(&navigate.Config{
		BaseURL:  cfg.Navigate.BaseURL,
		Email:    cfg.Navigate.Email,
		Password: cfg.Navigate.Password,
		TokenTTL: time.Duration(cfg.Navigate.TokenTTLMinutes) * time.Minute,
		Logger:   slog.Default(),
	}), nil
}

// newExtractor returns an extractor with a token counter when the
// configured tokenizer loads. Token counts are optional, so a tokenizer
// failure only logs.
func newExtractor(cfg *config.Config) *extract.Extractor {
	e := &extract.Extractor{}
	if cfg.TokenizerModel == "" || cfg.TokenizerModel == "none" {
		return e
	}
	tok, err := extract.NewTokenizer(cfg.TokenizerModel)
	if err != nil {
		slog.Warn("token counting disabled", "model", cfg.TokenizerModel, "error", err)
		return e
	}
	e.Counter = tok
	return e
}

// newRegistry wires every tool against cfg.
func newRegistry(cfg *config.Config) *tools.Registry {
	deps := tools.Deps{
		Extractor:      newExtractor(cfg),
		OutputDir:      cfg.OutputDir,
		TranscriptsDir: cfg.TranscriptsDir,
		Logger:         slog.Default(),
	}
	if client, err := newNavigateClient(cfg); err == nil {
		deps.Navigate = client
	}
	return tools.NewDefaultRegistry(deps)
}
