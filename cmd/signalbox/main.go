// Package main provides the signalbox binary entry point.
// Signalbox analyzes multi-agent AI codebases, estimates what their
// LLM calls cost, and proposes cheaper ways to run them.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	// Register framework detectors via init()
	_ "github.com/signalbox/signalbox/detector/autogen"
	_ "github.com/signalbox/signalbox/detector/langchain"

	"github.com/signalbox/signalbox/config"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "signalbox"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app bundles the loaded configuration and logger shared by every
// subcommand.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   appName,
		Short: "AI workflow cost analyzer",
		Long: `Signalbox inspects a source tree or GitHub repository, detects which
multi-agent framework it uses (AutoGen, LangChain), estimates the token
and dollar cost of its LLM calls, and proposes optimizations such as
model substitution, caching, and prompt trimming.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	newApp := func() (*app, error) {
		return loadApp(configPath, logLevel)
	}

	cmd.AddCommand(
		analyzeCmd(newApp),
		serveCmd(newApp),
		watchCmd(newApp),
		runsCmd(newApp),
		modelsCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
			},
		},
	)

	return cmd
}

func loadApp(configPath, logLevel string) (*app, error) {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := loadConfig(configPath, logger)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return &app{cfg: cfg, logger: logger}, nil
}

func loadConfig(configPath string, logger *slog.Logger) (*config.Config, error) {
	if configPath != "" {
		// Explicit file wins over the user/project config chain.
		fileCfg, err := config.LoadFromFile(configPath)
		if err != nil {
			return nil, err
		}
		cfg := config.DefaultConfig()
		cfg.Merge(fileCfg)
		if cfg.Store.Path == "" {
			if home, err := os.UserHomeDir(); err == nil {
				cfg.Store.Path = filepath.Join(home, config.UserConfigDir, "runs.db")
			} else {
				cfg.Store.Path = "runs.db"
			}
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	return config.NewLoader(logger).Load()
}
