// Package main provides the odds-apex command line interface.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/odds-apex/internal/config"
	"github.com/yourusername/odds-apex/internal/engine"
	"github.com/yourusername/odds-apex/internal/logger"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	logLevel   string
	cfg        *config.Config
	appLog     *logrus.Logger
	eng        *engine.Engine
)

var rootCmd = &cobra.Command{
	Use:           "apex",
	Short:         "Golf win-probability and lay staking engine",
	Long:          `Scores competitors, simulates the remaining holes, compares the model with live odds and sizes lay bets.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Assigned here rather than in the literal to avoid an initialization
	// cycle (rootCmd -> loadConfig -> rootCmd).
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := setupDependencies(); err != nil {
			return fmt.Errorf("failed to setup dependencies: %w", err)
		}
		return nil
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", config.DefaultPath, "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level")

	rootCmd.AddCommand(scoreCmd, fieldCmd, laysCmd, serveCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() error {
	var err error
	if rootCmd.PersistentFlags().Changed("config") {
		cfg, err = config.Load(configFile)
	} else {
		cfg, err = config.LoadWithDefaults(configFile)
	}
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.App.LogLevel = logLevel
	}
	return config.Validate(cfg)
}

func setupDependencies() error {
	// Logs go to stderr so stdout carries only results.
	appLog = logger.New(cfg.App.LogLevel, cfg.App.Environment, os.Stderr)

	thresholds, err := cfg.SignalThresholds()
	if err != nil {
		return err
	}
	eng, err = engine.New(engine.Options{
		Params:     cfg.ModelParams(),
		Simulation: cfg.SimulationSettings(),
		Staking:    cfg.StakingSettings(),
		Thresholds: thresholds,
		Cache: engine.CacheOptions{
			Enabled:  cfg.Cache.Enabled,
			TTL:      cfg.Cache.TTL,
			MaxItems: cfg.Cache.MaxItems,
		},
		Logger: appLog,
	})
	if err != nil {
		return err
	}

	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"log_level":   cfg.App.LogLevel,
		"trials":      cfg.Simulation.Trials,
	}).Debug("Engine ready")
	return nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// seedFlag returns the flag value when set, otherwise the configured seed.
func seedFlag(cmd *cobra.Command, seed int64) int64 {
	if cmd.Flags().Changed("seed") {
		return seed
	}
	return cfg.Simulation.Seed
}
