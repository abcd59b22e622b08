package main

import (
	"github.com/spf13/cobra"

	"github.com/yourusername/odds-apex/internal/metrics"
	"github.com/yourusername/odds-apex/internal/scheduler"
	"github.com/yourusername/odds-apex/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		if cfg.Metrics.Enabled {
			metrics.InitRegistry()
		}

		if c := eng.Cache(); c != nil && cfg.Cache.PruneSchedule != "" {
			sched := scheduler.NewScheduler(appLog)
			if err := sched.SchedulePrune(cfg.Cache.PruneSchedule, "estimate-cache", c); err != nil {
				return err
			}
			if err := sched.Start(); err != nil {
				return err
			}
			defer sched.Stop()
		}

		srv := server.New(server.Config{
			ServiceName:     cfg.App.Name,
			Version:         Version,
			Commit:          GitCommit,
			Address:         cfg.Server.Address,
			ReadTimeout:     cfg.Server.ReadTimeout,
			WriteTimeout:    cfg.Server.WriteTimeout,
			ShutdownTimeout: cfg.Server.ShutdownTimeout,
			RateLimit:       cfg.Server.RateLimit,
			RateBurst:       cfg.Server.RateBurst,
			MaxBodyBytes:    cfg.Server.MaxBodyBytes,
			MetricsEnabled:  cfg.Metrics.Enabled,
			MetricsPath:     cfg.Metrics.Path,
			DefaultPolicy:   cfg.Staking.DefaultPolicy,
			DefaultSeed:     cfg.Simulation.Seed,
		}, eng, appLog)

		return srv.Run(ctx)
	},
}
