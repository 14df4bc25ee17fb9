package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/caseflow/caseflow/internal/caserun"
	"github.com/caseflow/caseflow/internal/metrics"
	"github.com/caseflow/caseflow/internal/scheduler"
	"github.com/caseflow/caseflow/internal/worker"
)

func schedulerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scheduler",
		Short: "Run the periodic due-task scan and dispatch loop",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)
			metrics.MustRegister(prometheus.DefaultRegisterer)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			st, err := newStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			pool := worker.NewPool(cfg.Worker.QueueDepth)
			runner := caserun.New(st, logger)

			node, _ := os.Hostname()
			interval := time.Duration(cfg.Scheduler.ScanIntervalSeconds) * time.Second
			sc := scheduler.New(st, runner, pool, logger, interval, node)
			sc.Start(ctx)
			return nil
		},
	}
}
