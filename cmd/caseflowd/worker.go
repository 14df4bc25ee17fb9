package main

import (
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/caseflow/caseflow/internal/metrics"
	"github.com/caseflow/caseflow/internal/worker"
)

// workerCmd runs the async worker pool standalone: it registers the
// Prometheus collectors, builds an idle pool, logs its queue depth and
// waits for SIGINT/SIGTERM. It starts no HTTP listener, so /metrics is
// not served, and it submits no jobs.
func workerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the async worker pool standalone",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)
			metrics.MustRegister(prometheus.DefaultRegisterer)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			pool := worker.NewPool(cfg.Worker.QueueDepth)
			logger.Info("worker pool idle, waiting for shutdown signal", "queue_depth", pool.QueueDepth())
			<-ctx.Done()
			logger.Info("worker pool shutting down")
			return nil
		},
	}
}
