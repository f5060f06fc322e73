package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sensorplane/corestream/metrics"
	"github.com/sensorplane/corestream/session"
)

// runSession runs the full pipeline (ring + journal writer + optional
// ingester) in one process and serves its metrics.Plane over /metrics
// for scraping.
func runSession(args []string) error {
	fs := flag.NewFlagSet("session", flag.ContinueOnError)
	metricsAddr := fs.String("metrics-addr", ":9090", "address to serve /metrics on (empty disables)")

	cfg, logger, err := loadConfigAndLogger(fs, args, "session")
	if err != nil {
		return err
	}
	defer logger.Sync()

	s, err := session.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer s.Close()

	logger.Info("session started", zap.String("session_id", s.ID))

	if *metricsAddr != "" {
		go serveMetrics(*metricsAddr, s.Plane(), logger)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-signalCh()
		logger.Info("shutdown signal received")
		cancel()
	}()

	return s.Run(ctx)
}

func serveMetrics(addr string, plane *metrics.Plane, logger *zap.Logger) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(metrics.NewCollector(plane, "corestream"))
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		logger.Warn("metrics server stopped", zap.Error(err))
	}
}
