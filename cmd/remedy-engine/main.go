package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/healops/remedy-engine/internal/backend"
	"github.com/healops/remedy-engine/internal/config"
	"github.com/healops/remedy-engine/internal/decision"
	"github.com/healops/remedy-engine/internal/detector"
	"github.com/healops/remedy-engine/internal/metrics"
	"github.com/healops/remedy-engine/internal/models"
	"github.com/healops/remedy-engine/internal/orchestrator"
	"github.com/healops/remedy-engine/internal/source"
	"github.com/healops/remedy-engine/internal/utils"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("path", configPath), slog.Any("error", err))
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON)
	logger.Info("starting remedy-engine", slog.String("backend", cfg.Backend.Kind), slog.String("source", cfg.Source.Kind))

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		logger.Error("failed to register metrics", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	be, closeBackend, err := buildBackend(ctx, cfg.Backend, logger)
	if err != nil {
		logger.Error("failed to build backend", slog.Any("error", err))
		os.Exit(1)
	}
	if closeBackend != nil {
		defer closeBackend()
	}

	rules, err := decision.LoadRules(cfg.Decision.RulesPath)
	if err != nil {
		logger.Error("failed to load rule pack", slog.String("path", cfg.Decision.RulesPath), slog.Any("error", err))
		os.Exit(1)
	}

	orch := orchestrator.New(orchestrator.Options{
		WindowCapacity: cfg.Detection.WindowCapacity,
		Detector: detector.Config{
			TrainingThreshold: cfg.Detection.TrainingThreshold,
			Contamination:     cfg.Detection.Contamination,
			Trees:             cfg.Detection.Trees,
			SubsampleSize:     cfg.Detection.SubsampleSize,
			Seed:              cfg.Detection.Seed,
		},
		Rules:              rules,
		CooldownTTL:        cfg.Decision.Cooldown,
		CooldownMaxKeys:    cfg.Decision.CooldownMaxKeys,
		HistoryCapacity:    cfg.Executor.HistoryCapacity,
		Backend:            be,
		ForecastAlphas:     dimensionMap(cfg.Forecast.Alphas),
		ForecastThresholds: dimensionMap(cfg.Forecast.Thresholds),
		ForecastSteps:      cfg.Forecast.Steps,
	}, logger)

	if cfg.Detection.ModelPath != "" {
		if orch.LoadModel(cfg.Detection.ModelPath) {
			logger.Info("model restored", slog.String("path", cfg.Detection.ModelPath))
		}
	}

	src, err := buildSource(cfg.Source)
	if err != nil {
		logger.Error("failed to build sample source", slog.Any("error", err))
		os.Exit(1)
	}

	var metricsServer *http.Server
	if cfg.Server.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         cfg.Server.MetricsAddress,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
		}
		go func() {
			logger.Info("metrics server listening", slog.String("address", cfg.Server.MetricsAddress))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server exited", slog.Any("error", err))
				stop()
			}
		}()
	}

	runLoop(ctx, orch, src, cfg.Source.Interval, logger)

	logger.Info("shutdown signal received")

	drainCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()
	if err := orch.Close(drainCtx); err != nil {
		logger.Warn("in-flight actions not drained", slog.Any("error", err))
	}

	if cfg.Detection.ModelPath != "" && orch.Statistics().ModelTrained {
		if orch.SaveModel(cfg.Detection.ModelPath) {
			logger.Info("model saved", slog.String("path", cfg.Detection.ModelPath))
		}
	}

	if metricsServer != nil {
		metricsCtx, cancelMetrics := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(metricsCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server shutdown", slog.Any("error", err))
		}
		cancelMetrics()
	}

	logger.Info("remedy-engine stopped")
}

// runLoop pulls samples at the configured interval and feeds the control
// loop until the context ends. Source errors are logged and skipped; the
// loop itself never stops over a bad sample.
func runLoop(ctx context.Context, orch *orchestrator.Orchestrator, src source.Source, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sample, err := src.Next(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Warn("sample fetch failed", slog.Any("error", err))
				continue
			}
			orch.ProcessSample(ctx, sample)
		}
	}
}

func buildBackend(ctx context.Context, cfg config.BackendConfig, logger *slog.Logger) (backend.Backend, func() error, error) {
	switch cfg.Kind {
	case "", "simulated":
		return backend.NewSimulated(cfg.SimulatedDelay, logger), nil, nil
	case "agent":
		agent, err := backend.NewAgent(cfg.AgentAddress)
		if err != nil {
			return nil, nil, err
		}
		if err := agent.Ready(ctx); err != nil {
			logger.Warn("remediation agent not ready", slog.Any("error", err))
		}
		return agent, agent.Close, nil
	default:
		return nil, nil, errors.New("unknown backend kind: " + cfg.Kind)
	}
}

func buildSource(cfg config.SourceConfig) (source.Source, error) {
	switch cfg.Kind {
	case "", "simulated":
		return source.NewSimulated(cfg.Seed, cfg.SpikeEvery), nil
	case "http":
		if cfg.BaseURL == "" {
			return nil, errors.New("source.baseURL is required for the http source")
		}
		return source.NewHTTPCollector(cfg.BaseURL, cfg.SamplePath, cfg.Timeout), nil
	default:
		return nil, errors.New("unknown source kind: " + cfg.Kind)
	}
}

func dimensionMap(in map[string]float64) map[models.Dimension]float64 {
	if len(in) == 0 {
		return nil
	}
	out := make(map[models.Dimension]float64, len(in))
	for k, v := range in {
		out[models.Dimension(k)] = v
	}
	return out
}
