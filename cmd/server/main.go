package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"

	"sentinel/internal/analysis"
	"sentinel/internal/classifier"
	"sentinel/internal/config"
	"sentinel/internal/email"
	"sentinel/internal/jobs"
	"sentinel/internal/logging"
	"sentinel/internal/metrics"
	"sentinel/internal/reports"
	"sentinel/internal/scoring"
	"sentinel/internal/server"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()
	logging.Init(cfg.LogFormat, logging.ParseLevel(cfg.LogLevel))

	yamlCfg, err := config.LoadYAMLConfig()
	if err != nil {
		slog.Error("failed to load config file", "error", err)
		os.Exit(1)
	}

	vocab, err := scoring.ResolveVocabulary(cfg.VocabularyName(yamlCfg), yamlCfg)
	if err != nil {
		slog.Error("invalid keyword vocabulary", "error", err)
		os.Exit(1)
	}
	slog.Info("keyword vocabulary loaded", "profile", vocab.Name,
		"friction_terms", len(vocab.Friction), "security_terms", len(vocab.Security))

	var provider classifier.Provider
	switch cfg.ModelProvider {
	case "onnx":
		provider = classifier.NewONNX(cfg.ModelDir, cfg.ONNXLibPath)
	case "huggingface", "":
		provider = classifier.NewHuggingFace(cfg.HFHubURL, cfg.HFInferenceURL, cfg.HFToken,
			classifier.WithTimeout(cfg.ModelTimeout))
	default:
		slog.Error("unknown model provider", "provider", cfg.ModelProvider)
		os.Exit(1)
	}

	cls := classifier.New(provider, classifier.Options{
		ModelID:        cfg.ModelID,
		TruncateLength: cfg.TruncateLength,
		LoadRetries:    cfg.ModelLoadRetries,
	})
	defer func() {
		if err := cls.Close(); err != nil {
			slog.Warn("failed to release model", "error", err)
		}
	}()

	// One storage backs sessions, rate limiting and reports.
	var storage interface {
		fiber.Storage
		reports.Backend
	}
	if cfg.IsRedisEnabled() {
		storage = reports.NewRedis(cfg.RedisURL)
		slog.Info("using redis storage")
	} else {
		storage = reports.NewMemory()
		slog.Info("using in-memory storage; reports and sessions are lost on restart")
	}
	defer storage.Close()
	store := reports.New(storage, cfg.ReportTTL)

	notifier := email.NewNotifier(cfg)
	if !notifier.Enabled() {
		slog.Info("security alert emails disabled")
	}

	svc := analysis.New(cls, scoring.NewScorer(vocab), store, notifier, analysis.Options{
		BatchWorkers:         cfg.BatchWorkers,
		SensitivityThreshold: cfg.SensitivityThreshold,
	})

	metrics.Init(cls)

	if cfg.WarmupOnStart {
		go jobs.NewModelWarmer(cls, cfg.WarmupInterval, cfg.ModelTimeout).Start(ctx)
	}

	srv := server.New(cfg, storage)
	srv.RegisterRoutes(svc)

	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	cancel()
	if err := srv.Shutdown(); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server exited")
}
