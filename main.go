package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/akshatyadav31/Lumora-Ai/internal/adapter/llm"
	"github.com/akshatyadav31/Lumora-Ai/internal/analysis"
	"github.com/akshatyadav31/Lumora-Ai/internal/canned"
	"github.com/akshatyadav31/Lumora-Ai/internal/config"
	"github.com/akshatyadav31/Lumora-Ai/internal/logger"
	"github.com/akshatyadav31/Lumora-Ai/internal/policy"
	"github.com/akshatyadav31/Lumora-Ai/internal/repository"
	"github.com/akshatyadav31/Lumora-Ai/internal/service"
	handler "github.com/akshatyadav31/Lumora-Ai/internal/transport/http"
	"github.com/akshatyadav31/Lumora-Ai/internal/transport/ws"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	log := logger.New(cfg.LogLevel)
	log.WithFields(logrus.Fields{
		"http_port": cfg.HTTPPort,
		"provider":  cfg.Provider,
		"model":     cfg.Model,
		"base_url":  cfg.BaseURL,
		"mode":      cfg.Mode,
	}).Info("Starting Lumora...")

	// Initialize working-table executor
	executor, err := repository.NewSQLiteExecutor(":memory:")
	if err != nil {
		log.Fatalf("Failed to initialize executor: %v", err)
	}
	defer executor.Close()

	// Initialize LLM client
	llmClient := llm.NewLLMClient(cfg.Mode, cfg.BaseURL, cfg.APIKey, cfg.LLMTimeout, log,
		llm.WithReferer(cfg.Referer),
		llm.WithTitle(cfg.AppTitle),
	)

	// Initialize metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := service.NewMetrics(reg)

	analyzer := analysis.NewAnalyzer(llmClient, log)
	analyzer.OnCall(metrics.ObserveProvider)

	// Initialize policy engine
	ctx := context.Background()
	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		log.Fatalf("Failed to initialize policy engine: %v", err)
	}

	// Initialize service
	svc, err := service.New(ctx, service.Deps{
		Store:    repository.NewMemoryStore(),
		Executor: executor,
		Analyzer: analyzer,
		Canned:   canned.NewResponder(cfg.CannedDelay),
		Policy:   policyEngine,
		Models:   llmClient,
		Metrics:  metrics,
		Log:      log,
	}, cfg.ProviderConfig())
	if err != nil {
		log.Fatalf("Failed to initialize service: %v", err)
	}

	// Initialize WebSocket hub
	hub := ws.NewHub(log)
	go hub.Run()
	socket, unsubscribe := ws.NewServer(ws.Options{
		PingInterval:   cfg.PingInterval,
		WriteTimeout:   cfg.WriteTimeout,
		ReadTimeout:    cfg.ReadTimeout,
		MaxMessageSize: cfg.MaxMessageSize,
	}, hub, svc, log)
	defer unsubscribe()

	server := handler.NewServer(svc, handler.Options{
		AllowOrigins:   cfg.AllowOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		Gatherer:       reg,
		Socket:         socket,
	}, log)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Infof("API started on port %d", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down Lumora...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hub.Stop()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warnf("Failed to shutdown server gracefully: %v", err)
	}

	log.Info("Lumora stopped")
}
