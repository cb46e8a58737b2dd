// cmd/chatbot-server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Sankalp-SISL/MIDC-chatbot/internal/api"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/bootstrap"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/camunda"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/config"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/logger"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/observability"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/knowledge"
	composeanswer "github.com/Sankalp-SISL/MIDC-chatbot/internal/workers/grounded-answer/compose-answer"
)

const watchDebounce = 500 * time.Millisecond

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "console")
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting MIDC chatbot server...",
		zap.String("environment", cfg.App.Environment),
		zap.String("knowledgeSource", cfg.Knowledge.Source),
	)

	var obs *observability.Observability
	if cfg.Metrics.Enabled {
		obs, err = observability.New(cfg.App.Name)
		if err != nil {
			zapLog.Warn("observability disabled", zap.Error(err))
		}
	}
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Knowledge base ---
	kb, err := bootstrap.NewKnowledge(ctx, cfg, log)
	if err != nil {
		zapLog.Fatal("knowledge source init failed", zap.Error(err))
	}
	defer kb.Close()

	if cfg.Knowledge.RefreshSchedule != "" {
		refresher, err := knowledge.NewRefresher(kb.Snapshot, cfg.Knowledge.RefreshSchedule, log)
		if err != nil {
			zapLog.Fatal("invalid knowledge.refresh_schedule", zap.Error(err))
		}
		refresher.Start()
		defer refresher.Stop()
	}

	if cfg.Knowledge.Watch && cfg.Knowledge.Source == "file" {
		watcher, err := knowledge.NewWatcher(kb.Snapshot, cfg.Knowledge.Root, watchDebounce, log)
		if err != nil {
			zapLog.Error("content watcher disabled", zap.Error(err))
		} else {
			watcher.Start()
			defer func() { _ = watcher.Stop() }()
		}
	}

	// --- Pipeline ---
	notifier, err := bootstrap.NewGapNotifier(ctx, cfg, log)
	if err != nil {
		zapLog.Error("knowledge gap alerts disabled", zap.Error(err))
		notifier = nil
	}

	pipeline, err := bootstrap.NewPipeline(ctx, cfg, kb.Snapshot, notifier, obs, log)
	if err != nil {
		zapLog.Fatal("answer pipeline init failed", zap.Error(err))
	}

	// --- Workflow worker ---
	if cfg.Camunda.Enabled {
		var zeebe *camunda.Client
		err = bootstrap.RetryWithBackoff(ctx, func() error {
			var err error
			zeebe, err = camunda.NewClient(ctx, &camunda.ClientConfig{
				GatewayAddress:         cfg.Camunda.BrokerAddress,
				UsePlaintextConnection: cfg.Camunda.Plaintext,
				ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
			})
			return err
		}, 10, 2*time.Second, log, "Zeebe client initialization")
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		defer zeebe.Close()

		w := camunda.NewWorker(zeebe.Zeebe(), camunda.WorkerConfig{
			JobType:       composeanswer.TaskType,
			MaxJobsActive: cfg.Camunda.MaxJobsActive,
			Timeout:       config.GetDuration(cfg.Camunda.Timeout),
		}, pipeline.Handle, log)
		defer w.Stop()
	}

	// --- HTTP server ---
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      api.NewServer(pipeline, kb.Snapshot, log).Routes(),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("HTTP server failed", zap.Error(err))
			stop()
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, draining requests...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server shutdown failed", zap.Error(err))
	}

	zapLog.Info("MIDC chatbot server stopped gracefully")
}
