// Package bootstrap builds the long-lived collaborators shared by the
// service binaries: the knowledge source chain, the model client and the
// answer pipeline.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/aws"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/config"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/database"
	apperrors "github.com/Sankalp-SISL/MIDC-chatbot/internal/common/errors"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/genai"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/logger"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/observability"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/knowledge"
	composeanswer "github.com/Sankalp-SISL/MIDC-chatbot/internal/workers/grounded-answer/compose-answer"
	"github.com/Sankalp-SISL/MIDC-chatbot/pkg/registry"
)

const (
	connectAttempts = 5
	connectDelay    = 2 * time.Second
)

// RetryWithBackoff runs operation until it succeeds, doubling the delay
// between attempts.
func RetryWithBackoff(ctx context.Context, operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err.Error(),
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// Knowledge is the configured document source behind a refreshable snapshot.
type Knowledge struct {
	Snapshot *knowledge.Snapshot
	// Source is the chain the snapshot loads from (cache included).
	Source  knowledge.Repository
	closers []func() error
}

func (k *Knowledge) Close() {
	for i := len(k.closers) - 1; i >= 0; i-- {
		_ = k.closers[i]()
	}
}

// NewKnowledge connects the configured source and performs the first
// snapshot load. A failed first load is logged, not returned: the snapshot
// reports not ready until a later refresh succeeds.
func NewKnowledge(ctx context.Context, cfg *config.Config, log logger.Logger) (*Knowledge, error) {
	k := &Knowledge{}
	source, err := k.newSource(ctx, cfg, log)
	if err != nil {
		k.Close()
		return nil, err
	}
	k.Source = source
	k.Snapshot = knowledge.NewSnapshot(source, log)

	if err := k.Snapshot.Refresh(ctx); err != nil {
		log.Warn("initial knowledge load failed, serving unavailable answers until refresh", map[string]interface{}{
			"source": cfg.Knowledge.Source,
			"error":  err.Error(),
		})
	}
	return k, nil
}

// NewWriter returns a writable store for the configured non-file source.
func NewWriter(ctx context.Context, cfg *config.Config, target string, log logger.Logger) (knowledge.Writer, func() error, error) {
	k := &Knowledge{}
	c := *cfg
	c.Knowledge.Source = target
	c.Knowledge.Cache.Enabled = false

	repo, err := k.backing(ctx, &c, log)
	if err != nil {
		k.Close()
		return nil, nil, err
	}
	w, ok := repo.(knowledge.Writer)
	if !ok {
		k.Close()
		return nil, nil, apperrors.NewConfigurationError(fmt.Sprintf("knowledge source %q is read-only", target))
	}
	if s, ok := repo.(schemaEnsurer); ok {
		if err := s.EnsureSchema(ctx); err != nil {
			k.Close()
			return nil, nil, err
		}
	}
	return w, func() error { k.Close(); return nil }, nil
}

type schemaEnsurer interface {
	EnsureSchema(ctx context.Context) error
}

func (k *Knowledge) newSource(ctx context.Context, cfg *config.Config, log logger.Logger) (knowledge.Repository, error) {
	repo, err := k.backing(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	if !cfg.Knowledge.Cache.Enabled {
		return repo, nil
	}

	rdb := database.NewRedis(cfg.Database.Redis)
	err = RetryWithBackoff(ctx, func() error { return rdb.Ping(ctx) }, connectAttempts, connectDelay, log, "Redis connection")
	if err != nil {
		_ = rdb.Close()
		return nil, err
	}
	k.closers = append(k.closers, rdb.Close)
	ttl := time.Duration(cfg.Knowledge.Cache.TTLSeconds) * time.Second
	log.Info("knowledge cache enabled", map[string]interface{}{"ttl": ttl.String()})
	return knowledge.NewCachedRepository(repo, rdb.Client, ttl, log), nil
}

func (k *Knowledge) backing(ctx context.Context, cfg *config.Config, log logger.Logger) (knowledge.Repository, error) {
	switch cfg.Knowledge.Source {
	case "", "file":
		return knowledge.NewFileRepository(cfg.Knowledge.Root, log), nil

	case "elasticsearch":
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return nil, err
		}
		err = RetryWithBackoff(ctx, func() error { return es.Ping(ctx) }, connectAttempts, connectDelay, log, "Elasticsearch connection")
		if err != nil {
			return nil, err
		}
		return knowledge.NewElasticsearchRepository(es.Client, cfg.Knowledge.Index, log), nil

	case "postgres":
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return nil, err
		}
		k.closers = append(k.closers, pg.Close)
		err = RetryWithBackoff(ctx, func() error { return pg.Ping(ctx) }, connectAttempts, connectDelay, log, "PostgreSQL connection")
		if err != nil {
			return nil, err
		}
		return knowledge.NewPostgresRepository(pg.DB, cfg.Knowledge.Table, log)
	}
	return nil, apperrors.NewConfigurationError(fmt.Sprintf("unknown knowledge source %q", cfg.Knowledge.Source))
}

// NewGapNotifier returns nil when alerts are disabled.
func NewGapNotifier(ctx context.Context, cfg *config.Config, log logger.Logger) (composeanswer.GapNotifier, error) {
	if !cfg.Alerts.Enabled {
		return nil, nil
	}
	client, err := aws.NewSNSClient(ctx, cfg.Alerts.Region)
	if err != nil {
		return nil, err
	}
	log.Info("knowledge gap alerts enabled", map[string]interface{}{"topicArn": cfg.Alerts.TopicARN})
	return aws.NewGapNotifier(client, cfg.Alerts.TopicARN, log), nil
}

// NewPipeline loads the keyword registry and model client and wires the
// answer orchestrator over repo.
func NewPipeline(ctx context.Context, cfg *config.Config, repo knowledge.Repository, notifier composeanswer.GapNotifier, obs *observability.Observability, log logger.Logger) (*composeanswer.Handler, error) {
	reg, err := registry.Load(cfg.Pipeline.KeywordsFile)
	if err != nil {
		return nil, err
	}
	model, err := genai.New(ctx, cfg.Model, log)
	if err != nil {
		return nil, err
	}
	log.Info("answer pipeline ready", map[string]interface{}{
		"provider":  cfg.Model.Provider,
		"model":     cfg.Model.Name,
		"selection": cfg.Pipeline.SelectionStrategy,
		"intent":    cfg.Pipeline.IntentStrategy,
	})

	stages := composeanswer.NewStages(cfg, repo, model, reg, log)
	return composeanswer.NewHandler(composeanswer.LoadConfig(cfg), stages, notifier, obs, log), nil
}
