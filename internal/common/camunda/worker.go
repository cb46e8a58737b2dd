// internal/common/camunda/worker.go
package camunda

import (
	"time"

	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// Worker is one open job worker for a single job type.
type Worker struct {
	worker  worker.JobWorker
	logger  logger.Logger
	jobType string
}

type WorkerConfig struct {
	JobType       string
	MaxJobsActive int
	Timeout       time.Duration
}

func NewWorker(client zbc.Client, cfg WorkerConfig, handler worker.JobHandler, log logger.Logger) *Worker {
	step := client.NewJobWorker().
		JobType(cfg.JobType).
		Handler(handler)

	if cfg.MaxJobsActive > 0 {
		step = step.MaxJobsActive(cfg.MaxJobsActive)
	}
	if cfg.Timeout > 0 {
		step = step.Timeout(cfg.Timeout)
	}

	w := &Worker{
		worker:  step.Open(),
		logger:  log.WithFields(map[string]interface{}{"jobType": cfg.JobType}),
		jobType: cfg.JobType,
	}
	w.logger.Info("job worker opened", map[string]interface{}{"maxJobsActive": cfg.MaxJobsActive})
	return w
}

// Stop closes the worker and waits for in-flight handlers.
func (w *Worker) Stop() {
	w.logger.Info("stopping job worker", nil)
	w.worker.Close()
	w.worker.AwaitClose()
}
