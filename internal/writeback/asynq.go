package writeback

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hibiken/asynq"
	"github.com/questlingo/backend/internal/models"
	"go.uber.org/zap"
)

const taskPrefix = "writeback:"

// QueueName is the asynq queue write-back tasks are enqueued on
const QueueName = "writeback"

// TaskType returns the asynq task type used for an intent kind
func TaskType(kind string) string {
	return taskPrefix + kind
}

// Enqueuer is the part of the asynq client used by the dispatcher
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// AsynqDispatcher turns intents into asynq tasks so that a separate worker
// process delivers them. Enqueueing runs in the background and is bounded by
// the enqueue timeout. Tasks of one record may run in any order; progress
// writes never move a record backwards and recreate it when missing, so a
// late or retried task cannot undo a newer one.
type AsynqDispatcher struct {
	client      Enqueuer
	maxAttempts int
	timeout     time.Duration
	logger      *zap.Logger
	wg          sync.WaitGroup
}

// NewAsynqDispatcher creates a new asynq dispatcher
func NewAsynqDispatcher(client Enqueuer, maxAttempts int, timeout time.Duration, logger *zap.Logger) *AsynqDispatcher {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &AsynqDispatcher{
		client:      client,
		maxAttempts: maxAttempts,
		timeout:     timeout,
		logger:      logger,
	}
}

// Dispatch implements Dispatcher
func (d *AsynqDispatcher) Dispatch(intent Intent) Receipt {
	receipt := Receipt{Kind: intent.Kind(), Key: intent.Key()}

	payload, err := Encode(intent)
	if err != nil {
		receipt.Err = err
		d.logger.Error("Failed to encode write-back intent", zap.String("kind", receipt.Kind), zap.Error(err))
		return receipt
	}

	task := asynq.NewTask(TaskType(intent.Kind()), payload)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if _, err := d.client.EnqueueContext(ctx, task,
			asynq.Queue(QueueName),
			asynq.MaxRetry(d.maxAttempts-1),
			asynq.Timeout(d.timeout),
		); err != nil {
			d.logger.Warn("Failed to enqueue write-back intent",
				zap.String("kind", receipt.Kind),
				zap.String("key", receipt.Key),
				zap.Error(err),
			)
		}
	}()

	receipt.Accepted = true
	return receipt
}

// Wait blocks until every pending enqueue has finished
func (d *AsynqDispatcher) Wait() {
	d.wg.Wait()
}

// TaskHandler applies write-back tasks inside the worker process
type TaskHandler struct {
	targets Targets
	logger  *zap.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(targets Targets, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		targets: targets,
		logger:  logger,
	}
}

// Register binds the handler to every write-back task type
func (h *TaskHandler) Register(mux *asynq.ServeMux) {
	for _, kind := range Kinds {
		mux.HandleFunc(TaskType(kind), h.ProcessTask)
	}
}

// ProcessTask decodes and applies one task. Malformed payloads and writes to
// records that do not exist are not retried.
func (h *TaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	kind := strings.TrimPrefix(t.Type(), taskPrefix)

	intent, err := Decode(kind, t.Payload())
	if err != nil {
		h.logger.Error("Invalid write-back task", zap.String("type", t.Type()), zap.Error(err))
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	if err := intent.Apply(ctx, h.targets); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			h.logger.Warn("Write-back target not found", zap.String("kind", kind), zap.String("key", intent.Key()))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return fmt.Errorf("failed to apply %s intent: %w", kind, err)
	}

	h.logger.Debug("Write-back task applied", zap.String("kind", kind), zap.String("key", intent.Key()))
	return nil
}
