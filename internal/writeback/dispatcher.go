package writeback

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
	"time"

	"github.com/questlingo/backend/internal/models"
	"go.uber.org/zap"
)

var (
	// ErrQueueFull is reported when the local queue cannot take more intents
	ErrQueueFull = errors.New("write-back queue is full")
	// ErrClosed is reported when intents are dispatched after shutdown
	ErrClosed = errors.New("write-back dispatcher is closed")
)

// Receipt tells whether an intent was handed over for delivery.
// Delivery itself is asynchronous; callers usually discard the receipt.
type Receipt struct {
	Kind     string
	Key      string
	Accepted bool
	Err      error
}

// Dispatcher hands intents over for asynchronous delivery. Dispatch never blocks.
type Dispatcher interface {
	Dispatch(intent Intent) Receipt
}

// LocalConfig tunes the in-process dispatcher
type LocalConfig struct {
	Workers        int
	QueueSize      int
	MaxAttempts    int
	AttemptTimeout time.Duration
	Backoff        time.Duration
}

// LocalDispatcher delivers intents with a pool of goroutines, each reading
// its own bounded queue. Intents are routed by key, so writes to the same
// record are applied one at a time in dispatch order. Failed attempts are
// retried with exponential backoff and dropped once the attempts are exhausted.
type LocalDispatcher struct {
	targets Targets
	cfg     LocalConfig
	logger  *zap.Logger
	queues  []chan Intent
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewLocalDispatcher creates a dispatcher and starts its workers
func NewLocalDispatcher(targets Targets, cfg LocalConfig, logger *zap.Logger) *LocalDispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}

	d := &LocalDispatcher{
		targets: targets,
		cfg:     cfg,
		logger:  logger,
		queues:  make([]chan Intent, cfg.Workers),
	}
	for i := range d.queues {
		d.queues[i] = make(chan Intent, cfg.QueueSize)
		d.wg.Add(1)
		go d.work(d.queues[i])
	}
	return d
}

// queueFor picks the queue that owns a record key
func (d *LocalDispatcher) queueFor(key string) chan Intent {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return d.queues[h.Sum32()%uint32(len(d.queues))]
}

// Dispatch implements Dispatcher
func (d *LocalDispatcher) Dispatch(intent Intent) Receipt {
	receipt := Receipt{Kind: intent.Kind(), Key: intent.Key()}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		receipt.Err = ErrClosed
		d.logger.Warn("Dropping write-back intent", zap.String("kind", receipt.Kind), zap.String("key", receipt.Key), zap.Error(ErrClosed))
		return receipt
	}

	select {
	case d.queueFor(receipt.Key) <- intent:
		receipt.Accepted = true
	default:
		receipt.Err = ErrQueueFull
		d.logger.Warn("Dropping write-back intent", zap.String("kind", receipt.Kind), zap.String("key", receipt.Key), zap.Error(ErrQueueFull))
	}
	return receipt
}

// Close stops accepting intents and waits until the queued ones are handled
// or ctx is done.
func (d *LocalDispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, q := range d.queues {
			close(q)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *LocalDispatcher) work(queue <-chan Intent) {
	defer d.wg.Done()
	for intent := range queue {
		d.deliver(intent)
	}
}

func (d *LocalDispatcher) deliver(intent Intent) {
	var err error
	for attempt := 1; attempt <= d.cfg.MaxAttempts; attempt++ {
		err = d.attempt(intent)
		if err == nil {
			return
		}
		if errors.Is(err, models.ErrNotFound) {
			break
		}
		if attempt < d.cfg.MaxAttempts && d.cfg.Backoff > 0 {
			time.Sleep(d.cfg.Backoff << (attempt - 1))
		}
	}

	d.logger.Warn("Write-back intent dropped",
		zap.String("kind", intent.Kind()),
		zap.String("key", intent.Key()),
		zap.Error(err),
	)
}

func (d *LocalDispatcher) attempt(intent Intent) error {
	ctx := context.Background()
	if d.cfg.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.AttemptTimeout)
		defer cancel()
	}
	return intent.Apply(ctx, d.targets)
}
