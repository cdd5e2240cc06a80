// Package outbox runs best-effort side effects (notification fan-out, image
// cleanup) off the request path.
package outbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"agroconnect/pkg/logger"
	"agroconnect/pkg/retry"
)

type Options struct {
	Workers     int
	QueueSize   int
	TaskTimeout time.Duration
	Retry       retry.Policy
}

type task struct {
	name string
	run  func(ctx context.Context) error
}

// Dispatcher is a bounded queue drained by a fixed worker pool. Submit never
// blocks; when the queue is full the task is dropped.
type Dispatcher struct {
	opts  Options
	queue chan task

	mu     sync.RWMutex
	closed bool

	wg        sync.WaitGroup
	startOnce sync.Once
}

func NewDispatcher(opts Options) *Dispatcher {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	if opts.TaskTimeout <= 0 {
		opts.TaskTimeout = 30 * time.Second
	}
	return &Dispatcher{
		opts:  opts,
		queue: make(chan task, opts.QueueSize),
	}
}

func (d *Dispatcher) Start() {
	d.startOnce.Do(func() {
		for i := 0; i < d.opts.Workers; i++ {
			d.wg.Add(1)
			go d.worker(i)
		}
		logger.WithModule("outbox").Infof("Dispatcher started with %d workers", d.opts.Workers)
	})
}

// Submit enqueues run under name. It reports false when the task was dropped
// because the queue is full or the dispatcher is shutting down.
func (d *Dispatcher) Submit(name string, run func(ctx context.Context) error) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		logger.WithModule("outbox").WithField("task", name).Warn("Dispatcher closed, task dropped")
		return false
	}

	select {
	case d.queue <- task{name: name, run: run}:
		return true
	default:
		logger.WithModule("outbox").WithField("task", name).Warn("Dispatch queue full, task dropped")
		return false
	}
}

// Shutdown stops accepting tasks and waits for queued ones to finish or ctx
// to expire.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	// Workers are what drain the queue.
	d.Start()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("outbox shutdown: %w", ctx.Err())
	}
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()
	for t := range d.queue {
		d.execute(id, t)
	}
}

func (d *Dispatcher) execute(workerID int, t task) {
	log := logger.WithModule("outbox").WithFields(map[string]interface{}{
		"task":   t.name,
		"worker": workerID,
	})

	defer func() {
		if r := recover(); r != nil {
			log.Errorf("Task panicked: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.opts.TaskTimeout)
	defer cancel()

	start := time.Now()
	attempts := 0
	err := retry.Do(ctx, d.opts.Retry, func() error {
		attempts++
		return t.run(ctx)
	})
	if err != nil {
		log.WithError(err).WithField("attempts", attempts).Error("Task failed")
		return
	}
	log.WithField("elapsed", time.Since(start)).Debug("Task done")
}
