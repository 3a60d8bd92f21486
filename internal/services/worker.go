package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	ErrQueueFull    = errors.New("evaluation queue is full")
	ErrQueueStopped = errors.New("evaluation queue is stopped")
)

// Task is a unit of scoring work. Run receives the worker context, not the
// context of the request that enqueued it.
type Task struct {
	ID  string
	Run func(ctx context.Context)

	notBefore time.Time
}

type Worker interface {
	Start(ctx context.Context)
	Stop()
	Enqueue(task Task) error
}

type worker struct {
	queue       chan Task
	concurrency int
	delay       time.Duration
	wg          sync.WaitGroup
	stopChan    chan struct{}
	stopOnce    sync.Once
	log         *zap.Logger
}

// NewWorker builds a bounded task queue. Each task runs no earlier than delay
// after it was enqueued.
func NewWorker(concurrency, queueSize int, delay time.Duration, log *zap.Logger) Worker {
	if concurrency <= 0 {
		concurrency = 1
	}
	if queueSize <= 0 {
		queueSize = 100
	}

	return &worker{
		queue:       make(chan Task, queueSize),
		concurrency: concurrency,
		delay:       delay,
		stopChan:    make(chan struct{}),
		log:         log.Named("worker"),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	w.log.Info("🚀 starting worker pool", zap.Int("concurrency", w.concurrency), zap.Duration("delay", w.delay))

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processTasks(ctx, i+1)
	}
}

// Stop implements Worker. Tasks still queued are dropped.
func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		w.log.Info("🛑 stopping worker pool")
		close(w.stopChan)
		w.wg.Wait()

		dropped := 0
		for {
			select {
			case task := <-w.queue:
				dropped++
				w.log.Warn("⚠️ dropping queued task on shutdown", zap.String("id", task.ID))
			default:
				w.log.Info("✅ worker pool stopped", zap.Int("dropped", dropped))
				return
			}
		}
	})
}

// Enqueue implements Worker. It never blocks.
func (w *worker) Enqueue(task Task) error {
	select {
	case <-w.stopChan:
		return ErrQueueStopped
	default:
	}

	task.notBefore = time.Now().Add(w.delay)

	select {
	case w.queue <- task:
		w.log.Debug("📥 task enqueued", zap.String("id", task.ID))
		return nil
	default:
		return ErrQueueFull
	}
}

func (w *worker) processTasks(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case task := <-w.queue:
			if !w.waitUntil(ctx, task.notBefore) {
				w.log.Warn("⚠️ task abandoned before running", zap.String("id", task.ID))
				return
			}

			w.log.Debug("👷 running task", zap.Int("worker", workerID), zap.String("id", task.ID))
			w.run(ctx, task)
		}
	}
}

// waitUntil sleeps until t and reports false if the pool stopped first.
func (w *worker) waitUntil(ctx context.Context, t time.Time) bool {
	d := time.Until(t)
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-w.stopChan:
		return false
	case <-ctx.Done():
		return false
	}
}

func (w *worker) run(ctx context.Context, task Task) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("❌ task panicked", zap.String("id", task.ID), zap.Any("panic", r))
		}
	}()

	task.Run(ctx)
}
