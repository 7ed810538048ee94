// Package worker runs background task processing: it drains the task
// queue to embed and index persisted pages, and periodically prunes
// idle chats.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pagesense-labs/pagesense-core/internal/core/domain"
	"github.com/pagesense-labs/pagesense-core/internal/core/ports/driven"
	"github.com/pagesense-labs/pagesense-core/internal/core/ports/driving"
)

// indexLockTTL bounds how long one instance may hold a page's index
// lock. Longer than any realistic embed run, shorter than forever if
// the holder dies.
const indexLockTTL = 5 * time.Minute

// Worker processes tasks from the task queue.
type Worker struct {
	taskQueue   driven.TaskQueue
	retrieval   driving.RetrievalService
	chatService driving.ChatService
	lock        driven.DistributedLock
	logger      *slog.Logger

	// Configuration
	concurrency       int
	dequeueTimeout    int // seconds
	retentionInterval time.Duration
	chatIdleFor       time.Duration

	// Internal state
	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// Config holds configuration for the worker.
type Config struct {
	TaskQueue        driven.TaskQueue
	RetrievalService driving.RetrievalService
	ChatService      driving.ChatService
	Lock             driven.DistributedLock // optional, skips duplicate index runs across instances
	Logger           *slog.Logger

	Concurrency       int           // Number of concurrent task processors
	DequeueTimeout    int           // Seconds to wait for a task before checking again
	RetentionInterval time.Duration // How often idle chats are pruned; 0 disables pruning
	ChatIdleFor       time.Duration // Idle age after which a chat is pruned
}

// NewWorker creates a new task worker.
func NewWorker(cfg Config) *Worker {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	dequeueTimeout := cfg.DequeueTimeout
	if dequeueTimeout <= 0 {
		dequeueTimeout = 5
	}

	chatIdleFor := cfg.ChatIdleFor
	if chatIdleFor <= 0 {
		chatIdleFor = 24 * time.Hour
	}

	return &Worker{
		taskQueue:         cfg.TaskQueue,
		retrieval:         cfg.RetrievalService,
		chatService:       cfg.ChatService,
		lock:              cfg.Lock,
		logger:            logger,
		concurrency:       concurrency,
		dequeueTimeout:    dequeueTimeout,
		retentionInterval: cfg.RetentionInterval,
		chatIdleFor:       chatIdleFor,
	}
}

// Start begins the worker loop.
// It runs until Stop is called or context is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	w.logger.Info("worker starting",
		"concurrency", w.concurrency,
		"dequeue_timeout", w.dequeueTimeout,
	)

	var wg sync.WaitGroup
	for i := 0; i < w.concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			w.processLoop(ctx, workerID)
		}(i)
	}

	if w.retentionInterval > 0 && w.chatService != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.retentionLoop(ctx)
		}()
	}

	// Wait for all workers to finish
	go func() {
		wg.Wait()
		close(w.doneCh)
	}()

	return nil
}

// Stop gracefully stops the worker.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	close(w.stopCh)
	w.mu.Unlock()

	// Wait for workers to finish
	<-w.doneCh

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	w.logger.Info("worker stopped")
}

// Wait blocks until the worker stops.
func (w *Worker) Wait() {
	<-w.doneCh
}

// processLoop is the main processing loop for a worker goroutine.
func (w *Worker) processLoop(ctx context.Context, workerID int) {
	logger := w.logger.With("worker_id", workerID)
	logger.Info("worker goroutine started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("worker context cancelled")
			return
		case <-w.stopCh:
			logger.Info("worker stop signal received")
			return
		default:
		}

		// Dequeue a task with timeout
		task, err := w.taskQueue.DequeueWithTimeout(ctx, w.dequeueTimeout)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			logger.Error("failed to dequeue task", "error", err)
			time.Sleep(time.Second) // Back off on error
			continue
		}

		if task == nil {
			// No task available, continue
			continue
		}

		w.processTask(ctx, task, logger)
	}
}

// processTask processes a single task.
func (w *Worker) processTask(ctx context.Context, task *domain.Task, logger *slog.Logger) {
	logger = logger.With("task_id", task.ID, "task_type", task.Type, "user_id", task.UserID)
	logger.Info("processing task")

	startTime := time.Now()
	var err error

	switch task.Type {
	case domain.TaskTypeIndexPage:
		err = w.handleIndexPage(ctx, task)
	default:
		err = fmt.Errorf("unknown task type: %s", task.Type)
	}

	duration := time.Since(startTime)

	if err != nil {
		logger.Error("task failed",
			"duration", duration,
			"error", err,
		)

		// Nack the task so it can be retried
		if nackErr := w.taskQueue.Nack(ctx, task.ID, err.Error()); nackErr != nil {
			logger.Error("failed to nack task", "nack_error", nackErr)
		}
		return
	}

	logger.Info("task completed", "duration", duration)

	if ackErr := w.taskQueue.Ack(ctx, task.ID); ackErr != nil {
		logger.Error("failed to ack task", "ack_error", ackErr)
	}
}

// handleIndexPage handles an index_page task.
func (w *Worker) handleIndexPage(ctx context.Context, task *domain.Task) error {
	pageID := task.PageID()
	if pageID == "" {
		return fmt.Errorf("page_id not found in task payload")
	}

	if w.lock != nil {
		lockName := "index:" + pageID
		acquired, err := w.lock.Acquire(ctx, lockName, indexLockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire index lock: %w", err)
		}
		if !acquired {
			// Another instance is indexing this page.
			w.logger.Info("index lock held elsewhere, skipping", "page_id", pageID)
			return nil
		}
		defer func() {
			if err := w.lock.Release(ctx, lockName); err != nil {
				w.logger.Error("failed to release index lock", "page_id", pageID, "error", err)
			}
		}()
	}

	// A page deleted between enqueue and dequeue is not an error.
	if err := w.retrieval.IndexPage(ctx, task.UserID, pageID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			w.logger.Info("page gone before indexing", "page_id", pageID)
			return nil
		}
		return err
	}
	return nil
}

// retentionLoop prunes idle chats on a fixed interval.
func (w *Worker) retentionLoop(ctx context.Context) {
	logger := w.logger.With("loop", "retention")
	logger.Info("retention loop started", "interval", w.retentionInterval, "idle_for", w.chatIdleFor)

	ticker := time.NewTicker(w.retentionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.pruneIdleChats(ctx, logger)
		}
	}
}

// pruneIdleChats runs one retention pass, serialized across instances
// when a lock is configured.
func (w *Worker) pruneIdleChats(ctx context.Context, logger *slog.Logger) {
	if w.lock != nil {
		acquired, err := w.lock.Acquire(ctx, "chat-retention", w.retentionInterval)
		if err != nil {
			logger.Error("failed to acquire retention lock", "error", err)
			return
		}
		if !acquired {
			return
		}
		// Held until TTL so other instances skip this interval.
	}

	pruned, err := w.chatService.PruneIdle(ctx, w.chatIdleFor)
	if err != nil {
		logger.Error("failed to prune idle chats", "error", err)
		return
	}
	if pruned > 0 {
		logger.Info("pruned idle chats", "count", pruned)
	}
}

// Health returns health status of the worker.
type Health struct {
	Running     bool   `json:"running"`
	QueueHealth bool   `json:"queue_health"`
	Error       string `json:"error,omitempty"`
}

// Health returns the health status of the worker.
func (w *Worker) Health(ctx context.Context) Health {
	w.mu.RLock()
	running := w.running
	w.mu.RUnlock()

	health := Health{
		Running: running,
	}

	// Check queue health
	if err := w.taskQueue.Ping(ctx); err != nil {
		health.QueueHealth = false
		health.Error = err.Error()
	} else {
		health.QueueHealth = true
	}

	return health
}
