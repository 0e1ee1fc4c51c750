package task

import (
	"context"
	"sync"

	"giftvideo-service/pkg/logger"
)

// BackgroundTask is a long-running process tied to the service lifecycle:
// the compose worker pool, the dispatch consumer, the sweep ticker.
type BackgroundTask interface {
	Name() string
	Start(ctx context.Context) error
	Stop() error
}

type manager struct {
	tasks  []BackgroundTask
	mu     sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc
}

var (
	defaultManager = &manager{tasks: make([]BackgroundTask, 0)}
)

// Register adds a background task; should be called during init/assembly before StartAll.
func Register(task BackgroundTask) {
	if task == nil {
		return
	}
	defaultManager.mu.Lock()
	defer defaultManager.mu.Unlock()
	defaultManager.tasks = append(defaultManager.tasks, task)
}

// StartAll starts all registered tasks once, sharing one cancellable context.
func StartAll(ctx context.Context) error {
	defaultManager.mu.Lock()
	defer defaultManager.mu.Unlock()
	if defaultManager.cancel != nil {
		return nil
	}
	defaultManager.ctx, defaultManager.cancel = context.WithCancel(ctx)
	for _, t := range defaultManager.tasks {
		if t == nil {
			continue
		}
		if err := t.Start(defaultManager.ctx); err != nil {
			return err
		}
		logger.Infof("Background task started name=%s", t.Name())
	}
	return nil
}

// StopAll cancels the shared context and stops tasks in reverse registration
// order, so the dispatch consumer drains before the worker pool goes away.
func StopAll() {
	defaultManager.mu.Lock()
	defer defaultManager.mu.Unlock()
	if defaultManager.cancel != nil {
		defaultManager.cancel()
	}
	for i := len(defaultManager.tasks) - 1; i >= 0; i-- {
		if t := defaultManager.tasks[i]; t != nil {
			if err := t.Stop(); err != nil {
				logger.Warnf("Background task stop failed name=%s err=%v", t.Name(), err)
			}
		}
	}
	defaultManager.cancel = nil
}
