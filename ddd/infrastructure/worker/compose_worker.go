package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"giftvideo-service/ddd/domain/service"
	"giftvideo-service/ddd/infrastructure/queue"
	"giftvideo-service/pkg/logger"
)

// ComposeWorker 合成工作器接口
type ComposeWorker interface {
	// Start 启动工作器
	Start(ctx context.Context) error

	// Stop 停止工作器
	Stop() error

	// IsRunning 检查工作器是否运行中
	IsRunning() bool

	// GetStats 获取工作器统计信息
	GetStats() WorkerStats
}

// WorkerStats 工作器统计信息
type WorkerStats struct {
	ProcessedJobs    uint64
	SuccessfulJobs   uint64
	FailedJobs       uint64
	CurrentlyRunning int
	StartTime        time.Time
	LastJobTime      time.Time
}

// composeWorkerImpl 合成工作器实现
type composeWorkerImpl struct {
	id             string
	jobQueue       queue.JobQueue
	composeService service.ComposeService
	workerCount    int
	running        bool
	cancel         context.CancelFunc
	stats          WorkerStats
	mu             sync.RWMutex
	wg             sync.WaitGroup
}

// NewComposeWorker 创建合成工作器
func NewComposeWorker(
	id string,
	jobQueue queue.JobQueue,
	composeService service.ComposeService,
	workerCount int,
) ComposeWorker {
	if workerCount <= 0 {
		workerCount = 1
	}

	return &composeWorkerImpl{
		id:             id,
		jobQueue:       jobQueue,
		composeService: composeService,
		workerCount:    workerCount,
		stats: WorkerStats{
			StartTime: time.Now(),
		},
	}
}

// Start 启动工作器
func (w *composeWorkerImpl) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("worker %s is already running", w.id)
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.running = true
	w.stats.StartTime = time.Now()

	logger.Infof("Starting compose worker %s with %d goroutines", w.id, w.workerCount)

	for i := 0; i < w.workerCount; i++ {
		w.wg.Add(1)
		go w.workerLoop(workerCtx, i)
	}

	return nil
}

// Stop 停止工作器。等待期间不能持锁，worker协程更新统计时要拿同一把锁
func (w *composeWorkerImpl) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	cancel := w.cancel
	w.mu.Unlock()

	logger.Infof("Stopping compose worker %s", w.id)

	if cancel != nil {
		cancel()
	}
	w.wg.Wait()

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	logger.Infof("Compose worker %s stopped", w.id)
	return nil
}

// IsRunning 检查工作器是否运行中
func (w *composeWorkerImpl) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// GetStats 获取工作器统计信息
func (w *composeWorkerImpl) GetStats() WorkerStats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// workerLoop 工作器主循环
func (w *composeWorkerImpl) workerLoop(ctx context.Context, workerID int) {
	defer w.wg.Done()

	logger.Infof("Worker %s-%d started", w.id, workerID)
	defer logger.Infof("Worker %s-%d stopped", w.id, workerID)

	for {
		select {
		case <-ctx.Done():
			return
		default:
			jobUUID, err := w.jobQueue.Dequeue(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return
				}
				logger.Warnf("Worker %s-%d failed to dequeue: %v", w.id, workerID, err)
				time.Sleep(time.Second) // 避免忙等待
				continue
			}

			if jobUUID == "" {
				continue
			}

			w.processJob(ctx, jobUUID, workerID)
		}
	}
}

// processJob 处理单个任务。单飞判定在ComposeService内部完成，
// 重复入队的UUID在这里只是一次空转。
func (w *composeWorkerImpl) processJob(ctx context.Context, jobUUID string, workerID int) {
	logger.Infof("Worker %s-%d processing job %s", w.id, workerID, jobUUID)

	w.updateStats(func(stats *WorkerStats) {
		stats.CurrentlyRunning++
		stats.LastJobTime = time.Now()
	})

	defer func() {
		w.updateStats(func(stats *WorkerStats) {
			stats.CurrentlyRunning--
			stats.ProcessedJobs++
		})
	}()

	err := w.composeService.ExecuteCompose(ctx, jobUUID)
	if err != nil {
		logger.Errorf("Worker %s-%d failed to process job %s: %v", w.id, workerID, jobUUID, err)
		w.updateStats(func(stats *WorkerStats) {
			stats.FailedJobs++
		})
	} else {
		w.updateStats(func(stats *WorkerStats) {
			stats.SuccessfulJobs++
		})
	}
}

// updateStats 更新统计信息
func (w *composeWorkerImpl) updateStats(updateFunc func(*WorkerStats)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	updateFunc(&w.stats)
}
