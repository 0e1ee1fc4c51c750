package queue

import (
	"context"
	"fmt"
	"sync"
)

// JobQueue 合成任务队列接口。队列里只放任务UUID：worker出队后
// 重新读库并做条件状态转换，重复入队天然无害。
type JobQueue interface {
	// Enqueue 入队任务UUID
	Enqueue(ctx context.Context, jobUUID string) error

	// Dequeue 出队（阻塞）
	Dequeue(ctx context.Context) (string, error)

	// TryDequeue 尝试出队（非阻塞），队列为空返回空串
	TryDequeue(ctx context.Context) (string, error)

	// Size 获取队列大小
	Size() int

	// IsEmpty 检查队列是否为空
	IsEmpty() bool

	// Close 关闭队列
	Close() error

	// IsClosed 检查队列是否已关闭
	IsClosed() bool
}

// MemoryJobQueue 基于内存的任务队列实现
type MemoryJobQueue struct {
	queue   chan string
	closed  bool
	mu      sync.RWMutex
	metrics *QueueMetrics
}

// QueueMetrics 队列指标
type QueueMetrics struct {
	EnqueueCount uint64
	DequeueCount uint64
	MaxSize      int
	CurrentSize  int
	mu           sync.RWMutex
}

// NewMemoryJobQueue 创建内存任务队列
func NewMemoryJobQueue(capacity int) JobQueue {
	if capacity <= 0 {
		capacity = 1000 // 默认容量
	}

	return &MemoryJobQueue{
		queue: make(chan string, capacity),
		metrics: &QueueMetrics{
			MaxSize: capacity,
		},
	}
}

// Enqueue 入队任务UUID
func (q *MemoryJobQueue) Enqueue(ctx context.Context, jobUUID string) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return fmt.Errorf("queue is closed")
	}

	if jobUUID == "" {
		return fmt.Errorf("job uuid cannot be empty")
	}

	select {
	case q.queue <- jobUUID:
		q.updateEnqueueMetrics()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("queue is full")
	}
}

// Dequeue 出队（阻塞）
func (q *MemoryJobQueue) Dequeue(ctx context.Context) (string, error) {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return "", fmt.Errorf("queue is closed")
	}
	ch := q.queue
	q.mu.RUnlock()

	select {
	case jobUUID, ok := <-ch:
		if !ok {
			return "", fmt.Errorf("queue is closed")
		}
		q.updateDequeueMetrics()
		return jobUUID, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// TryDequeue 尝试出队（非阻塞）
func (q *MemoryJobQueue) TryDequeue(ctx context.Context) (string, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return "", fmt.Errorf("queue is closed")
	}

	select {
	case jobUUID := <-q.queue:
		q.updateDequeueMetrics()
		return jobUUID, nil
	default:
		return "", nil // 队列为空
	}
}

// Size 获取队列大小
func (q *MemoryJobQueue) Size() int {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return 0
	}

	return len(q.queue)
}

// IsEmpty 检查队列是否为空
func (q *MemoryJobQueue) IsEmpty() bool {
	return q.Size() == 0
}

// Close 关闭队列
func (q *MemoryJobQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	q.closed = true
	close(q.queue)
	return nil
}

// IsClosed 检查队列是否已关闭
func (q *MemoryJobQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

// GetMetrics 获取队列指标
func (q *MemoryJobQueue) GetMetrics() QueueMetrics {
	q.metrics.mu.RLock()
	defer q.metrics.mu.RUnlock()

	metrics := QueueMetrics{
		EnqueueCount: q.metrics.EnqueueCount,
		DequeueCount: q.metrics.DequeueCount,
		MaxSize:      q.metrics.MaxSize,
	}
	metrics.CurrentSize = q.Size()
	return metrics
}

// updateEnqueueMetrics 更新入队指标
func (q *MemoryJobQueue) updateEnqueueMetrics() {
	q.metrics.mu.Lock()
	defer q.metrics.mu.Unlock()
	q.metrics.EnqueueCount++
}

// updateDequeueMetrics 更新出队指标
func (q *MemoryJobQueue) updateDequeueMetrics() {
	q.metrics.mu.Lock()
	defer q.metrics.mu.Unlock()
	q.metrics.DequeueCount++
}
