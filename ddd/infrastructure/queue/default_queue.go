package queue

import (
	"sync"

	"giftvideo-service/pkg/config"
)

var (
	queueOnce    sync.Once
	defaultQueue JobQueue
)

// DefaultJobQueue 获取默认任务队列
func DefaultJobQueue() JobQueue {
	queueOnce.Do(func() {
		capacity := 100
		if cfg := config.GetGlobalConfig(); cfg != nil {
			if cfg.Worker.QueueCapacity > 0 {
				capacity = cfg.Worker.QueueCapacity
			}
		}
		defaultQueue = NewMemoryJobQueue(capacity)
	})
	return defaultQueue
}

// CloseDefaultJobQueue 关闭默认任务队列
func CloseDefaultJobQueue() {
	if defaultQueue != nil {
		_ = defaultQueue.Close()
	}
}
