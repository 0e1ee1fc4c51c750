package worker

import (
	"fmt"
	"time"

	"giftvideo-service/ddd/domain/service"
	"giftvideo-service/ddd/domain/vo"
	"giftvideo-service/ddd/infrastructure/database/persistence"
	"giftvideo-service/ddd/infrastructure/executor"
	"giftvideo-service/ddd/infrastructure/queue"
	"giftvideo-service/ddd/infrastructure/storage"
	"giftvideo-service/internal/resource"
	"giftvideo-service/pkg/config"
	"giftvideo-service/pkg/logger"
	"giftvideo-service/pkg/manager"
	"giftvideo-service/pkg/task"
)

// ComposeWorkerComponentPlugin 负责启动合成Worker
type ComposeWorkerComponentPlugin struct{}

func (p *ComposeWorkerComponentPlugin) Name() string {
	return "composeWorkerComponent"
}

func (p *ComposeWorkerComponentPlugin) MustCreateComponent(deps *manager.Dependencies) manager.Component {
	jobRepo := persistence.NewGiftVideoJobRepository()
	queueInstance := queue.DefaultJobQueue()
	cfg := deps.Config
	if cfg == nil {
		cfg = config.GetGlobalConfig()
	}

	storageGateway := storage.NewMinioStorage(resource.DefaultMinioResource())
	renderEngine := executor.NewFFmpegRenderer(cfg)

	policy, renderTimeout, tempDir := composeSettings(cfg)
	composeSvc := service.NewComposeService(
		jobRepo,
		storageGateway,
		renderEngine,
		policy,
		renderTimeout,
		tempDir,
	)

	workerCount := 1
	workerID := "compose-worker"
	if cfg != nil {
		if cfg.Worker.MaxConcurrentTasks > 0 {
			workerCount = cfg.Worker.MaxConcurrentTasks
		}
		if cfg.Worker.WorkerID != "" {
			workerID = cfg.Worker.WorkerID
		}
	}

	return &composeWorkerComponent{
		name:   "composeWorker",
		queue:  queueInstance,
		worker: NewComposeWorker(workerID, queueInstance, composeSvc, workerCount),
	}
}

// composeSettings 从配置取合成参数，配置未初始化时退回默认值
// （NewComposeService自己会兜零值的渲染超时和临时目录）
func composeSettings(cfg *config.Config) (vo.RetryPolicy, time.Duration, string) {
	policy := vo.DefaultRetryPolicy()
	if cfg == nil {
		return policy, 0, ""
	}
	policy.MaxAttempts = cfg.Compose.MaxAttempts
	policy.BaseDelay = cfg.Compose.RetryBaseDelay
	policy.MaxDelay = cfg.Compose.RetryMaxDelay
	return policy, cfg.Compose.RenderTimeout, cfg.Compose.FFmpeg.TempDir
}

type composeWorkerComponent struct {
	name   string
	queue  queue.JobQueue
	worker ComposeWorker
}

func (c *composeWorkerComponent) Start() error {
	if c.worker == nil {
		return fmt.Errorf("compose worker not initialized")
	}

	// 注册后台任务，让应用启动时统一管理
	task.Register(&backgroundTaskAdapter{name: c.name, startFunc: c.worker.Start, stopFunc: c.worker.Stop})
	logger.Infof("Compose worker component registered background task name=%s", c.name)
	return nil
}

func (c *composeWorkerComponent) Stop() error {
	// 背景任务由 task.Manager 控制停止，这里保持幂等
	queue.CloseDefaultJobQueue()
	logger.Infof("Compose worker component stopped name=%s", c.name)
	return nil
}

func (c *composeWorkerComponent) GetName() string {
	return c.name
}
