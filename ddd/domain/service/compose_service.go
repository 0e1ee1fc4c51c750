package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"giftvideo-service/ddd/domain/entity"
	"giftvideo-service/ddd/domain/gateway"
	"giftvideo-service/ddd/domain/repo"
	"giftvideo-service/ddd/domain/vo"
	"giftvideo-service/pkg/logger"
)

// ComposeService 合成领域服务。worker从队列拿到任务UUID后调用
// ExecuteCompose，其余入口（重触发、卡死回收）也汇聚到这里。
type ComposeService interface {
	// ExecuteCompose 执行一次合成。入口是at-least-once的：
	// 抢不到pending→processing转换就静默放弃，重复触发无害。
	ExecuteCompose(ctx context.Context, jobUUID string) error
}

type composeServiceImpl struct {
	jobRepo repo.GiftVideoJobRepository
	storage gateway.StorageGateway
	engine  gateway.RenderEngine
	policy  vo.RetryPolicy

	renderTimeout time.Duration
	tempDir       string
}

// NewComposeService 创建合成领域服务
func NewComposeService(
	jobRepo repo.GiftVideoJobRepository,
	storage gateway.StorageGateway,
	engine gateway.RenderEngine,
	policy vo.RetryPolicy,
	renderTimeout time.Duration,
	tempDir string,
) ComposeService {
	if renderTimeout <= 0 {
		renderTimeout = 5 * time.Minute
	}
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &composeServiceImpl{
		jobRepo:       jobRepo,
		storage:       storage,
		engine:        engine,
		policy:        policy,
		renderTimeout: renderTimeout,
		tempDir:       tempDir,
	}
}

func (s *composeServiceImpl) ExecuteCompose(ctx context.Context, jobUUID string) error {
	job, err := s.jobRepo.GetJob(ctx, jobUUID)
	if err != nil {
		return fmt.Errorf("load job: %w", err)
	}
	if job == nil {
		logger.Warn("Compose triggered for unknown job", map[string]interface{}{
			"job_uuid": jobUUID,
		})
		return nil
	}

	// 单飞：条件转换抢不到就说明别的worker已经在干，或任务已不在pending
	claimed, err := s.jobRepo.TransitionStatus(ctx, jobUUID, vo.JobStatusPending, vo.JobStatusProcessing)
	if err != nil {
		return fmt.Errorf("claim job: %w", err)
	}
	if !claimed {
		logger.Info("Compose skipped, job not claimable", map[string]interface{}{
			"job_uuid": jobUUID,
			"status":   job.Status().String(),
		})
		return nil
	}

	logger.Info("Compose started", map[string]interface{}{
		"job_uuid":  jobUUID,
		"gift_uuid": job.GiftUUID(),
		"attempts":  job.Attempts(),
	})

	workDir := filepath.Join(s.tempDir, "compose", jobUUID)
	defer os.RemoveAll(workDir)

	attempts := job.Attempts()
	var lastErr error
	for {
		attempts++
		if err := s.jobRepo.UpdateAttempts(ctx, jobUUID, attempts); err != nil {
			logger.Errorf("persist attempts failed job_uuid=%s err=%v", jobUUID, err)
		}

		lastErr = s.attemptCompose(ctx, job, workDir)
		if lastErr == nil {
			return nil
		}

		if s.policy.Exhausted(attempts) {
			break
		}

		delay := s.policy.Delay(attempts)
		logger.Warn("Compose attempt failed, backing off", map[string]interface{}{
			"job_uuid": jobUUID,
			"attempt":  attempts,
			"delay":    delay.String(),
			"error":    lastErr.Error(),
		})
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			// 停机打断不是终态失败：任务留在processing，由卡死回收重排
			logger.Warn("Compose interrupted, leaving job for recovery", map[string]interface{}{
				"job_uuid": jobUUID,
				"attempt":  attempts,
			})
			return ctx.Err()
		}
	}

	if ctx.Err() != nil {
		logger.Warn("Compose interrupted, leaving job for recovery", map[string]interface{}{
			"job_uuid": jobUUID,
			"attempt":  attempts,
		})
		return ctx.Err()
	}

	return s.fail(ctx, jobUUID, fmt.Sprintf("compose failed after %d attempts: %v", attempts, lastErr))
}

// attemptCompose 单次完整尝试：工作目录、素材下载、渲染发布。
// 素材拉取的存储抖动和渲染失败走同一条退避通道。
func (s *composeServiceImpl) attemptCompose(ctx context.Context, job *entity.GiftVideoJobEntity, workDir string) error {
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return fmt.Errorf("create work dir: %w", err)
	}

	localInput := filepath.Join(workDir, "input"+filepath.Ext(job.SourcePath()))
	if err := s.storage.DownloadFile(ctx, job.SourcePath(), localInput); err != nil {
		return fmt.Errorf("download source: %w", err)
	}

	audioPath, err := s.prepareAudio(ctx, job.EditSpec().MusicURL, workDir)
	if err != nil {
		// 背景音乐拿不到不值得废掉整个任务，降级为无混音
		logger.Warn("Background music unavailable, composing without it", map[string]interface{}{
			"job_uuid": job.JobUUID(),
			"error":    err.Error(),
		})
		audioPath = ""
	}

	return s.renderAndPublish(ctx, job, localInput, audioPath, workDir)
}

// renderAndPublish 单次渲染尝试：渲染、上传、原子落库。
// 输出对象每次尝试都用新Key，失败残留绝不会被签名URL读到。
func (s *composeServiceImpl) renderAndPublish(ctx context.Context, job *entity.GiftVideoJobEntity, localInput, audioPath, workDir string) error {
	localOutput := filepath.Join(workDir, fmt.Sprintf("output_%d.mp4", time.Now().UnixNano()))

	renderCtx, cancel := context.WithTimeout(ctx, s.renderTimeout)
	defer cancel()

	err := s.engine.Render(renderCtx, gateway.RenderRequest{
		JobUUID:    job.JobUUID(),
		InputPath:  localInput,
		OutputPath: localOutput,
		Spec:       job.EditSpec(),
		AudioPath:  audioPath,
	})
	if err != nil {
		return err
	}
	defer os.Remove(localOutput)

	objectKey := fmt.Sprintf("gift-videos/composited/%s/%d.mp4", job.JobUUID(), time.Now().UnixNano())
	uploadedKey, err := s.storage.UploadFile(ctx, localOutput, objectKey, "video/mp4")
	if err != nil {
		return fmt.Errorf("upload output: %w", err)
	}

	expiresAt := time.Now().Add(job.Retention())
	updated, err := s.jobRepo.CompleteJob(ctx, job.JobUUID(), uploadedKey, expiresAt)
	if err != nil {
		// 落库失败时回收已上传的对象，避免无主制品
		_ = s.storage.DeleteObject(ctx, uploadedKey)
		return fmt.Errorf("persist completion: %w", err)
	}
	if !updated {
		// 任务已不在processing：这是一次迟到的旧结果，丢弃制品并放弃
		logger.Warn("Completion rejected, job moved on, discarding output", map[string]interface{}{
			"job_uuid":   job.JobUUID(),
			"object_key": uploadedKey,
		})
		_ = s.storage.DeleteObject(ctx, uploadedKey)
		return nil
	}

	logger.Info("Compose finished", map[string]interface{}{
		"job_uuid":   job.JobUUID(),
		"object_key": uploadedKey,
		"expires_at": expiresAt.Format(time.RFC3339),
	})
	return nil
}

// prepareAudio 准备背景音乐：存储Key先下载到本地，http(s)地址直接交给渲染器
func (s *composeServiceImpl) prepareAudio(ctx context.Context, musicURL, workDir string) (string, error) {
	if musicURL == "" {
		return "", nil
	}
	if strings.HasPrefix(musicURL, "http://") || strings.HasPrefix(musicURL, "https://") {
		return musicURL, nil
	}
	local := filepath.Join(workDir, "music"+filepath.Ext(musicURL))
	if err := s.storage.DownloadFile(ctx, musicURL, local); err != nil {
		return "", err
	}
	return local, nil
}

// fail 守护式落败：任务已被别人接管时保留对方的状态
func (s *composeServiceImpl) fail(ctx context.Context, jobUUID, message string) error {
	updated, err := s.jobRepo.FailJob(ctx, jobUUID, message)
	if err != nil {
		logger.Errorf("mark job failed error job_uuid=%s err=%v", jobUUID, err)
		return err
	}
	if !updated {
		logger.Warn("Fail transition rejected, job no longer processing", map[string]interface{}{
			"job_uuid": jobUUID,
		})
		return nil
	}
	logger.Error("Compose failed", map[string]interface{}{
		"job_uuid": jobUUID,
		"message":  message,
	})
	return nil
}
