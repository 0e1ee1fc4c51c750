package service

import (
	"context"
	"time"

	"giftvideo-service/ddd/domain/gateway"
	"giftvideo-service/ddd/domain/repo"
	"giftvideo-service/ddd/domain/vo"
	"giftvideo-service/pkg/logger"
)

// SweepReport 一轮清理的结果
type SweepReport struct {
	Scanned   int `json:"scanned"`
	Scrubbed  int `json:"scrubbed"`
	Failed    int `json:"failed"`
	Recovered int `json:"recovered"`
}

// SweepService 过期清理领域服务。先删对象再清记录，两步之间崩溃
// 留下的记录会被下一轮扫描重新处理；对象已不存在时删除视为成功，
// 所以重复执行只会收敛不会报错。
type SweepService interface {
	// SweepExpired 扫描并清除过期的合成输出
	SweepExpired(ctx context.Context, batchSize int) (*SweepReport, error)

	// RecoverStuck 把长时间停留在processing的任务拨回pending，
	// 返回被回收的任务UUID供调用方重新派发。
	RecoverStuck(ctx context.Context, olderThan time.Duration, limit int) ([]string, error)
}

type sweepServiceImpl struct {
	jobRepo repo.GiftVideoJobRepository
	storage gateway.StorageGateway
}

// NewSweepService 创建清理领域服务
func NewSweepService(jobRepo repo.GiftVideoJobRepository, storage gateway.StorageGateway) SweepService {
	return &sweepServiceImpl{
		jobRepo: jobRepo,
		storage: storage,
	}
}

func (s *sweepServiceImpl) SweepExpired(ctx context.Context, batchSize int) (*SweepReport, error) {
	if batchSize <= 0 {
		batchSize = 200
	}

	jobs, err := s.jobRepo.QueryExpiredJobs(ctx, time.Now(), batchSize)
	if err != nil {
		return nil, err
	}

	report := &SweepReport{Scanned: len(jobs)}
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		// 源视频不在清理范围内，只删合成输出
		if err := s.storage.DeleteObject(ctx, job.OutputPath()); err != nil {
			report.Failed++
			logger.Error("Sweep delete failed, leaving record for next pass", map[string]interface{}{
				"job_uuid":    job.JobUUID(),
				"output_path": job.OutputPath(),
				"error":       err.Error(),
			})
			continue
		}

		scrubbed, err := s.jobRepo.ScrubJob(ctx, job.JobUUID())
		if err != nil {
			report.Failed++
			logger.Errorf("scrub job failed job_uuid=%s err=%v", job.JobUUID(), err)
			continue
		}
		if scrubbed {
			report.Scrubbed++
			logger.Info("Job output scrubbed", map[string]interface{}{
				"job_uuid": job.JobUUID(),
			})
		}
	}

	return report, nil
}

func (s *sweepServiceImpl) RecoverStuck(ctx context.Context, olderThan time.Duration, limit int) ([]string, error) {
	if olderThan <= 0 {
		olderThan = 30 * time.Minute
	}
	if limit <= 0 {
		limit = 100
	}

	jobs, err := s.jobRepo.QueryStuckProcessing(ctx, time.Now().Add(-olderThan), limit)
	if err != nil {
		return nil, err
	}

	var recovered []string
	for _, job := range jobs {
		moved, err := s.jobRepo.TransitionStatus(ctx, job.JobUUID(), vo.JobStatusProcessing, vo.JobStatusPending)
		if err != nil {
			logger.Errorf("recover stuck job failed job_uuid=%s err=%v", job.JobUUID(), err)
			continue
		}
		if moved {
			recovered = append(recovered, job.JobUUID())
			logger.Warn("Stuck job recovered to pending", map[string]interface{}{
				"job_uuid": job.JobUUID(),
				"attempts": job.Attempts(),
			})
		}
	}

	return recovered, nil
}
