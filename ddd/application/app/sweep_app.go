package app

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"giftvideo-service/ddd/application/dto"
	"giftvideo-service/ddd/domain/service"
	"giftvideo-service/ddd/infrastructure/database/persistence"
	"giftvideo-service/ddd/infrastructure/storage"
	"giftvideo-service/internal/resource"
	"giftvideo-service/pkg/assert"
	"giftvideo-service/pkg/config"
	"giftvideo-service/pkg/logger"
	"giftvideo-service/pkg/redisclient"
)

var (
	singleSweepApp SweepApp
	onceSweepApp   sync.Once
)

const sweepLockKey = "giftvideo:sweep:lock"

type SweepApp interface {
	// RunSweep 执行一轮清理：清除过期输出，回收卡死的processing任务。
	// 多实例部署时用redis锁保证同一时刻只有一轮在跑；抢不到锁返回nil报告。
	RunSweep(ctx context.Context) (*dto.SweepReportDTO, error)
}

type sweepAppImpl struct {
	sweepService service.SweepService
	giftVideoApp GiftVideoApp
	locker       *redisclient.Client
	batchSize    int
	lockTTL      time.Duration
	stuckAfter   time.Duration
}

func DefaultSweepApp() SweepApp {
	assert.NotCircular()
	onceSweepApp.Do(func() {
		cfg := config.GetGlobalConfig()
		jobRepo := persistence.NewGiftVideoJobRepository()
		storageGateway := storage.NewMinioStorage(resource.DefaultMinioResource())

		batchSize := 200
		lockTTL := 10 * time.Minute
		if cfg != nil {
			if cfg.Sweeper.BatchSize > 0 {
				batchSize = cfg.Sweeper.BatchSize
			}
			if cfg.Sweeper.LockTTL > 0 {
				lockTTL = cfg.Sweeper.LockTTL
			}
		}

		singleSweepApp = NewSweepAppWith(
			service.NewSweepService(jobRepo, storageGateway),
			DefaultGiftVideoApp(),
			resource.DefaultRedisResource().Shared(),
			batchSize,
			lockTTL,
			30*time.Minute,
		)
	})
	assert.NotNil(singleSweepApp)
	return singleSweepApp
}

func NewSweepAppWith(
	sweepService service.SweepService,
	giftVideoApp GiftVideoApp,
	locker *redisclient.Client,
	batchSize int,
	lockTTL time.Duration,
	stuckAfter time.Duration,
) SweepApp {
	return &sweepAppImpl{
		sweepService: sweepService,
		giftVideoApp: giftVideoApp,
		locker:       locker,
		batchSize:    batchSize,
		lockTTL:      lockTTL,
		stuckAfter:   stuckAfter,
	}
}

func (a *sweepAppImpl) RunSweep(ctx context.Context) (*dto.SweepReportDTO, error) {
	release, acquired := a.tryLock(ctx)
	if !acquired {
		logger.Info("Sweep skipped, another instance holds the lock", nil)
		return nil, nil
	}
	defer release()

	report, err := a.sweepService.SweepExpired(ctx, a.batchSize)
	if err != nil {
		return nil, err
	}

	recovered, err := a.sweepService.RecoverStuck(ctx, a.stuckAfter, a.batchSize)
	if err != nil {
		logger.Errorf("stuck recovery failed err=%v", err)
	}
	for _, jobUUID := range recovered {
		if a.giftVideoApp != nil {
			_ = a.giftVideoApp.EnqueueJob(ctx, jobUUID)
		}
	}

	result := dto.NewSweepReportDTO(report, len(recovered))
	logger.Info("Sweep finished", map[string]interface{}{
		"scanned":   result.Scanned,
		"scrubbed":  result.Scrubbed,
		"failed":    result.Failed,
		"recovered": result.Recovered,
	})
	return result, nil
}

// tryLock 抢清理锁。redis不可用时退化为无锁执行：清理本身是
// at-least-once且幂等的，并发执行只是浪费不是错误。
func (a *sweepAppImpl) tryLock(ctx context.Context) (func(), bool) {
	if a.locker == nil {
		return func() {}, true
	}
	holder := uuid.New().String()
	ok, err := a.locker.AcquireLock(ctx, sweepLockKey, holder, a.lockTTL)
	if err != nil {
		logger.Warnf("sweep lock unavailable, proceeding without it err=%v", err)
		return func() {}, true
	}
	if !ok {
		return nil, false
	}
	return func() {
		if err := a.locker.ReleaseLock(ctx, sweepLockKey); err != nil {
			logger.Warnf("sweep lock release failed err=%v", err)
		}
	}, true
}
