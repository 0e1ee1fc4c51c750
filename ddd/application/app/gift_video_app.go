package app

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"giftvideo-service/ddd/application/cqe"
	"giftvideo-service/ddd/application/dto"
	"giftvideo-service/ddd/domain/entity"
	"giftvideo-service/ddd/domain/gateway"
	"giftvideo-service/ddd/domain/repo"
	"giftvideo-service/ddd/domain/vo"
	"giftvideo-service/ddd/infrastructure/database/persistence"
	"giftvideo-service/ddd/infrastructure/queue"
	"giftvideo-service/ddd/infrastructure/storage"
	"giftvideo-service/internal/resource"
	"giftvideo-service/pkg/assert"
	"giftvideo-service/pkg/config"
	"giftvideo-service/pkg/errno"
	"giftvideo-service/pkg/kafka"
	"giftvideo-service/pkg/logger"
	"giftvideo-service/pkg/redisclient"
)

var (
	singleGiftVideoApp GiftVideoApp
	onceGiftVideoApp   sync.Once
)

// JobCreatedMessage 任务创建事件，投给Kafka触发异步派发
type JobCreatedMessage struct {
	JobUUID string `json:"job_uuid"`
	Status  string `json:"status"`
}

type GiftVideoApp interface {
	// SubmitGiftVideo 提交合成任务
	SubmitGiftVideo(ctx context.Context, req *cqe.SubmitGiftVideoReq) (*dto.GiftVideoJobDTO, error)
	// GetGiftVideoJob 获取任务详情
	GetGiftVideoJob(ctx context.Context, jobUUID string) (*dto.GiftVideoJobDTO, error)
	// ListGiftVideoJobs 按状态查询任务列表
	ListGiftVideoJobs(ctx context.Context, status string, limit int) (*dto.GiftVideoJobListDTO, error)
	// RetriggerJob 重新触发派发（at-least-once，重复触发无害）
	RetriggerJob(ctx context.Context, jobUUID string) error
	// ResubmitJob 失败任务重新提交
	ResubmitJob(ctx context.Context, jobUUID string) (*dto.GiftVideoJobDTO, error)
	// EnqueueJob 把任务UUID塞进本地工作队列（消费者、卡死回收共用）
	EnqueueJob(ctx context.Context, jobUUID string) error
	// ResolveViewURL 用追踪令牌换取签名播放地址，并记录一次观看
	ResolveViewURL(ctx context.Context, trackingToken string) (string, error)
}

type giftVideoAppImpl struct {
	jobRepo     repo.GiftVideoJobRepository
	jobQueue    queue.JobQueue
	storage     gateway.StorageGateway
	kafkaClient *kafka.Client
	redisCache  *redisclient.Client
	cfg         *config.Config
}

func DefaultGiftVideoApp() GiftVideoApp {
	assert.NotCircular()
	onceGiftVideoApp.Do(func() {
		var kafkaClient *kafka.Client
		cfg := config.GetGlobalConfig()
		if cfg != nil && cfg.Kafka.Enabled {
			kafkaClient = kafka.DefaultClient()
		}
		singleGiftVideoApp = NewGiftVideoAppWith(
			persistence.NewGiftVideoJobRepository(),
			queue.DefaultJobQueue(),
			storage.NewMinioStorage(resource.DefaultMinioResource()),
			kafkaClient,
			resource.DefaultRedisResource().Shared(),
			cfg,
		)
	})
	assert.NotNil(singleGiftVideoApp)
	return singleGiftVideoApp
}

func NewGiftVideoAppWith(
	jobRepo repo.GiftVideoJobRepository,
	q queue.JobQueue,
	storageGateway gateway.StorageGateway,
	kafkaClient *kafka.Client,
	redisCache *redisclient.Client,
	cfg *config.Config,
) GiftVideoApp {
	return &giftVideoAppImpl{
		jobRepo:     jobRepo,
		jobQueue:    q,
		storage:     storageGateway,
		kafkaClient: kafkaClient,
		redisCache:  redisCache,
		cfg:         cfg,
	}
}

func (a *giftVideoAppImpl) SubmitGiftVideo(ctx context.Context, req *cqe.SubmitGiftVideoReq) (*dto.GiftVideoJobDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	job := entity.NewGiftVideoJobEntity(req.GiftUUID, req.ChildUUID, req.VideoPath, req.ToEditSpec(), req.ExpiresHours)

	if err := a.jobRepo.CreateJob(ctx, job); err != nil {
		return nil, errno.NewBizError(errno.ErrDatabase, err)
	}

	a.dispatch(ctx, job.JobUUID())

	logger.Info("Gift video job submitted", map[string]interface{}{
		"job_uuid":  job.JobUUID(),
		"gift_uuid": job.GiftUUID(),
	})
	return dto.NewGiftVideoJobDTO(job), nil
}

// dispatch 派发任务：优先走Kafka事件，不可用时直接入本地队列。
// 两条路都可能重复触发同一任务，单飞判定兜底。
func (a *giftVideoAppImpl) dispatch(ctx context.Context, jobUUID string) {
	if a.kafkaClient != nil {
		payload, _ := json.Marshal(JobCreatedMessage{JobUUID: jobUUID, Status: vo.JobStatusPending.String()})
		if err := a.kafkaClient.Produce(ctx, a.jobsTopic(), []byte(jobUUID), payload); err == nil {
			return
		} else {
			logger.Warnf("Kafka produce failed, falling back to local queue job_uuid=%s err=%v", jobUUID, err)
		}
	}
	if err := a.jobQueue.Enqueue(ctx, jobUUID); err != nil {
		logger.Errorf("local enqueue failed job_uuid=%s err=%v", jobUUID, err)
	}
}

func (a *giftVideoAppImpl) jobsTopic() string {
	if a.cfg != nil && a.cfg.Kafka.Topics.GiftVideoJobs != "" {
		return a.cfg.Kafka.Topics.GiftVideoJobs
	}
	return "gift.video.jobs"
}

func (a *giftVideoAppImpl) GetGiftVideoJob(ctx context.Context, jobUUID string) (*dto.GiftVideoJobDTO, error) {
	if jobUUID == "" {
		return nil, errno.ErrJobUUIDRequired
	}
	job, err := a.jobRepo.GetJob(ctx, jobUUID)
	if err != nil {
		return nil, errno.NewBizError(errno.ErrDatabase, err)
	}
	if job == nil {
		return nil, errno.ErrJobNotFound
	}
	return dto.NewGiftVideoJobDTO(job), nil
}

func (a *giftVideoAppImpl) ListGiftVideoJobs(ctx context.Context, status string, limit int) (*dto.GiftVideoJobListDTO, error) {
	jobStatus, ok := vo.NewJobStatusFromString(status)
	if !ok {
		return nil, errno.ErrInvalidJobStatus
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	jobs, err := a.jobRepo.QueryJobsByStatus(ctx, jobStatus, limit)
	if err != nil {
		return nil, errno.NewBizError(errno.ErrDatabase, err)
	}

	list := &dto.GiftVideoJobListDTO{Total: len(jobs)}
	for _, job := range jobs {
		list.Jobs = append(list.Jobs, dto.NewGiftVideoJobDTO(job))
	}
	return list, nil
}

func (a *giftVideoAppImpl) RetriggerJob(ctx context.Context, jobUUID string) error {
	if jobUUID == "" {
		return errno.ErrJobUUIDRequired
	}
	job, err := a.jobRepo.GetJob(ctx, jobUUID)
	if err != nil {
		return errno.NewBizError(errno.ErrDatabase, err)
	}
	if job == nil {
		return errno.ErrJobNotFound
	}

	// 非pending任务的触发会在单飞判定处自然落空，这里不拦截
	return a.EnqueueJob(ctx, jobUUID)
}

func (a *giftVideoAppImpl) ResubmitJob(ctx context.Context, jobUUID string) (*dto.GiftVideoJobDTO, error) {
	if jobUUID == "" {
		return nil, errno.ErrJobUUIDRequired
	}

	moved, err := a.jobRepo.TransitionStatus(ctx, jobUUID, vo.JobStatusFailed, vo.JobStatusPending)
	if err != nil {
		return nil, errno.NewBizError(errno.ErrDatabase, err)
	}
	if !moved {
		job, err := a.jobRepo.GetJob(ctx, jobUUID)
		if err != nil {
			return nil, errno.NewBizError(errno.ErrDatabase, err)
		}
		if job == nil {
			return nil, errno.ErrJobNotFound
		}
		return nil, errno.ErrInvalidJobStatus
	}

	a.dispatch(ctx, jobUUID)

	job, err := a.jobRepo.GetJob(ctx, jobUUID)
	if err != nil {
		return nil, errno.NewBizError(errno.ErrDatabase, err)
	}
	return dto.NewGiftVideoJobDTO(job), nil
}

func (a *giftVideoAppImpl) EnqueueJob(ctx context.Context, jobUUID string) error {
	if err := a.jobQueue.Enqueue(ctx, jobUUID); err != nil {
		logger.Errorf("enqueue job failed job_uuid=%s err=%v", jobUUID, err)
		return errno.ErrQueueFull
	}
	return nil
}

func (a *giftVideoAppImpl) ResolveViewURL(ctx context.Context, trackingToken string) (string, error) {
	if trackingToken == "" {
		return "", errno.ErrTrackingTokenRequired
	}

	job, err := a.jobRepo.GetJobByToken(ctx, trackingToken)
	if err != nil {
		return "", errno.NewBizError(errno.ErrDatabase, err)
	}
	if job == nil {
		return "", errno.ErrJobNotFound
	}

	now := time.Now()
	if !job.HasLiveOutput(now) {
		return "", errno.ErrVideoExpired
	}

	signedURL := a.cachedURL(ctx, trackingToken)
	if signedURL == "" {
		remaining := job.ExpiresAt().Sub(now)
		signTTL := time.Hour
		if remaining < signTTL {
			signTTL = remaining
		}
		signedURL, err = a.storage.SignedURL(ctx, job.OutputPath(), signTTL)
		if err != nil {
			return "", errno.NewBizError(errno.ErrStorageUnavailable, err)
		}
		a.rememberURL(ctx, trackingToken, signedURL, signTTL)
		if err := a.jobRepo.UpdateOutputURL(ctx, job.JobUUID(), signedURL); err != nil {
			logger.Warnf("record signed url failed job_uuid=%s err=%v", job.JobUUID(), err)
		}
	}

	// 观看计数失败不拦截播放
	if err := a.jobRepo.RecordView(ctx, job.JobUUID()); err != nil {
		logger.Warnf("record view failed job_uuid=%s err=%v", job.JobUUID(), err)
	}

	return signedURL, nil
}

// cachedURL 查签名URL缓存，redis不可用时直接走重新签发
func (a *giftVideoAppImpl) cachedURL(ctx context.Context, token string) string {
	if a.redisCache == nil {
		return ""
	}
	url, err := a.redisCache.GetCachedURL(ctx, viewURLCacheKey(token))
	if err != nil {
		logger.Warnf("signed url cache read failed token=%s err=%v", token, err)
		return ""
	}
	return url
}

func (a *giftVideoAppImpl) rememberURL(ctx context.Context, token, url string, ttl time.Duration) {
	if a.redisCache == nil {
		return
	}
	// 比签名有效期略短，缓存里永远不会出现已失效的URL
	cacheTTL := ttl - time.Minute
	if cacheTTL <= 0 {
		return
	}
	if err := a.redisCache.CacheURL(ctx, viewURLCacheKey(token), url, cacheTTL); err != nil {
		logger.Warnf("signed url cache write failed token=%s err=%v", token, err)
	}
}

func viewURLCacheKey(token string) string {
	return "giftvideo:view_url:" + token
}
