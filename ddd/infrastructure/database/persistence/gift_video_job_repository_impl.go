package persistence

import (
	"context"
	"time"

	"giftvideo-service/ddd/domain/entity"
	"giftvideo-service/ddd/domain/repo"
	"giftvideo-service/ddd/domain/vo"
	"giftvideo-service/ddd/infrastructure/database/convertor"
	"giftvideo-service/ddd/infrastructure/database/dao"
)

type giftVideoJobRepositoryImpl struct {
	jobDao    *dao.GiftVideoJobDAO
	convertor *convertor.GiftVideoJobConvertor
}

func NewGiftVideoJobRepository() repo.GiftVideoJobRepository {
	return &giftVideoJobRepositoryImpl{
		jobDao:    dao.NewGiftVideoJobDAO(),
		convertor: convertor.NewGiftVideoJobConvertor(),
	}
}

func (r *giftVideoJobRepositoryImpl) CreateJob(ctx context.Context, job *entity.GiftVideoJobEntity) error {
	return r.jobDao.Create(ctx, r.convertor.ToPO(job))
}

func (r *giftVideoJobRepositoryImpl) GetJob(ctx context.Context, jobUUID string) (*entity.GiftVideoJobEntity, error) {
	p, err := r.jobDao.FindByJobUUID(ctx, jobUUID)
	if err != nil {
		return nil, err
	}
	return r.convertor.ToEntity(p), nil
}

func (r *giftVideoJobRepositoryImpl) GetJobByToken(ctx context.Context, trackingToken string) (*entity.GiftVideoJobEntity, error) {
	p, err := r.jobDao.FindByTrackingToken(ctx, trackingToken)
	if err != nil {
		return nil, err
	}
	return r.convertor.ToEntity(p), nil
}

func (r *giftVideoJobRepositoryImpl) QueryJobsByStatus(ctx context.Context, status vo.JobStatus, limit int) ([]*entity.GiftVideoJobEntity, error) {
	pos, err := r.jobDao.QueryByStatus(ctx, status.String(), limit)
	if err != nil {
		return nil, err
	}
	return r.convertor.ToEntities(pos), nil
}

func (r *giftVideoJobRepositoryImpl) TransitionStatus(ctx context.Context, jobUUID string, from, to vo.JobStatus) (bool, error) {
	return r.jobDao.UpdateStatusIf(ctx, jobUUID, from.String(), to.String())
}

func (r *giftVideoJobRepositoryImpl) CompleteJob(ctx context.Context, jobUUID, outputPath string, expiresAt time.Time) (bool, error) {
	return r.jobDao.CompleteIf(ctx, jobUUID,
		vo.JobStatusProcessing.String(), vo.JobStatusPendingReview.String(),
		outputPath, expiresAt)
}

func (r *giftVideoJobRepositoryImpl) FailJob(ctx context.Context, jobUUID, message string) (bool, error) {
	return r.jobDao.FailIf(ctx, jobUUID, vo.JobStatusProcessing.String(), message)
}

func (r *giftVideoJobRepositoryImpl) UpdateAttempts(ctx context.Context, jobUUID string, attempts int) error {
	return r.jobDao.UpdateAttempts(ctx, jobUUID, attempts)
}

func (r *giftVideoJobRepositoryImpl) RecordView(ctx context.Context, jobUUID string) error {
	return r.jobDao.IncrementViewCount(ctx, jobUUID, time.Now())
}

func (r *giftVideoJobRepositoryImpl) UpdateOutputURL(ctx context.Context, jobUUID, url string) error {
	return r.jobDao.UpdateVideoURL(ctx, jobUUID, url)
}

func (r *giftVideoJobRepositoryImpl) QueryExpiredJobs(ctx context.Context, now time.Time, limit int) ([]*entity.GiftVideoJobEntity, error) {
	pos, err := r.jobDao.QueryExpired(ctx, now, limit)
	if err != nil {
		return nil, err
	}
	return r.convertor.ToEntities(pos), nil
}

func (r *giftVideoJobRepositoryImpl) ScrubJob(ctx context.Context, jobUUID string) (bool, error) {
	return r.jobDao.ScrubIf(ctx, jobUUID)
}

func (r *giftVideoJobRepositoryImpl) QueryStuckProcessing(ctx context.Context, olderThan time.Time, limit int) ([]*entity.GiftVideoJobEntity, error) {
	pos, err := r.jobDao.QueryStuck(ctx, vo.JobStatusProcessing.String(), olderThan, limit)
	if err != nil {
		return nil, err
	}
	return r.convertor.ToEntities(pos), nil
}
