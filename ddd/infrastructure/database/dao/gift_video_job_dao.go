package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"giftvideo-service/ddd/infrastructure/database/po"
	"giftvideo-service/internal/resource"
)

type GiftVideoJobDAO struct {
	db *gorm.DB
}

func NewGiftVideoJobDAO() *GiftVideoJobDAO {
	return &GiftVideoJobDAO{db: resource.DefaultMysqlResource().MainDB()}
}

// NewGiftVideoJobDAOWithDB 指定连接创建DAO（测试用）
func NewGiftVideoJobDAOWithDB(db *gorm.DB) *GiftVideoJobDAO {
	return &GiftVideoJobDAO{db: db}
}

func (d *GiftVideoJobDAO) Create(ctx context.Context, job *po.GiftVideoJob) error {
	return d.db.WithContext(ctx).Model(&po.GiftVideoJob{}).Create(job).Error
}

func (d *GiftVideoJobDAO) FindByJobUUID(ctx context.Context, jobUUID string) (*po.GiftVideoJob, error) {
	var job po.GiftVideoJob
	if err := d.db.WithContext(ctx).Where("job_uuid = ?", jobUUID).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

func (d *GiftVideoJobDAO) FindByTrackingToken(ctx context.Context, token string) (*po.GiftVideoJob, error) {
	var job po.GiftVideoJob
	if err := d.db.WithContext(ctx).Where("tracking_token = ?", token).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

func (d *GiftVideoJobDAO) QueryByStatus(ctx context.Context, status string, limit int) ([]*po.GiftVideoJob, error) {
	var jobs []*po.GiftVideoJob
	q := d.db.WithContext(ctx).Where("status = ?", status).Order("updated_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// UpdateStatusIf 条件状态更新：仅当记录仍处于fromStatus时改写。
// 返回是否真正更新了记录，调用方据此判定是否拿到了这次转换。
func (d *GiftVideoJobDAO) UpdateStatusIf(ctx context.Context, jobUUID, fromStatus, toStatus string) (bool, error) {
	res := d.db.WithContext(ctx).Model(&po.GiftVideoJob{}).
		Where("job_uuid = ? AND status = ?", jobUUID, fromStatus).
		Update("status", toStatus)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CompleteIf 原子写入合成结果：仅当仍处于fromStatus时，一次更新
// output_path、video_expires_at与status，迟到的旧尝试写入不会生效。
func (d *GiftVideoJobDAO) CompleteIf(ctx context.Context, jobUUID, fromStatus, toStatus, outputPath string, expiresAt time.Time) (bool, error) {
	res := d.db.WithContext(ctx).Model(&po.GiftVideoJob{}).
		Where("job_uuid = ? AND status = ?", jobUUID, fromStatus).
		Updates(map[string]interface{}{
			"output_path":      outputPath,
			"video_expires_at": expiresAt,
			"status":           toStatus,
			"message":          "",
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// FailIf 记录失败原因并转为failed，仅当仍处于fromStatus时生效
func (d *GiftVideoJobDAO) FailIf(ctx context.Context, jobUUID, fromStatus, message string) (bool, error) {
	res := d.db.WithContext(ctx).Model(&po.GiftVideoJob{}).
		Where("job_uuid = ? AND status = ?", jobUUID, fromStatus).
		Updates(map[string]interface{}{
			"status":  "failed",
			"message": message,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (d *GiftVideoJobDAO) UpdateAttempts(ctx context.Context, jobUUID string, attempts int) error {
	return d.db.WithContext(ctx).Model(&po.GiftVideoJob{}).
		Where("job_uuid = ?", jobUUID).
		Update("attempts", attempts).Error
}

// IncrementViewCount 追加一次观看记录
func (d *GiftVideoJobDAO) IncrementViewCount(ctx context.Context, jobUUID string, viewedAt time.Time) error {
	return d.db.WithContext(ctx).Model(&po.GiftVideoJob{}).
		Where("job_uuid = ?", jobUUID).
		Updates(map[string]interface{}{
			"view_count":     gorm.Expr("view_count + 1"),
			"last_viewed_at": viewedAt,
		}).Error
}

func (d *GiftVideoJobDAO) UpdateVideoURL(ctx context.Context, jobUUID, url string) error {
	return d.db.WithContext(ctx).Model(&po.GiftVideoJob{}).
		Where("job_uuid = ?", jobUUID).
		Update("video_url", url).Error
}

// QueryExpired 查询清理候选：仍有输出且过期时间已过
func (d *GiftVideoJobDAO) QueryExpired(ctx context.Context, now time.Time, limit int) ([]*po.GiftVideoJob, error) {
	var jobs []*po.GiftVideoJob
	q := d.db.WithContext(ctx).
		Where("output_path <> '' AND video_expires_at IS NOT NULL AND video_expires_at <= ?", now).
		Order("video_expires_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// ScrubIf 清除媒体引用并标记expired，仅当output_path仍然在位。
// 并发或重复清理时第二次更新影响0行，自然退化为无操作。
func (d *GiftVideoJobDAO) ScrubIf(ctx context.Context, jobUUID string) (bool, error) {
	res := d.db.WithContext(ctx).Model(&po.GiftVideoJob{}).
		Where("job_uuid = ? AND output_path <> ''", jobUUID).
		Updates(map[string]interface{}{
			"output_path":      "",
			"video_url":        "",
			"video_expires_at": nil,
			"status":           "expired",
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// QueryStuck 查询长时间停留在指定状态的任务（崩溃回收）
func (d *GiftVideoJobDAO) QueryStuck(ctx context.Context, status string, olderThan time.Time, limit int) ([]*po.GiftVideoJob, error) {
	var jobs []*po.GiftVideoJob
	q := d.db.WithContext(ctx).
		Where("status = ? AND updated_at <= ?", status, olderThan).
		Order("updated_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}
