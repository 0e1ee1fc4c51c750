package repo

import (
	"context"
	"time"

	"giftvideo-service/ddd/domain/entity"
	"giftvideo-service/ddd/domain/vo"
)

// GiftVideoJobRepository 合成任务仓储。
// 所有状态转换都必须是条件更新：WHERE带上前置状态，影响行数为0即放弃，
// 组件之间只通过持久化状态协调，不依赖进程内共享内存。
type GiftVideoJobRepository interface {
	// CreateJob 创建任务记录
	CreateJob(ctx context.Context, job *entity.GiftVideoJobEntity) error

	// GetJob 按任务UUID查询，未找到返回nil
	GetJob(ctx context.Context, jobUUID string) (*entity.GiftVideoJobEntity, error)

	// GetJobByToken 按追踪令牌查询，未找到返回nil
	GetJobByToken(ctx context.Context, trackingToken string) (*entity.GiftVideoJobEntity, error)

	// QueryJobsByStatus 按状态查询任务列表
	QueryJobsByStatus(ctx context.Context, status vo.JobStatus, limit int) ([]*entity.GiftVideoJobEntity, error)

	// TransitionStatus 条件状态转换：仅当记录仍处于from时改为to。
	// 返回是否真正发生了转换（单飞语义的根基）。
	TransitionStatus(ctx context.Context, jobUUID string, from, to vo.JobStatus) (bool, error)

	// CompleteJob 原子写入合成结果：output_path、video_expires_at、status=pending_review
	// 三者一次更新，且仅当记录仍处于processing（旧尝试的迟到结果被放弃）。
	CompleteJob(ctx context.Context, jobUUID, outputPath string, expiresAt time.Time) (bool, error)

	// FailJob 记录失败原因并转为failed，仅当记录仍处于processing。
	FailJob(ctx context.Context, jobUUID, message string) (bool, error)

	// UpdateAttempts 持久化已消耗的尝试次数
	UpdateAttempts(ctx context.Context, jobUUID string, attempts int) error

	// RecordView 追加一次观看：view_count+1，last_viewed_at=now
	RecordView(ctx context.Context, jobUUID string) error

	// UpdateOutputURL 记录最近一次签发的访问URL（非权威字段）
	UpdateOutputURL(ctx context.Context, jobUUID, url string) error

	// QueryExpiredJobs 查询清理候选：有输出且已过期
	QueryExpiredJobs(ctx context.Context, now time.Time, limit int) ([]*entity.GiftVideoJobEntity, error)

	// ScrubJob 清除媒体引用并标记expired，仅当output_path仍然在位
	// （重复清理自然变成无操作）。
	ScrubJob(ctx context.Context, jobUUID string) (bool, error)

	// QueryStuckProcessing 查询长时间停留在processing的任务（崩溃回收）
	QueryStuckProcessing(ctx context.Context, olderThan time.Time, limit int) ([]*entity.GiftVideoJobEntity, error)
}
