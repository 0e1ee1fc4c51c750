package entity

import (
	"time"

	"github.com/google/uuid"

	"giftvideo-service/ddd/domain/vo"
)

// GiftVideoJobEntity 礼物视频合成任务实体。
// 一条记录跟踪从提交、合成、投递到过期清除的完整生命周期；
// 记录本身永不删除，仅清除媒体引用，保留审计痕迹。
type GiftVideoJobEntity struct {
	jobUUID        string       // 任务UUID
	giftUUID       string       // 礼物UUID
	childUUID      string       // 孩子UUID
	sourcePath     string       // 原始录制视频路径（永不修改、永不删除）
	outputPath     string       // 合成输出路径
	outputURL      string       // 最近一次签发的访问URL（非权威，仅记录）
	expiresAt      *time.Time   // 输出过期时间，与outputPath同生共死
	status         vo.JobStatus // 任务状态
	trackingToken  string       // 追踪令牌，创建时分配且终身不变
	viewCount      int          // 观看次数，仅由重定向端点更新
	lastViewedAt   *time.Time   // 最近观看时间
	attempts       int          // 已消耗的合成尝试次数
	retentionHours int          // 合成输出的保留时长（小时），提交时确定
	errorMessage   string       // 最近一次失败原因
	editSpec       vo.EditSpec  // 声明式编辑描述，进入processing后不可变
	createdAt      time.Time
	updatedAt      time.Time
}

// 保留时长约束（小时）
const (
	MinRetentionHours     = 1
	MaxRetentionHours     = 168
	DefaultRetentionHours = 24
)

// NewGiftVideoJobEntity 创建新的合成任务实体（status=pending）。
// retentionHours为0时取默认值，越界时收敛到边界。
func NewGiftVideoJobEntity(giftUUID, childUUID, sourcePath string, spec vo.EditSpec, retentionHours int) *GiftVideoJobEntity {
	if retentionHours == 0 {
		retentionHours = DefaultRetentionHours
	}
	if retentionHours < MinRetentionHours {
		retentionHours = MinRetentionHours
	}
	if retentionHours > MaxRetentionHours {
		retentionHours = MaxRetentionHours
	}
	now := time.Now()
	return &GiftVideoJobEntity{
		jobUUID:        uuid.New().String(),
		giftUUID:       giftUUID,
		childUUID:      childUUID,
		sourcePath:     sourcePath,
		status:         vo.JobStatusPending,
		trackingToken:  uuid.New().String(),
		retentionHours: retentionHours,
		editSpec:       spec.Normalize(),
		createdAt:      now,
		updatedAt:      now,
	}
}

// RestoreGiftVideoJobEntity 从持久化数据恢复实体（供仓储层使用）
func RestoreGiftVideoJobEntity(
	jobUUID, giftUUID, childUUID, sourcePath, outputPath, outputURL string,
	expiresAt *time.Time,
	status vo.JobStatus,
	trackingToken string,
	viewCount int,
	lastViewedAt *time.Time,
	attempts, retentionHours int,
	errorMessage string,
	spec vo.EditSpec,
	createdAt, updatedAt time.Time,
) *GiftVideoJobEntity {
	return &GiftVideoJobEntity{
		jobUUID:        jobUUID,
		giftUUID:       giftUUID,
		childUUID:      childUUID,
		sourcePath:     sourcePath,
		outputPath:     outputPath,
		outputURL:      outputURL,
		expiresAt:      expiresAt,
		status:         status,
		trackingToken:  trackingToken,
		viewCount:      viewCount,
		lastViewedAt:   lastViewedAt,
		attempts:       attempts,
		retentionHours: retentionHours,
		errorMessage:   errorMessage,
		editSpec:       spec,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

// Getters
func (j *GiftVideoJobEntity) JobUUID() string          { return j.jobUUID }
func (j *GiftVideoJobEntity) GiftUUID() string         { return j.giftUUID }
func (j *GiftVideoJobEntity) ChildUUID() string        { return j.childUUID }
func (j *GiftVideoJobEntity) SourcePath() string       { return j.sourcePath }
func (j *GiftVideoJobEntity) OutputPath() string       { return j.outputPath }
func (j *GiftVideoJobEntity) OutputURL() string        { return j.outputURL }
func (j *GiftVideoJobEntity) ExpiresAt() *time.Time    { return j.expiresAt }
func (j *GiftVideoJobEntity) Status() vo.JobStatus     { return j.status }
func (j *GiftVideoJobEntity) TrackingToken() string    { return j.trackingToken }
func (j *GiftVideoJobEntity) ViewCount() int           { return j.viewCount }
func (j *GiftVideoJobEntity) LastViewedAt() *time.Time { return j.lastViewedAt }
func (j *GiftVideoJobEntity) Attempts() int            { return j.attempts }
func (j *GiftVideoJobEntity) RetentionHours() int      { return j.retentionHours }
func (j *GiftVideoJobEntity) ErrorMessage() string     { return j.errorMessage }
func (j *GiftVideoJobEntity) EditSpec() vo.EditSpec    { return j.editSpec }
func (j *GiftVideoJobEntity) CreatedAt() time.Time     { return j.createdAt }
func (j *GiftVideoJobEntity) UpdatedAt() time.Time     { return j.updatedAt }

// SetStatus 设置状态（仓储/服务层在守护更新成功后同步内存态）
func (j *GiftVideoJobEntity) SetStatus(s vo.JobStatus) {
	j.status = s
	j.updatedAt = time.Now()
}

// SetErrorMessage 记录失败原因
func (j *GiftVideoJobEntity) SetErrorMessage(msg string) {
	j.errorMessage = msg
	j.updatedAt = time.Now()
}

// IncrementAttempts 消耗一次合成尝试
func (j *GiftVideoJobEntity) IncrementAttempts() {
	j.attempts++
	j.updatedAt = time.Now()
}

// Retention 返回保留时长
func (j *GiftVideoJobEntity) Retention() time.Duration {
	return time.Duration(j.retentionHours) * time.Hour
}

// AttachOutput 记录合成输出与过期时间（两者必须同时出现）
func (j *GiftVideoJobEntity) AttachOutput(outputPath string, expiresAt time.Time) {
	j.outputPath = outputPath
	j.expiresAt = &expiresAt
	j.status = vo.JobStatusPendingReview
	j.updatedAt = time.Now()
}

// Scrub 清除所有媒体引用并标记过期
func (j *GiftVideoJobEntity) Scrub() {
	j.outputPath = ""
	j.outputURL = ""
	j.expiresAt = nil
	j.status = vo.JobStatusExpired
	j.updatedAt = time.Now()
}

// HasLiveOutput 检查是否存在未过期的合成输出
func (j *GiftVideoJobEntity) HasLiveOutput(now time.Time) bool {
	return j.outputPath != "" && j.expiresAt != nil && j.expiresAt.After(now)
}

// IsNotifiable 检查任务是否可以进入投递流程
func (j *GiftVideoJobEntity) IsNotifiable(now time.Time) bool {
	return j.status == vo.JobStatusPendingReview && j.HasLiveOutput(now)
}
