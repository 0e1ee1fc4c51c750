package vo

// JobStatus 礼物视频合成任务状态
type JobStatus string

const (
	// JobStatusPending 待处理
	JobStatusPending JobStatus = "pending"
	// JobStatusProcessing 合成中
	JobStatusProcessing JobStatus = "processing"
	// JobStatusPendingReview 合成完成，待审核/待投递
	JobStatusPendingReview JobStatus = "pending_review"
	// JobStatusFailed 重试耗尽后的终态（运维可重置为pending）
	JobStatusFailed JobStatus = "failed"
	// JobStatusExpired 媒体已过期删除
	JobStatusExpired JobStatus = "expired"
)

// IsValid 检查状态是否有效
func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusPending, JobStatusProcessing, JobStatusPendingReview,
		JobStatusFailed, JobStatusExpired:
		return true
	default:
		return false
	}
}

// String 返回状态字符串
func (s JobStatus) String() string {
	return string(s)
}

// IsTerminal 检查是否为终态（expired不可再转换）
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusExpired
}

// CanTransitionTo 检查是否可以转换到目标状态
func (s JobStatus) CanTransitionTo(target JobStatus) bool {
	switch s {
	case JobStatusPending:
		return target == JobStatusProcessing
	case JobStatusProcessing:
		// 回到pending对应卡死任务的运维回收
		return target == JobStatusPendingReview || target == JobStatusFailed || target == JobStatusPending
	case JobStatusPendingReview:
		return target == JobStatusExpired
	case JobStatusFailed:
		// 运维重新提交
		return target == JobStatusPending
	case JobStatusExpired:
		return false
	default:
		return false
	}
}

// NewJobStatusFromString 解析状态字符串
func NewJobStatusFromString(s string) (JobStatus, bool) {
	st := JobStatus(s)
	return st, st.IsValid()
}
