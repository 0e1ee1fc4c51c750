package po

import "time"

// GiftVideoJob 礼物视频合成任务持久化对象。
// 记录永不物理删除，清理阶段只清空媒体引用字段。
type GiftVideoJob struct {
	BaseModel
	JobUUID        string     `gorm:"column:job_uuid;type:varchar(36);uniqueIndex" json:"job_uuid"`
	GiftUUID       string     `gorm:"column:gift_uuid;type:varchar(36);index" json:"gift_uuid"`
	ChildUUID      string     `gorm:"column:child_uuid;type:varchar(36);index" json:"child_uuid"`
	VideoPath      string     `gorm:"column:video_path;type:varchar(512)" json:"video_path"`
	OutputPath     string     `gorm:"column:output_path;type:varchar(512)" json:"output_path"`
	VideoURL       string     `gorm:"column:video_url;type:varchar(1024)" json:"video_url"`
	VideoExpiresAt *time.Time `gorm:"column:video_expires_at;type:timestamp;index" json:"video_expires_at,omitempty"`
	Status         string     `gorm:"column:status;type:varchar(20);index" json:"status"`
	TrackingToken  string     `gorm:"column:tracking_token;type:varchar(36);uniqueIndex" json:"tracking_token"`
	ViewCount      int        `gorm:"column:view_count;type:int;default:0" json:"view_count"`
	LastViewedAt   *time.Time `gorm:"column:last_viewed_at;type:timestamp" json:"last_viewed_at,omitempty"`
	Attempts       int        `gorm:"column:attempts;type:int;default:0" json:"attempts"`
	RetentionHours int        `gorm:"column:retention_hours;type:int;default:24" json:"retention_hours"`
	Message        string     `gorm:"column:message;type:varchar(512)" json:"message"`
	EditSpec       string     `gorm:"column:edit_spec;type:json" json:"edit_spec"`
}

// TableName 指定表名
func (GiftVideoJob) TableName() string {
	return "gift_video_jobs"
}
