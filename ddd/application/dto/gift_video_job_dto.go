package dto

import (
	"time"

	"giftvideo-service/ddd/domain/entity"
	"giftvideo-service/ddd/domain/service"
	"giftvideo-service/ddd/domain/vo"
)

// GiftVideoJobDTO 合成任务数据传输对象
type GiftVideoJobDTO struct {
	JobUUID        string      `json:"job_uuid"`
	GiftUUID       string      `json:"gift_uuid"`
	ChildUUID      string      `json:"child_uuid"`
	VideoPath      string      `json:"video_path"`
	OutputPath     string      `json:"output_path,omitempty"`
	VideoExpiresAt *time.Time  `json:"video_expires_at,omitempty"`
	Status         string      `json:"status"`
	TrackingToken  string      `json:"tracking_token"`
	ViewCount      int         `json:"view_count"`
	LastViewedAt   *time.Time  `json:"last_viewed_at,omitempty"`
	Attempts       int         `json:"attempts"`
	Message        string      `json:"message,omitempty"`
	EditSpec       vo.EditSpec `json:"edit_spec"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// NewGiftVideoJobDTO 从实体构建DTO
func NewGiftVideoJobDTO(e *entity.GiftVideoJobEntity) *GiftVideoJobDTO {
	if e == nil {
		return nil
	}
	return &GiftVideoJobDTO{
		JobUUID:        e.JobUUID(),
		GiftUUID:       e.GiftUUID(),
		ChildUUID:      e.ChildUUID(),
		VideoPath:      e.SourcePath(),
		OutputPath:     e.OutputPath(),
		VideoExpiresAt: e.ExpiresAt(),
		Status:         e.Status().String(),
		TrackingToken:  e.TrackingToken(),
		ViewCount:      e.ViewCount(),
		LastViewedAt:   e.LastViewedAt(),
		Attempts:       e.Attempts(),
		Message:        e.ErrorMessage(),
		EditSpec:       e.EditSpec(),
		CreatedAt:      e.CreatedAt(),
		UpdatedAt:      e.UpdatedAt(),
	}
}

// GiftVideoJobListDTO 任务列表
type GiftVideoJobListDTO struct {
	Jobs  []*GiftVideoJobDTO `json:"jobs"`
	Total int                `json:"total"`
}

// DeliveryResultDTO 投递结果
type DeliveryResultDTO struct {
	JobUUID    string               `json:"job_uuid"`
	Channel    string               `json:"channel"`
	Outcome    string               `json:"outcome"`
	Recipients []vo.RecipientResult `json:"recipients"`
}

// SweepReportDTO 清理结果
type SweepReportDTO struct {
	Scanned   int `json:"scanned"`
	Scrubbed  int `json:"scrubbed"`
	Failed    int `json:"failed"`
	Recovered int `json:"recovered"`
}

// NewSweepReportDTO 从领域报告构建DTO
func NewSweepReportDTO(r *service.SweepReport, recovered int) *SweepReportDTO {
	if r == nil {
		return &SweepReportDTO{Recovered: recovered}
	}
	return &SweepReportDTO{
		Scanned:   r.Scanned,
		Scrubbed:  r.Scrubbed,
		Failed:    r.Failed,
		Recovered: recovered,
	}
}
