package convertor

import (
	"giftvideo-service/ddd/domain/entity"
	"giftvideo-service/ddd/domain/vo"
	"giftvideo-service/ddd/infrastructure/database/po"
)

// GiftVideoJobConvertor 合成任务实体与持久化对象的转换器
type GiftVideoJobConvertor struct{}

func NewGiftVideoJobConvertor() *GiftVideoJobConvertor {
	return &GiftVideoJobConvertor{}
}

// ToEntity 将PO转换为Entity
func (c *GiftVideoJobConvertor) ToEntity(p *po.GiftVideoJob) *entity.GiftVideoJobEntity {
	if p == nil {
		return nil
	}

	status, ok := vo.NewJobStatusFromString(p.Status)
	if !ok {
		status = vo.JobStatusPending
	}

	spec, err := vo.ParseEditSpec(p.EditSpec)
	if err != nil {
		spec = vo.EditSpec{}
	}

	return entity.RestoreGiftVideoJobEntity(
		p.JobUUID,
		p.GiftUUID,
		p.ChildUUID,
		p.VideoPath,
		p.OutputPath,
		p.VideoURL,
		p.VideoExpiresAt,
		status,
		p.TrackingToken,
		p.ViewCount,
		p.LastViewedAt,
		p.Attempts,
		p.RetentionHours,
		p.Message,
		spec,
		p.CreatedAt,
		p.UpdatedAt,
	)
}

// ToPO 将Entity转换为PO
func (c *GiftVideoJobConvertor) ToPO(e *entity.GiftVideoJobEntity) *po.GiftVideoJob {
	if e == nil {
		return nil
	}

	specJSON, err := e.EditSpec().MarshalString()
	if err != nil {
		specJSON = "{}"
	}

	return &po.GiftVideoJob{
		BaseModel: po.BaseModel{
			CreatedAt: e.CreatedAt(),
			UpdatedAt: e.UpdatedAt(),
		},
		JobUUID:        e.JobUUID(),
		GiftUUID:       e.GiftUUID(),
		ChildUUID:      e.ChildUUID(),
		VideoPath:      e.SourcePath(),
		OutputPath:     e.OutputPath(),
		VideoURL:       e.OutputURL(),
		VideoExpiresAt: e.ExpiresAt(),
		Status:         e.Status().String(),
		TrackingToken:  e.TrackingToken(),
		ViewCount:      e.ViewCount(),
		LastViewedAt:   e.LastViewedAt(),
		Attempts:       e.Attempts(),
		RetentionHours: e.RetentionHours(),
		Message:        e.ErrorMessage(),
		EditSpec:       specJSON,
	}
}

// ToEntities 批量转换
func (c *GiftVideoJobConvertor) ToEntities(pos []*po.GiftVideoJob) []*entity.GiftVideoJobEntity {
	out := make([]*entity.GiftVideoJobEntity, 0, len(pos))
	for _, p := range pos {
		if e := c.ToEntity(p); e != nil {
			out = append(out, e)
		}
	}
	return out
}
