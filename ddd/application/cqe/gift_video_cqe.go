package cqe

import (
	"giftvideo-service/ddd/domain/vo"
	"giftvideo-service/pkg/errno"
)

// SubmitGiftVideoReq 提交合成任务请求
type SubmitGiftVideoReq struct {
	GiftUUID     string `json:"gift_uuid" binding:"required"`  // 礼物UUID
	ChildUUID    string `json:"child_uuid" binding:"required"` // 孩子UUID
	VideoPath    string `json:"video_path" binding:"required"` // 原始录制视频的存储路径
	ExpiresHours int    `json:"expires_hours"`                 // 输出保留时长（小时），默认24

	// 编辑项，全部可选
	Stickers           []StickerReq `json:"stickers"`
	CustomText         string       `json:"custom_text"`
	CustomTextPosition string       `json:"custom_text_position"` // top | center | bottom
	CustomTextColor    string       `json:"custom_text_color"`
	FilterID           string       `json:"filter_id"`
	FramePNGPath       string       `json:"frame_png_path"`
	MusicURL           string       `json:"music_url"`
}

// StickerReq 贴纸编辑项
type StickerReq struct {
	ID    string  `json:"id" binding:"required"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`
}

func (req *SubmitGiftVideoReq) Validate() error {
	if req.GiftUUID == "" {
		return errno.ErrGiftUUIDRequired
	}
	if req.ChildUUID == "" {
		return errno.ErrChildUUIDRequired
	}
	if req.VideoPath == "" {
		return errno.ErrSourcePathRequired
	}
	return nil
}

// ToEditSpec 组装编辑描述，越界值由Normalize收敛而不是拒绝
func (req *SubmitGiftVideoReq) ToEditSpec() vo.EditSpec {
	spec := vo.EditSpec{
		CustomText:         req.CustomText,
		CustomTextPosition: req.CustomTextPosition,
		CustomTextColor:    req.CustomTextColor,
		FilterID:           req.FilterID,
		FramePNGPath:       req.FramePNGPath,
		MusicURL:           req.MusicURL,
	}
	for _, st := range req.Stickers {
		spec.Stickers = append(spec.Stickers, vo.Sticker{
			ID:    st.ID,
			X:     st.X,
			Y:     st.Y,
			Scale: st.Scale,
		})
	}
	return spec.Normalize()
}

// NotifyReq 投递通知请求
type NotifyReq struct {
	JobUUID       string `json:"job_uuid"`                      // 任务UUID，通常来自路径参数
	Channel       string `json:"channel" binding:"required"`    // email | sms
	Recipients    string `json:"recipients" binding:"required"` // 逗号分隔的收件人列表
	RecipientName string `json:"recipient_name"`                // [name]占位符
	ChildName     string `json:"child_name"`                    // [child_name]占位符
	GiftName      string `json:"gift_name"`                     // [gift_name]占位符
	Template      string `json:"template"`                      // 自定义消息模板，可选
}

func (req *NotifyReq) Validate() error {
	if req.JobUUID == "" {
		return errno.ErrJobUUIDRequired
	}
	if !vo.DeliveryChannel(req.Channel).IsValid() {
		return errno.ErrUnsupportedChannel
	}
	if len(vo.SplitRecipients(req.Recipients)) == 0 {
		return errno.ErrRecipientsRequired
	}
	return nil
}
