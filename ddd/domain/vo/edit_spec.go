package vo

import "encoding/json"

// 编辑项取值约束
const (
	MinPlacement = 0.0
	MaxPlacement = 100.0
	MinScale     = 0.5
	MaxScale     = 2.0
)

// Sticker 贴纸编辑项，坐标为0-100的归一化位置
type Sticker struct {
	ID    string  `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`
}

// EditSpec 声明式编辑描述。必须保持为可序列化的惰性数据，
// 合成在独立的可重试Worker中按固定顺序执行：滤镜 → 文字 → 贴纸 → 边框 → 混音。
type EditSpec struct {
	Stickers           []Sticker `json:"stickers,omitempty"`
	CustomText         string    `json:"custom_text,omitempty"`
	CustomTextPosition string    `json:"custom_text_position,omitempty"` // top | center | bottom
	CustomTextColor    string    `json:"custom_text_color,omitempty"`
	FilterID           string    `json:"filter_id,omitempty"`
	FramePNGPath       string    `json:"frame_png_path,omitempty"`
	MusicURL           string    `json:"music_url,omitempty"`
}

// Normalize 返回一份约束后的拷贝：越界的位置与缩放做收敛，不做拒绝。
func (e EditSpec) Normalize() EditSpec {
	out := e
	if len(e.Stickers) > 0 {
		out.Stickers = make([]Sticker, len(e.Stickers))
		for i, st := range e.Stickers {
			st.X = clamp(st.X, MinPlacement, MaxPlacement)
			st.Y = clamp(st.Y, MinPlacement, MaxPlacement)
			if st.Scale == 0 {
				st.Scale = 1.0
			}
			st.Scale = clamp(st.Scale, MinScale, MaxScale)
			out.Stickers[i] = st
		}
	}
	if out.CustomTextPosition == "" {
		out.CustomTextPosition = "bottom"
	}
	if out.CustomTextColor == "" {
		out.CustomTextColor = "white"
	}
	return out
}

// IsEmpty 检查是否没有任何编辑项
func (e EditSpec) IsEmpty() bool {
	return len(e.Stickers) == 0 && e.CustomText == "" && e.FilterID == "" &&
		e.FramePNGPath == "" && e.MusicURL == ""
}

// MarshalString 序列化为JSON字符串，用于持久化
func (e EditSpec) MarshalString() (string, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ParseEditSpec 从持久化JSON恢复编辑描述，空串视为空编辑
func ParseEditSpec(raw string) (EditSpec, error) {
	var spec EditSpec
	if raw == "" {
		return spec, nil
	}
	err := json.Unmarshal([]byte(raw), &spec)
	return spec, err
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
