package gateway

import (
	"context"

	"giftvideo-service/ddd/domain/vo"
)

// RenderRequest 一次合成渲染的输入
type RenderRequest struct {
	JobUUID    string
	InputPath  string // 本地源视频
	OutputPath string // 本地输出
	Spec       vo.EditSpec
	AudioPath  string // 本地背景音乐，可为空
}

// RenderEngine 合成渲染引擎。实现必须按固定顺序应用编辑：
// 滤镜 → 文字 → 贴纸 → 边框 → 混音，保证同样的输入产出视觉一致的结果。
type RenderEngine interface {
	Render(ctx context.Context, req RenderRequest) error
}

// TransientRenderError 标记可重试的渲染错误（网络、存储、编码超时）
type TransientRenderError struct {
	Cause error
}

func (e *TransientRenderError) Error() string {
	return "transient render failure: " + e.Cause.Error()
}

func (e *TransientRenderError) Unwrap() error {
	return e.Cause
}

// NewTransientRenderError 包装可重试错误
func NewTransientRenderError(cause error) error {
	if cause == nil {
		return nil
	}
	return &TransientRenderError{Cause: cause}
}
