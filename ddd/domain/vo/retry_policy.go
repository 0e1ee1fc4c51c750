package vo

import (
	"math/rand"
	"time"
)

// RetryPolicy 合成重试策略。参考配置：3次尝试，1s起步，倍率2，上限10s，±50%抖动。
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Multiplier  float64
	Jitter      float64 // 0-1，延迟的随机浮动比例
}

// DefaultRetryPolicy 返回参考重试策略
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    10 * time.Second,
		Multiplier:  2,
		Jitter:      0.5,
	}
}

// Delay 计算第attempt次失败后的退避时长（attempt从1开始计数）
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	base := p.BaseDelay
	if base <= 0 {
		base = time.Second
	}
	mult := p.Multiplier
	if mult <= 1 {
		mult = 2
	}

	d := float64(base)
	for i := 1; i < attempt; i++ {
		d *= mult
	}
	if max := float64(p.MaxDelay); p.MaxDelay > 0 && d > max {
		d = max
	}
	if p.Jitter > 0 {
		// 在 [1-jitter, 1+jitter] 区间内浮动
		d *= 1 + p.Jitter*(2*rand.Float64()-1)
	}
	if d < 0 {
		d = 0
	}
	return time.Duration(d)
}

// Exhausted 检查尝试次数是否已达上限
func (p RetryPolicy) Exhausted(attempts int) bool {
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return attempts >= maxAttempts
}
