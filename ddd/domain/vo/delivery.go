package vo

import "strings"

// DeliveryChannel 投递渠道
type DeliveryChannel string

const (
	ChannelEmail DeliveryChannel = "email"
	ChannelSMS   DeliveryChannel = "sms"
)

// IsValid 检查渠道是否受支持
func (c DeliveryChannel) IsValid() bool {
	return c == ChannelEmail || c == ChannelSMS
}

// SendState 单个收件人的投递结果状态。
// 平台无法上报状态的渠道（SMS）把unknown视为成功，cancelled视为失败。
type SendState string

const (
	SendStateSent      SendState = "sent"
	SendStateCancelled SendState = "cancelled"
	SendStateUnknown   SendState = "unknown"
	SendStateFailed    SendState = "failed"
)

// Succeeded 判定该投递结果是否计为成功
func (s SendState) Succeeded() bool {
	return s == SendStateSent || s == SendStateUnknown
}

// RecipientResult 单个收件人投递结果
type RecipientResult struct {
	Recipient string `json:"recipient"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

// DeliveryOutcome 整体投递结果：全部成功 / 部分成功 / 全部失败
type DeliveryOutcome string

const (
	DeliveryAllSent   DeliveryOutcome = "all_sent"
	DeliveryPartial   DeliveryOutcome = "partial"
	DeliveryAllFailed DeliveryOutcome = "all_failed"
)

// SummarizeDelivery 汇总每个收件人的结果
func SummarizeDelivery(results []RecipientResult) DeliveryOutcome {
	sent := 0
	for _, r := range results {
		if r.Success {
			sent++
		}
	}
	switch {
	case len(results) == 0 || sent == 0:
		return DeliveryAllFailed
	case sent == len(results):
		return DeliveryAllSent
	default:
		return DeliveryPartial
	}
}

// SplitRecipients 拆分逗号分隔的收件人列表，去除空白项
func SplitRecipients(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// RenderTemplate 对消息模板做占位符替换，未识别的占位符原样保留
func RenderTemplate(template string, vars map[string]string) string {
	out := template
	for k, v := range vars {
		out = strings.ReplaceAll(out, "["+k+"]", v)
	}
	return out
}

// DefaultMessageTemplate 未提供自定义模板时的默认消息
const DefaultMessageTemplate = "Hi [name], [child_name] recorded a special video message to thank you for [gift_name]! Watch it here: [video_link]"
