package gateway

import (
	"context"

	"giftvideo-service/ddd/domain/vo"
)

// OutboundMessage 一条待投递消息
type OutboundMessage struct {
	Recipient string
	Subject   string
	Body      string
}

// MessageSender 单渠道消息投递网关（邮件、短信各一实现）。
// 返回的SendState区分 sent / cancelled / unknown；
// unknown由上层按渠道语义判定成败。
type MessageSender interface {
	Send(ctx context.Context, msg OutboundMessage) (vo.SendState, error)
}
