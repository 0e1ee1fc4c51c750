package notify

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"giftvideo-service/ddd/domain/gateway"
	"giftvideo-service/ddd/domain/vo"
	"giftvideo-service/pkg/config"
	"giftvideo-service/pkg/logger"
)

// EmailSender SMTP邮件投递实现
type EmailSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewEmailSender 创建SMTP邮件投递器
func NewEmailSender(cfg config.SMTPConfig) gateway.MessageSender {
	return &EmailSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// Send 发送一封邮件。SMTP有明确的成功/失败回执，状态只会是sent或failed。
func (s *EmailSender) Send(ctx context.Context, msg gateway.OutboundMessage) (vo.SendState, error) {
	if err := ctx.Err(); err != nil {
		return vo.SendStateCancelled, err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.Recipient)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	if err := s.dialer.DialAndSend(m); err != nil {
		logger.Error("Email send failed", map[string]interface{}{
			"recipient": msg.Recipient,
			"error":     err.Error(),
		})
		return vo.SendStateFailed, fmt.Errorf("smtp send: %w", err)
	}

	return vo.SendStateSent, nil
}
