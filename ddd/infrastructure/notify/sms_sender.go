package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"giftvideo-service/ddd/domain/gateway"
	"giftvideo-service/ddd/domain/vo"
	"giftvideo-service/pkg/config"
	"giftvideo-service/pkg/logger"
)

// SMSSender 短信网关投递实现。网关是HTTP回执语义：接受请求不代表
// 送达，平台上报的unknown计为成功，只有cancelled/明确失败才计失败。
type SMSSender struct {
	endpoint string
	apiKey   string
	sender   string
	client   *http.Client
}

// NewSMSSender 创建短信投递器
func NewSMSSender(cfg config.SMSConfig) gateway.MessageSender {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SMSSender{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		sender:   cfg.Sender,
		client:   &http.Client{Timeout: timeout},
	}
}

type smsRequest struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Message string `json:"message"`
}

type smsResponse struct {
	Status string `json:"status"`
}

func (s *SMSSender) Send(ctx context.Context, msg gateway.OutboundMessage) (vo.SendState, error) {
	payload, err := json.Marshal(smsRequest{
		To:      msg.Recipient,
		From:    s.sender,
		Message: msg.Body,
	})
	if err != nil {
		return vo.SendStateFailed, fmt.Errorf("marshal sms request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return vo.SendStateFailed, fmt.Errorf("build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		logger.Error("SMS gateway request failed", map[string]interface{}{
			"recipient": msg.Recipient,
			"error":     err.Error(),
		})
		return vo.SendStateFailed, fmt.Errorf("sms gateway: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return vo.SendStateFailed, fmt.Errorf("sms gateway status %d: %s", resp.StatusCode, string(body))
	}

	var parsed smsResponse
	if err := json.Unmarshal(body, &parsed); err != nil || parsed.Status == "" {
		// 网关没给出可解析的状态，按unknown处理
		return vo.SendStateUnknown, nil
	}

	switch parsed.Status {
	case "sent", "queued", "accepted":
		return vo.SendStateSent, nil
	case "cancelled", "rejected":
		return vo.SendStateCancelled, fmt.Errorf("sms gateway reported %s", parsed.Status)
	default:
		return vo.SendStateUnknown, nil
	}
}
