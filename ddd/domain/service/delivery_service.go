package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"giftvideo-service/ddd/domain/gateway"
	"giftvideo-service/ddd/domain/repo"
	"giftvideo-service/ddd/domain/vo"
	"giftvideo-service/pkg/errno"
	"giftvideo-service/pkg/logger"
)

// DeliveryCommand 一次投递请求
type DeliveryCommand struct {
	JobUUID       string
	Channel       vo.DeliveryChannel
	Recipients    string // 逗号分隔
	RecipientName string
	ChildName     string
	GiftName      string
	Template      string // 为空时使用默认模板
}

// DeliveryResult 投递汇总结果
type DeliveryResult struct {
	Outcome    vo.DeliveryOutcome
	Recipients []vo.RecipientResult
}

// DeliveryService 投递领域服务。消息里放的是追踪链接而不是直接的
// 签名URL：观看计数只能从重定向端点产生。
type DeliveryService interface {
	Deliver(ctx context.Context, cmd DeliveryCommand) (*DeliveryResult, error)
}

type deliveryServiceImpl struct {
	jobRepo     repo.GiftVideoJobRepository
	emailSender gateway.MessageSender
	smsSender   gateway.MessageSender
	baseURL     string
}

// NewDeliveryService 创建投递领域服务
func NewDeliveryService(
	jobRepo repo.GiftVideoJobRepository,
	emailSender, smsSender gateway.MessageSender,
	baseURL string,
) DeliveryService {
	return &deliveryServiceImpl{
		jobRepo:     jobRepo,
		emailSender: emailSender,
		smsSender:   smsSender,
		baseURL:     strings.TrimRight(baseURL, "/"),
	}
}

func (s *deliveryServiceImpl) Deliver(ctx context.Context, cmd DeliveryCommand) (*DeliveryResult, error) {
	if !cmd.Channel.IsValid() {
		return nil, errno.NewBizError(errno.ErrUnsupportedChannel, fmt.Errorf("channel %q", cmd.Channel))
	}

	recipients := vo.SplitRecipients(cmd.Recipients)
	if len(recipients) == 0 {
		return nil, errno.NewBizError(errno.ErrRecipientsRequired, nil)
	}

	job, err := s.jobRepo.GetJob(ctx, cmd.JobUUID)
	if err != nil {
		return nil, errno.NewBizError(errno.ErrDatabase, err)
	}
	if job == nil {
		return nil, errno.NewBizError(errno.ErrJobNotFound, nil)
	}
	if !job.IsNotifiable(time.Now()) {
		return nil, errno.NewBizError(errno.ErrJobNotReady,
			fmt.Errorf("status=%s", job.Status().String()))
	}

	template := cmd.Template
	if template == "" {
		template = vo.DefaultMessageTemplate
	}
	body := vo.RenderTemplate(template, map[string]string{
		"name":       cmd.RecipientName,
		"child_name": cmd.ChildName,
		"gift_name":  cmd.GiftName,
		"video_link": s.trackingLink(job.TrackingToken()),
	})

	sender := s.emailSender
	subject := ""
	if cmd.Channel == vo.ChannelSMS {
		sender = s.smsSender
	} else {
		subject = fmt.Sprintf("A video message from %s", cmd.ChildName)
	}
	if sender == nil {
		return nil, errno.NewBizError(errno.ErrUnsupportedChannel,
			fmt.Errorf("no sender configured for channel %s", cmd.Channel))
	}

	results := make([]vo.RecipientResult, 0, len(recipients))
	for _, rcpt := range recipients {
		state, err := sender.Send(ctx, gateway.OutboundMessage{
			Recipient: rcpt,
			Subject:   subject,
			Body:      body,
		})
		rr := vo.RecipientResult{Recipient: rcpt, Success: state.Succeeded() && err == nil}
		if err != nil {
			rr.Success = false
			rr.Error = err.Error()
		} else if !state.Succeeded() {
			rr.Error = fmt.Sprintf("send state %s", state)
		}
		results = append(results, rr)

		logger.Info("Delivery attempt", map[string]interface{}{
			"job_uuid":  cmd.JobUUID,
			"channel":   string(cmd.Channel),
			"recipient": rcpt,
			"success":   rr.Success,
		})
	}

	return &DeliveryResult{
		Outcome:    vo.SummarizeDelivery(results),
		Recipients: results,
	}, nil
}

// trackingLink 拼出观看追踪链接，收件人永远拿不到裸的存储地址
func (s *deliveryServiceImpl) trackingLink(token string) string {
	return s.baseURL + "/track-video-view/" + token
}
