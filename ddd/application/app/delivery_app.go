package app

import (
	"context"
	"sync"

	"giftvideo-service/ddd/application/cqe"
	"giftvideo-service/ddd/application/dto"
	"giftvideo-service/ddd/domain/service"
	"giftvideo-service/ddd/domain/vo"
	"giftvideo-service/ddd/infrastructure/database/persistence"
	"giftvideo-service/ddd/infrastructure/notify"
	"giftvideo-service/pkg/assert"
	"giftvideo-service/pkg/config"
)

var (
	singleDeliveryApp DeliveryApp
	onceDeliveryApp   sync.Once
)

type DeliveryApp interface {
	// Notify 向收件人列表投递观看通知
	Notify(ctx context.Context, req *cqe.NotifyReq) (*dto.DeliveryResultDTO, error)
}

type deliveryAppImpl struct {
	deliveryService service.DeliveryService
}

func DefaultDeliveryApp() DeliveryApp {
	assert.NotCircular()
	onceDeliveryApp.Do(func() {
		smtpCfg, smsCfg, baseURL := deliverySettings(config.GetGlobalConfig())
		deliverySvc := service.NewDeliveryService(
			persistence.NewGiftVideoJobRepository(),
			notify.NewEmailSender(smtpCfg),
			notify.NewSMSSender(smsCfg),
			baseURL,
		)
		singleDeliveryApp = NewDeliveryAppWith(deliverySvc)
	})
	assert.NotNil(singleDeliveryApp)
	return singleDeliveryApp
}

func NewDeliveryAppWith(deliveryService service.DeliveryService) DeliveryApp {
	return &deliveryAppImpl{deliveryService: deliveryService}
}

// deliverySettings 从全局配置取投递参数，配置未初始化时退回零值
func deliverySettings(cfg *config.Config) (config.SMTPConfig, config.SMSConfig, string) {
	if cfg == nil {
		return config.SMTPConfig{}, config.SMSConfig{}, ""
	}
	return cfg.Delivery.SMTP, cfg.Delivery.SMS, cfg.Public.BaseURL
}

func (a *deliveryAppImpl) Notify(ctx context.Context, req *cqe.NotifyReq) (*dto.DeliveryResultDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	result, err := a.deliveryService.Deliver(ctx, service.DeliveryCommand{
		JobUUID:       req.JobUUID,
		Channel:       vo.DeliveryChannel(req.Channel),
		Recipients:    req.Recipients,
		RecipientName: req.RecipientName,
		ChildName:     req.ChildName,
		GiftName:      req.GiftName,
		Template:      req.Template,
	})
	if err != nil {
		return nil, err
	}

	return &dto.DeliveryResultDTO{
		JobUUID:    req.JobUUID,
		Channel:    req.Channel,
		Outcome:    string(result.Outcome),
		Recipients: result.Recipients,
	}, nil
}
