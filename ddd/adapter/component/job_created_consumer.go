package component

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	appsvc "giftvideo-service/ddd/application/app"
	"giftvideo-service/ddd/domain/vo"
	"giftvideo-service/pkg/config"
	pkgkafka "giftvideo-service/pkg/kafka"
	"giftvideo-service/pkg/logger"
	"giftvideo-service/pkg/manager"
)

// JobCreatedConsumerPlugin 消费任务创建事件，触发合成派发
type JobCreatedConsumerPlugin struct{}

func (p *JobCreatedConsumerPlugin) Name() string { return "jobCreatedConsumer" }

func (p *JobCreatedConsumerPlugin) MustCreateComponent(deps *manager.Dependencies) manager.Component {
	var app appsvc.GiftVideoApp
	if deps != nil {
		if v, ok := deps.GiftVideoAppService.(appsvc.GiftVideoApp); ok {
			app = v
		}
	}
	if app == nil {
		app = appsvc.DefaultGiftVideoApp()
	}
	return &jobCreatedConsumer{app: app}
}

type jobCreatedConsumer struct {
	app    appsvc.GiftVideoApp
	ctx    context.Context
	cancel context.CancelFunc
}

func (c *jobCreatedConsumer) Start() error {
	cfg := config.GetGlobalConfig()
	if cfg == nil || !cfg.Kafka.Enabled {
		logger.Info("Kafka disabled, job dispatch runs on local queue only", nil)
		return nil
	}

	topic := cfg.Kafka.Topics.GiftVideoJobs
	if topic == "" {
		topic = "gift.video.jobs"
	}
	groupID := cfg.Kafka.GroupID
	if groupID == "" {
		groupID = "giftvideo-service-group"
	}

	c.ctx, c.cancel = context.WithCancel(context.Background())
	reader := pkgkafka.DefaultClient().Reader(topic, groupID)
	go func() {
		defer reader.Close()
		logger.Infof("Kafka consumer started topic=%s group=%s", topic, groupID)
		for {
			msg, err := reader.ReadMessage(c.ctx)
			if err != nil {
				if c.ctx.Err() != nil {
					return
				}
				if errors.Is(err, io.EOF) || strings.Contains(err.Error(), "EOF") {
					logger.Debug("Kafka reader EOF", nil)
				} else {
					logger.Warnf("Kafka read error error=%s", err.Error())
				}
				continue
			}

			var m appsvc.JobCreatedMessage
			if err := json.Unmarshal(msg.Value, &m); err != nil {
				logger.Warnf("Kafka message unmarshal error error=%s", err.Error())
				continue
			}
			if m.JobUUID == "" {
				continue
			}
			// 重放或重复投递的事件里，非pending的任务直接跳过；
			// 漏网的由worker的单飞判定兜底
			if m.Status != "" && m.Status != vo.JobStatusPending.String() {
				logger.Debugf("Skip non-pending job event job_uuid=%s status=%s", m.JobUUID, m.Status)
				continue
			}

			logger.Infof("Job created event received job_uuid=%s", m.JobUUID)
			if err := c.app.EnqueueJob(context.Background(), m.JobUUID); err != nil {
				logger.Warnf("EnqueueJob failed error=%s job_uuid=%s", err.Error(), m.JobUUID)
			}
		}
	}()
	return nil
}

func (c *jobCreatedConsumer) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	return nil
}

func (c *jobCreatedConsumer) GetName() string { return "jobCreatedConsumer" }
