package component

import (
	"context"
	"time"

	appsvc "giftvideo-service/ddd/application/app"
	"giftvideo-service/pkg/config"
	"giftvideo-service/pkg/logger"
	"giftvideo-service/pkg/manager"
	"giftvideo-service/pkg/task"
)

// SweepTickerPlugin 定时触发过期清理
type SweepTickerPlugin struct{}

func (p *SweepTickerPlugin) Name() string { return "sweepTicker" }

func (p *SweepTickerPlugin) MustCreateComponent(deps *manager.Dependencies) manager.Component {
	var app appsvc.SweepApp
	if deps != nil {
		if v, ok := deps.SweepAppService.(appsvc.SweepApp); ok {
			app = v
		}
	}
	if app == nil {
		app = appsvc.DefaultSweepApp()
	}

	interval := 24 * time.Hour
	enabled := true
	if cfg := config.GetGlobalConfig(); cfg != nil {
		if cfg.Sweeper.SweepInterval > 0 {
			interval = cfg.Sweeper.SweepInterval
		}
		enabled = cfg.Sweeper.Enabled
	}

	return &sweepTicker{app: app, interval: interval, enabled: enabled}
}

type sweepTicker struct {
	app      appsvc.SweepApp
	interval time.Duration
	enabled  bool
	cancel   context.CancelFunc
}

func (c *sweepTicker) Start() error {
	if !c.enabled {
		logger.Info("Sweep ticker disabled", nil)
		return nil
	}
	task.Register(&sweepTickerTask{app: c.app, interval: c.interval})
	logger.Infof("Sweep ticker registered interval=%s", c.interval)
	return nil
}

func (c *sweepTicker) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	return nil
}

func (c *sweepTicker) GetName() string { return "sweepTicker" }

type sweepTickerTask struct {
	app      appsvc.SweepApp
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
}

func (t *sweepTickerTask) Name() string { return "sweepTicker" }

func (t *sweepTickerTask) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.done = make(chan struct{})

	go func() {
		defer close(t.done)
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				if _, err := t.app.RunSweep(runCtx); err != nil {
					logger.Errorf("scheduled sweep failed err=%v", err)
				}
			}
		}
	}()
	return nil
}

func (t *sweepTickerTask) Stop() error {
	if t.cancel != nil {
		t.cancel()
	}
	if t.done != nil {
		<-t.done
	}
	return nil
}
