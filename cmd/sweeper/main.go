package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	appsvc "giftvideo-service/ddd/application/app"
	"giftvideo-service/pkg/config"
	"giftvideo-service/pkg/logger"
	"giftvideo-service/pkg/manager"

	// 导入资源包以触发init注册
	_ "giftvideo-service/internal/resource"
)

// 一次性运行过期清理，适合放在cron里跑，和服务内置的定时清理互为兜底。
func main() {
	var (
		cfgPath = flag.String("config", "configs/config.dev.yaml", "config file path")
		timeout = flag.Duration("timeout", 10*time.Minute, "sweep run timeout")
	)
	flag.Parse()

	if env := os.Getenv("CONFIG_PATH"); env != "" {
		*cfgPath = env
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Printf("[ERROR] Failed to load config (%s): %v\n", *cfgPath, err)
		os.Exit(1)
	}
	config.SetGlobalConfig(cfg)

	logService := logger.NewLogger(cfg)
	logger.SetGlobalLogger(logService)
	defer logService.Close()

	manager.MustInitResources()
	defer manager.CloseResources()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	report, err := appsvc.DefaultSweepApp().RunSweep(ctx)
	if err != nil {
		logger.Errorf("Sweep run failed error=%v", err)
		os.Exit(1)
	}
	if report == nil {
		logger.Infof("Sweep skipped, another instance holds the lock")
		return
	}
	logger.Infof("Sweep finished scanned=%d scrubbed=%d failed=%d recovered=%d",
		report.Scanned, report.Scrubbed, report.Failed, report.Recovered)
}
