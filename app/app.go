package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	appsvc "giftvideo-service/ddd/application/app"
	"giftvideo-service/internal/resource"
	"giftvideo-service/pkg/config"
	"giftvideo-service/pkg/logger"
	"giftvideo-service/pkg/manager"
	"giftvideo-service/pkg/registry"
	"giftvideo-service/pkg/task"

	// 导入适配层包以触发init注册
	_ "giftvideo-service/ddd/adapter/component"
	_ "giftvideo-service/ddd/adapter/http"
	_ "giftvideo-service/ddd/infrastructure/worker"
)

func Run() {
	// 先使用标准输出确保能看到日志
	fmt.Println("[STARTUP] Starting gift video service...")

	// 加载配置
	fmt.Println("[STARTUP] Loading config file...")
	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("[ERROR] Failed to load config (%s): %v\n", cfgPath, err)
		os.Exit(1)
	}
	// 设置全局配置（必须在资源管理器初始化之前）
	config.SetGlobalConfig(cfg)
	fmt.Printf("[STARTUP] Config file loaded: %s\n", cfgPath)

	// 立即初始化日志服务
	fmt.Println("[STARTUP] Initializing logger...")
	logService := logger.NewLogger(cfg)
	logger.SetGlobalLogger(logService)
	fmt.Println("[STARTUP] Logger initialized")

	logger.Infof("Gift video service starting version=%s", "1.0.0")

	// 检查 FFmpeg 是否可用，直接在启动阶段失败
	ffmpegBin := cfg.Compose.FFmpeg.BinaryPath
	if strings.TrimSpace(ffmpegBin) == "" {
		ffmpegBin = "ffmpeg"
	}
	if _, err := exec.LookPath(ffmpegBin); err != nil {
		logger.Fatal(fmt.Sprintf("FFmpeg binary not found, please install or set compose.ffmpeg.binary_path binary=%s error=%s", ffmpegBin, err.Error()))
	}

	// 资源管理器初始化（MySQL、Redis、MinIO、Kafka）
	logger.Infof("Initializing resource manager...")
	manager.MustInitResources()
	defer manager.CloseResources()
	logger.Infof("Resource manager initialized")

	// 初始化应用服务
	logger.Infof("Initializing application services...")
	giftVideoAppService := appsvc.DefaultGiftVideoApp()
	deliveryAppService := appsvc.DefaultDeliveryApp()
	sweepAppService := appsvc.DefaultSweepApp()
	logger.Infof("Application services initialized")

	// 创建依赖注入容器
	deps := &manager.Dependencies{
		DB:                  resource.DefaultMysqlResource().MainDB(),
		Config:              cfg,
		GiftVideoAppService: giftVideoAppService,
		DeliveryAppService:  deliveryAppService,
		SweepAppService:     sweepAppService,
	}

	// 初始化所有组件（Worker、Kafka消费者、清理定时器）
	logger.Infof("Initializing components...")
	manager.MustInitComponents(deps)
	logger.Infof("All components initialized")

	// 启动后台任务
	logger.Infof("Starting background tasks...")
	if err := task.StartAll(context.Background()); err != nil {
		logger.Fatal(fmt.Sprintf("Failed to start background tasks error=%v", err))
	}
	logger.Infof("Background tasks started")

	// 创建Gin引擎
	logger.Infof("Creating HTTP routes...")
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	router := gin.New()

	// 注册所有路由（路由插件自带中间件设置）
	manager.RegisterAllRoutes(router)
	logger.Infof("Routes registered")

	// 启动HTTP服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(fmt.Sprintf("Failed to start HTTP server error=%v", err))
		}
	}()

	logger.Infof("HTTP server started addr=%s service=%s", addr, "giftvideo-service")

	// 服务注册（etcd）
	serviceRegistry := registerService(cfg, addr)
	if serviceRegistry != nil {
		defer func() {
			if err := serviceRegistry.Deregister(); err != nil {
				logger.Warnf("Service deregister failed error=%v", err)
			}
		}()
	}

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infof("Received shutdown signal, shutting down server...")

	// 停止后台任务与组件
	logger.Infof("Stopping background tasks...")
	task.StopAll()
	logger.Infof("Shutting down components...")
	manager.Shutdown()
	logger.Infof("Components closed")

	// 设置5秒超时
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal(fmt.Sprintf("Server forced to close error=%v", err))
	}

	logger.Infof("Server exited safely")

	// 关闭日志服务
	if logService != nil {
		logService.Close()
	}

	fmt.Println("[SHUTDOWN] Gift video service exited safely")
}

// registerService 把实例注册到etcd，未启用时返回nil
func registerService(cfg *config.Config, listenAddr string) *registry.ServiceRegistry {
	rc := cfg.ServiceRegistry
	if !rc.Enabled || len(rc.Endpoints) == 0 {
		return nil
	}

	serviceAddr := listenAddr
	if rc.RegisterHost != "" {
		serviceAddr = fmt.Sprintf("%s:%d", rc.RegisterHost, cfg.Server.Port)
	}

	serviceRegistry, err := registry.NewServiceRegistry(
		registry.RegistryConfig{Endpoints: rc.Endpoints},
		registry.ServiceConfig{
			ServiceName:     rc.ServiceName,
			ServiceID:       rc.ServiceID,
			TTL:             rc.TTL,
			RefreshInterval: rc.RefreshInterval,
		},
		serviceAddr,
	)
	if err != nil {
		logger.Warnf("Service registry init failed, continuing without it error=%v", err)
		return nil
	}
	if err := serviceRegistry.Register(); err != nil {
		logger.Warnf("Service register failed, continuing without it error=%v", err)
		return nil
	}
	logger.Infof("Service registered name=%s addr=%s", rc.ServiceName, serviceAddr)
	return serviceRegistry
}

// resolveConfigPath 根据环境选择配置文件，支持CONFIG_PATH覆盖、CONFIG_ENV区分环境
func resolveConfigPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}

	env := strings.ToLower(strings.TrimSpace(os.Getenv("CONFIG_ENV")))
	if env == "" {
		env = "dev"
	}

	switch env {
	case "prod", "production":
		return "configs/config_prod.yaml"
	case "dev", "development":
		return "configs/config.dev.yaml"
	default:
		return fmt.Sprintf("configs/config.%s.yaml", env)
	}
}
