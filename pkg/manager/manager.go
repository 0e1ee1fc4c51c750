package manager

import (
	"sync"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"giftvideo-service/pkg/config"
)

// Resource 基础资源（数据库、缓存、消息队列等）
type Resource interface {
	MustOpen()
	Close()
}

// ResourcePlugin 资源插件，通过init注册
type ResourcePlugin interface {
	Name() string
	MustCreateResource() Resource
}

// Component 后台组件（消费者、Worker、定时器）
type Component interface {
	Start() error
	Stop() error
	GetName() string
}

// ComponentPlugin 组件插件，通过init注册
type ComponentPlugin interface {
	Name() string
	MustCreateComponent(deps *Dependencies) Component
}

// RoutePlugin 路由插件，由HTTP适配层注册
type RoutePlugin interface {
	Name() string
	RegisterRoutes(engine *gin.Engine, deps *Dependencies)
}

// Dependencies 依赖注入容器
type Dependencies struct {
	DB     *gorm.DB
	Config *config.Config

	// 应用服务以interface{}注入，由使用方断言具体接口，避免包循环依赖
	GiftVideoAppService interface{}
	DeliveryAppService  interface{}
	SweepAppService     interface{}
}

var (
	mu              sync.Mutex
	resourcePlugins []ResourcePlugin
	resources       []Resource
	compPlugins     []ComponentPlugin
	components      []Component
	routePlugins    []RoutePlugin
	deps            *Dependencies
)

// RegisterResourcePlugin 注册资源插件
func RegisterResourcePlugin(p ResourcePlugin) {
	mu.Lock()
	defer mu.Unlock()
	resourcePlugins = append(resourcePlugins, p)
}

// RegisterComponentPlugin 注册组件插件
func RegisterComponentPlugin(p ComponentPlugin) {
	mu.Lock()
	defer mu.Unlock()
	compPlugins = append(compPlugins, p)
}

// RegisterRoutePlugin 注册路由插件
func RegisterRoutePlugin(p RoutePlugin) {
	mu.Lock()
	defer mu.Unlock()
	routePlugins = append(routePlugins, p)
}

// MustInitResources 初始化所有已注册资源，失败即panic
func MustInitResources() {
	mu.Lock()
	defer mu.Unlock()
	for _, p := range resourcePlugins {
		r := p.MustCreateResource()
		r.MustOpen()
		resources = append(resources, r)
	}
}

// CloseResources 逆序关闭所有资源
func CloseResources() {
	mu.Lock()
	defer mu.Unlock()
	for i := len(resources) - 1; i >= 0; i-- {
		resources[i].Close()
	}
	resources = nil
}

// MustInitComponents 构建并启动所有组件
func MustInitComponents(d *Dependencies) {
	mu.Lock()
	deps = d
	plugins := make([]ComponentPlugin, len(compPlugins))
	copy(plugins, compPlugins)
	mu.Unlock()

	for _, p := range plugins {
		c := p.MustCreateComponent(d)
		if err := c.Start(); err != nil {
			panic("failed to start component " + p.Name() + ": " + err.Error())
		}
		mu.Lock()
		components = append(components, c)
		mu.Unlock()
	}
}

// RegisterAllRoutes 执行所有路由插件
func RegisterAllRoutes(engine *gin.Engine) {
	mu.Lock()
	d := deps
	plugins := make([]RoutePlugin, len(routePlugins))
	copy(plugins, routePlugins)
	mu.Unlock()

	for _, p := range plugins {
		p.RegisterRoutes(engine, d)
	}
}

// Shutdown 逆序停止所有组件
func Shutdown() {
	mu.Lock()
	defer mu.Unlock()
	for i := len(components) - 1; i >= 0; i-- {
		_ = components[i].Stop()
	}
	components = nil
}
