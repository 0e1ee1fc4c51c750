package http

import (
	"github.com/gin-gonic/gin"

	appsvc "giftvideo-service/ddd/application/app"
	"giftvideo-service/pkg/manager"
)

func init() {
	manager.RegisterRoutePlugin(&GiftVideoRoutePlugin{})
}

// GiftVideoRoutePlugin 把HTTP路由挂到manager的路由注册流程上
type GiftVideoRoutePlugin struct{}

func (p *GiftVideoRoutePlugin) Name() string { return "giftVideoRoutes" }

func (p *GiftVideoRoutePlugin) RegisterRoutes(engine *gin.Engine, deps *manager.Dependencies) {
	var giftVideoApp appsvc.GiftVideoApp
	var deliveryApp appsvc.DeliveryApp
	var sweepApp appsvc.SweepApp

	if deps != nil {
		if v, ok := deps.GiftVideoAppService.(appsvc.GiftVideoApp); ok {
			giftVideoApp = v
		}
		if v, ok := deps.DeliveryAppService.(appsvc.DeliveryApp); ok {
			deliveryApp = v
		}
		if v, ok := deps.SweepAppService.(appsvc.SweepApp); ok {
			sweepApp = v
		}
	}
	if giftVideoApp == nil {
		giftVideoApp = appsvc.DefaultGiftVideoApp()
	}
	if deliveryApp == nil {
		deliveryApp = appsvc.DefaultDeliveryApp()
	}
	if sweepApp == nil {
		sweepApp = appsvc.DefaultSweepApp()
	}

	router := NewRouter(giftVideoApp, deliveryApp, sweepApp)
	router.SetupMiddleware(engine)
	router.SetupRoutes(engine)
}
