package http

import (
	"github.com/gin-gonic/gin"

	"giftvideo-service/ddd/application/app"
	"giftvideo-service/pkg/restapi"
)

// SweepController 过期清理控制器
type SweepController struct {
	sweepApp app.SweepApp
}

// NewSweepController 创建清理控制器
func NewSweepController(sweepApp app.SweepApp) *SweepController {
	return &SweepController{
		sweepApp: sweepApp,
	}
}

// RunSweep 手动触发一轮清理。与定时清理互斥（同一把锁），
// 重复触发只会让扫描空转。
func (c *SweepController) RunSweep(ctx *gin.Context) {
	report, err := c.sweepApp.RunSweep(ctx.Request.Context())
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	if report == nil {
		restapi.Success(ctx, gin.H{"skipped": true, "reason": "sweep already running"})
		return
	}

	restapi.Success(ctx, report)
}
