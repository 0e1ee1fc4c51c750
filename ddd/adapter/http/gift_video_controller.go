package http

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"giftvideo-service/ddd/application/app"
	"giftvideo-service/ddd/application/cqe"
	"giftvideo-service/pkg/restapi"
)

// GiftVideoController 合成任务控制器
type GiftVideoController struct {
	giftVideoApp app.GiftVideoApp
}

// NewGiftVideoController 创建合成任务控制器
func NewGiftVideoController(giftVideoApp app.GiftVideoApp) *GiftVideoController {
	return &GiftVideoController{
		giftVideoApp: giftVideoApp,
	}
}

// SubmitJob 提交合成任务
func (c *GiftVideoController) SubmitJob(ctx *gin.Context) {
	var req cqe.SubmitGiftVideoReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		restapi.Failed(ctx, err)
		return
	}

	resp, err := c.giftVideoApp.SubmitGiftVideo(ctx.Request.Context(), &req)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}

	restapi.Success(ctx, resp)
}

// GetJob 获取任务详情
func (c *GiftVideoController) GetJob(ctx *gin.Context) {
	resp, err := c.giftVideoApp.GetGiftVideoJob(ctx.Request.Context(), ctx.Param("job_uuid"))
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}

	restapi.Success(ctx, resp)
}

// ListJobs 按状态查询任务列表
func (c *GiftVideoController) ListJobs(ctx *gin.Context) {
	status := ctx.DefaultQuery("status", "pending_review")
	limit := 100
	if limitStr := ctx.Query("limit"); limitStr != "" {
		if v, err := strconv.Atoi(limitStr); err == nil {
			limit = v
		}
	}

	resp, err := c.giftVideoApp.ListGiftVideoJobs(ctx.Request.Context(), status, limit)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}

	restapi.Success(ctx, resp)
}

// RetriggerJob 重新触发任务派发（内部接口，重复调用无害）
func (c *GiftVideoController) RetriggerJob(ctx *gin.Context) {
	if err := c.giftVideoApp.RetriggerJob(ctx.Request.Context(), ctx.Param("job_uuid")); err != nil {
		restapi.Failed(ctx, err)
		return
	}

	restapi.Success(ctx, gin.H{"job_uuid": ctx.Param("job_uuid"), "triggered": true})
}

// ResubmitJob 失败任务重新提交
func (c *GiftVideoController) ResubmitJob(ctx *gin.Context) {
	resp, err := c.giftVideoApp.ResubmitJob(ctx.Request.Context(), ctx.Param("job_uuid"))
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}

	restapi.Success(ctx, resp)
}
