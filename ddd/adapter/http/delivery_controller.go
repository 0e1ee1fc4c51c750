package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"giftvideo-service/ddd/application/app"
	"giftvideo-service/ddd/application/cqe"
	"giftvideo-service/ddd/domain/vo"
	"giftvideo-service/pkg/restapi"
)

// DeliveryController 通知投递控制器
type DeliveryController struct {
	deliveryApp app.DeliveryApp
}

// NewDeliveryController 创建投递控制器
func NewDeliveryController(deliveryApp app.DeliveryApp) *DeliveryController {
	return &DeliveryController{
		deliveryApp: deliveryApp,
	}
}

// Notify 向收件人列表投递观看通知。
// 全部成功200，部分成功207，全部失败500，结果明细始终返回。
func (c *DeliveryController) Notify(ctx *gin.Context) {
	var req cqe.NotifyReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		restapi.Failed(ctx, err)
		return
	}
	req.JobUUID = ctx.Param("job_uuid")

	resp, err := c.deliveryApp.Notify(ctx.Request.Context(), &req)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}

	switch vo.DeliveryOutcome(resp.Outcome) {
	case vo.DeliveryAllSent:
		restapi.Success(ctx, resp)
	case vo.DeliveryPartial:
		restapi.PartialSuccess(ctx, resp)
	default:
		ctx.JSON(http.StatusInternalServerError, restapi.Response{
			Code:    http.StatusInternalServerError,
			Message: "All deliveries failed",
			Data:    resp,
		})
	}
}
