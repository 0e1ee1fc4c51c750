package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"giftvideo-service/ddd/application/app"
	"giftvideo-service/pkg/errno"
	"giftvideo-service/pkg/restapi"
)

// ViewController 观看重定向控制器。响应里只出现签名URL或错误码，
// 存储路径和内部任务信息永远不对外暴露。
type ViewController struct {
	giftVideoApp app.GiftVideoApp
}

// NewViewController 创建观看重定向控制器
func NewViewController(giftVideoApp app.GiftVideoApp) *ViewController {
	return &ViewController{
		giftVideoApp: giftVideoApp,
	}
}

// TrackVideoView 追踪链接换签名地址：计一次观看后302到签名URL。
// 重定向响应禁止缓存，签名URL过期后旧链接不能继续生效。
func (c *ViewController) TrackVideoView(ctx *gin.Context) {
	ctx.Header("Cache-Control", "no-store, no-cache, must-revalidate")
	ctx.Header("Pragma", "no-cache")

	token := ctx.Param("token")
	if token == "" {
		restapi.FailedWithStatus(ctx, http.StatusBadRequest, errno.ErrTrackingTokenRequired)
		return
	}

	signedURL, err := c.giftVideoApp.ResolveViewURL(ctx.Request.Context(), token)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}

	ctx.Redirect(http.StatusFound, signedURL)
}
