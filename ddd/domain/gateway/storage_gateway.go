package gateway

import (
	"context"
	"time"
)

// StorageGateway 制品存储网关。对象只追加后删除，从不原地覆盖，
// 持有签名URL的读取方不会看到半写状态。
type StorageGateway interface {
	// UploadFile 上传本地文件到对象存储，返回对象Key
	UploadFile(ctx context.Context, localPath, objectKey, contentType string) (string, error)

	// DownloadFile 下载对象到本地路径
	DownloadFile(ctx context.Context, objectKey, localPath string) error

	// SignedURL 生成限时签名访问URL
	SignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error)

	// DeleteObject 删除对象。对象不存在视为删除成功（清理扫描的
	// at-least-once语义依赖这一点）。
	DeleteObject(ctx context.Context, objectKey string) error
}
