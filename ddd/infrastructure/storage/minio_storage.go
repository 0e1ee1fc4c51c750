package storage

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"

	"giftvideo-service/ddd/domain/gateway"
	"giftvideo-service/internal/resource"
	"giftvideo-service/pkg/logger"
)

// MinioStorage MinIO存储实现
type MinioStorage struct {
	minioResource *resource.MinioResource
}

// NewMinioStorage 创建MinIO存储实例
func NewMinioStorage(minioResource *resource.MinioResource) gateway.StorageGateway {
	return &MinioStorage{
		minioResource: minioResource,
	}
}

// UploadFile 上传本地文件到对象存储，返回对象Key
func (s *MinioStorage) UploadFile(ctx context.Context, localPath, objectKey, contentType string) (string, error) {
	client := s.minioResource.GetClient()
	bucketName := s.minioResource.GetBucketName()

	file, err := os.Open(localPath)
	if err != nil {
		logger.Error("Failed to open local file", map[string]interface{}{
			"local_path": localPath,
			"error":      err.Error(),
		})
		return "", fmt.Errorf("open local file failed: %w", err)
	}
	defer file.Close()

	fileInfo, err := file.Stat()
	if err != nil {
		logger.Error("Failed to get file info", map[string]interface{}{
			"local_path": localPath,
			"error":      err.Error(),
		})
		return "", fmt.Errorf("get file info failed: %w", err)
	}

	if contentType == "" {
		contentType = getContentTypeFromExtension(objectKey)
	}

	_, err = client.PutObject(ctx, bucketName, objectKey, file, fileInfo.Size(), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		logger.Error("Failed to upload file to MinIO", map[string]interface{}{
			"local_path": localPath,
			"object_key": objectKey,
			"error":      err.Error(),
		})
		return "", fmt.Errorf("upload file to minio failed: %w", err)
	}

	logger.Info("File uploaded successfully", map[string]interface{}{
		"object_key": objectKey,
		"size":       fileInfo.Size(),
	})

	return objectKey, nil
}

// DownloadFile 下载对象到本地路径
func (s *MinioStorage) DownloadFile(ctx context.Context, objectKey, localPath string) error {
	client := s.minioResource.GetClient()
	bucketName := s.minioResource.GetBucketName()

	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return fmt.Errorf("create local dir failed: %w", err)
	}

	if err := client.FGetObject(ctx, bucketName, objectKey, localPath, minio.GetObjectOptions{}); err != nil {
		logger.Error("Failed to download object from MinIO", map[string]interface{}{
			"object_key": objectKey,
			"local_path": localPath,
			"error":      err.Error(),
		})
		return fmt.Errorf("download object from minio failed: %w", err)
	}

	return nil
}

// SignedURL 生成限时签名访问URL
func (s *MinioStorage) SignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	client := s.minioResource.GetClient()
	bucketName := s.minioResource.GetBucketName()

	presigned, err := client.PresignedGetObject(ctx, bucketName, objectKey, expiry, url.Values{})
	if err != nil {
		logger.Error("Failed to presign object URL", map[string]interface{}{
			"object_key": objectKey,
			"error":      err.Error(),
		})
		return "", fmt.Errorf("presign object url failed: %w", err)
	}

	return presigned.String(), nil
}

// DeleteObject 删除对象，对象不存在视为删除成功
func (s *MinioStorage) DeleteObject(ctx context.Context, objectKey string) error {
	client := s.minioResource.GetClient()
	bucketName := s.minioResource.GetBucketName()

	err := client.RemoveObject(ctx, bucketName, objectKey, minio.RemoveObjectOptions{})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" {
			logger.Warn("Object already gone, treating delete as success", map[string]interface{}{
				"object_key": objectKey,
			})
			return nil
		}
		logger.Error("Failed to delete object from MinIO", map[string]interface{}{
			"object_key": objectKey,
			"error":      err.Error(),
		})
		return fmt.Errorf("delete object from minio failed: %w", err)
	}

	logger.Info("Object deleted", map[string]interface{}{
		"object_key": objectKey,
	})
	return nil
}

// getContentTypeFromExtension 根据扩展名推断内容类型
func getContentTypeFromExtension(objectKey string) string {
	switch strings.ToLower(filepath.Ext(objectKey)) {
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".mp3":
		return "audio/mpeg"
	case ".aac":
		return "audio/aac"
	case ".m4a":
		return "audio/mp4"
	default:
		return "application/octet-stream"
	}
}
