package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"giftvideo-service/pkg/config"
	"giftvideo-service/pkg/errno"
	"giftvideo-service/pkg/restapi"
)

// OperatorAuthMiddleware 校验运维接口（sweep、resubmit等）的JWT凭证。
// 未配置密钥时放行，便于本地开发环境。
func OperatorAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg := config.GetGlobalConfig()
		if cfg == nil || cfg.JWT.Secret == "" {
			c.Next()
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer"))
		if raw == "" {
			c.AbortWithStatusJSON(401, gin.H{"code": errno.ErrUnauthorized.Code, "message": errno.ErrUnauthorized.Message})
			return
		}

		var opts []jwt.ParserOption
		if cfg.JWT.Issuer != "" {
			opts = append(opts, jwt.WithIssuer(cfg.JWT.Issuer))
		}
		token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errno.ErrUnauthorized
			}
			return []byte(cfg.JWT.Secret), nil
		}, opts...)
		if err != nil || !token.Valid {
			restapi.FailedWithStatus(c, 401, errno.ErrUnauthorized)
			c.Abort()
			return
		}

		c.Next()
	}
}
