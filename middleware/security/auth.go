package security

import (
	"context"
	"crypto/rsa"
	"net/http"
	"strings"
	"time"

	"ChatProject/logger"
	"ChatProject/tools/errs"
	"ChatProject/tools/security"

	"github.com/gin-gonic/gin"
)

// —— context key ——
// 业务模块统一用这个 key 读取登录用户
const CtxUserIDKey = "authUserID"

// Toucher 每次已认证请求刷新一下用户活跃时间
type Toucher interface {
	Touch(ctx context.Context, userID string) error
}

type Options struct {
	Pub     *rsa.PublicKey
	Toucher Toucher // 可为 nil
}

// Middleware Bearer token 校验；失败 403，通过后把用户ID写入 context
func Middleware(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ""
		if authz := strings.TrimSpace(c.GetHeader("Authorization")); authz != "" {
			if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
				token = strings.TrimSpace(authz[len("bearer "):])
			}
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, errs.ErrTokenInvalid)
			return
		}

		claims, err := security.Verify(opts.Pub, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, errs.ErrTokenInvalid)
			return
		}
		c.Set(CtxUserIDKey, claims.UserID)

		if opts.Toucher != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
			if err := opts.Toucher.Touch(ctx, claims.UserID); err != nil {
				logger.Debugf("[auth] touch user=%s err: %v", claims.UserID, err)
			}
			cancel()
		}
		c.Next()
	}
}

// UserID 从 context 取登录用户；只在 Middleware 之后的 handler 里调用
func UserID(c *gin.Context) string {
	return c.GetString(CtxUserIDKey)
}
