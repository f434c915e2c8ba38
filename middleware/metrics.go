package middleware

import (
	"strconv"

	"ChatProject/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics 按路由模板计数请求；FullPath 避免高基数标签
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(
			c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
