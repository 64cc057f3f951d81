package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BerniceZTT/kpi_funnel/utils"
)

// Logger 日志中间件，上传内容为二进制文件，不记录请求体
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		headers := make(map[string]string)
		for k, v := range c.Request.Header {
			if len(v) > 0 {
				headers[k] = v[0]
			}
		}

		utils.LogApiRequest(method, path, c.Request.URL.Query(), headers)

		c.Next()

		utils.LogApiResponse(method, path, c.Writer.Status(), time.Since(start), c.Writer.Size())
	}
}

// Recovery 恢复中间件
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		utils.Logger.Error().
			Interface("panic", recovered).
			Str("path", c.Request.URL.Path).
			Msg("服务崩溃")

		c.AbortWithStatusJSON(500, gin.H{
			"success": false,
			"error":   "服务器内部错误",
			"code":    "INTERNAL_ERROR",
		})
	})
}
