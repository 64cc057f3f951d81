package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BerniceZTT/kpi_funnel/service"
	"github.com/BerniceZTT/kpi_funnel/utils"
)

// sessionToken 优先读取 Authorization 头，其次读取Cookie
func sessionToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	if cookie, err := c.Cookie(utils.SessionCookie); err == nil {
		return cookie
	}
	return ""
}

// resolveSession 解析令牌并从存储中取出会话
func resolveSession(c *gin.Context, store *service.SessionStore) (*service.Session, error) {
	token := sessionToken(c)
	if token == "" {
		return nil, utils.NewApiError("缺少会话，请先上传文件", http.StatusUnauthorized, "MISSING_SESSION")
	}
	sid, err := utils.ParseSessionToken(token)
	if err != nil {
		utils.Logger.Info().Err(err).Str("path", c.Request.URL.Path).Msg("会话令牌验证失败")
		return nil, utils.NewApiError("无效的会话令牌: "+err.Error(), http.StatusUnauthorized, "INVALID_TOKEN")
	}
	return store.Get(sid)
}

// RequireSession 会话中间件，未携带有效会话时返回 401
func RequireSession(store *service.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := resolveSession(c, store)
		if err != nil {
			utils.HandleError(c, err)
			return
		}
		c.Set(utils.SessionContextKey, sess)
		c.Next()
	}
}

// OptionalSession 页面使用：有会话时写入上下文，没有时继续处理
func OptionalSession(store *service.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sess, err := resolveSession(c, store); err == nil {
			c.Set(utils.SessionContextKey, sess)
		}
		c.Next()
	}
}

// RequireAdmin 管理接口中间件，比对 Authorization: Bearer 或 X-Admin-Token 请求头
func RequireAdmin(adminToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adminToken == "" {
			utils.HandleError(c, utils.NewApiError("管理接口未启用", http.StatusForbidden, "ADMIN_DISABLED"))
			return
		}
		token := c.GetHeader("X-Admin-Token")
		if authHeader := c.GetHeader("Authorization"); token == "" && strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimPrefix(authHeader, "Bearer ")
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(adminToken)) != 1 {
			utils.Logger.Warn().Str("ip", c.ClientIP()).Msg("管理令牌验证失败")
			utils.HandleError(c, utils.CreateUnauthorizedError("无效的管理令牌"))
			return
		}
		c.Next()
	}
}
