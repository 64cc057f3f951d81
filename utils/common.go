package utils

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/BerniceZTT/kpi_funnel/service"
)

const (
	// 上下文中保存会话的键
	SessionContextKey = "session"
	// 保存会话令牌的Cookie名
	SessionCookie = "funnel_session"
)

// GetSession 获取当前请求绑定的会话
func GetSession(c *gin.Context) (*service.Session, error) {
	v, exists := c.Get(SessionContextKey)
	if !exists {
		return nil, CreateUnauthorizedError("缺少会话，请先上传文件")
	}
	sess, ok := v.(*service.Session)
	if !ok {
		return nil, fmt.Errorf("会话类型错误: %T", v)
	}
	return sess, nil
}

// ParseRowParam 解析路径中的行号参数
func ParseRowParam(c *gin.Context, name string) (int, error) {
	row, err := strconv.Atoi(c.Param(name))
	if err != nil || row < 0 {
		return 0, CreateBadRequestError(fmt.Sprintf("无效的行号: %q", c.Param(name)))
	}
	return row, nil
}
