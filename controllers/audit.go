package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/BerniceZTT/kpi_funnel/utils"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

// GetAuditLogs 查询最近的操作日志
func (d *Deps) GetAuditLogs(c *gin.Context) {
	limit := int64(defaultAuditLimit)
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			utils.HandleError(c, utils.CreateBadRequestError("无效的 limit 参数"))
			return
		}
		if n > maxAuditLimit {
			n = maxAuditLimit
		}
		limit = n
	}

	logs, err := d.Audit.Recent(c.Request.Context(), limit)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, logs, "")
}

// ClearSession 结束当前会话并清除Cookie
func (d *Deps) ClearSession(c *gin.Context) {
	sess, err := utils.GetSession(c)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	d.Sessions.Delete(sess.ID)
	c.SetCookie(utils.SessionCookie, "", -1, "/", "", false, true)
	utils.LogInfo(map[string]interface{}{"session": sess.ID}, "会话已结束")
	utils.SuccessResponse(c, nil, "会话已结束")
}

// Health 健康检查
func (d *Deps) Health(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":   "ok",
		"sessions": d.Sessions.Count(),
	})
}
