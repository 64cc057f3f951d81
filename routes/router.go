package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/BerniceZTT/kpi_funnel/controllers"
	"github.com/BerniceZTT/kpi_funnel/middleware"
)

// RegisterRoutes 注册所有路由
func RegisterRoutes(router *gin.Engine, deps *controllers.Deps) {
	// 页面
	router.GET("/", middleware.OptionalSession(deps.Sessions), deps.Index)

	RegisterUploadRoutes(router, deps)
	RegisterSessionRoutes(router, deps)

	router.GET("/api/audit", middleware.RequireAdmin(deps.AdminToken), deps.GetAuditLogs)

	// 健康检查路由
	router.GET("/api/health", deps.Health)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// RegisterUploadRoutes 注册上传路由
func RegisterUploadRoutes(router *gin.Engine, deps *controllers.Deps) {
	router.POST("/api/uploads", deps.UploadFile)
}

// RegisterSessionRoutes 注册会话相关路由，全部需要有效会话
func RegisterSessionRoutes(router *gin.Engine, deps *controllers.Deps) {
	session := router.Group("/api/session")
	session.Use(middleware.RequireSession(deps.Sessions))

	session.DELETE("", deps.ClearSession)

	session.GET("/table", deps.GetTable)
	session.PUT("/cells", deps.UpdateCell)
	session.POST("/rows", deps.AddRow)
	session.DELETE("/rows/:row", deps.DeleteRow)

	session.GET("/funnels", deps.GetFunnels)
	session.GET("/charts/:row", deps.GetChart)
}
