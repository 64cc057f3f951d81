package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/BerniceZTT/kpi_funnel/controllers"
	"github.com/BerniceZTT/kpi_funnel/middleware"
	"github.com/BerniceZTT/kpi_funnel/templates"
)

// NewEngine 创建Gin实例，挂载中间件、页面模板与全部路由
func NewEngine(deps *controllers.Deps, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	// 应用中间件
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS(allowedOrigins))
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.OperationLoggerMiddleware(deps.Audit))

	if deps.MaxUploadBytes > 0 {
		router.MaxMultipartMemory = deps.MaxUploadBytes
	}
	router.SetHTMLTemplate(templates.Load())

	RegisterRoutes(router, deps)
	return router
}
