package api

import (
	"smartbill/internal/api/controller"
	"smartbill/internal/api/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine, authCtrl *controller.AuthController, billCtrl *controller.BillController, aiCtrl *controller.AIController) {
	r.Use(middleware.Cors())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.POST("/register", authCtrl.Register)
	r.POST("/login", authCtrl.Login)

	protected := r.Group("/")
	protected.Use(middleware.JWTAuth())
	{
		protected.GET("/bills", billCtrl.List)
		protected.POST("/bills", billCtrl.Create)
		protected.GET("/bills/today_summary", billCtrl.TodaySummary)
		protected.GET("/bills/:id", billCtrl.Get)
		protected.PUT("/bills/:id", billCtrl.Update)
		protected.DELETE("/bills/:id", billCtrl.Delete)

		protected.POST("/deepseek", aiCtrl.Extract)
		protected.POST("/analyze", aiCtrl.Analyze)
	}
}
