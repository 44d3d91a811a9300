package app

import (
	"assessment_results_backend/docs"
	"assessment_results_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/api/health", c.health.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		staged := v1.Group("/staged-results")
		staged.POST("", c.staging.LoadResult)
		staged.POST("/process", c.staging.ProcessLoaded)
		staged.POST("/:id/stage", c.staging.StageResult)

		students := v1.Group("/staged-students")
		students.GET("/:id", c.staging.GetStagedStudent)
		students.GET("/:id/score", c.staging.ScoreStagedStudent)

		transfer := v1.Group("/transfer")
		transfer.POST("/mark-ready", c.transfer.MarkReady)
		transfer.POST("/run", c.transfer.Run)
		transfer.POST("/:id", c.transfer.TransferOne)

		main := v1.Group("/students")
		main.GET("/:id/score", c.score.ScoreStudent)
		main.GET("/:id/history", c.score.History)

		v1.GET("/reports/assessments/:id/sections", c.score.SectionReport)
	}
}
