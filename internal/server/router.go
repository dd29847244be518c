package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/basecase/basecase-backend/internal/handlers"
	"github.com/basecase/basecase-backend/internal/middleware"
)

type RouterConfig struct {
	AuthMiddleware *middleware.AuthMiddleware
	ProblemHandler *handlers.ProblemHandler
	SheetHandler   *handlers.SheetHandler
	CORSOrigins    []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)

	// ===============
	// || Admin     ||
	// ===============
	admin := router.Group("/api/v1/admin")
	admin.Use(cfg.AuthMiddleware.RequireAuth(), cfg.AuthMiddleware.RequireAdmin())
	admin.GET("/admin/dashboard", func(c *gin.Context) {
		c.JSON(200, gin.H{"success": true, "message": "Welcome to the admin dashboard"})
	})
	// Problems
	admin.POST("/create-problem", cfg.ProblemHandler.CreateProblem)
	admin.DELETE("/delete-problem/:slug", cfg.ProblemHandler.DeleteProblem)
	admin.PUT("/update-problem/:slug", cfg.ProblemHandler.UpdateProblem)
	admin.GET("/get-all-problems/:page", cfg.ProblemHandler.ListProblems)
	admin.GET("/get-inactive-problems", cfg.ProblemHandler.ListInactiveProblems)
	// Sheets
	admin.POST("/create-sheet", cfg.SheetHandler.CreateSheet)
	admin.POST("/sheet/:sheetSlug/section/create-subsection", cfg.SheetHandler.CreateSection)
	admin.POST("/section/:sectionId/add-problems", cfg.SheetHandler.AttachProblems)
	admin.GET("/get-sheets", cfg.SheetHandler.ListSheets)
	admin.GET("/sheet/:slug", cfg.SheetHandler.GetSheet)

	return router
}
