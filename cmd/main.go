package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/basecase/basecase-backend/internal/clients/redis"
	"github.com/basecase/basecase-backend/internal/db"
	"github.com/basecase/basecase-backend/internal/handlers"
	"github.com/basecase/basecase-backend/internal/logger"
	"github.com/basecase/basecase-backend/internal/middleware"
	"github.com/basecase/basecase-backend/internal/repos"
	"github.com/basecase/basecase-backend/internal/server"
	"github.com/basecase/basecase-backend/internal/services"
	"github.com/basecase/basecase-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	port := utils.GetEnv("PORT", "5000", log)
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	problemsPerPage := utils.GetEnvAsInt("PROBLEMS_PER_PAGE", 10, log)
	corsOrigins := strings.Split(utils.GetEnv("CORS_ORIGINS", "http://localhost:3000", log), ",")

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	problemRepo := repos.NewProblemRepo(thePG, log)
	sheetRepo := repos.NewSheetRepo(thePG, log)
	sheetSectionRepo := repos.NewSheetSectionRepo(thePG, log)
	sectionProblemRepo := repos.NewSectionProblemRepo(thePG, log)

	// Sheet tree cache (optional; the service runs without redis)
	var treeCache redis.SheetCache
	if cache, err := redis.NewSheetCache(log); err != nil {
		log.Warn("Sheet cache disabled", "error", err)
	} else {
		treeCache = cache
		defer treeCache.Close()
	}

	// Services
	log.Info("Setting up Services from main...")
	problemService := services.NewProblemService(thePG, log, problemRepo, sheetRepo, treeCache, problemsPerPage)
	sheetService := services.NewSheetService(thePG, log, sheetRepo, sheetSectionRepo, sectionProblemRepo, problemRepo, treeCache)

	// Handlers
	log.Info("Setting up Handlers from main...")
	problemHandler := handlers.NewProblemHandler(log, problemService)
	sheetHandler := handlers.NewSheetHandler(log, sheetService)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, jwtSecretKey)

	// Router
	router := server.NewRouter(server.RouterConfig{
		AuthMiddleware: authMiddleware,
		ProblemHandler: problemHandler,
		SheetHandler:   sheetHandler,
		CORSOrigins:    corsOrigins,
	})

	log.Info("Starting server...", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Server stopped", "error", err)
	}
}
