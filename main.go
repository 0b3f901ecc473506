package main

import (
	"log"

	"edulearn/config"
	"edulearn/handlers"
	"edulearn/middleware"
	"edulearn/models"
	"edulearn/pkg/logger"
	"edulearn/routes"
	"edulearn/services"
	"edulearn/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	logger.Init(cfg.Server.Mode)
	defer logger.Log.Sync()

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.Enrollment{},
		&models.Quiz{},
		&models.Question{},
		&models.Option{},
		&models.Attempt{},
		&models.AttemptAnswer{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	redisClient := config.InitRedis(cfg)

	store := storage.NewGormStore(db)
	gate := services.NewCourseAccessGate(db)
	ids := services.NewUUIDGenerator()

	hub := services.NewHub(logger.Log)
	go hub.Run()

	statsService := services.NewStatsService(store, gate, redisClient, cfg.StatsCacheTTL(), logger.Log)
	quizService := services.NewQuizService(store, gate, ids, statsService, logger.Log)
	attemptService := services.NewAttemptService(store, gate, ids, statsService, hub, logger.Log)
	authService := services.NewAuthService(db, ids, cfg.JWT.Secret, cfg.TokenTTL())

	authHandler := handlers.NewAuthHandler(authService, logger.Log)
	quizHandler := handlers.NewQuizHandler(quizService, logger.Log)
	attemptHandler := handlers.NewAttemptHandler(attemptService, logger.Log)
	statsHandler := handlers.NewStatsHandler(statsService, logger.Log)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())

	routes.SetupRoutes(router, authHandler, quizHandler, attemptHandler, statsHandler, hub, quizService, cfg.JWT.Secret, logger.Log)

	logger.Log.Info("server starting on port " + cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
