package routes

import (
	"net/http"

	"edulearn/handlers"
	"edulearn/middleware"
	"edulearn/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is enforced at the HTTP layer
	},
}

func SetupRoutes(
	router *gin.Engine,
	authHandler *handlers.AuthHandler,
	quizHandler *handlers.QuizHandler,
	attemptHandler *handlers.AttemptHandler,
	statsHandler *handlers.StatsHandler,
	hub *services.Hub,
	quizService *services.QuizService,
	jwtSecret string,
	log *zap.Logger,
) {
	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		protected := api.Group("/")
		protected.Use(middleware.Auth(jwtSecret))
		{
			protected.GET("/auth/profile", authHandler.GetProfile)

			protected.GET("/courses/:courseId/quizzes", quizHandler.ListCourseQuizzes)

			quizzes := protected.Group("/quizzes")
			{
				quizzes.POST("", quizHandler.CreateQuiz)
				quizzes.GET("/:id", quizHandler.GetQuizForStudent)
				quizzes.GET("/:id/edit", quizHandler.GetQuizForEdit)
				quizzes.PUT("/:id", quizHandler.UpdateQuiz)
				quizzes.DELETE("/:id", quizHandler.DeleteQuiz)

				quizzes.POST("/:id/attempts", attemptHandler.SubmitAttempt)
				quizzes.GET("/:id/result", attemptHandler.GetAttemptResult)
				quizzes.GET("/:id/statistics", statsHandler.GetQuizStatistics)
			}
		}
	}

	// Live attempt feed for the quiz owner. Auth rides in the token
	// query parameter because browsers cannot set headers on websocket
	// upgrades.
	router.GET("/ws/quizzes/:id", middleware.Auth(jwtSecret), func(c *gin.Context) {
		claims := middleware.CurrentUser(c)
		if claims == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
			return
		}
		quizID := c.Param("id")

		// Reuse the edit-view gate: only the course owner may watch.
		if _, err := quizService.GetQuizForEdit(c.Request.Context(), claims.UserID, quizID); err != nil {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "You do not have permission to watch this quiz"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Warn("websocket upgrade failed",
				zap.String("quiz_id", quizID),
				zap.Error(err))
			return
		}
		hub.RegisterClient(conn, quizID, claims.UserID)
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
