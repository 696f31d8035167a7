package api

import (
	"net/http"

	"liftlog/workout-app/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	exerciseService service.ExerciseService,
	templateService service.TemplateService,
	workoutService service.WorkoutService,
	statsService service.StatsService,
	metricsService service.MetricsService,
) {
	authHandler := NewAuthHandler(authService)
	exerciseHandler := NewExerciseHandler(exerciseService)
	templateHandler := NewTemplateHandler(templateService)
	workoutHandler := NewWorkoutHandler(workoutService, templateService, statsService)
	statsHandler := NewStatsHandler(statsService)
	metricsHandler := NewMetricsHandler(metricsService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userID, ok := requireUser(c)
			if !ok {
				return
			}
			c.JSON(http.StatusOK, gin.H{"userId": userID.Hex()})
		})

		exerciseGroup := protected.Group("/exercises")
		{
			exerciseGroup.POST("", exerciseHandler.CreateExercise)
			exerciseGroup.GET("", exerciseHandler.GetExercises)
			exerciseGroup.GET("/:id", exerciseHandler.GetExercise)
			exerciseGroup.PUT("/:id", exerciseHandler.UpdateExercise)
			exerciseGroup.PUT("/:id/default-sets", exerciseHandler.UpdateDefaultSets)
			exerciseGroup.DELETE("/:id", exerciseHandler.DeleteExercise)
		}

		templateGroup := protected.Group("/templates")
		{
			templateGroup.POST("", templateHandler.CreateTemplate)
			templateGroup.GET("", templateHandler.GetTemplates)
			templateGroup.GET("/:id", templateHandler.GetTemplate)
			templateGroup.PUT("/:id", templateHandler.RenameTemplate)
			templateGroup.DELETE("/:id", templateHandler.DeleteTemplate)
			templateGroup.POST("/:id/exercises", templateHandler.AppendExercise)
			templateGroup.DELETE("/:id/exercises/:entryId", templateHandler.RemoveExercise)
		}

		workoutGroup := protected.Group("/workout")
		{
			workoutGroup.POST("/start", workoutHandler.StartWorkout)
			workoutGroup.GET("", workoutHandler.GetActiveWorkout)
			workoutGroup.POST("/finish", workoutHandler.FinishWorkout)
			workoutGroup.DELETE("", workoutHandler.CancelWorkout)
			workoutGroup.POST("/exercises", workoutHandler.AddExercise)
			workoutGroup.DELETE("/exercises/:id", workoutHandler.RemoveExercise)
			workoutGroup.POST("/exercises/:id/sets", workoutHandler.AddSet)
			workoutGroup.DELETE("/exercises/:id/sets/:setId", workoutHandler.DeleteSet)
			workoutGroup.PUT("/sets/:setId", workoutHandler.UpdateSet)
			workoutGroup.POST("/sets/:setId/input", workoutHandler.LogSetInput)
			workoutGroup.POST("/sets/:setId/done", workoutHandler.ToggleSetDone)
		}

		sessionGroup := protected.Group("/sessions")
		{
			sessionGroup.GET("", workoutHandler.GetSessions)
			sessionGroup.DELETE("/:id", workoutHandler.DeleteSession)
		}

		statsGroup := protected.Group("/stats")
		{
			statsGroup.GET("/dashboard", statsHandler.GetDashboard)
			statsGroup.GET("/streak", statsHandler.GetStreak)
			statsGroup.GET("/exercises/:id/pr", statsHandler.GetPersonalRecord)
		}

		metricsGroup := protected.Group("/metrics")
		{
			metricsGroup.POST("", metricsHandler.CreateMetric)
			metricsGroup.GET("", metricsHandler.GetMetrics)
			metricsGroup.DELETE("/:id", metricsHandler.DeleteMetric)
			metricsGroup.POST("/photo-upload", metricsHandler.RequestPhotoUpload)
		}
	}
}
