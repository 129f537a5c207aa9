package main

import (
	"context"
	"net/http"
	"time"

	"github.com/Tapananshu17/HCI/config"
	"github.com/Tapananshu17/HCI/database"
	_ "github.com/Tapananshu17/HCI/docs" // Swagger docs
	"github.com/Tapananshu17/HCI/internal/controller"
	"github.com/Tapananshu17/HCI/internal/logger"
	"github.com/Tapananshu17/HCI/internal/middleware"
	"github.com/Tapananshu17/HCI/internal/model"
	"github.com/Tapananshu17/HCI/internal/repository"
	"github.com/Tapananshu17/HCI/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title Career Guidance Assessment API
// @version 1.0
// @description Multi-stage career self-assessment: sequential aptitude, values and personal sections with pause/resume, AI-scored results and a guidance chatbot.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init()

	app := fx.New(
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			database.NewRedisClient,
			NewGinEngine,
		),

		fx.Provide(
			repository.NewTxManager,
			repository.NewUserRepository,
			repository.NewAssessmentRepository,
			repository.NewTestSectionRepository,
			repository.NewResultsRepository,
			repository.NewChatRepository,
		),

		fx.Provide(
			service.NewSectionSequencer,
			service.NewQuestionBankService,
			service.NewGeminiLLMService,
			service.NewAuthService,
			service.NewUserService,
			service.NewResultsService,
			// AssessmentService only needs the trigger half of ResultsService.
			func(rs service.ResultsService) service.ResultsTrigger { return rs },
			service.NewAssessmentService,
			service.NewProgressService,
			service.NewChatService,
		),

		fx.Provide(
			controller.NewAuthController,
			controller.NewAssessmentController,
			controller.NewChatController,
			controller.NewUserController,
		),

		fx.Invoke(RegisterRoutesAndStartServer),
		fx.Invoke(AutoMigrateDB),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine() *gin.Engine {
	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// RegisterRoutesAndStartServer configures API routes and manages the HTTP
// server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	authCtrl *controller.AuthController,
	assessmentCtrl *controller.AssessmentController,
	chatCtrl *controller.ChatController,
	userCtrl *controller.UserController,
) {
	api := router.Group("/api/v1")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/setup", authCtrl.Setup)
		authGroup.POST("/login", authCtrl.Login)
	}

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(cfg))
	{
		protected.POST("/auth/logout", authCtrl.Logout)

		assessments := protected.Group("/assessments")
		assessments.POST("", assessmentCtrl.Start)
		assessments.POST("/save-progress", assessmentCtrl.SaveProgress)
		assessments.POST("/submit-section", assessmentCtrl.SubmitSection)
		assessments.GET("/history", assessmentCtrl.History)
		assessments.GET("/:assessment_id", assessmentCtrl.Get)
		assessments.GET("/:assessment_id/sections/:test_type", assessmentCtrl.GetSection)
		assessments.POST("/:assessment_id/abandon", assessmentCtrl.Abandon)
		assessments.GET("/:assessment_id/responses", assessmentCtrl.Responses)
		assessments.GET("/:assessment_id/results", assessmentCtrl.Results)

		chatbot := protected.Group("/chatbot")
		chatbot.POST("/message", chatCtrl.SendMessage)
		chatbot.GET("/history", chatCtrl.History)

		protected.GET("/home", userCtrl.Home)
		protected.PATCH("/profile", userCtrl.UpdateProfile)
		protected.DELETE("/profile", userCtrl.DeleteAccount)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Career guidance API server starting on port %s", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.User{},
		&model.Assessment{},
		&model.TestSection{},
		&model.AssessmentResults{},
		&model.ChatMessage{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}

	// AutoMigrate cannot express a partial index; this is what guarantees at
	// most one in-progress assessment per user under concurrent starts.
	err = db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS uq_assessments_user_in_progress
		ON assessments (user_id) WHERE status = 'in_progress' AND deleted_at IS NULL`).Error
	if err != nil {
		log.Error().Err(err).Msg("Failed to create partial unique index on assessments")
		return err
	}

	log.Info().Msg("Database migration completed successfully.")
	return nil
}
