package main

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/circadia-app/circadia/backend/internal/config"
	"github.com/circadia-app/circadia/backend/internal/handlers"
	"github.com/circadia-app/circadia/backend/internal/logger"
	"github.com/circadia-app/circadia/backend/internal/middleware"
	"github.com/circadia-app/circadia/backend/internal/repository"
	"github.com/circadia-app/circadia/backend/internal/service"
	"github.com/circadia-app/circadia/backend/pkg/supabase"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long:  `Start the HTTP API server and listen for requests.`,
	RunE:  runServe,
}

var port string

func init() {
	serveCmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if port != "" {
		cfg.Server.Port = port
	}

	log := logger.New(logger.Config{
		Level:   logger.ParseLevel(cfg.Log.Level),
		Backend: cfg.Log.Backend,
		Format:  cfg.Log.Format,
	})
	logger.SetDefault(log)

	log.Info("starting circadia api server",
		logger.String("env", cfg.Server.Env),
		logger.String("store_driver", cfg.Store.Driver),
	)

	// The Supabase client doubles as token verifier; local sqlite
	// deployments fall back to the development verifier.
	var (
		supabaseClient *supabase.Client
		verifier       middleware.TokenVerifier
	)
	if cfg.Store.Driver == "supabase" {
		supabaseClient = supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.ServiceKey)
		verifier = supabaseClient
	} else {
		log.Warn("using development token verifier; all bearer tokens are accepted")
		verifier = middleware.DevVerifier{}
	}

	repos, err := repository.New(cfg, supabaseClient)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer repos.Close()

	loc, err := cfg.Engine.Location()
	if err != nil {
		return fmt.Errorf("failed to resolve engine timezone: %w", err)
	}

	circadianService := service.NewCircadianService(
		repos.Events,
		repos.Insights,
		loc,
		cfg.Engine.SleepWindow,
		cfg.Engine.FastReminder(),
	)
	eventService := service.NewEventService(repos.Events, circadianService)
	insightService := service.NewInsightService(repos.Insights)

	insightsHandler := handlers.NewInsightsHandler(circadianService, insightService)
	eventHandler := handlers.NewEventHandler(eventService)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
			"env":    cfg.Server.Env,
		})
	})

	v1 := router.Group("/api/v1")
	v1.Use(middleware.Auth(verifier))
	{
		v1.POST("/events", eventHandler.RecordEvent)
		v1.GET("/events", eventHandler.GetEvents)

		v1.POST("/insights/events", insightsHandler.IngestEvent)
		v1.GET("/insights", insightsHandler.GetInsights)
		v1.PATCH("/insights/:id/read", insightsHandler.MarkRead)
	}

	log.Info("server listening", logger.String("port", cfg.Server.Port))
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
