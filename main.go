package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/epeers/holdings-dashboard/config"
	"github.com/epeers/holdings-dashboard/docs"
	"github.com/epeers/holdings-dashboard/internal/cache"
	"github.com/epeers/holdings-dashboard/internal/engine"
	"github.com/epeers/holdings-dashboard/internal/handlers"
	"github.com/epeers/holdings-dashboard/internal/middleware"
	"github.com/epeers/holdings-dashboard/internal/repository"
	"github.com/epeers/holdings-dashboard/internal/services"
	"github.com/epeers/holdings-dashboard/internal/sheets"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Portfolio Dashboard API
// @version 1.0
// @description Portfolio totals, weighted beta, cash share and allocation breakdowns from spreadsheet snapshots.
// @BasePath /
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	configureLogging(cfg)

	ctx := context.Background()

	// Initialize the table source
	var source repository.TableSource
	switch cfg.DataSource {
	case config.SourcePostgres:
		pool, err := openPostgres(ctx, cfg.PGURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer pool.Close()
		source = repository.NewPostgresSource(pool)
		log.Infof("Reading snapshots from PostgreSQL")
	default:
		source = sheets.NewClientWithBaseURL(cfg.SheetID, cfg.SheetsBaseURL, cfg.SheetsRateLimit)
		log.Infof("Reading snapshots from spreadsheet %s", cfg.SheetID)
	}

	// Initialize caches
	memCache := cache.NewMemoryCache()
	var shared repository.SharedCache
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			log.Warnf("Redis unavailable, continuing with the in-memory cache only: %v", err)
		} else {
			defer redisCache.Close()
			shared = redisCache
		}
	}

	// Initialize repository, services and handlers
	snapshotRepo := repository.NewSnapshotRepository(source, memCache, shared)
	dashboardSvc := services.NewDashboardService(snapshotRepo, services.DashboardConfig{
		Tables: services.Tables{
			Accounts: cfg.AccountsTable,
			Equity:   cfg.EquityTable,
			Indexes:  cfg.IndexesTable,
		},
		Freshness:   cfg.FreshnessWindow,
		EquityClass: cfg.EquityAssetClass,
		Benchmark:   cfg.BenchmarkIndex,
		Engine:      engine.Options{CashClasses: cfg.CashAssetClasses},
	})
	dashboardHandler := handlers.NewDashboardHandler(dashboardSvc, engine.Formatter{
		Currency:         cfg.DisplayCurrency,
		CurrencyDecimals: cfg.CurrencyDecimals,
		PercentDecimals:  cfg.PercentDecimals,
	})

	// Setup Gin router
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog())

	tmpl, err := handlers.LoadTemplates()
	if err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}
	router.SetHTMLTemplate(tmpl)

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Dashboard routes
	router.GET("/", dashboardHandler.Page)
	api := router.Group("/api")
	api.GET("/dates", dashboardHandler.Dates)
	api.GET("/dashboard", dashboardHandler.Dashboard)
	api.GET("/history", dashboardHandler.History)
	api.POST("/refresh", dashboardHandler.Refresh)

	// API docs
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Create HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Give outstanding requests 5 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}

func configureLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warnf("Unknown LOG_LEVEL %q, using info", cfg.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

func openPostgres(ctx context.Context, pgURL string) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, pgURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
