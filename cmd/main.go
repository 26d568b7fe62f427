package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"pulsedash/internal/apierrors"
	"pulsedash/internal/caching"
	"pulsedash/internal/config"
	"pulsedash/internal/handlers"
	"pulsedash/internal/identity"
	"pulsedash/internal/jobs/background"
	"pulsedash/internal/klaviyo"
	"pulsedash/internal/middleware"
	"pulsedash/internal/observability"
	"pulsedash/internal/repositories"
	"pulsedash/internal/secrets"
	"pulsedash/internal/services"
	"pulsedash/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := observability.NewLogger(os.Getenv("GO_ENV"))
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	cache := caching.NewRedisCacheService(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)

	storage, err := services.NewMinioStorage(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL)
	if err != nil {
		logger.Fatal("failed to initialize object storage", zap.Error(err))
	}
	if err := storage.EnsureBucketExists(ctx, cfg.Minio.Bucket); err != nil {
		logger.Warn("could not ensure branding bucket", zap.Error(err))
	}

	credentials, err := secrets.NewCredentialStore(cfg.Secrets.EncryptionKey)
	if err != nil {
		logger.Fatal("invalid credential encryption key", zap.Error(err))
	}

	// Repositories
	agencyRepo := repositories.NewAgencyRepository(pool)
	clientRepo := repositories.NewClientRepository(pool)
	campaignRepo := repositories.NewCampaignRepository(pool)
	flowRepo := repositories.NewFlowRepository(pool)
	flowMessageRepo := repositories.NewFlowMessageRepository(pool)
	metricRepo := repositories.NewMetricRepository(pool)
	profileRepo := repositories.NewProfileRepository(pool)
	opsFormRepo := repositories.NewOpsFormRepository(pool)

	// External clients
	klaviyoClient := klaviyo.NewClient(cfg.Klaviyo, logger)
	idpClient := identity.NewAdminClient(cfg.Identity.AdminURL, cfg.Identity.ServiceRoleKey, logger)

	// Services
	agencyService := services.NewAgencyService(agencyRepo, clientRepo, profileRepo, cache, storage, cfg.Minio.Bucket, logger)
	clientService := services.NewClientService(clientRepo, agencyRepo, credentials)
	shareService := services.NewShareService(agencyRepo, clientRepo)
	userService := services.NewUserService(profileRepo, idpClient, logger)
	syncService := services.NewSyncService(clientRepo, campaignRepo, flowRepo, flowMessageRepo, metricRepo,
		credentials, klaviyoClient, cfg.Klaviyo.ConversionMetricID, cfg.Sync.Workers, logger)
	proxyService := services.NewProxyService(clientRepo, credentials, klaviyoClient, cfg.Klaviyo.ConversionMetricID, logger)
	metricsService := services.NewMetricsService(clientRepo, flowRepo, campaignRepo, metricRepo, logger)
	opsFormService := services.NewOpsFormService(opsFormRepo, clientRepo, logger)
	copyService := services.NewCopyService(cfg.OpenAIKey, logger)

	// Handlers
	agencyHandlers := handlers.NewAgencyHandlers(agencyService)
	clientHandlers := handlers.NewClientHandlers(clientService)
	metricsHandlers := handlers.NewMetricsHandlers(metricsService)
	proxyHandlers := handlers.NewProxyHandlers(proxyService)
	syncHandlers := handlers.NewSyncHandlers(syncService)
	shareHandlers := handlers.NewShareHandlers(shareService, cache)
	opsFormHandlers := handlers.NewOpsFormHandlers(opsFormService)
	userHandlers := handlers.NewUserHandlers(userService)
	aiHandlers := handlers.NewAIHandlers(copyService)
	healthHandlers := handlers.NewHealthHandlers(pool, cache)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = apierrors.EchoErrorHandler(logger)
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestID())
	e.Use(echoMiddleware.CORS())

	// Health probes
	e.GET("/health", healthHandlers.Liveness)
	e.GET("/health/ready", healthHandlers.Readiness)
	e.GET("/health/detailed", healthHandlers.Detailed)

	api := e.Group("/api")

	// Public share surface, rate limited inside the handler
	api.GET("/ops-share/:token", shareHandlers.Resolve)

	// Sync surface, guarded by the sync bearer key
	syncGroup := api.Group("/sync", middleware.RequireSyncKey(cfg.Sync.APIKey))
	syncGroup.POST("", syncHandlers.SyncAll)
	syncGroup.POST("/:clientSlug", syncHandlers.SyncClient)

	// Dashboard surface, guarded by identity-provider JWTs
	dashboard := api.Group("")
	if cfg.Identity.JWKSURL != "" {
		auth, err := middleware.NewIdentityAuth(cfg.Identity.JWKSURL)
		if err != nil {
			logger.Fatal("failed to initialize identity auth", zap.Error(err))
		}
		dashboard.Use(auth.Middleware())
	} else {
		logger.Warn("IDENTITY_JWKS_URL not set, dashboard routes are unauthenticated")
	}

	dashboard.GET("/agency", agencyHandlers.GetOverview)
	dashboard.PATCH("/agencies/:id", agencyHandlers.UpdateBranding)
	dashboard.POST("/agencies/:id/logo", agencyHandlers.UploadLogo)

	dashboard.POST("/clients", clientHandlers.Create)
	dashboard.GET("/clients/:slug", clientHandlers.Get)
	dashboard.PATCH("/clients/:id", clientHandlers.Update)
	dashboard.POST("/clients/:id/credential", clientHandlers.RotateCredential)
	dashboard.POST("/clients/:id/active", clientHandlers.SetActive)

	dashboard.GET("/flow-emails", metricsHandlers.FlowEmails)
	dashboard.GET("/campaigns", metricsHandlers.Campaigns)
	dashboard.POST("/klaviyo-proxy/:action", proxyHandlers.Relay)

	dashboard.POST("/ops-share/generate", shareHandlers.Generate)
	dashboard.POST("/ops-share/disable", shareHandlers.Disable)

	dashboard.GET("/ops/forms", opsFormHandlers.List)
	dashboard.POST("/ops/forms", opsFormHandlers.Create)
	dashboard.PATCH("/ops/forms/:id", opsFormHandlers.Update)

	dashboard.DELETE("/users/:id", userHandlers.Delete)
	dashboard.POST("/ai/revise-copy", aiHandlers.ReviseCopy)

	// Scheduled sync and share-token hygiene
	var scheduler *background.Scheduler
	if cfg.Sync.IntervalMinutes > 0 {
		scheduler, err = background.NewScheduler(syncService, agencyRepo,
			time.Duration(cfg.Sync.IntervalMinutes)*time.Minute, logger)
		if err != nil {
			logger.Fatal("failed to initialize sync scheduler", zap.Error(err))
		}
		scheduler.Start()
	}

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		if err := e.Start(addr); err != nil {
			logger.Info("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if scheduler != nil {
		if err := scheduler.Stop(); err != nil {
			logger.Warn("scheduler shutdown failed", zap.Error(err))
		}
	}
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
}
