package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"extranet/docs"
	"extranet/internal/auth"
	"extranet/internal/cache"
	"extranet/internal/config"
	"extranet/internal/database"
	handlers "extranet/internal/http/handler"
	"extranet/internal/http/middleware"
	"extranet/internal/logging"
	"extranet/internal/matcher"
	"extranet/internal/metrics"
	"extranet/internal/notify"
	"extranet/internal/otel"
	"extranet/internal/repository/postgres"
	"extranet/internal/service"
	"extranet/internal/storage"
)

// @title Broker Extranet API
// @version 1.0
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	logger := logging.New(cfg.Log.Level, cfg.Log.Pretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize tracing")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	if cfg.Auth.JWTSecret == "" {
		logger.Fatal().Msg("JWT_SECRET is required")
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	objStore, err := storage.NewMinIO(ctx, cfg.MinIO)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize object storage")
	}

	var recent cache.RecentUploads = cache.Noop{}
	rdb, err := database.NewRedis(cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	if rdb != nil {
		defer rdb.Close()
		recent = cache.NewRedisRecentUploads(rdb, cfg.Redis.RecentLimit, cfg.Redis.RecentTTL)
	} else {
		logger.Warn().Msg("REDIS_ADDR not set, recent uploads disabled")
	}

	var events notify.Publisher = notify.Noop{}
	if cfg.AMQP.URL != "" {
		pub, err := notify.Dial(cfg.AMQP.URL, cfg.AMQP.Exchange, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to message broker")
		}
		defer pub.Close()
		events = pub
	} else {
		logger.Warn().Msg("AMQP_URL not set, upload events disabled")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	promMW, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to register http metrics")
	}
	matchMetrics, err := metrics.NewMatchMetrics(reg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to register match metrics")
	}

	// Initialize repositories and services
	docRepo := postgres.NewDocumentPostgres(db)
	userRepo := postgres.NewUserPostgres(db)
	issuer := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	docSvc := service.NewDocumentService(service.DocumentDeps{
		Store:       objStore,
		Documents:   docRepo,
		Users:       userRepo,
		Recent:      recent,
		Events:      events,
		Logger:      logger,
		DownloadTTL: cfg.DownloadURLTTL,
	})
	userSvc := service.NewUserService(userRepo)
	bulkSvc := service.NewBulkService(
		matcher.New(cfg.Match.Threshold, cfg.Match.Workers),
		userSvc, docSvc, matchMetrics, logger,
	)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    cfg.BodyLimitMB * 1024 * 1024,
	})

	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(logger))
	app.Use(promMW.Handler())
	app.Use(otelfiber.Middleware())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(app, handlers.Deps{
		DB:        db,
		Tokens:    issuer,
		Documents: docSvc,
		Bulk:      bulkSvc,
		Users:     userSvc,
		Auth:      service.NewAuthService(userRepo, issuer),
	})

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	go func() {
		<-ctx.Done()
		logger.Info().Msg("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error().Err(err).Msg("shutdown failed")
		}
	}()

	addr := ":" + cfg.Port
	logger.Info().Str("addr", addr).Msg("listening")
	if err := app.Listen(addr); err != nil {
		logger.Fatal().Err(err).Msg("failed to start server")
	}
}
