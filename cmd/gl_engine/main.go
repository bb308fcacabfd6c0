package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/gl_engine/internal/core/services"
	"github.com/SscSPs/gl_engine/internal/handlers"
	"github.com/SscSPs/gl_engine/internal/middleware"
	"github.com/SscSPs/gl_engine/internal/platform/config"
	"github.com/SscSPs/gl_engine/internal/platform/metrics"
	"github.com/SscSPs/gl_engine/internal/platform/storage"
	"github.com/SscSPs/gl_engine/pkg/cache"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ulule/limiter/v3"
	limitermemory "github.com/ulule/limiter/v3/drivers/store/memory"
)

// @title GL Engine API
// @version 1.0
// @description General ledger posting engine for invoices, payments, aging, corporate tax and fixed assets.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	uow, closeStore, err := storage.Open(ctx, cfg, storage.Options{Migrate: true}, logger)
	if err != nil {
		logger.Error("Failed to initialize storage", slog.String("driver", cfg.StorageDriver), slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStore()

	if err := services.SeedLedger(ctx, uow, cfg.BaseCurrency); err != nil {
		logger.Error("Failed to seed ledger", slog.String("error", err.Error()))
		os.Exit(1)
	}

	recorder, err := metrics.NewPrometheusRecorder(prometheus.DefaultRegisterer)
	if err != nil {
		logger.Error("Failed to register metrics", slog.String("error", err.Error()))
		os.Exit(1)
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.RedisURL, true)
	if err != nil {
		// The in-process rate cache still works; replicas just stop sharing lookups.
		logger.Warn("Redis unavailable, using in-process rate cache only", slog.String("error", err.Error()))
		redisClient = nil
	}
	defer cache.CloseRedisClient(redisClient)

	rateCache := services.NewRateCache(redisClient, cfg.RateCacheTTL, recorder)
	container := services.NewServiceContainer(uow, recorder, rateCache)

	r, err := newRouter(cfg, logger)
	if err != nil {
		logger.Error("Failed to build router", slog.String("error", err.Error()))
		os.Exit(1)
	}
	handlers.RegisterRoutes(r, cfg, container)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("storage_driver", cfg.StorageDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shut down", slog.String("error", err.Error()))
	}
	logger.Info("Server exited")
}

// newRouter builds the engine with the global middleware chain and the
// operational endpoints.
func newRouter(cfg *config.Config, logger *slog.Logger) (*gin.Engine, error) {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		return nil, err
	}
	ipLimiter := limiter.New(limitermemory.NewStore(), rate)

	r := gin.New()
	r.Use(
		middleware.StructuredLoggingMiddleware(logger),
		gin.Recovery(),
		cors.New(cors.Config{
			AllowOrigins:     cfg.CORSAllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
			ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		middleware.RateLimit(ipLimiter),
	)

	if err := r.SetTrustedProxies(nil); err != nil {
		return nil, err
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r, nil
}
