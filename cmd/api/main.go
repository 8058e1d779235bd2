package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lajospolya/popular-vote/internal/config"
	"github.com/lajospolya/popular-vote/internal/handlers"
	"github.com/lajospolya/popular-vote/internal/logging"
	"github.com/lajospolya/popular-vote/internal/middleware"
	"github.com/lajospolya/popular-vote/internal/migrations"
	"github.com/lajospolya/popular-vote/internal/observability"
	"github.com/lajospolya/popular-vote/internal/redisclient"
	"github.com/lajospolya/popular-vote/internal/repository"
	"github.com/lajospolya/popular-vote/internal/services"
	"github.com/lajospolya/popular-vote/internal/utils"
	"github.com/lajospolya/popular-vote/internal/utils/httpclient"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"

	_ "github.com/lajospolya/popular-vote/docs"
)

// @title           Popular Vote API
// @version         1.0
// @description     Civic API where citizens follow policies, share opinions and vote once per policy.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @tag.name citizens
// @tag.description Citizen registration, profiles and politician verification

// @tag.name votes
// @tag.description Vote casting and poll results

// @tag.name health
// @tag.description Health check operations

func main() {
	// Initialize logger first
	if err := logging.InitLogger(); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() { _ = logging.Logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logging.Logger.Fatal("failed to load config", zap.Error(err))
	}

	ctx := context.Background()

	shutdownTracer := observability.InitTracer(ctx, cfg)
	defer shutdownTracer()

	if cfg.MigrateOnStart {
		if err := migrations.UpURL(ctx, cfg.DatabaseURL); err != nil {
			logging.Logger.Fatal("failed to apply migrations", zap.Error(err))
		}
		logging.Logger.Info("migrations applied")
	}

	pool, err := config.InitPostgres(ctx, cfg)
	if err != nil {
		logging.Logger.Fatal("failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pool.Close()

	pingers := map[string]handlers.Pinger{"postgres": pool.Ping}

	var redisClient *redisclient.Client
	if cfg.CacheEnabled {
		redisClient = config.InitRedis(ctx, cfg)
		defer redisClient.Close()
		pingers["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	} else {
		logging.Logger.Info("cache is disabled")
	}

	auditor, stopAudit := initAuditor(ctx, cfg, pingers)
	defer stopAudit()

	router := buildRouter(ctx, cfg, pool, redisClient, auditor, pingers)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logging.Logger.Info("starting server",
			zap.Int("port", cfg.Port),
			zap.String("environment", cfg.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Logger.Error("server forced to shutdown", zap.Error(err))
	}

	logging.Logger.Info("server exited gracefully")
}

// initAuditor connects the MongoDB audit trail when enabled. The returned
// stop function drains queued entries and disconnects.
func initAuditor(ctx context.Context, cfg *config.Config, pingers map[string]handlers.Pinger) (utils.Auditor, func()) {
	if !cfg.AuditLogsEnabled {
		logging.Logger.Info("audit logging is disabled")
		return utils.NoopAuditor{}, func() {}
	}

	db, disconnect, err := config.InitMongoDB(ctx, cfg)
	if err != nil {
		logging.Logger.Error("audit trail unavailable, continuing without it", zap.Error(err))
		return utils.NoopAuditor{}, func() {}
	}
	pingers["mongodb"] = func(ctx context.Context) error {
		return db.Client().Ping(ctx, readpref.Primary())
	}

	worker := utils.NewAuditWorker(
		utils.NewMongoAuditStore(db.Collection(cfg.AuditLogsCollection)),
		cfg.AuditWorkerCount,
		cfg.AuditBufferSize,
		logging.Logger,
	)
	return worker, func() {
		worker.Stop()
		disconnectMongo(disconnect)
	}
}

func disconnectMongo(disconnect func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := disconnect(ctx); err != nil && !errors.Is(err, mongo.ErrClientDisconnected) {
		logging.Logger.Warn("failed to disconnect from MongoDB", zap.Error(err))
	}
}

func buildRouter(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, redisClient *redisclient.Client, auditor utils.Auditor, pingers map[string]handlers.Pinger) *gin.Engine {
	logger := logging.Logger

	citizenRepo := repository.NewCitizenRepository(pool)
	policyRepo := repository.NewPolicyRepository(pool)
	opinionRepo := repository.NewOpinionRepository(pool)
	partyRepo := repository.NewPartyRepository(pool)
	voteRepo := repository.NewVoteRepository(pool)
	geoRepo := repository.NewGeoRepository(pool)

	cache := services.NewCacheService(redisClient, logger)
	idp := services.NewIdentityProvider(cfg, httpclient.Shared(), logger)

	limiter := services.NewKeyedRateLimiter(cfg.VoteRateLimitPerMinute, logger)
	go limiter.Run(ctx, 5*time.Minute)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestTracker(),
		middleware.RequestTiming(),
		cors.New(cors.Config{
			AllowOrigins:     cfg.CORSAllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "HEAD"},
			AllowHeaders:     []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		middleware.AuditMiddleware(auditor),
	)

	// Metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handlers.RegisterRoutes(router, handlers.Dependencies{
		Citizens:      services.NewCitizenService(citizenRepo, geoRepo, idp, services.RoleIDsFromConfig(cfg), auditor, logger),
		Policies:      services.NewPolicyService(policyRepo, citizenRepo, cache, auditor, logger),
		Opinions:      services.NewOpinionService(opinionRepo, citizenRepo, policyRepo, auditor, logger),
		Parties:       services.NewPartyService(partyRepo, citizenRepo, policyRepo, auditor, logger),
		Votes:         services.NewVoteService(voteRepo, citizenRepo, policyRepo, cache, cfg.PollCacheTTL, auditor, logger),
		Geo:           services.NewGeoService(geoRepo, cache, cfg.GeoCacheTTL, logger),
		Authenticator: middleware.NewAuthenticator(cfg, httpclient.Shared(), logger),
		VoteLimiter:   limiter,
		Pingers:       pingers,
		Logger:        logger,
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return router
}
