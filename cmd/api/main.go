package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"interview-coach/internal/config"
	"interview-coach/internal/db"
	"interview-coach/internal/domain"
	"interview-coach/internal/email"
	apihttp "interview-coach/internal/http"
	"interview-coach/internal/library"
	"interview-coach/internal/repository"
	"interview-coach/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
			redisClient = nil
		}
		cancel()
	}

	var (
		history    domain.HistoryStore
		similar    repository.SimilarityFinder
		queue      repository.FollowUpQueue = repository.NewMemoryFollowUpQueue()
		candidates repository.CandidateRepository = repository.NewMemoryCandidateRepository()
	)
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			logger.Fatal("db connect", zap.Error(err))
		}
		defer pool.Close()
		if err := db.Migrate(ctx, pool); err != nil {
			logger.Fatal("db migrate", zap.Error(err))
		}
		queue = repository.NewPgFollowUpQueue(pool)
		candidates = repository.NewPgCandidateRepository(pool)
		if cfg.HistoryBackend == "postgres" {
			store := repository.NewPgHistoryStore(pool)
			history, similar = store, store
		}
	}

	switch cfg.HistoryBackend {
	case "postgres":
		if history == nil {
			logger.Fatal("history backend postgres requires DATABASE_URL")
		}
	case "redis":
		if redisClient == nil {
			logger.Fatal("history backend redis requires a reachable REDIS_ADDR")
		}
		history = repository.NewRedisHistoryStore(redisClient)
	case "sqlite":
		store, err := repository.OpenSQLiteHistoryStore(ctx, cfg.SQLitePath)
		if err != nil {
			logger.Fatal("open sqlite history", zap.Error(err))
		}
		defer store.Close()
		history = store
	case "memory", "":
		history = repository.NewMemoryHistoryStore()
	default:
		logger.Fatal("unknown history backend", zap.String("backend", cfg.HistoryBackend))
	}

	lib, err := library.Default()
	if err != nil {
		logger.Fatal("load question library", zap.Error(err))
	}
	clock := domain.SystemClock{}
	pipeline, err := service.NewPipeline(logger, clock, lib, history, service.PipelineConfig{
		Platform:        cfg.InterviewPlatform,
		DailyCapMinutes: cfg.DailyPrepCapMinutes,
		FollowUp: service.FollowUpOrchestratorConfig{
			WorkStart:          cfg.FollowUpWorkStart,
			BusinessHoursStart: cfg.BusinessHoursStart,
			BusinessHoursEnd:   cfg.BusinessHoursEnd,
		},
	})
	if err != nil {
		logger.Fatal("pipeline init", zap.Error(err))
	}

	var (
		tokenStore service.RefreshTokenStore
		limiter    service.DeliveryRateLimiter
	)
	if redisClient != nil {
		tokenStore = service.NewRedisRefreshTokenStore(redisClient)
		limiter = service.NewRedisDeliveryRateLimiter(redisClient, cfg.DeliveryRateWindow, cfg.DeliveryRateMax)
	} else {
		tokenStore = service.NewMemoryRefreshTokenStore()
		limiter = service.NewMemoryDeliveryRateLimiter(cfg.DeliveryRateWindow, cfg.DeliveryRateMax)
	}
	jwtSvc := service.NewJWTServiceWithStore(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL, tokenStore)
	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured")
	}

	mailer := email.NewDisabledMailer("email sender not configured")
	if cfg.SMTPHost != "" {
		smtpMailer, err := email.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp mailer init failed", zap.Error(err))
		} else {
			mailer = smtpMailer
		}
	}
	dispatcher, err := service.NewFollowUpDispatcher(logger, queue, email.NewFollowUpSender(logger, mailer), limiter, clock, cfg.DispatchInterval)
	if err != nil {
		logger.Fatal("dispatcher init", zap.Error(err))
	}

	accountSvc := service.NewAccountService(logger, candidates)
	accountHandler := apihttp.NewAccountHandler(logger, accountSvc, jwtSvc)
	pipelineHandler := apihttp.NewPipelineHandler(logger, pipeline, queue, similar)
	router := apihttp.NewRouter(logger, accountHandler, pipelineHandler, jwtSvc)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting server",
			zap.String("port", cfg.HTTPPort),
			zap.String("history_backend", cfg.HistoryBackend),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return dispatcher.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("server stopped")
}
