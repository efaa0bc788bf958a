package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/finrl-desk/internal/config"
	"github.com/finrl-desk/internal/handler"
	"github.com/finrl-desk/internal/logger"
	"github.com/finrl-desk/internal/market"
	"github.com/finrl-desk/internal/repository"
	"github.com/finrl-desk/internal/scoring"
	"github.com/finrl-desk/internal/service"
	"github.com/finrl-desk/pkg/keygen"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		return serve(cfg)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the YAML config file")
}

func serve(cfg *config.Config) error {
	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	// Set Gin mode
	gin.SetMode(cfg.Server.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	accountRepo, recordRepo, closeStore, err := initStore(cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	cache, closeCache := initCache(ctx, cfg, log)
	defer closeCache()

	scorer, err := initScorer(ctx, cfg, log)
	if err != nil {
		return err
	}

	// Initialize services
	authService := service.NewAuthService(accountRepo, cfg.Auth, log)
	if err := authService.Seed(ctx, cfg.Auth.BootstrapAccounts); err != nil {
		return fmt.Errorf("seed accounts: %w", err)
	}
	tokenService := service.NewJWTTokenService(cfg.JWT)
	analysisService := service.NewAnalysisService(recordRepo, scorer, keygen.NewRecordIDGenerator(), cfg.Scoring.Timeout, log)
	marketService := service.NewMarketService(market.NewSimulatedFeed(), cache, cfg.Market.CacheTTL, log)
	adminService := service.NewAdminService(authService, recordRepo, marketService)

	router := handler.NewRouter(handler.RouterDeps{
		Auth:               authService,
		Tokens:             tokenService,
		Analysis:           analysisService,
		Admin:              adminService,
		LoginRatePerSecond: cfg.Auth.LoginRatePerSecond,
		LoginBurst:         cfg.Auth.LoginBurst,
		StreamInterval:     cfg.Market.StreamInterval,
		TrustedProxies:     cfg.Server.TrustedProxies,
		Shutdown:           ctx,
		Version:            Version,
		Logger:             log,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting server",
			zap.String("addr", addr),
			zap.String("version", Version),
			zap.String("store", cfg.Store.Driver),
			zap.String("scoring", cfg.Scoring.Provider),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")

	// Graceful shutdown with 10 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server exited properly")
	return nil
}

func initStore(cfg *config.Config, log *zap.Logger) (repository.AccountRepository, repository.AnalysisRepository, func(), error) {
	if cfg.Store.Driver == config.StoreMemory {
		log.Info("Using in-memory store; data is lost on restart")
		return repository.NewMemoryAccountRepository(), repository.NewMemoryAnalysisRepository(), func() {}, nil
	}

	db, err := initDatabase(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init database: %w", err)
	}
	if err := repository.AutoMigrate(db); err != nil {
		return nil, nil, nil, fmt.Errorf("migrate database: %w", err)
	}

	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return repository.NewGormAccountRepository(db), repository.NewGormAnalysisRepository(db), closeDB, nil
}

func initDatabase(cfg *config.Config) (*gorm.DB, error) {
	gormLogger := gormlogger.Default.LogMode(gormlogger.Info)
	if cfg.Server.Mode == gin.ReleaseMode {
		gormLogger = gormlogger.Default.LogMode(gormlogger.Warn)
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// initCache picks the shared Redis cache when configured and reachable,
// else the in-process cache
func initCache(ctx context.Context, cfg *config.Config, log *zap.Logger) (market.Cache, func()) {
	if !cfg.Redis.Enabled {
		return market.NewMemoryCache(), func() {}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn("Redis unreachable, using in-process market cache", zap.String("addr", cfg.Redis.Addr()), zap.Error(err))
		_ = rdb.Close()
		return market.NewMemoryCache(), func() {}
	}

	return market.NewRedisCache(rdb), func() {
		// Close Redis connection
		if err := rdb.Close(); err != nil {
			log.Warn("Error closing Redis connection", zap.Error(err))
		}
	}
}

func initScorer(ctx context.Context, cfg *config.Config, log *zap.Logger) (scoring.Scorer, error) {
	switch cfg.Scoring.Provider {
	case config.ScoringGemini:
		gen, err := scoring.NewGenAIGenerator(ctx, cfg.Scoring.Gemini)
		if err != nil {
			return nil, fmt.Errorf("init gemini: %w", err)
		}
		return scoring.NewGeminiScorer(gen, cfg.Scoring.Gemini.RequestsPerMinute, log), nil
	default:
		return scoring.NewSimulatedScorer(), nil
	}
}
