package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mehrdadmmz/StagePass/internal/api"
	"github.com/mehrdadmmz/StagePass/internal/config"
	"github.com/mehrdadmmz/StagePass/internal/db"
	"github.com/mehrdadmmz/StagePass/internal/logger"
	"github.com/mehrdadmmz/StagePass/internal/ratelimit"
	"github.com/mehrdadmmz/StagePass/internal/repository/dao"
)

const configPath = "./cmd/app/config.yml"

func Start() error {
	conf, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	l, err := logger.Init(conf.API.Environment, conf.API.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}
	defer func() { _ = l.Sync() }()

	err = config.Watch(configPath, func(updated *config.AppConfig) {
		if err := logger.SetLevel(updated.API.LogLevel); err != nil {
			zap.L().Warn("ignoring log level change", zap.Error(err))
			return
		}
		zap.L().Info("config reloaded", zap.String("log_level", updated.API.LogLevel))
	}, func(err error) {
		zap.L().Warn("failed to reload config", zap.Error(err))
	})
	if err != nil {
		return fmt.Errorf("failed to watch config -> %w", err)
	}

	dbURL := os.Getenv("DATABASE_URL")
	var postgresDB *gorm.DB
	if dbURL != "" {
		postgresDB, err = db.OpenPostgresWithURL(dbURL)
	} else {
		postgresDB, err = db.OpenPostgres(conf.Postgres)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}

	if err = dao.InitTables(postgresDB); err != nil {
		return fmt.Errorf("failed to migrate database -> %w", err)
	}

	limiter, closeRedis := newLimiter(context.Background(), conf.Redis)
	defer closeRedis()

	s, err := api.NewServer(conf, postgresDB, limiter)
	if err != nil {
		return fmt.Errorf("failed to initialize server -> %w", err)
	}

	return serve(s, conf.API)
}

func serve(s *api.Server, conf *config.APIConfig) error {
	server := &http.Server{
		Addr:    ":" + conf.Port,
		Handler: s.Router,
	}

	srvErr := make(chan error, 1)
	go func() {
		zap.L().Info(fmt.Sprintf("starting server at %v", server.Addr))
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start the server -> %w", err)
		}
	case <-stopCtx.Done():
		zap.L().Info("shutdown signal received, stopping server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), conf.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to stop the server -> %w", err)
	}

	zap.L().Info("server stopped")
	return nil
}

// newLimiter connects the validation rate limiter. Without a URL, or when
// Redis is unreachable, it returns nil and validations run unlimited.
func newLimiter(ctx context.Context, conf *config.RedisConfig) (*ratelimit.Limiter, func()) {
	if conf.URL == "" {
		zap.L().Warn("redis url not set, ticket validations are not rate limited")
		return nil, func() {}
	}

	client, err := ratelimit.NewClient(ctx, conf.URL)
	if err != nil {
		zap.L().Warn("redis unavailable, ticket validations are not rate limited", zap.Error(err))
		return nil, func() {}
	}

	return ratelimit.NewLimiter(client, conf.ValidationLimit, conf.Window), func() {
		_ = client.Close()
	}
}
