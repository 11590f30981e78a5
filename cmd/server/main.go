package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hongminglow/mposter-be/internal/account"
	"github.com/hongminglow/mposter-be/internal/auth"
	"github.com/hongminglow/mposter-be/internal/cache"
	"github.com/hongminglow/mposter-be/internal/config"
	"github.com/hongminglow/mposter-be/internal/logger"
	"github.com/hongminglow/mposter-be/internal/server"
	"github.com/hongminglow/mposter-be/internal/storage/backend"
)

const shutdownTimeout = 15 * time.Second

func main() {
	loadLocalEnv()

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf("load config: %v", err)
		os.Exit(1)
	}
	logger.InitLogger(logger.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg)
	stop()
	if err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}

// run owns every resource the server needs and releases them before
// returning, whether the server stopped on a signal or failed.
func run(ctx context.Context, cfg config.Config) error {
	store, kind, err := backend.Open(ctx, cfg.DatabaseURL, cfg.MongoDatabase)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer store.Close()
	logger.Infof("storage backend: %s", kind)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer)
	var opts []account.Option
	if cfg.CacheEnabled() {
		profiles, err := cache.NewProfileCache(ctx, cfg.RedisAddr, cfg.ProfileCacheTTL)
		if err != nil {
			logger.Warningf("profile cache disabled: %v", err)
		} else {
			defer profiles.Close()
			opts = append(opts, account.WithProfileCache(profiles))
			logger.Infof("profile cache at %s (ttl %s)", cfg.RedisAddr, cfg.ProfileCacheTTL)
		}
	}
	accounts := account.NewService(store, auth.NewBcryptHasher(cfg.BcryptCost), tokens, opts...)

	srv := server.New(cfg, store, accounts, tokens)
	logger.Infof("mPoster backend listening on %s%s", cfg.HTTPAddress(), cfg.APIBasePath)
	if err := srv.Run(ctx, shutdownTimeout); err != nil {
		return fmt.Errorf("http server error: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found; relying on existing environment")
	}
}
