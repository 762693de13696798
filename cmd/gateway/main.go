package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/shubham-shewale/crypto-ticker/cmd/gateway/internal/gateway"
	"github.com/shubham-shewale/crypto-ticker/cmd/gateway/internal/hub"
	"github.com/shubham-shewale/crypto-ticker/cmd/gateway/internal/repository"
	"github.com/shubham-shewale/crypto-ticker/pkg/config"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, err := config.NewLogger(cfg.Logger)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	repo := repository.NewRedisStore(rdb)
	defer repo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Hub depends on the repository interface, not Redis
	wsHub := hub.NewHub(repo, logger, cfg.Ticker.Symbols())
	wsHub.Start(ctx)

	srv := &http.Server{
		Addr:              cfg.App.Port,
		Handler:           gateway.NewHandler(wsHub, repo, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Server Started", zap.String("port", cfg.App.Port), zap.Strings("symbols", wsHub.Symbols()))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP Error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", zap.Error(err))
	}
	logger.Info("Shutdown Complete")
}
