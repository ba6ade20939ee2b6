package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"isuumo/internal/cache"
	"isuumo/internal/condition"
	"isuumo/internal/config"
	"isuumo/internal/http/handlers"
	applog "isuumo/internal/log"
	"isuumo/internal/repos"
)

func main() {
	if err := run(); err != nil {
		applog.Error(nil, "server.fatal", err, nil)
		applog.Sync()
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := applog.Init(cfg.LogLevel, cfg.LogFile); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer applog.Sync()
	applog.Info(nil, "config.loaded", cfg.Fields())

	cat, err := condition.Load(cfg.ConditionDir)
	if err != nil {
		return err
	}

	db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN, cfg.DBMaxConns)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	store, closeStore, err := newStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	app := handlers.NewApp(handlers.NewDeps(db, cfg, cat, store), cfg)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		applog.Info(nil, "server.shutdown", nil)
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	applog.Info(nil, "server.start", map[string]any{"port": cfg.Port})
	return app.Listen(":" + cfg.Port)
}

func newStore(cfg config.Config) (cache.Store, func(), error) {
	switch cfg.CacheBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:         cfg.RedisAddr,
			Password:     cfg.RedisPassword,
			DB:           cfg.RedisDB,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis ping failed: %w", err)
		}
		return cache.NewRedis(client, ""), func() { _ = client.Close() }, nil
	case "none":
		return cache.Nop{}, func() {}, nil
	default:
		return cache.NewMemory(), func() {}, nil
	}
}
