package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/blogapi/internal/auth"
	"github.com/geocoder89/blogapi/internal/config"
	"github.com/geocoder89/blogapi/internal/db"
	httpx "github.com/geocoder89/blogapi/internal/http"
	"github.com/geocoder89/blogapi/internal/http/handlers"
	"github.com/geocoder89/blogapi/internal/http/middlewares"
	"github.com/geocoder89/blogapi/internal/observability"
	"github.com/geocoder89/blogapi/internal/redisclient"
	"github.com/geocoder89/blogapi/internal/repo/memory"
	"github.com/geocoder89/blogapi/internal/repo/postgres"
)

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	shutdownTracer, err := observability.InitTracer(context.Background(), cfg.ServiceName, cfg.Env, cfg.OTLPEndpoint)
	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	prom := observability.NewProm()

	jwtManager, err := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		log.Error("jwt manager init failed", "err", err)
		os.Exit(1)
	}

	stores, checks, closeStores, err := openStores(cfg, prom, log)
	if err != nil {
		log.Error("storage init failed", "err", err, "storage", cfg.Storage)
		os.Exit(1)
	}
	defer closeStores()

	seedCtx, cancelSeed := config.WithTimeout(5 * time.Second)
	created, err := db.EnsureAdminUser(seedCtx, stores.Users, cfg)
	cancelSeed()
	if err != nil {
		log.Error("admin seed failed", "err", err)
		os.Exit(1)
	}
	if created {
		log.Info("admin user created", "email", cfg.AdminEmail)
	}

	// rate limiting: shared counters in redis when configured, per-process otherwise
	authLimiter := middlewares.Limiter(middlewares.NewMemoryLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow))
	writeLimiter := middlewares.Limiter(middlewares.NewMemoryLimiter(cfg.WriteRateLimit, cfg.WriteRateWindow))

	if cfg.RedisAddr != "" {
		rdb := redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		authLimiter = middlewares.NewRedisLimiter(rdb.Raw(), "blogapi:rl:auth:", cfg.AuthRateLimit, cfg.AuthRateWindow)
		writeLimiter = middlewares.NewRedisLimiter(rdb.Raw(), "blogapi:rl:write:", cfg.WriteRateLimit, cfg.WriteRateWindow)
		checks = append(checks, handlers.ReadyCheck{Name: "redis", Ping: rdb.Ping})

		log.Info("rate limiting backed by redis", "addr", cfg.RedisAddr)
	}

	// set up routers with the log
	router := httpx.NewRouter(log, cfg, httpx.Deps{
		Stores:       stores,
		JWT:          jwtManager,
		AuthLimiter:  authLimiter,
		WriteLimiter: writeLimiter,
		Checks:       checks,
		Prom:         prom,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// start server using a concurrent go-routine driven anonymous function.

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "storage", cfg.Storage)
		err := srv.ListenAndServe()

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)

		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}

		if err := shutdownTracer(ctx); err != nil {
			log.Error("tracer shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}

// openStores picks the persistence backend. The returned func releases it.
func openStores(cfg config.Config, prom *observability.Prom, log *slog.Logger) (httpx.Stores, []handlers.ReadyCheck, func(), error) {
	if cfg.Storage == config.StorageMemory {
		log.Warn("using in-memory storage; data is lost on restart")

		store := memory.NewStore()
		return httpx.Stores{
			Users:    store.Users(),
			Posts:    store.Posts(),
			Comments: store.Comments(),
		}, nil, func() {}, nil
	}

	if cfg.MigrateOnBoot {
		if err := db.MigrateUp(cfg.DBURL); err != nil {
			return httpx.Stores{}, nil, nil, err
		}
		log.Info("migrations applied")
	}

	pool, err := db.NewPool(cfg.DBURL, cfg.DBMaxConns)
	if err != nil {
		return httpx.Stores{}, nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	prom.RegisterPool(pool)

	return httpx.Stores{
		Users:    postgres.NewUsersRepo(pool, prom),
		Posts:    postgres.NewPostsRepo(pool, prom),
		Comments: postgres.NewCommentsRepo(pool, prom),
	}, []handlers.ReadyCheck{{Name: "database", Ping: pool.Ping}}, pool.Close, nil
}
