package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/mageytel/mageypack-service/internal/config"
	"github.com/mageytel/mageypack-service/internal/database"
	"github.com/mageytel/mageypack-service/internal/handler"
	"github.com/mageytel/mageypack-service/internal/middleware"
	"github.com/mageytel/mageypack-service/internal/queue"
	"github.com/mageytel/mageypack-service/internal/repository"
	"github.com/mageytel/mageypack-service/internal/router"
	"github.com/mageytel/mageypack-service/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	users := repository.NewUserRepo(db)
	sessions := repository.NewSessionRepo(db)
	recs := repository.NewRecommendationRepo(db)

	// Housekeeping: expired sessions are rejected on lookup anyway, but
	// prune them once at startup so the table does not grow unbounded.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if n, err := sessions.DeleteExpired(ctx); err != nil {
		log.Printf("session prune failed: %v", err)
	} else if n > 0 {
		log.Printf("pruned %d expired sessions", n)
	}
	cancel()

	// Redis is optional: when unavailable, caching and rate limiting
	// degrade to pass-through middleware.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; response cache and rate limiting disabled")
	}
	cacheCfg := config.LoadCacheConfig()
	cacheMW := middleware.NewRedisCache(cacheCfg, rdb)
	cacheInv := middleware.NewCacheInvalidator(cacheCfg, rdb)
	loginLimiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	guard := middleware.SessionGuard(sessions)

	recon := service.NewReconciler(recs)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, sessions), loginLimiter)
	router.RegisterAPI(e, guard, cacheMW,
		handler.NewRecnoHandler(recs),
		handler.NewRecommendationHandler(recs, cacheInv),
		handler.NewPackageHandler(recon, cacheInv))

	// Audit-log consumer; runs its own reconnect loop.
	go func() {
		if err := queue.StartPackageConsumer(); err != nil {
			log.Printf("package consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
