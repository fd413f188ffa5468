package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/live-waitlist/internal/config"
	"github.com/iliyamo/live-waitlist/internal/database"
	"github.com/iliyamo/live-waitlist/internal/handler"
	"github.com/iliyamo/live-waitlist/internal/live"
	"github.com/iliyamo/live-waitlist/internal/middleware"
	"github.com/iliyamo/live-waitlist/internal/queue"
	"github.com/iliyamo/live-waitlist/internal/repository"
	"github.com/iliyamo/live-waitlist/internal/router"
	"github.com/iliyamo/live-waitlist/internal/service"
	"github.com/iliyamo/live-waitlist/internal/service/queue_publisher"
)

func main() {
	// .env is a dev convenience; in production the variables come from
	// the environment and the file is absent.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: with no client the access code reads fall
	// through to MySQL and the rate limiter / response cache turn off.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis: unavailable, running without cache and rate limiting")
	}

	// Repositories
	entries := repository.NewEntryRepo(db)
	mirror := repository.NewMirrorRepo(db)
	admins := repository.NewAdminRepo(db)
	codes := repository.NewAccessCodeRepo(db, rdb)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)

	// Live plumbing: feed pokes -> projector renders -> hub fans out.
	feed := live.NewFeed()
	hub := live.NewHub()
	projector := &live.Projector{Entries: entries, Mirror: mirror, Feed: feed, Hub: hub}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go projector.Run(ctx)

	// The broker consumer keeps the audit log; it reconnects on its
	// own and never takes the server down.
	go func() {
		if err := queue.StartEventConsumer(); err != nil {
			log.Printf("event-consumer: stopped: %v", err)
		}
	}()

	// Expired refresh tokens accumulate forever otherwise; sweep
	// them daily.
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				pctx, pcancel := context.WithTimeout(ctx, 30*time.Second)
				if n, err := tokens.PurgeExpired(pctx, time.Now().UTC()); err != nil {
					log.Printf("tokens: purge failed: %v", err)
				} else if n > 0 {
					log.Printf("tokens: purged %d expired rows", n)
				}
				pcancel()
			}
		}
	}()

	// Services
	mirrorSync := service.NewMirrorSynchronizer(mirror)
	position := service.NewPositionResolver(entries)
	admission := &service.Admission{
		Gate:     service.NewAccessGate(codes),
		Entries:  entries,
		Mirror:   mirrorSync,
		Position: position,
		Feed:     feed,
		Events:   queue_publisher.Async,
	}
	executor := &service.AdminActionExecutor{
		Admins:  admins,
		Entries: entries,
		Mirror:  mirrorSync,
		Feed:    feed,
		Events:  queue_publisher.Async,
	}

	// HTTP
	e := echo.New()
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens, admins), cfg.JWTSecret)
	router.RegisterQueue(e,
		handler.NewJoinHandler(admission),
		handler.NewQueueViewHandler(mirror, position),
		handler.NewLiveHandler(cfg, admins, hub, projector),
		limit, cache)
	router.RegisterStaff(e, handler.NewStaffHandler(executor, entries, admins, codes), cfg)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
