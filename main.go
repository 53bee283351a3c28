package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"PetPal/middleware"
	"PetPal/pkg/cache"
	"PetPal/pkg/config"
	"PetPal/pkg/database"
	"PetPal/pkg/events"
	"PetPal/pkg/logger"
	"PetPal/pkg/metrics"
	"PetPal/pkg/realtime"
	"PetPal/pkg/repository"
	"PetPal/pkg/services"
	"PetPal/pkg/telemetry"
	"PetPal/pkg/token"
	"PetPal/routes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	lg := logger.New(logger.Options{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: cfg.OTELServiceName,
		Env:     cfg.AppEnv,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, tracing, err := telemetry.Init(ctx, cfg.OTELEndpoint, cfg.OTELServiceName, cfg.AppEnv)
	if err != nil {
		lg.Error("main - telemetry init failed", "error", err)
		os.Exit(1)
	}

	db, err := database.Open(ctx, database.Options{
		Driver:          cfg.DBDriver,
		DSN:             cfg.DBDSN,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		Tracing:         tracing,
		Attempts:        5,
	})
	if err != nil {
		lg.Error("main - failed to connect database", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		lg.Error("main - failed migrate", "error", err)
		os.Exit(1)
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		ropts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			lg.Error("main - invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		rdb = redis.NewClient(ropts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			lg.Error("main - redis unreachable", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
	}

	var revoked token.Store
	if rdb != nil {
		revoked = token.NewRedisStore(rdb)
	} else {
		mem := cache.New[string, struct{}](10000, time.Minute)
		defer mem.Close()
		revoked = token.NewMemoryStore(mem)
	}

	var pub events.Publisher = events.NopPublisher{}
	if cfg.KafkaBrokers != "" {
		pub = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		lg.Info("main - publishing message events", "topic", cfg.KafkaTopic)
	}

	m := metrics.New()
	users := repository.NewUserRepo(db)
	convs := repository.NewConversationRepo(db)
	accounts := services.NewAccountService(lg, users, token.NewIssuer(cfg.JWTSecret, cfg.TokenTTL), revoked)
	conversations := services.NewConversationService(lg, convs, users, pub, m)
	hub := realtime.NewHub(m)
	gw := realtime.NewGateway(lg, hub, conversations, m)

	r := routes.NewRouter(routes.Deps{
		DB:            db,
		Logger:        lg,
		Accounts:      accounts,
		Conversations: conversations,
		Gateway:       gw,
		Metrics:       m,
		Limiter:       middleware.NewRateLimitStore(rdb, cfg.RateLimitWindow, cfg.RateLimitCapacity),
		WS: realtime.ClientOptions{
			ReadLimit:    cfg.WSReadLimit,
			PingInterval: cfg.WSPingInterval,
			PongWait:     cfg.WSPongWait,
			SendBuffer:   cfg.WSSendBuffer,
		},
		CORSOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(r, cfg.OTELServiceName),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		lg.Info("main - listening", "addr", srv.Addr, "env", cfg.AppEnv, "db", cfg.DBDriver, "tracing", tracing)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("main - server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	lg.Info("main - shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Sockets are hijacked, so Shutdown does not wait for them.
	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Warn("main - http shutdown", "error", err)
	}
	if err := pub.Close(); err != nil {
		lg.Warn("main - publisher close", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		lg.Warn("main - tracing shutdown", "error", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	slog.Info("main - bye")
}
