package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"hotel_ratecheck/internal/adapters/homeassistant"
	server "hotel_ratecheck/internal/adapters/http_server"
	"hotel_ratecheck/internal/adapters/marriott"
	"hotel_ratecheck/internal/adapters/observability"
	"hotel_ratecheck/internal/adapters/rabbitmq"
	redisad "hotel_ratecheck/internal/adapters/redis"
	"hotel_ratecheck/internal/app"
	"hotel_ratecheck/internal/shared"
	mysqlrepo "hotel_ratecheck/internal/storage/mysql"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, "api")

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:     cfg.TracingEnabled,
		Endpoint:    cfg.JaegerEndpoint,
		ServiceName: "ratecheck-api",
		Environment: cfg.AppEnv,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("tracing init failed")
	}

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	if err := mysqlrepo.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()
	if err := cache.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("redis unavailable; latest-run reads fall back to mysql")
	}

	source, err := marriott.New(cfg.MarriottBase, cfg.MarriottRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize Marriott client")
	}
	ha := homeassistant.New(cfg.HAURL, cfg.HAToken, cfg.HAService)
	notifiers := app.Notifiers{ha, rabbitmq.New(cfg.RabbitURL)}

	checks := app.NewCheckService(source, repo, repo, cache, notifiers, cfg.Workers, cfg.CacheTTL)
	runs := app.NewQueryService(repo, cache, cfg.CacheTTL)
	reservations := app.NewReservationService(repo)

	// http
	srv := server.New(cfg.CORSOrigins)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Checks:       checks,
		Runs:         runs,
		Reservations: reservations,
		Tester:       ha,
	})

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(sctx)
	if err := checks.Wait(sctx); err != nil {
		log.Warn().Err(err).Msg("check run still active at shutdown")
	}
	if err := shutdownTracing(sctx); err != nil {
		log.Warn().Err(err).Msg("tracing shutdown failed")
	}
}
