package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	lpcache "github.com/radieske/sports-bet-sync/internal/line-provider/cache"
	"github.com/radieske/sports-bet-sync/internal/line-provider/catalog"
	httpapi "github.com/radieske/sports-bet-sync/internal/line-provider/http"
	"github.com/radieske/sports-bet-sync/internal/line-provider/producer"
	"github.com/radieske/sports-bet-sync/internal/line-provider/repo"
	"github.com/radieske/sports-bet-sync/internal/shared/cache"
	"github.com/radieske/sports-bet-sync/internal/shared/config"
	"github.com/radieske/sports-bet-sync/internal/shared/db"
	"github.com/radieske/sports-bet-sync/internal/shared/kafka"
	"github.com/radieske/sports-bet-sync/internal/shared/logger"
	"github.com/radieske/sports-bet-sync/internal/shared/metrics"
	"github.com/radieske/sports-bet-sync/pkg/contracts/events"
)

func main() {
	cfg := config.LoadFor("line-provider")

	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	log.Info("starting service", zap.String("service", cfg.ServiceName), zap.String("env", cfg.Env))

	// Postgres + migrações do catálogo
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	if err := db.Migrate(pg, repo.Migrations, "migrations", "line_provider_schema_migrations"); err != nil {
		log.Fatal("failed to migrate", zap.Error(err))
	}
	log.Info("postgres connected")

	redisClient, err := cache.ConnectRedis(context.Background(), cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		log.Fatal("failed to connect redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("redis connected")

	writer := kafka.NewWriter(cfg.Brokers(), cfg.TopicEventStatus)
	defer writer.Close()
	log.Info("kafka writer ready", zap.String("topic", cfg.TopicEventStatus))

	// Métricas Prometheus
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "line_provider_status_transitions_total", Help: "transições de status aceitas"}, []string{"status"})
	publishErrors := prometheus.NewCounter(prometheus.CounterOpts{Name: "line_provider_publish_errors_total", Help: "notificações que falharam após a transição"})
	prometheus.MustRegister(transitions, publishErrors)

	cat := catalog.New(log, repo.NewPostgres(pg), producer.NewStatusPublisher(writer, cfg.TopicEventStatus, log), nil)
	if cfg.SnapshotCacheTTL > 0 {
		cat.Cache = lpcache.NewRedisSnapshotCache(redisClient, cfg.SnapshotCacheTTL)
	}
	cat.OnTransition = func(st events.EventStatus) { transitions.WithLabelValues(string(st)).Inc() }
	cat.OnPublishError = func() { publishErrors.Inc() }

	api := &httpapi.API{Log: log, Catalog: cat}
	apiSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	metricsSrv := metrics.NewServer(cfg.MetricsPort,
		metrics.HealthCheck{Name: "postgres", Check: pg.PingContext},
		metrics.HealthCheck{Name: "redis", Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }},
		metrics.HealthCheck{Name: "kafka", Check: func(ctx context.Context) error { return kafka.Ping(ctx, cfg.Brokers()) }},
	)

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range []*http.Server{apiSrv, metricsSrv} {
		g.Go(func() error {
			log.Info("http server listening", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("listen %s: %w", srv.Addr, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
		return apiSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("line-provider stopped with error", zap.Error(err))
		return
	}
	log.Info("line-provider stopped")
}
