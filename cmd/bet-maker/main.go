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

	"github.com/radieske/sports-bet-sync/internal/bet-maker/consumer"
	httpapi "github.com/radieske/sports-bet-sync/internal/bet-maker/http"
	"github.com/radieske/sports-bet-sync/internal/bet-maker/ledger"
	"github.com/radieske/sports-bet-sync/internal/bet-maker/linefeed"
	"github.com/radieske/sports-bet-sync/internal/bet-maker/mirror"
	"github.com/radieske/sports-bet-sync/internal/bet-maker/pubsub"
	"github.com/radieske/sports-bet-sync/internal/bet-maker/repo"
	"github.com/radieske/sports-bet-sync/internal/bet-maker/ws"
	"github.com/radieske/sports-bet-sync/internal/shared/cache"
	"github.com/radieske/sports-bet-sync/internal/shared/config"
	"github.com/radieske/sports-bet-sync/internal/shared/db"
	"github.com/radieske/sports-bet-sync/internal/shared/kafka"
	"github.com/radieske/sports-bet-sync/internal/shared/logger"
	"github.com/radieske/sports-bet-sync/internal/shared/metrics"
)

func main() {
	cfg := config.LoadFor("bet-maker")

	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	log.Info("starting service", zap.String("service", cfg.ServiceName), zap.String("env", cfg.Env))

	// Postgres + migrações do espelho e das apostas
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	if err := db.Migrate(pg, repo.Migrations, "migrations", "bet_maker_schema_migrations"); err != nil {
		log.Fatal("failed to migrate", zap.Error(err))
	}
	log.Info("postgres connected")

	redisClient, err := cache.ConnectRedis(context.Background(), cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		log.Fatal("failed to connect redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("redis connected")

	// Consumer group com commit manual + writer da DLQ
	reader := kafka.NewReader(cfg.Brokers(), cfg.TopicEventStatus, cfg.ConsumerGroup)
	defer reader.Close()
	dlq := kafka.NewWriter(cfg.Brokers(), cfg.TopicEventStatusDLQ)
	defer dlq.Close()

	// Métricas Prometheus
	cycles := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "bet_maker_reconcile_cycles_total", Help: "ciclos de reconciliação por resultado"}, []string{"result"})
	mirrorChanges := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "bet_maker_mirror_changes_total", Help: "entradas do espelho inseridas/removidas/ignoradas"}, []string{"op"})
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "bet_maker_messages_consumed_total", Help: "mensagens consumidas"})
	settled := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "bet_maker_settlements_total", Help: "eventos liquidados por veredito"}, []string{"status"})
	betsSettled := prometheus.NewCounter(prometheus.CounterOpts{Name: "bet_maker_bets_settled_total", Help: "apostas atualizadas por liquidações"})
	ignored := prometheus.NewCounter(prometheus.CounterOpts{Name: "bet_maker_messages_ignored_total", Help: "mensagens com status não terminal"})
	deadLetters := prometheus.NewCounter(prometheus.CounterOpts{Name: "bet_maker_dead_letters_total", Help: "mensagens enviadas à DLQ"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "bet_maker_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(cycles, mirrorChanges, consumed, settled, betsSettled, ignored, deadLetters, errorsBy)

	led := ledger.New(log, repo.NewPostgres(pg))

	rec := mirror.New(log, linefeed.New(cfg.LineProviderURL, cfg.ReconcileTimeout), repo.NewPostgres(pg), cfg.ReconcileInterval, cfg.ReconcileTimeout)
	rec.OnCycle = func(res mirror.Result, err error) {
		if err != nil {
			cycles.WithLabelValues("error").Inc()
			errorsBy.WithLabelValues("reconcile").Inc()
			return
		}
		cycles.WithLabelValues("ok").Inc()
		mirrorChanges.WithLabelValues("insert").Add(float64(res.Inserted))
		mirrorChanges.WithLabelValues("delete").Add(float64(res.Deleted))
		mirrorChanges.WithLabelValues("skip").Add(float64(res.Skipped))
	}

	broadcaster := pubsub.NewRedisBroadcaster(redisClient, cfg.RedisSettlementChannel)
	hub := ws.NewHub(log, func(*http.Request) bool { return true })

	proc := &consumer.Processor{
		Log:          log,
		Reader:       reader,
		Ledger:       led,
		DLQ:          dlq,
		OnConsumed:   func() { consumed.Inc() },
		OnIgnored:    func() { ignored.Inc() },
		OnDeadLetter: func() { deadLetters.Inc() },
		OnError:      func(stage string) { errorsBy.WithLabelValues(stage).Inc() },

		// Após liquidar, avisa os clientes WS via Redis Pub/Sub
		OnSettled: func(s ledger.Settlement) {
			settled.WithLabelValues(string(s.Status)).Inc()
			betsSettled.Add(float64(len(s.BetIDs)))

			ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
			defer cancel()
			if err := broadcaster.PublishSettlement(ctx, s); err != nil {
				log.Warn("ws broadcast publish failed", zap.Int64("event_id", s.EventID), zap.Error(err))
			}
		},
	}

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// primeira reconciliação antes de aceitar apostas
	if _, err := rec.Reconcile(ctx); err != nil {
		log.Warn("initial mirror reconcile failed", zap.Error(err))
	}

	api := &httpapi.API{Log: log, Ledger: led, Hub: hub}
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
	g.Go(func() error { return ignoreCanceled(rec.Run(gctx)) })
	g.Go(func() error { return ignoreCanceled(proc.Run(gctx)) })
	g.Go(func() error {
		return ignoreCanceled(ws.StartRedisSubscriber(gctx, redisClient, cfg.RedisSettlementChannel, hub))
	})

	log.Info("bet-maker started",
		zap.String("line_provider", cfg.LineProviderURL),
		zap.Duration("reconcile_interval", cfg.ReconcileInterval),
		zap.String("topic", cfg.TopicEventStatus),
		zap.String("group", cfg.ConsumerGroup),
	)
	if err := g.Wait(); err != nil {
		log.Error("bet-maker stopped with error", zap.Error(err))
		return
	}
	log.Info("bet-maker stopped")
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
