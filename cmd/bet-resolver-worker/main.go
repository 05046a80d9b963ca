package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/radieske/solbet-poc/internal/bet-resolver/consumer"
	"github.com/radieske/solbet-poc/internal/bet-resolver/outcome"
	"github.com/radieske/solbet-poc/internal/bet-resolver/pubsub"
	"github.com/radieske/solbet-poc/internal/bet-service/repo"
	"github.com/radieske/solbet-poc/internal/shared/cache"
	"github.com/radieske/solbet-poc/internal/shared/config"
	"github.com/radieske/solbet-poc/internal/shared/db"
	"github.com/radieske/solbet-poc/internal/shared/kafka"
	"github.com/radieske/solbet-poc/internal/shared/logger"
	"github.com/radieske/solbet-poc/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "bet-resolver-worker"
	}
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Postgres é obrigatório: o worker só existe para mudar status no store durável
	pg, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg connect", zap.Error(err))
	}
	defer pg.Close()
	st := repo.NewPostgres(pg)
	if err := st.CheckSetup(ctx); err != nil {
		log.Fatal("store not set up", zap.Error(err))
	}

	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicBetPlaced, "bet-resolver")
	defer reader.Close()
	resolvedWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetResolved)
	defer resolvedWriter.Close()
	dlqWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetPlacedDLQ)
	defer dlqWriter.Close()

	m := metrics.NewResolver(prometheus.DefaultRegisterer)
	p := &consumer.Processor{
		Log:      log,
		Reader:   reader,
		Store:    st,
		Drawer:   outcome.New(nil),
		Resolved: kafka.Topic{W: resolvedWriter},
		DLQ:      kafka.Topic{W: dlqWriter},
		Retries:  consumer.DefaultRetries,
		Backoff:  300 * time.Millisecond,

		OnConsumed: m.Consumed.Inc,
		OnResolved: func(s string) { m.Resolved.WithLabelValues(s).Inc() },
		OnError:    func(stage string) { m.Errors.WithLabelValues(stage).Inc() },
	}

	// Redis é opcional: sem ele o bet-service só vê o resultado ao recarregar o histórico
	rdb, err := cache.ConnectRedis(ctx, cfg.RedisAddr)
	if err != nil {
		log.Warn("redis unavailable, bet_resolved goes to kafka only", zap.Error(err))
	} else {
		defer rdb.Close()
		p.Broadcast = pubsub.NewRedisBroadcaster(rdb, cfg.RedisBetChannel)
	}

	metricsSrv := metrics.NewMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("metrics/health", zap.String("addr", metricsSrv.Addr))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		n, err := p.Sweep(gctx, cfg.ResolveAfter)
		if err != nil {
			log.Warn("pending sweep failed", zap.Error(err))
		} else {
			log.Info("pending sweep done", zap.Int("resolved", n))
		}

		log.Info("bet-resolver-worker started",
			zap.String("consume", cfg.TopicBetPlaced),
			zap.String("publish", cfg.TopicBetResolved),
			zap.String("dlq", cfg.TopicBetPlacedDLQ),
		)
		if err := p.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return metricsSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("bet-resolver-worker stopped", zap.Error(err))
	}
}
