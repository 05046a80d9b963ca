package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	bhttp "github.com/radieske/solbet-poc/internal/bet-service/http"
	"github.com/radieske/solbet-poc/internal/bet-service/odds"
	kpub "github.com/radieske/solbet-poc/internal/bet-service/producer"
	"github.com/radieske/solbet-poc/internal/bet-service/repo"
	"github.com/radieske/solbet-poc/internal/bet-service/session"
	"github.com/radieske/solbet-poc/internal/bet-service/wallet"
	"github.com/radieske/solbet-poc/internal/bet-service/ws"
	"github.com/radieske/solbet-poc/internal/betting/ledger"
	"github.com/radieske/solbet-poc/internal/betting/model"
	"github.com/radieske/solbet-poc/internal/betting/settlement"
	"github.com/radieske/solbet-poc/internal/betting/store"
	"github.com/radieske/solbet-poc/internal/betting/tracker"
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
		cfg.ServiceName = "bet-service"
	}
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Store: postgres quando disponível, senão tudo em memória
	st, pg := openStore(ctx, cfg, log)
	if pg != nil {
		defer pg.Close()
	}
	mode := ledger.Probe(ctx, st)
	m := metrics.NewBetting(prometheus.DefaultRegisterer)
	if mode == ledger.ModeLocal {
		m.DegradedMode.Set(1)
		log.Warn("store not set up, balances and bets stay in memory", zap.String("driver", cfg.StoreDriver))
	}

	led := ledger.New(st, mode, log)
	eng := settlement.New(led, st, log)
	eng.Delay = cfg.SettleDelay
	eng.OnSettled = m.OnSettled
	eng.OnRejected = m.OnRejected
	eng.OnPersistFailed = m.OnPersistFailed

	// Kafka (topic bet_placed) é opcional
	if cfg.KafkaBrokers != "" {
		publ := kpub.NewKafkaPublisher(kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetPlaced))
		defer publ.Close()
		eng.Publisher = publ
	}

	// Redis: cache de mercados + canal de resultados; opcional
	feed := &odds.Feed{
		Client: odds.NewClient(cfg.OddsAPIBase, cfg.OddsAPIKey),
		Sport:  cfg.OddsSport,
		Log:    log,
	}
	rdb, err := cache.ConnectRedis(ctx, cfg.RedisAddr)
	if err != nil {
		log.Warn("redis unavailable, running without odds cache and live bet updates", zap.Error(err))
	} else {
		defer rdb.Close()
		feed.Cache = odds.NewRedisCache(rdb)
	}

	sessions := session.NewRegistry()
	hub := ws.NewHub(func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(cfg.CORSOrigins, origin)
	})
	if rdb != nil {
		relay := &ws.Relay{
			Hub:   hub,
			Apply: sessions.ApplyStatus,
			Log:   log,
			OnApplied: func(s model.Status) {
				m.StatusUpdates.WithLabelValues(string(s)).Inc()
			},
		}
		relay.Start(ctx, rdb, cfg.RedisBetChannel)
	}

	api := &bhttp.Server{
		Log:         log,
		Sessions:    sessions,
		Ledger:      led,
		Tracker:     &tracker.Tracker{Store: st, Mode: mode, Log: log},
		Engine:      eng,
		Feed:        feed,
		Wallet:      wallet.NewConnector(cfg.SolanaRPCURL, log),
		WS:          hub.HandleWS,
		CORSOrigins: cfg.CORSOrigins,
	}
	apiSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	metricsSrv := metrics.NewMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if pg != nil {
			if err := pg.PingContext(ctx); err != nil {
				return err
			}
		}
		if rdb != nil {
			return rdb.Ping(ctx).Err()
		}
		return nil
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("bet-service listening", zap.String("addr", apiSrv.Addr), zap.String("mode", mode.String()))
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info("metrics/health", zap.String("addr", metricsSrv.Addr))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = apiSrv.Shutdown(shutdownCtx)
		_ = metricsSrv.Shutdown(shutdownCtx)
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("bet-service stopped", zap.Error(err))
	}
}

// openStore escolhe o driver; falha de conexão vira store.Unavailable (modo degradado)
func openStore(ctx context.Context, cfg config.Config, log *zap.Logger) (store.Store, *sql.DB) {
	switch cfg.StoreDriver {
	case "memory":
		return store.NewMemory(), nil
	case "none":
		return store.Unavailable{}, nil
	}
	pg, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Warn("postgres unavailable", zap.Error(err))
		return store.Unavailable{}, nil
	}
	return repo.NewPostgres(pg), pg
}
