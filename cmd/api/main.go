package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-dashboard-invoices/internal/actions"
	"github.com/ariefcatur/go-dashboard-invoices/internal/auth"
	"github.com/ariefcatur/go-dashboard-invoices/internal/config"
	"github.com/ariefcatur/go-dashboard-invoices/internal/httpx"
	"github.com/ariefcatur/go-dashboard-invoices/internal/invoices"
	kafkax "github.com/ariefcatur/go-dashboard-invoices/internal/kafka"
	"github.com/ariefcatur/go-dashboard-invoices/internal/logx"
	"github.com/ariefcatur/go-dashboard-invoices/internal/postgres"
	"github.com/ariefcatur/go-dashboard-invoices/internal/redisx"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		l := logx.New("info", "dashboard-api")
		l.Fatal().Err(err).Msg("config")
	}
	log := logx.New(cfg.LogLevel, cfg.ServiceName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, cfg.PostgresMaxConns)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("db migrate")
	}

	// Redis page cache
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()
	pages := redisx.NewPageCache(rdb, cfg.PageCacheTTL)

	// Kafka producer; its loop outlives ctx so queued events still flush
	prod := kafkax.NewProducer(cfg.KafkaBrokers, invoices.TopicInvoiceChanged, 1024, log)
	prod.Start(context.Background())

	sessions := auth.NewSessions(cfg.AuthSecret, cfg.SessionTTL)
	identity := auth.NewManager(sessions, map[string]auth.Provider{
		auth.StrategyCredentials: auth.NewCredentialsProvider(&auth.UserRepo{DB: db}),
	})

	repo := &invoices.Repo{DB: db}
	acts := &actions.Actions{
		Store:         repo,
		Cache:         pages,
		Events:        prod,
		Identity:      identity,
		Schema:        invoices.NewSchema(),
		Log:           log,
		Service:       cfg.ServiceName,
		DeleteEnabled: cfg.DeleteEnabled,
	}

	metrics := httpx.NewMetrics()
	router := httpx.NewRouter(log)
	httpx.Mount(router, metrics, sessions, pages,
		&httpx.AuthHandler{Actions: acts, Sessions: sessions, Metrics: metrics},
		&httpx.InvoicesHandler{Actions: acts, Reader: repo, Metrics: metrics},
	)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down...")
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server")
	}
	prod.Close()
	prod.WaitClosed()
}
