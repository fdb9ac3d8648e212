package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ariefcatur/go-dashboard-invoices/internal/config"
	"github.com/ariefcatur/go-dashboard-invoices/internal/invoices"
	kafkax "github.com/ariefcatur/go-dashboard-invoices/internal/kafka"
	"github.com/ariefcatur/go-dashboard-invoices/internal/logx"
	"github.com/ariefcatur/go-dashboard-invoices/internal/redisx"
	"github.com/ariefcatur/go-dashboard-invoices/internal/revalidate"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		l := logx.New("info", "dashboard-revalidator")
		l.Fatal().Err(err).Msg("config")
	}
	name := cfg.ServiceName + "-revalidator"
	log := logx.New(cfg.LogLevel, name)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &revalidate.Service{
		Cache:       redisx.NewPageCache(rdb, cfg.PageCacheTTL),
		Redis:       rdb,
		ServiceName: name,
		Log:         log,
	}

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.RevalidatorGroup, invoices.TopicInvoiceChanged, cfg.RevalidatorWorkers, log)
	log.Info().
		Str("group", cfg.RevalidatorGroup).
		Str("topic", invoices.TopicInvoiceChanged).
		Int("workers", cfg.RevalidatorWorkers).
		Msg("revalidator consumer started")

	err = cons.Start(ctx, svc.HandleInvoiceChanged)
	stop()
	if err != nil {
		log.Error().Err(err).Msg("consumer exit")
		return
	}
	log.Info().Msg("shutting down consumer...")
}
