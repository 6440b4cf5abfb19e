package main

import (
	"context"
	"github.com/ariefcatur/erp-lite/internal/config"
	kafkax "github.com/ariefcatur/erp-lite/internal/kafka"
	"github.com/ariefcatur/erp-lite/internal/logging"
	"github.com/ariefcatur/erp-lite/internal/orders"
	"github.com/ariefcatur/erp-lite/internal/postgres"
	"github.com/ariefcatur/erp-lite/internal/products"
	"github.com/ariefcatur/erp-lite/internal/redisx"
	"github.com/ariefcatur/erp-lite/internal/stockwatch"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"os/signal"
	"syscall"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		logging.New("erp-stockwatch", "info", "json").WithError(err).Fatal("config")
	}
	log := logging.New(cfg.ServiceName+"-stockwatch", cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, cfg.ServiceName+"-stockwatch", cfg.PGMaxConns)
	if err != nil {
		log.WithError(err).Fatal("db connect")
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	brokers := cfg.Brokers()
	alerts := kafkax.NewProducer(brokers, orders.TopicLowStock, 256, log)
	alerts.Start()

	svc := &stockwatch.Service{
		Catalog:     &products.Service{Store: &products.Repo{DB: db}, Log: log},
		Marker:      redisx.Once{Client: rdb},
		Alerts:      alerts,
		Log:         log,
		ServiceName: cfg.ServiceName + "-stockwatch",
	}
	cons := kafkax.NewConsumer(brokers, cfg.StockwatchGroup, orders.TopicStockAdjusted, cfg.StockwatchWorkers, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithFields(logrus.Fields{
			"group": cfg.StockwatchGroup, "topic": orders.TopicStockAdjusted, "workers": cfg.StockwatchWorkers,
		}).Info("stockwatch consumer started")
		return cons.Start(gctx, svc.HandleStockAdjusted)
	})
	g.Go(func() error {
		log.WithField("schedule", cfg.StockwatchSweep).Info("low-stock sweep scheduled")
		return svc.Schedule(gctx, cfg.StockwatchSweep)
	})

	if err := g.Wait(); err != nil {
		log.WithError(err).Error("stockwatch exit")
	}
	log.Info("shutting down...")
	alerts.Close()
	alerts.WaitClosed()
}
