package main

import (
	"context"
	"errors"
	"github.com/ariefcatur/erp-lite/internal/auth"
	"github.com/ariefcatur/erp-lite/internal/config"
	"github.com/ariefcatur/erp-lite/internal/httpx"
	kafkax "github.com/ariefcatur/erp-lite/internal/kafka"
	"github.com/ariefcatur/erp-lite/internal/logging"
	"github.com/ariefcatur/erp-lite/internal/orders"
	"github.com/ariefcatur/erp-lite/internal/postgres"
	"github.com/ariefcatur/erp-lite/internal/products"
	"github.com/ariefcatur/erp-lite/internal/redisx"
	"github.com/ariefcatur/erp-lite/internal/reports"
	"github.com/ariefcatur/erp-lite/internal/users"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
	"net/http"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.New("erp-api", "info", "json").WithError(err).Fatal("config")
	}
	log := logging.New(cfg.ServiceName, cfg.LogLevel, cfg.LogFormat)
	loc, _ := cfg.Location()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// DB
	if cfg.AutoMigrate {
		if err := postgres.MigrateUp(cfg.PostgresDSN); err != nil {
			log.WithError(err).Fatal("migrate")
		}
	}
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, cfg.ServiceName, cfg.PGMaxConns)
	if err != nil {
		log.WithError(err).Fatal("db connect")
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers, one per topic
	brokers := cfg.Brokers()
	pCreated := kafkax.NewProducer(brokers, orders.TopicOrderCreated, 1024, log)
	pStatus := kafkax.NewProducer(brokers, orders.TopicOrderStatusChanged, 1024, log)
	pStock := kafkax.NewProducer(brokers, orders.TopicStockAdjusted, 1024, log)
	producers := []*kafkax.Producer{pCreated, pStatus, pStock}
	for _, p := range producers {
		p.Start()
	}

	// Services
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	userSvc := &users.Service{Store: &users.Repo{DB: db}, Issuer: issuer, Log: log}
	productSvc := &products.Service{Store: &products.Repo{DB: db}, Log: log}
	orderSvc := &orders.Service{
		Store:       &orders.Repo{DB: db},
		Events:      orders.Publishers{Created: pCreated, StatusChanged: pStatus, StockAdjusted: pStock},
		Log:         log,
		ServiceName: cfg.ServiceName,
		Location:    loc,
	}
	reportSvc := &reports.Service{Source: &reports.Repo{DB: db}, Location: loc}

	seedCtx, cancelSeed := context.WithTimeout(ctx, 10*time.Second)
	if err := userSvc.EnsureAdmin(seedCtx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.WithError(err).Error("bootstrap admin")
	}
	cancelSeed()

	// HTTP
	rs := &httpx.Responder{Log: log, Debug: cfg.IsDevelopment()}
	gate := &auth.Gate{Issuer: issuer, Users: userSvc, Log: log, Fail: rs.Error}
	limiter := auth.NewRateLimiter(cfg.LoginRatePerSec, cfg.LoginBurst)
	limiter.Fail = rs.Error

	router := httpx.NewRouter(log,
		&httpx.AuthHandler{Service: userSvc, Gate: gate, Limiter: limiter, R: rs},
		&httpx.UsersHandler{Service: userSvc, Gate: gate, R: rs},
		&httpx.ProductsHandler{Service: productSvc, Gate: gate, R: rs},
		&httpx.OrdersHandler{Service: orderSvc, Idem: redisx.Idempotency{Client: rdb}, Gate: gate, R: rs},
		&httpx.ReportsHandler{Service: reportSvc, Gate: gate, R: rs},
	)
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithField("addr", cfg.HTTPAddr).Info("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		t := time.NewTicker(10 * time.Minute)
		defer t.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-t.C:
				limiter.Prune(30 * time.Minute)
			}
		}
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()

	// flush events only after in-flight requests are done
	for _, p := range producers {
		p.Close()
	}
	for _, p := range producers {
		p.WaitClosed()
	}
	if err != nil {
		log.WithError(err).Fatal("server exit")
	}
}
