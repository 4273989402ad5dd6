package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/saptarimadira/trader-backend/internal/catalog"
	"github.com/saptarimadira/trader-backend/internal/config"
	"github.com/saptarimadira/trader-backend/internal/customers"
	"github.com/saptarimadira/trader-backend/internal/httpx"
	"github.com/saptarimadira/trader-backend/internal/kafkax"
	"github.com/saptarimadira/trader-backend/internal/logx"
	"github.com/saptarimadira/trader-backend/internal/notify"
	"github.com/saptarimadira/trader-backend/internal/orders"
	"github.com/saptarimadira/trader-backend/internal/payments"
	"github.com/saptarimadira/trader-backend/internal/postgres"
	"github.com/saptarimadira/trader-backend/internal/redisx"
	"github.com/saptarimadira/trader-backend/internal/reports"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger, err := logx.New(cfg.Env, cfg.ServiceName)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	pCreated := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCreated, 1024, logger)
	pCreated.Start(ctx)
	pCancelled := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCancelled, 1024, logger)
	pCancelled.Start(ctx)

	repo := &orders.Repo{DB: db}
	coordinator := orders.NewCoordinator(repo, &notify.KafkaDispatcher{
		Created:   pCreated,
		Cancelled: pCancelled,
		Service:   cfg.ServiceName,
	}, logger)

	router := httpx.NewRouter()
	(&httpx.OrdersHandler{Coordinator: coordinator, Repo: repo, Redis: rdb, Log: logger}).Register(router)
	(&httpx.CatalogHandler{Repo: &catalog.Repo{DB: db}, Log: logger}).Register(router)
	(&httpx.CustomersHandler{Repo: &customers.Repo{DB: db}, Log: logger}).Register(router)
	(&httpx.PaymentsHandler{Repo: &payments.Repo{DB: db}, Log: logger}).Register(router)
	(&httpx.ReportsHandler{Repo: &reports.Repo{DB: db}, Log: logger}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		logger.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutCancel()
	_ = srv.Shutdown(shutCtx)

	pCreated.Close() // stop accepting, flush the rest
	pCancelled.Close()
	cancel()
	pCreated.WaitClosed()
	pCancelled.WaitClosed()
}
