package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/asquebay/food-order-service/internal/config"
	"github.com/asquebay/food-order-service/internal/lib/logger"
	"github.com/asquebay/food-order-service/internal/metrics"
	"github.com/asquebay/food-order-service/internal/repository/cache"
	"github.com/asquebay/food-order-service/internal/repository/postgres"
	"github.com/asquebay/food-order-service/internal/service"
	httptransport "github.com/asquebay/food-order-service/internal/transport/http"
	"github.com/asquebay/food-order-service/internal/transport/kafka"
)

func main() {
	// 1. Инициализация конфигурации
	cfg := config.MustLoad(config.Path())

	// 2. Инициализация логгера
	log := logger.New(cfg.Logger.Level, cfg.Logger.Format)
	log.Info("starting food-order-service", slog.String("log_level", cfg.Logger.Level))

	// 3. Инициализация репозитория (БД)
	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	dbpool, err := postgres.New(initCtx, cfg.Postgres)
	if err != nil {
		log.Error("failed to connect to postgres", logger.Err(err))
		os.Exit(1)
	}
	defer dbpool.Close()
	log.Info("successfully connected to postgres")

	if cfg.Postgres.AutoMigrate {
		applied, err := postgres.Migrate(initCtx, dbpool)
		if err != nil {
			log.Error("failed to apply migrations", logger.Err(err))
			os.Exit(1)
		}
		log.Info("migrations applied", slog.Int("count", applied))
	}

	orderItemRepo := postgres.NewOrderItemRepository(dbpool)

	// 4. Инициализация кэша
	orderItemCache, err := cache.NewOrderItemCache(cfg.Cache.Capacity)
	if err != nil {
		log.Error("failed to create cache", logger.Err(err))
		os.Exit(1)
	}
	log.Info("order item cache initialized", slog.Int("capacity", cfg.Cache.Capacity))

	// 5. Инициализация сервисного слоя
	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.OrderRequestsTopic, log)
	orderItemSvc := service.NewOrderItemService(orderItemRepo, orderItemCache, log)
	orderSvc := service.NewOrderService(producer, log)

	// 6. Восстановление кэша из БД при старте
	if err := orderItemSvc.RestoreCache(initCtx); err != nil {
		// не фатальная ошибка, сервис может работать и с пустым кэшем
		log.Error("failed to restore cache", logger.Err(err))
	}

	// 7. Инициализация и запуск Kafka-консьюмера
	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID, orderItemSvc, log)
	ctx, cancel := context.WithCancel(context.Background())
	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		consumer.Run(ctx)
	}()

	// 8. Метрики: HTTP и статистика kafka в одном реестре
	httpMetrics := metrics.NewHTTP()
	httpMetrics.Registry().MustRegister(consumer.Collector(), producer.Collector())

	// 9. Инициализация и запуск HTTP-сервера
	handler := httptransport.NewHandler(orderItemSvc, orderSvc, httpMetrics, log)
	httpServer := httptransport.NewServer(cfg.HTTPServer, handler)
	log.Info("starting http server", slog.String("port", cfg.HTTPServer.Port))

	go func() {
		if err := httpServer.Run(); err != nil {
			log.Error("http server failed", logger.Err(err))
			cancel()
		}
	}()

	// 10. Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-stop:
	case <-ctx.Done():
	}

	log.Info("shutting down application")
	cancel() // сигнал для консьюмера на завершение

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", logger.Err(err))
	}

	if err := consumer.Close(); err != nil {
		log.Error("error closing kafka consumer", logger.Err(err))
	}
	<-consumerDone

	if err := producer.Close(); err != nil {
		log.Error("error closing kafka producer", logger.Err(err))
	}

	log.Info("application stopped")
}
