package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/joripage/limit-orderbook/config"
	"github.com/joripage/limit-orderbook/pkg/httpapi"
	redis_wrapper "github.com/joripage/limit-orderbook/pkg/infra/redis"
	kafkawrapper "github.com/joripage/limit-orderbook/pkg/kafka_wrapper"
	"github.com/joripage/limit-orderbook/pkg/logging"
	"github.com/joripage/limit-orderbook/pkg/metrics"
	"github.com/joripage/limit-orderbook/pkg/orderbook"
	"github.com/joripage/limit-orderbook/pkg/publisher"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		panic(err)
	}

	var configFile string
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.Parse()

	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}

	logger := logging.New(cfg.Logging).With(zap.String("service", cfg.ServiceName))
	defer logger.Sync()
	restore := logging.ReplaceGlobals(logger)
	defer restore()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	manager := orderbook.NewOrderBookManager(&orderbook.OrderBookManagerConfig{
		SupportedPairs:   cfg.Matching.SupportedPairs,
		TradeHistorySize: cfg.Matching.TradeHistorySize,
	})
	manager.RegisterTradeCallback(m.ObserveTrades)

	sinks := buildSinks(ctx, cfg, logger)
	var dispatcher *publisher.Dispatcher
	if len(sinks) > 0 {
		dispatcher = publisher.NewDispatcher(publisher.DispatcherConfig{
			OnDrop: m.PublisherDropped.Inc,
		}, logger, sinks...)
		dispatcher.Start(context.Background())
		manager.RegisterTradeCallback(dispatcher.Enqueue)
	}

	server := httpapi.NewServer(cfg.HTTP, manager, m, logger)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run()
	}()

	logger.Info(ctx, "order book service started",
		zap.Strings("pairs", manager.SupportedPairs()),
		zap.Int("sinks", len(sinks)))

	select {
	case <-ctx.Done():
		logger.Info(context.Background(), "shutting down...")
	case err := <-errCh:
		if err != nil {
			logger.Error(context.Background(), "http server stopped", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn(shutdownCtx, "http shutdown", zap.Error(err))
	}
	if dispatcher != nil {
		dispatcher.Stop()
	}

	logger.Info(context.Background(), "exited cleanly")
}

// buildSinks connects the optional trade exports. A sink that cannot be
// reached is skipped so matching keeps running.
func buildSinks(ctx context.Context, cfg *config.AppConfig, logger *logging.Logger) []publisher.Sink {
	var sinks []publisher.Sink

	if cfg.Kafka != nil && cfg.Kafka.Enabled {
		producer := kafkawrapper.NewProducer(kafkawrapper.ProducerConfig{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			BatchTimeout: time.Duration(cfg.Kafka.BatchTimeoutMs) * time.Millisecond,
		})
		sinks = append(sinks, publisher.NewKafkaSink(producer))
		logger.Info(ctx, "kafka trade sink enabled", zap.String("topic", cfg.Kafka.Topic))
	}

	if cfg.Redis != nil && cfg.Redis.Enabled {
		client, err := redis_wrapper.InitRedisWithBackoff(cfg.Redis)
		if err != nil {
			logger.Error(ctx, "redis trade sink disabled", zap.Error(err))
		} else {
			sinks = append(sinks, publisher.NewRedisSink(client, cfg.Redis.StreamPrefix, cfg.Redis.StreamMaxLen))
			logger.Info(ctx, "redis trade sink enabled", zap.String("prefix", cfg.Redis.StreamPrefix))
		}
	}

	return sinks
}
