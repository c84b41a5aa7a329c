package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/airroutes/config"
	"github.com/Domenick1991/airroutes/internal/bootstrap"
	"github.com/Domenick1991/airroutes/internal/cache"
	"github.com/Domenick1991/airroutes/internal/domain"
	"github.com/Domenick1991/airroutes/internal/graph"
	"github.com/Domenick1991/airroutes/internal/kafka"
	"github.com/Domenick1991/airroutes/internal/logger"
	"github.com/Domenick1991/airroutes/internal/metrics"
	"github.com/Domenick1991/airroutes/internal/repository"
	"github.com/Domenick1991/airroutes/internal/service/search"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	kafkaGo "github.com/segmentio/kafka-go"
)

func main() {
	cfg, err := config.LoadConfig(config.PathFromEnv())
	if err != nil {
		logger.NewLogger("info").Fatal("load config", "error", err)
	}

	log := logger.NewLogger(cfg.Log.Level)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(cfg.Metrics.Namespace, reg)

	flightGraph := graph.New(
		graph.WithMaxConnectionGap(cfg.Search.MaxConnectionGap()),
		graph.WithMaxExpansions(cfg.Search.MaxExpansions),
	)

	var resultCache search.ResultCache
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis, cfg.Search.ResultsCacheTTL())
		defer redisCache.Close()
		if err := redisCache.Ping(ctx); err != nil {
			log.Warn("redis unavailable, serving without result cache", "addr", cfg.Redis.Addr, "error", err)
		} else {
			resultCache = redisCache
		}
	}

	svc := search.NewSearchService(flightGraph, resultCache, m, log)

	var stored bootstrap.FlightLister
	if cfg.Database.Enabled() {
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatal("connect postgres", "error", err)
		}
		defer pool.Close()
		stored = repository.NewFlightRepository(pool)
	}

	source, flights, err := bootstrap.InitialFlights(ctx, stored, cfg.Data.FlightsFile)
	if err != nil {
		log.Fatal("load initial flights", "error", err)
	}
	if source != "" {
		n, err := svc.AddFlights(ctx, source, flights)
		if err != nil {
			log.Fatal("add initial flights", "source", source, "error", err)
		}
		log.Info("loaded initial flights", "source", source, "count", n)
	}

	if cfg.Kafka.Enabled() {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.FlightsTopic)
		defer consumer.Close()

		go func() {
			err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
				f, event, err := kafka.DecodeFlight(msg)
				if err != nil {
					log.Warn("skipping flight event", "offset", msg.Offset, "error", err)
					m.ErrorsCount.WithLabelValues("consume").Inc()
					return nil
				}
				n, err := svc.AddUnseenFlights(ctx, "kafka", []*domain.Flight{f})
				if err != nil {
					return err
				}
				if n > 0 {
					log.Debug("flight added from kafka", "batch_id", event.BatchID, "number", f.Number())
				}
				return nil
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Error("flight consumer stopped", "error", err)
			}
		}()
	}

	stats := svc.Stats(ctx)
	log.Info("flight graph ready", "locations", stats.Locations, "flights", stats.Flights)

	if err := bootstrap.Run(ctx, cfg, svc, reg, log); err != nil {
		log.Fatal("server error", "error", err)
	}
}
