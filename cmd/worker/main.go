package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/airroutes/config"
	"github.com/Domenick1991/airroutes/internal/ingest"
	"github.com/Domenick1991/airroutes/internal/kafka"
	"github.com/Domenick1991/airroutes/internal/logger"
	"github.com/Domenick1991/airroutes/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// The worker ingests a flight file once: it stores the records in Postgres
// and publishes each one to the flights topic for running app instances.
func main() {
	file := flag.String("file", "", "flight records file (defaults to data.flights_file)")
	flag.Parse()

	cfg, err := config.LoadConfig(config.PathFromEnv())
	if err != nil {
		logger.NewLogger("info").Fatal("load config", "error", err)
	}

	zl := logger.NewLogger(cfg.Log.Level)
	defer zl.Sync()
	var log logger.Logger = zl

	path := *file
	if path == "" {
		path = cfg.Data.FlightsFile
	}
	if path == "" {
		log.Fatal("no flight records file given")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	flights, err := ingest.ReadFile(path)
	if err != nil {
		log.Fatal("read flights", "path", path, "error", err)
	}

	batchID := uuid.NewString()
	log = log.With("batch_id", batchID)
	log.Info("ingesting flights", "path", path, "count", len(flights))

	if cfg.Database.Enabled() {
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatal("connect postgres", "error", err)
		}
		defer pool.Close()

		inserted, err := repository.NewFlightRepository(pool).SaveAll(ctx, flights)
		if err != nil {
			log.Fatal("store flights", "error", err)
		}
		log.Info("stored flights", "inserted", inserted, "skipped", len(flights)-inserted)
	}

	if !cfg.Kafka.Enabled() {
		log.Info("kafka not configured, nothing to publish")
		return
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers, log)
	defer producer.Close()

	if err := producer.CheckConnection(ctx); err != nil {
		log.Fatal("kafka unavailable", "error", err)
	}

	published := 0
	for _, f := range flights {
		event := kafka.NewFlightEvent(batchID, f)
		if err := producer.PublishWithRetry(ctx, cfg.Kafka.FlightsTopic, event.Key(), event, cfg.Kafka.PublishRetries); err != nil {
			log.Error("publish flight", "number", f.Number(), "error", err)
			continue
		}
		published++
	}
	log.Info("published flights", "topic", cfg.Kafka.FlightsTopic, "published", published, "failed", len(flights)-published)
}
