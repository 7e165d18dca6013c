package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Domenick1991/farecast/config"
	"github.com/Domenick1991/farecast/internal/domain"
	"github.com/Domenick1991/farecast/internal/kafka"
	"github.com/Domenick1991/farecast/internal/repository"
	"github.com/Domenick1991/farecast/pkg/logger"
	"github.com/Domenick1991/farecast/pkg/metrics"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	kafkaGo "github.com/segmentio/kafka-go"
)

// routeKey identifies one ingest batch.
type routeKey struct {
	origin      string
	destination string
}

// batcher accumulates observations per route together with the kafka
// messages that carried them, so offsets commit only after a flush
// lands the whole batch in the store.
type batcher struct {
	mu      sync.Mutex
	pending map[routeKey][]domain.FlightPriceRecord
	msgs    []kafkaGo.Message
}

func (b *batcher) add(key routeKey, rec domain.FlightPriceRecord, msg kafkaGo.Message) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending[key] = append(b.pending[key], rec)
	b.msgs = append(b.msgs, msg)
	return len(b.msgs)
}

// skip records a message carrying no usable observation; its offset
// still commits with the next flush.
func (b *batcher) skip(msg kafkaGo.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.msgs = append(b.msgs, msg)
}

func (b *batcher) drain() (map[routeKey][]domain.FlightPriceRecord, []kafkaGo.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	routes, msgs := b.pending, b.msgs
	b.pending = make(map[routeKey][]domain.FlightPriceRecord)
	b.msgs = nil
	return routes, msgs
}

func main() {
	_ = godotenv.Load()

	log := logger.New()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Error("connect postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	m := metrics.New("farecast_worker")
	priceRepo := repository.NewPriceRecordRepository(pool)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.ObservationsTopic)
	defer consumer.Close()

	batches := &batcher{pending: make(map[routeKey][]domain.FlightPriceRecord)}

	flush := func(ctx context.Context) {
		routes, msgs := batches.drain()
		ok := true
		for key, records := range routes {
			inserted, err := priceRepo.InsertRecords(ctx, key.origin, key.destination, records)
			if err != nil {
				log.Error("insert observations", "route", key.origin+"-"+key.destination, "error", err)
				m.ErrorsTotal.WithLabelValues("ingest").Inc()
				ok = false
				continue
			}
			m.ObservationsIngested.Add(float64(inserted))
			log.Info("observations ingested", "route", key.origin+"-"+key.destination, "count", inserted)
		}
		if !ok {
			// offsets stay uncommitted: the failed observations replay
			// after a restart and dedupe on observation id
			return
		}
		if err := consumer.Commit(ctx, msgs...); err != nil {
			log.Error("commit offsets", "error", err)
			m.ErrorsTotal.WithLabelValues("commit").Inc()
		}
	}

	go func() {
		for {
			msg, err := consumer.Fetch(ctx)
			if err != nil {
				if ctx.Err() == nil {
					log.Error("consumer stopped", "error", err)
				}
				return
			}

			var event kafka.PriceObservationEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				log.Warn("skip malformed observation", "error", err)
				batches.skip(msg)
				continue
			}
			if event.ID == "" {
				event.ID = uuid.NewString()
			}
			if event.Price <= 0 || event.Origin == "" || event.Destination == "" {
				log.Warn("skip invalid observation", "id", event.ID)
				batches.skip(msg)
				continue
			}

			key := routeKey{origin: event.Origin, destination: event.Destination}
			if batches.add(key, recordFromEvent(event), msg) >= cfg.Worker.IngestBatchSize {
				flush(ctx)
			}
		}
	}()

	flushTicker := time.NewTicker(time.Duration(cfg.Worker.IngestFlushSeconds) * time.Second)
	defer flushTicker.Stop()

	for {
		select {
		case <-flushTicker.C:
			flush(ctx)
		case <-ctx.Done():
			// the signal context is already canceled; the final flush
			// gets its own deadline so pending observations still land
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			flush(shutdownCtx)
			cancel()
			log.Info("worker shutting down")
			return
		}
	}
}

func recordFromEvent(event kafka.PriceObservationEvent) domain.FlightPriceRecord {
	return domain.FlightPriceRecord{
		ObservationID: event.ID,
		AirlineID:     event.AirlineID,
		AirlineName:   event.AirlineName,
		DepartureDate: event.DepartureDate,
		ReturnDate:    event.ReturnDate,
		Price:         event.Price,
		TripType:      event.TripType,
		TravelClass:   event.TravelClass,
		PriceLevel:    event.PriceLevel,
		DepartureTime: event.DepartureTime,
		ArrivalTime:   event.ArrivalTime,
		Duration:      event.Duration,
		Airplane:      event.Airplane,
		Emissions:     event.Emissions,
	}
}
