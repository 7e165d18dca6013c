package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Domenick1991/farecast/internal/domain"
	"github.com/segmentio/kafka-go"
)

// PriceObservationEvent is one scraped price observation on its way to
// the store. Produced by the ingestion scripts, consumed by the worker.
type PriceObservationEvent struct {
	ID            string            `json:"id"`
	Origin        string            `json:"origin"`
	Destination   string            `json:"destination"`
	AirlineID     int64             `json:"airline_id"`
	AirlineName   string            `json:"airline_name"`
	DepartureDate time.Time         `json:"departure_date"`
	ReturnDate    *time.Time        `json:"return_date,omitempty"`
	Price         int64             `json:"price"`
	TripType      domain.TripType    `json:"trip_type"`
	TravelClass   domain.TravelClass `json:"travel_class"`
	PriceLevel    domain.PriceLevel  `json:"price_level,omitempty"`
	DepartureTime string            `json:"departure_time"`
	ArrivalTime   string            `json:"arrival_time"`
	Duration      string            `json:"duration"`
	Airplane      string            `json:"airplane"`
	Emissions     string            `json:"emissions"`
}

// AnalysisStatsEvent is published after each completed analysis so the
// statistics collaborator can track usage without touching the engine.
type AnalysisStatsEvent struct {
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	TripType    string    `json:"trip_type"`
	CacheHit    bool      `json:"cache_hit"`
	DurationMS  int64     `json:"duration_ms"`
	At          time.Time `json:"at"`
}

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	message := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}
	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}
	return nil
}

func (p *Producer) PublishWithRetry(ctx context.Context, topic, key string, payload interface{}, maxRetries int) error {
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		err := p.Publish(ctx, topic, key, payload)
		if err == nil {
			return nil
		}
		lastErr = err
		if i < maxRetries-1 {
			time.Sleep(time.Duration(i+1) * 500 * time.Millisecond)
		}
	}
	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
