package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/farecast/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PriceRecordRepository is the flight data store consumed by the
// analysis and forecast services. Reads are side-effect free and may
// run concurrently across routes.
type PriceRecordRepository interface {
	GetPriceRecords(ctx context.Context, origin, destination string, dateRange domain.DateRange, tripType domain.TripType, travelClass domain.TravelClass) ([]domain.FlightPriceRecord, error)
	GetDailyAggregates(ctx context.Context, origin, destination string, dateRange domain.DateRange, tripType domain.TripType, travelClass domain.TravelClass) ([]domain.DailyAggregate, error)
	InsertRecords(ctx context.Context, origin, destination string, records []domain.FlightPriceRecord) (int, error)
}

type PGPriceRecordRepository struct {
	db *pgxpool.Pool
}

func NewPriceRecordRepository(db *pgxpool.Pool) PriceRecordRepository {
	return &PGPriceRecordRepository{db: db}
}

func (r *PGPriceRecordRepository) GetPriceRecords(ctx context.Context, origin, destination string, dateRange domain.DateRange, tripType domain.TripType, travelClass domain.TravelClass) ([]domain.FlightPriceRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT fp.id, fp.route_id, fp.airline_id, a.name, fp.departure_date, fp.return_date,
		       fp.price, fp.trip_type, fp.travel_class, COALESCE(fp.price_level, ''),
		       fp.departure_time, fp.arrival_time, fp.duration, fp.airplane, fp.emissions, fp.created_at
		FROM flight_prices fp
		JOIN routes r ON r.id = fp.route_id
		JOIN airlines a ON a.id = fp.airline_id
		WHERE r.origin = $1 AND r.destination = $2
		  AND fp.departure_date BETWEEN $3 AND $4
		  AND fp.trip_type = $5 AND fp.travel_class = $6
		ORDER BY fp.departure_date`,
		origin, destination, dateRange.Start, dateRange.End, tripType, travelClass)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.FlightPriceRecord, 0)
	for rows.Next() {
		var rec domain.FlightPriceRecord
		if err := rows.Scan(&rec.ID, &rec.RouteID, &rec.AirlineID, &rec.AirlineName, &rec.DepartureDate, &rec.ReturnDate,
			&rec.Price, &rec.TripType, &rec.TravelClass, &rec.PriceLevel,
			&rec.DepartureTime, &rec.ArrivalTime, &rec.Duration, &rec.Airplane, &rec.Emissions, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *PGPriceRecordRepository) GetDailyAggregates(ctx context.Context, origin, destination string, dateRange domain.DateRange, tripType domain.TripType, travelClass domain.TravelClass) ([]domain.DailyAggregate, error) {
	rows, err := r.db.Query(ctx, `
		SELECT fp.departure_date, MIN(fp.price), CAST(ROUND(AVG(fp.price)) AS BIGINT), MAX(fp.price)
		FROM flight_prices fp
		JOIN routes r ON r.id = fp.route_id
		WHERE r.origin = $1 AND r.destination = $2
		  AND fp.departure_date BETWEEN $3 AND $4
		  AND fp.trip_type = $5 AND fp.travel_class = $6
		  AND fp.price > 0
		GROUP BY fp.departure_date
		ORDER BY fp.departure_date`,
		origin, destination, dateRange.Start, dateRange.End, tripType, travelClass)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	aggregates := make([]domain.DailyAggregate, 0)
	for rows.Next() {
		var agg domain.DailyAggregate
		if err := rows.Scan(&agg.Date, &agg.Min, &agg.Avg, &agg.Max); err != nil {
			return nil, err
		}
		aggregates = append(aggregates, agg)
	}
	return aggregates, rows.Err()
}

// InsertRecords writes a batch of observations for one route. The route
// row is created on first sight so the ingest worker never races the
// seeding scripts. Observations replayed after an uncommitted kafka
// offset hit the unique observation_id index and are dropped; the
// returned count excludes those duplicates.
func (r *PGPriceRecordRepository) InsertRecords(ctx context.Context, origin, destination string, records []domain.FlightPriceRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	var routeID int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO routes (origin, destination) VALUES ($1, $2)
		ON CONFLICT (origin, destination) DO UPDATE SET origin = EXCLUDED.origin
		RETURNING id`, origin, destination).Scan(&routeID)
	if err != nil {
		return 0, fmt.Errorf("upsert route %s-%s: %w", origin, destination, err)
	}

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(`
			INSERT INTO flight_prices
				(route_id, airline_id, observation_id, departure_date, return_date, price, trip_type, travel_class,
				 price_level, departure_time, arrival_time, duration, airplane, emissions, created_at)
			VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, NULLIF($9, ''), $10, $11, $12, $13, $14, now())
			ON CONFLICT (observation_id) DO NOTHING`,
			routeID, rec.AirlineID, rec.ObservationID, rec.DepartureDate, rec.ReturnDate, rec.Price, rec.TripType, rec.TravelClass,
			string(rec.PriceLevel), rec.DepartureTime, rec.ArrivalTime, rec.Duration, rec.Airplane, rec.Emissions)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for range records {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("insert price record: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

var _ PriceRecordRepository = (*PGPriceRecordRepository)(nil)
