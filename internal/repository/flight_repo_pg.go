package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/airroutes/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type FlightRepository interface {
	List(ctx context.Context) ([]*domain.Flight, error)
	SaveAll(ctx context.Context, flights []*domain.Flight) (int, error)
}

// DB is the subset of *pgxpool.Pool the repository needs.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

type PGFlightRepository struct {
	db DB
}

func NewFlightRepository(db DB) FlightRepository {
	return &PGFlightRepository{db: db}
}

const selectFlights = `SELECT number, departure, arrival, airline, origin, destination, price::text FROM flight_records ORDER BY created_at, departure, number`

// List returns every stored flight in insertion order so a graph rebuilt
// from the table keeps the same bucket order.
func (r *PGFlightRepository) List(ctx context.Context) ([]*domain.Flight, error) {
	rows, err := r.db.Query(ctx, selectFlights)
	if err != nil {
		return nil, err
	}
	return scanFlights(rows)
}

// SaveAll upserts flights in one batch and returns how many rows were new.
func (r *PGFlightRepository) SaveAll(ctx context.Context, flights []*domain.Flight) (int, error) {
	if len(flights) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, f := range flights {
		batch.Queue(`INSERT INTO flight_records (number, departure, arrival, airline, origin, destination, price)
			VALUES ($1, $2, $3, $4, $5, $6, $7::numeric)
			ON CONFLICT (number, departure, origin, destination) DO NOTHING`,
			f.Number(), f.Departure(), f.Arrival(), f.Airline(), f.Origin(), f.Destination(), f.Price().String())
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for _, f := range flights {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("save flight %q: %w", f.Number(), err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

func scanFlights(rows pgx.Rows) ([]*domain.Flight, error) {
	defer rows.Close()

	flights := make([]*domain.Flight, 0)
	for rows.Next() {
		var (
			number, airline, origin, destination, price string
			departure, arrival                          time.Time
		)
		if err := rows.Scan(&number, &departure, &arrival, &airline, &origin, &destination, &price); err != nil {
			return nil, err
		}
		p, err := decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("flight %q price %q: %w", number, price, err)
		}
		f, err := domain.NewFlight(number, departure.UTC(), arrival.UTC(), airline, origin, destination, p)
		if err != nil {
			return nil, err
		}
		flights = append(flights, f)
	}
	return flights, rows.Err()
}

var (
	_ FlightRepository = (*PGFlightRepository)(nil)
	_ DB               = (*pgxpool.Pool)(nil)
)
