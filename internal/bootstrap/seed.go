package bootstrap

import (
	"context"
	"fmt"

	"github.com/Domenick1991/airroutes/internal/domain"
	"github.com/Domenick1991/airroutes/internal/ingest"
)

const (
	SourcePostgres = "postgres"
	SourceFile     = "file"
)

// FlightLister is the part of the flight repository the graph is seeded from.
type FlightLister interface {
	List(ctx context.Context) ([]*domain.Flight, error)
}

// InitialFlights loads the flights the graph starts with from exactly one
// source. The repository wins when given, since the worker fills it from the
// same flight files; the file is read otherwise. The returned source is empty
// when neither is configured.
func InitialFlights(ctx context.Context, repo FlightLister, flightsFile string) (string, []*domain.Flight, error) {
	if repo != nil {
		flights, err := repo.List(ctx)
		if err != nil {
			return "", nil, fmt.Errorf("list stored flights: %w", err)
		}
		return SourcePostgres, flights, nil
	}
	if flightsFile != "" {
		flights, err := ingest.ReadFile(flightsFile)
		if err != nil {
			return "", nil, fmt.Errorf("read flights file %s: %w", flightsFile, err)
		}
		return SourceFile, flights, nil
	}
	return "", nil, nil
}
