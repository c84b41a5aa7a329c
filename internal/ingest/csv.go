// Package ingest reads flight records in the seven-field text form
// number,departure,arrival,airline,origin,destination,price.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Domenick1991/airroutes/internal/domain"
)

const recordFields = 7

// Sink receives parsed flights, typically a graph or the search service.
type Sink interface {
	AddFlight(f *domain.Flight) error
}

// LineError reports the source line of a record that could not be parsed.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// ReadFlights parses every record from r. The first malformed record aborts
// the read with a *LineError. Blank lines are skipped.
func ReadFlights(r io.Reader) ([]*domain.Flight, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = recordFields
	reader.TrimLeadingSpace = true

	var flights []*domain.Flight
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return flights, nil
		}
		if err != nil {
			line := 0
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				line = perr.Line
			}
			return nil, &LineError{Line: line, Err: fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)}
		}

		line, _ := reader.FieldPos(0)
		f, err := FromRecord(record)
		if err != nil {
			return nil, &LineError{Line: line, Err: err}
		}
		flights = append(flights, f)
	}
}

// FromRecord converts one seven-field record into a Flight.
func FromRecord(record []string) (*domain.Flight, error) {
	if len(record) != recordFields {
		return nil, fmt.Errorf("%w: expected %d fields, got %d", domain.ErrInvalidInput, recordFields, len(record))
	}
	return domain.ParseFlight(record[0], record[1], record[2], record[3], record[4], record[5], record[6])
}

// ToRecord is the inverse of FromRecord.
func ToRecord(f *domain.Flight) []string {
	return []string{
		f.Number(),
		f.Departure().Format(domain.DateTimeLayout),
		f.Arrival().Format(domain.DateTimeLayout),
		f.Airline(),
		f.Origin(),
		f.Destination(),
		f.Price().String(),
	}
}

// Load reads every record from r and hands it to sink. Nothing reaches the
// sink if any record is malformed.
func Load(r io.Reader, sink Sink) (int, error) {
	flights, err := ReadFlights(r)
	if err != nil {
		return 0, err
	}
	for i, f := range flights {
		if err := sink.AddFlight(f); err != nil {
			return i, fmt.Errorf("add flight %q: %w", f.Number(), err)
		}
	}
	return len(flights), nil
}

func LoadFile(path string, sink Sink) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open flights file: %w", err)
	}
	defer file.Close()

	n, err := Load(file, sink)
	if err != nil {
		return n, fmt.Errorf("load %s: %w", path, err)
	}
	return n, nil
}

func ReadFile(path string) ([]*domain.Flight, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open flights file: %w", err)
	}
	defer file.Close()

	flights, err := ReadFlights(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return flights, nil
}
