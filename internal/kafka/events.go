package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Domenick1991/airroutes/internal/domain"
	"github.com/segmentio/kafka-go"
)

const FlightRecordEvent = "flight_record"

// FlightEvent carries one ingested flight record. Fields keep the textual
// ingestion form so consumers validate them exactly as the CSV loader does.
type FlightEvent struct {
	Type        string    `json:"type"`
	BatchID     string    `json:"batch_id"`
	Number      string    `json:"number"`
	Departure   string    `json:"departure"`
	Arrival     string    `json:"arrival"`
	Airline     string    `json:"airline"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	Price       string    `json:"price"`
	PublishedAt time.Time `json:"published_at"`
}

func NewFlightEvent(batchID string, f *domain.Flight) FlightEvent {
	return FlightEvent{
		Type:        FlightRecordEvent,
		BatchID:     batchID,
		Number:      f.Number(),
		Departure:   f.Departure().Format(domain.DateTimeLayout),
		Arrival:     f.Arrival().Format(domain.DateTimeLayout),
		Airline:     f.Airline(),
		Origin:      f.Origin(),
		Destination: f.Destination(),
		Price:       f.Price().String(),
		PublishedAt: time.Now().UTC(),
	}
}

// Key routes every flight leaving the same origin to one partition.
func (e FlightEvent) Key() string {
	return e.Origin
}

func (e FlightEvent) Flight() (*domain.Flight, error) {
	if e.Type != FlightRecordEvent {
		return nil, fmt.Errorf("%w: unexpected event type %q", domain.ErrInvalidInput, e.Type)
	}
	return domain.ParseFlight(e.Number, e.Departure, e.Arrival, e.Airline, e.Origin, e.Destination, e.Price)
}

// DecodeFlight parses a consumed message into a validated Flight.
func DecodeFlight(msg kafka.Message) (*domain.Flight, FlightEvent, error) {
	var event FlightEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return nil, event, fmt.Errorf("%w: decode flight event: %v", domain.ErrInvalidInput, err)
	}
	f, err := event.Flight()
	return f, event, err
}
