package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Flight is one scheduled leg between two locations. It is immutable once
// built and is shared by every itinerary that references it.
type Flight struct {
	number      string
	departure   time.Time
	arrival     time.Time
	airline     string
	origin      string
	destination string
	price       decimal.Decimal
}

// NewFlight validates the leg invariants: departure strictly before arrival,
// distinct endpoints and a non-negative price.
func NewFlight(number string, departure, arrival time.Time, airline, origin, destination string, price decimal.Decimal) (*Flight, error) {
	if origin == "" || destination == "" {
		return nil, fmt.Errorf("%w: flight %q: origin and destination are required", ErrInvalidFlight, number)
	}
	if origin == destination {
		return nil, fmt.Errorf("%w: flight %q: origin equals destination %q", ErrInvalidFlight, number, origin)
	}
	if !departure.Before(arrival) {
		return nil, fmt.Errorf("%w: flight %q: departure %s is not before arrival %s", ErrInvalidFlight, number,
			departure.Format(DateTimeLayout), arrival.Format(DateTimeLayout))
	}
	if price.IsNegative() {
		return nil, fmt.Errorf("%w: flight %q: negative price %s", ErrInvalidFlight, number, price)
	}

	return &Flight{
		number:      number,
		departure:   departure,
		arrival:     arrival,
		airline:     airline,
		origin:      origin,
		destination: destination,
		price:       price,
	}, nil
}

// ParseFlight builds a Flight from the seven textual fields of an ingestion
// record: number, departure, arrival, airline, origin, destination, price.
func ParseFlight(number, departure, arrival, airline, origin, destination, price string) (*Flight, error) {
	dep, err := parseDateTime(departure)
	if err != nil {
		return nil, fmt.Errorf("flight %q departure: %w", number, err)
	}
	arr, err := parseDateTime(arrival)
	if err != nil {
		return nil, fmt.Errorf("flight %q arrival: %w", number, err)
	}
	p, err := decimal.NewFromString(strings.TrimSpace(price))
	if err != nil {
		return nil, fmt.Errorf("%w: flight %q price %q: %v", ErrInvalidInput, number, price, err)
	}
	return NewFlight(number, dep, arr, airline, origin, destination, p)
}

func (f *Flight) Number() string { return f.number }
func (f *Flight) Departure() time.Time { return f.departure }
func (f *Flight) Arrival() time.Time { return f.arrival }
func (f *Flight) Airline() string { return f.airline }
func (f *Flight) Origin() string { return f.origin }
func (f *Flight) Destination() string { return f.destination }
func (f *Flight) Price() decimal.Decimal { return f.price }
func (f *Flight) Duration() time.Duration { return f.arrival.Sub(f.departure) }
func (f *Flight) DurationMinutes() int { return int(f.Duration() / time.Minute) }

// DepartsOn reports whether the departure falls on the given calendar day.
func (f *Flight) DepartsOn(d Date) bool {
	return DateOf(f.departure) == d
}

// ConnectsFrom reports whether this leg can follow a leg arriving at
// prevArrival: it must not leave earlier and the wait may be at most maxGap.
func (f *Flight) ConnectsFrom(prevArrival time.Time, maxGap time.Duration) bool {
	gap := f.departure.Sub(prevArrival)
	return gap >= 0 && gap <= maxGap
}

// String renders number,departure,arrival,airline,origin,destination,price.
func (f *Flight) String() string {
	return f.join(f.departure.Format(DateTimeLayout), f.arrival.Format(DateTimeLayout), f.price.StringFixed(2))
}

// DateOnlyString is String with both timestamps truncated to the day.
func (f *Flight) DateOnlyString() string {
	return f.join(f.departure.Format(DateLayout), f.arrival.Format(DateLayout), f.price.StringFixed(2))
}

func (f *Flight) NoCostString() string {
	return f.join(f.departure.Format(DateTimeLayout), f.arrival.Format(DateTimeLayout), "")
}

// Key identifies a flight record by number, departure and route, matching
// the flight_records primary key.
func (f *Flight) Key() string {
	return strings.Join([]string{f.number, f.departure.Format(DateTimeLayout), f.origin, f.destination}, "|")
}

func (f *Flight) join(dep, arr, price string) string {
	fields := []string{f.number, dep, arr, f.airline, f.origin, f.destination}
	if price != "" {
		fields = append(fields, price)
	}
	return strings.Join(fields, ",")
}

type flightJSON struct {
	Number          string `json:"number"`
	Departure       string `json:"departure"`
	Arrival         string `json:"arrival"`
	Airline         string `json:"airline"`
	Origin          string `json:"origin"`
	Destination     string `json:"destination"`
	Price           string `json:"price"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
}

func (f *Flight) MarshalJSON() ([]byte, error) {
	return json.Marshal(flightJSON{
		Number:          f.number,
		Departure:       f.departure.Format(DateTimeLayout),
		Arrival:         f.arrival.Format(DateTimeLayout),
		Airline:         f.airline,
		Origin:          f.origin,
		Destination:     f.destination,
		Price:           f.price.StringFixed(2),
		DurationMinutes: f.DurationMinutes(),
	})
}

// UnmarshalJSON goes through ParseFlight so a decoded leg holds the same
// invariants as an ingested one.
func (f *Flight) UnmarshalJSON(data []byte) error {
	var raw flightJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseFlight(raw.Number, raw.Departure, raw.Arrival, raw.Airline, raw.Origin, raw.Destination, raw.Price)
	if err != nil {
		return err
	}
	*f = *parsed
	return nil
}
