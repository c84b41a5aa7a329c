package domain

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Itinerary is a finished, contiguous sequence of legs together with its
// aggregate price and elapsed time.
type Itinerary struct {
	legs          []*Flight
	totalPrice    decimal.Decimal
	totalDuration time.Duration
}

// NewItinerary checks that every leg departs from where the previous one
// landed. The total duration spans first departure to last arrival, so
// layovers are counted.
func NewItinerary(legs []*Flight) (Itinerary, error) {
	if len(legs) == 0 {
		return Itinerary{}, fmt.Errorf("%w: itinerary has no legs", ErrInvalidInput)
	}
	total := decimal.Zero
	for i, leg := range legs {
		if leg == nil {
			return Itinerary{}, fmt.Errorf("%w: itinerary leg %d is nil", ErrInvalidInput, i)
		}
		if i > 0 && legs[i-1].Destination() != leg.Origin() {
			return Itinerary{}, fmt.Errorf("%w: leg %q departs %q but previous leg lands in %q",
				ErrInvalidInput, leg.Number(), leg.Origin(), legs[i-1].Destination())
		}
		total = total.Add(leg.Price())
	}

	return Itinerary{
		legs:          slices.Clone(legs),
		totalPrice:    total,
		totalDuration: legs[len(legs)-1].Arrival().Sub(legs[0].Departure()),
	}, nil
}

func (it Itinerary) Legs() []*Flight {
	return slices.Clone(it.legs)
}

func (it Itinerary) Len() int { return len(it.legs) }

func (it Itinerary) Origin() string {
	if len(it.legs) == 0 {
		return ""
	}
	return it.legs[0].Origin()
}

func (it Itinerary) Destination() string {
	if len(it.legs) == 0 {
		return ""
	}
	return it.legs[len(it.legs)-1].Destination()
}

func (it Itinerary) TotalPrice() decimal.Decimal { return it.totalPrice }

func (it Itinerary) TotalDuration() time.Duration { return it.totalDuration }

// Stops lists the locations in visiting order, origin first.
func (it Itinerary) Stops() []string {
	if len(it.legs) == 0 {
		return nil
	}
	stops := make([]string, 0, len(it.legs)+1)
	stops = append(stops, it.legs[0].Origin())
	for _, leg := range it.legs {
		stops = append(stops, leg.Destination())
	}
	return stops
}

// String serializes one line per leg without cost, then the total price with
// two decimals, then the elapsed time as HH:MM.
func (it Itinerary) String() string {
	var b strings.Builder
	for _, leg := range it.legs {
		b.WriteString(leg.NoCostString())
		b.WriteByte('\n')
	}
	b.WriteString(it.totalPrice.StringFixed(2))
	b.WriteByte('\n')
	b.WriteString(FormatDuration(it.totalDuration))
	return b.String()
}

// FormatDuration renders d as HH:MM; hours are not wrapped at 24.
func FormatDuration(d time.Duration) string {
	minutes := int(d / time.Minute)
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

type SortOrder string

const (
	SortNone   SortOrder = ""
	SortByCost SortOrder = "cost"
	SortByTime SortOrder = "time"
)

func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case SortNone, SortByCost, SortByTime:
		return o, nil
	default:
		return SortNone, fmt.Errorf("%w: unknown sort order %q", ErrInvalidInput, s)
	}
}

// Sort returns a copy of its ordered by the given key. Equal keys keep
// their discovery order.
func Sort(its []Itinerary, order SortOrder) []Itinerary {
	switch order {
	case SortByCost:
		return SortByPrice(its)
	case SortByTime:
		return SortByDuration(its)
	default:
		return slices.Clone(its)
	}
}

func SortByPrice(its []Itinerary) []Itinerary {
	out := slices.Clone(its)
	slices.SortStableFunc(out, func(a, b Itinerary) int {
		return a.totalPrice.Cmp(b.totalPrice)
	})
	return out
}

func SortByDuration(its []Itinerary) []Itinerary {
	out := slices.Clone(its)
	slices.SortStableFunc(out, func(a, b Itinerary) int {
		return cmp.Compare(a.totalDuration, b.totalDuration)
	})
	return out
}

type itineraryJSON struct {
	Legs          []*Flight `json:"legs"`
	TotalPrice    string    `json:"total_price"`
	TotalDuration string    `json:"total_duration"`
	TotalMinutes  int       `json:"total_minutes"`
}

func (it Itinerary) MarshalJSON() ([]byte, error) {
	return json.Marshal(itineraryJSON{
		Legs:          it.legs,
		TotalPrice:    it.totalPrice.StringFixed(2),
		TotalDuration: FormatDuration(it.totalDuration),
		TotalMinutes:  int(it.totalDuration / time.Minute),
	})
}

// UnmarshalJSON rebuilds the aggregates from the legs; the encoded totals
// are informational only.
func (it *Itinerary) UnmarshalJSON(data []byte) error {
	var raw itineraryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	built, err := NewItinerary(raw.Legs)
	if err != nil {
		return err
	}
	*it = built
	return nil
}
