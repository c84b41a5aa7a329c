// Package graph indexes scheduled flights by location and enumerates every
// itinerary between two locations on a given day.
//
// A FlightGraph is not safe for concurrent use. Searches only read the
// adjacency and keep their bookkeeping per path, so callers may run several
// searches in parallel as long as nothing calls AddFlight meanwhile.
package graph

import (
	"fmt"
	"slices"
	"time"

	"github.com/Domenick1991/airroutes/internal/domain"
)

// DefaultMaxConnectionGap is the longest accepted wait between the arrival
// of one leg and the departure of the next.
const DefaultMaxConnectionGap = 6 * time.Hour

type FlightGraph struct {
	nodes         map[string]*node
	flights       int
	maxGap        time.Duration
	maxExpansions int
}

type Option func(*FlightGraph)

// WithMaxConnectionGap overrides DefaultMaxConnectionGap. The bound is
// inclusive.
func WithMaxConnectionGap(gap time.Duration) Option {
	return func(g *FlightGraph) {
		if gap >= 0 {
			g.maxGap = gap
		}
	}
}

// WithMaxExpansions caps how many partial itineraries one search may expand.
// Zero or less means no cap.
func WithMaxExpansions(n int) Option {
	return func(g *FlightGraph) {
		g.maxExpansions = n
	}
}

func New(opts ...Option) *FlightGraph {
	g := &FlightGraph{
		nodes:  make(map[string]*node),
		maxGap: DefaultMaxConnectionGap,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// AddFlight inserts a leg, creating both endpoint locations on first
// reference. Duplicate legs are kept.
func (g *FlightGraph) AddFlight(f *domain.Flight) error {
	if f == nil {
		return fmt.Errorf("%w: nil flight", domain.ErrInvalidFlight)
	}
	origin := g.ensure(f.Origin())
	g.ensure(f.Destination())
	origin.add(f)
	g.flights++
	return nil
}

func (g *FlightGraph) ensure(name string) *node {
	n, ok := g.nodes[name]
	if !ok {
		n = newNode(name)
		g.nodes[name] = n
	}
	return n
}

// DirectFlights returns the legs from origin to destination departing on the
// given day, in insertion order.
func (g *FlightGraph) DirectFlights(date domain.Date, origin, destination string) ([]*domain.Flight, error) {
	if err := validateQuery(origin, destination); err != nil {
		return nil, err
	}

	out := make([]*domain.Flight, 0)
	n, ok := g.nodes[origin]
	if !ok {
		return out, nil
	}
	for _, f := range n.flightsTo(destination) {
		if f.DepartsOn(date) {
			out = append(out, f)
		}
	}
	return out, nil
}

func (g *FlightGraph) NodeCount() int {
	return len(g.nodes)
}

func (g *FlightGraph) FlightCount() int {
	return g.flights
}

func (g *FlightGraph) MaxConnectionGap() time.Duration {
	return g.maxGap
}

// Locations returns every known location name in lexical order.
func (g *FlightGraph) Locations() []string {
	names := make([]string, 0, len(g.nodes))
	for name := range g.nodes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (g *FlightGraph) HasLocation(name string) bool {
	_, ok := g.nodes[name]
	return ok
}

func validateQuery(origin, destination string) error {
	if origin == "" || destination == "" {
		return fmt.Errorf("%w: origin and destination are required", domain.ErrInvalidInput)
	}
	if origin == destination {
		return fmt.Errorf("%w: %q", domain.ErrDegenerateQuery, origin)
	}
	return nil
}
