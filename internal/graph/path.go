package graph

import (
	"time"

	"github.com/Domenick1991/airroutes/internal/domain"
)

// path is a partial itinerary stored as a reversed cons list. Extending a
// path allocates one cell and shares the whole prefix, so branching a path
// never copies it and a branch can never observe a sibling's legs.
type path struct {
	leg    *domain.Flight
	prev   *path
	length int
}

func newPath(first *domain.Flight) *path {
	return &path{leg: first, length: 1}
}

func (p *path) extend(f *domain.Flight) *path {
	return &path{leg: f, prev: p, length: p.length + 1}
}

func (p *path) lastDestination() string {
	return p.leg.Destination()
}

func (p *path) lastArrival() time.Time {
	return p.leg.Arrival()
}

// visited returns every location this path has touched: its origin and the
// destination of each leg.
func (p *path) visited() map[string]struct{} {
	seen := make(map[string]struct{}, p.length+1)
	for cur := p; cur != nil; cur = cur.prev {
		seen[cur.leg.Destination()] = struct{}{}
		if cur.prev == nil {
			seen[cur.leg.Origin()] = struct{}{}
		}
	}
	return seen
}

// legs returns the legs in travel order.
func (p *path) legs() []*domain.Flight {
	out := make([]*domain.Flight, p.length)
	i := p.length - 1
	for cur := p; cur != nil; cur = cur.prev {
		out[i] = cur.leg
		i--
	}
	return out
}

func (p *path) itinerary() (domain.Itinerary, error) {
	return domain.NewItinerary(p.legs())
}
