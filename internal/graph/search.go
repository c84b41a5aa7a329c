package graph

import (
	"errors"
	"fmt"

	"github.com/Domenick1991/airroutes/internal/domain"
)

// ErrSearchLimitExceeded is returned when a search would expand more partial
// itineraries than the configured ceiling.
var ErrSearchLimitExceeded = errors.New("itinerary search limit exceeded")

// worklist holds partial itineraries still to be expanded. It is FIFO: the
// oldest partial path is expanded first.
type worklist struct {
	items []*path
	head  int
}

func (w *worklist) push(p *path) {
	w.items = append(w.items, p)
}

func (w *worklist) pop() (*path, bool) {
	if w.head == len(w.items) {
		return nil, false
	}
	p := w.items[w.head]
	w.items[w.head] = nil
	w.head++
	if w.head == len(w.items) {
		w.items, w.head = w.items[:0], 0
	}
	return p, true
}

// FindItineraries enumerates every cycle-free itinerary from origin to
// destination whose first leg departs on date and whose connections each
// wait between zero and the maximum connection gap.
//
// Results come back in discovery order: one-leg itineraries first, then
// longer ones in the order the FIFO worklist completes them. Unknown
// locations produce an empty result.
func (g *FlightGraph) FindItineraries(date domain.Date, origin, destination string) ([]domain.Itinerary, error) {
	if err := validateQuery(origin, destination); err != nil {
		return nil, err
	}

	found := make([]domain.Itinerary, 0)
	start, ok := g.nodes[origin]
	if !ok || !g.HasLocation(destination) {
		return found, nil
	}

	var finished []*path
	var work worklist

	start.each(func(dest string, f *domain.Flight) {
		if !f.DepartsOn(date) {
			return
		}
		p := newPath(f)
		if dest == destination {
			finished = append(finished, p)
			return
		}
		work.push(p)
	})

	expansions := 0
	for {
		p, ok := work.pop()
		if !ok {
			break
		}
		expansions++
		if g.maxExpansions > 0 && expansions > g.maxExpansions {
			return nil, fmt.Errorf("%w: %s to %s on %s after %d expansions",
				ErrSearchLimitExceeded, origin, destination, date, g.maxExpansions)
		}

		seen := p.visited()
		last := g.nodes[p.lastDestination()]
		arrival := p.lastArrival()
		for _, dest := range last.order {
			if _, ok := seen[dest]; ok {
				continue
			}
			for _, f := range last.byDest[dest] {
				if !f.ConnectsFrom(arrival, g.maxGap) {
					continue
				}
				next := p.extend(f)
				if dest == destination {
					finished = append(finished, next)
				} else {
					work.push(next)
				}
			}
		}
	}

	for _, p := range finished {
		it, err := p.itinerary()
		if err != nil {
			return nil, err
		}
		found = append(found, it)
	}
	return found, nil
}

// FindItinerariesSorted runs FindItineraries and orders the result.
func (g *FlightGraph) FindItinerariesSorted(date domain.Date, origin, destination string, order domain.SortOrder) ([]domain.Itinerary, error) {
	found, err := g.FindItineraries(date, origin, destination)
	if err != nil {
		return nil, err
	}
	return domain.Sort(found, order), nil
}
