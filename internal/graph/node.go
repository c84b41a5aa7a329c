package graph

import "github.com/Domenick1991/airroutes/internal/domain"

// node is one location and its outgoing legs, bucketed by destination.
// Buckets and the legs inside them keep insertion order so searches are
// deterministic.
type node struct {
	name   string
	order  []string
	byDest map[string][]*domain.Flight
}

func newNode(name string) *node {
	return &node{name: name, byDest: make(map[string][]*domain.Flight)}
}

func (n *node) add(f *domain.Flight) {
	dest := f.Destination()
	if _, ok := n.byDest[dest]; !ok {
		n.order = append(n.order, dest)
	}
	n.byDest[dest] = append(n.byDest[dest], f)
}

func (n *node) flightsTo(dest string) []*domain.Flight {
	return n.byDest[dest]
}

// each visits every outgoing leg, bucket by bucket.
func (n *node) each(fn func(dest string, f *domain.Flight)) {
	for _, dest := range n.order {
		for _, f := range n.byDest[dest] {
			fn(dest, f)
		}
	}
}
