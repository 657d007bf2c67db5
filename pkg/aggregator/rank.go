package aggregator

import (
	"sort"

	"github.com/iPurya/SkySniper/pkg/flights"
)

// Rank returns the flights in their canonical total order: ascending
// price, ties broken by shorter duration, then by source name so the
// order is fully deterministic. The input slice is not modified. Pure.
func Rank(list []flights.Flight) []flights.Flight {
	ranked := make([]flights.Flight, len(list))
	copy(ranked, list)

	sort.SliceStable(ranked, func(i, j int) bool {
		if !ranked[i].Price.Equal(ranked[j].Price) {
			return ranked[i].Price.LessThan(ranked[j].Price)
		}
		if ranked[i].Duration != ranked[j].Duration {
			return ranked[i].Duration < ranked[j].Duration
		}
		return ranked[i].Source < ranked[j].Source
	})

	return ranked
}

// Cheapest returns the minimum-price flight under the Rank ordering.
// The second return value is false only when the list is empty.
func Cheapest(list []flights.Flight) (flights.Flight, bool) {
	if len(list) == 0 {
		return flights.Flight{}, false
	}

	best := list[0]
	for _, f := range list[1:] {
		if f.Price.LessThan(best.Price) ||
			(f.Price.Equal(best.Price) && f.Duration < best.Duration) ||
			(f.Price.Equal(best.Price) && f.Duration == best.Duration && f.Source < best.Source) {
			best = f
		}
	}
	return best, true
}
