package aggregator

import (
	"time"

	"github.com/google/uuid"

	"github.com/iPurya/SkySniper/pkg/flights"
)

// SourceState classifies the outcome of one source within one search.
type SourceState string

const (
	// SourceStateOK means the source returned at least one usable listing.
	SourceStateOK SourceState = "ok"
	// SourceStateEmpty means the source answered with no matching flights.
	SourceStateEmpty SourceState = "empty"
	// SourceStateFailed means the fetch or every one of its listings failed.
	SourceStateFailed SourceState = "failed"
)

// SourceStatus is the per-source outcome of one aggregate search.
type SourceStatus struct {
	Source   string      `json:"source"`
	State    SourceState `json:"state"`
	Listings int         `json:"listings"` // usable listings after normalization
	Dropped  int         `json:"dropped"`  // listings rejected by the normalizer
	Error    string      `json:"error,omitempty"`
}

// Result is the outcome of one aggregate search. Immutable once returned:
// flights are sorted cheapest first and statuses cover every requested
// source.
type Result struct {
	ID         uuid.UUID            `json:"id"`
	Params     flights.SearchParams `json:"params"`
	Flights    []flights.Flight     `json:"flights"`
	Statuses   []SourceStatus       `json:"statuses"`
	SearchedAt time.Time            `json:"searched_at"`
}

// Succeeded returns the number of sources that answered (with or without
// flights).
func (r *Result) Succeeded() int {
	n := 0
	for _, s := range r.Statuses {
		if s.State != SourceStateFailed {
			n++
		}
	}
	return n
}

// Cheapest returns the cheapest flight of the result, if any.
func (r *Result) Cheapest() (flights.Flight, bool) {
	return Cheapest(r.Flights)
}
