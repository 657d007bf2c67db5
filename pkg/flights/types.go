package flights

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CanonicalCurrency is the unit all fares are normalized into before any
// cross-source comparison. Iranian booking sites quote in Rial or Toman;
// everything is unified to Rial.
const CanonicalCurrency = "IRR"

// SearchParams describes one flight search. Immutable once validated.
type SearchParams struct {
	Origin      string   // IATA city code, e.g. "THR"
	Destination string   // IATA city code, e.g. "IST"
	Date        string   // departure date, YYYY-MM-DD
	Adults      int
	Children    int
	Infants     int
	CabinClass  string   // "economy" when empty
	Domestic    bool     // domestic route (affects per-source API selection)
	Sources     []string // restrict to these source names; empty means all
}

// Validate checks the invariants every search must satisfy.
func (p SearchParams) Validate() error {
	origin := strings.ToUpper(strings.TrimSpace(p.Origin))
	destination := strings.ToUpper(strings.TrimSpace(p.Destination))

	if origin == "" || destination == "" {
		return fmt.Errorf("%w: origin and destination are required", ErrInvalidParams)
	}
	if origin == destination {
		return fmt.Errorf("%w: origin equals destination (%s)", ErrInvalidParams, origin)
	}
	if p.Adults < 1 {
		return fmt.Errorf("%w: at least one adult passenger is required", ErrInvalidParams)
	}
	if p.Children < 0 || p.Infants < 0 {
		return fmt.Errorf("%w: passenger counts cannot be negative", ErrInvalidParams)
	}
	if _, err := time.Parse("2006-01-02", p.Date); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD: %s", ErrInvalidParams, p.Date)
	}
	return nil
}

// DepartureDate returns the search date as a time at end of day, so a
// monitor keeps checking until the whole departure day has passed.
func (p SearchParams) DepartureDate() (time.Time, error) {
	t, err := time.Parse("2006-01-02", p.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidParams, p.Date)
	}
	return t.Add(24*time.Hour - time.Nanosecond), nil
}

// Normalized returns a copy with codes upper-cased, whitespace trimmed and
// the cabin class defaulted.
func (p SearchParams) Normalized() SearchParams {
	p.Origin = strings.ToUpper(strings.TrimSpace(p.Origin))
	p.Destination = strings.ToUpper(strings.TrimSpace(p.Destination))
	if p.CabinClass == "" {
		p.CabinClass = "economy"
	} else {
		p.CabinClass = strings.ToLower(p.CabinClass)
	}
	return p
}

// Listing is one raw fare offer as reported by a single source, before
// normalization. Fields a source does not supply are left zero; the
// Normalizer derives or rejects them.
type Listing struct {
	Airline       string
	FlightNumber  string
	DepartureTime time.Time
	ArrivalTime   time.Time
	Price         decimal.Decimal
	Currency      string // as reported by the source ("IRR", "IRT", ...)
	Stops         int
	DurationMin   int // total minutes; 0 means unknown
	CabinClass    string
	SeatsLeft     int
	Refundable    bool
	Charter       bool
	DeepLink      string // booking URL, opaque to the core
}

// Flight is the canonical, cross-source-comparable fare record.
type Flight struct {
	Source        string          `json:"source"`
	Airline       string          `json:"airline"`
	FlightNumber  string          `json:"flight_number"`
	Origin        string          `json:"origin"`
	Destination   string          `json:"destination"`
	DepartureTime time.Time       `json:"departure_time"`
	ArrivalTime   time.Time       `json:"arrival_time"`
	Price         decimal.Decimal `json:"price"`
	Currency      string          `json:"currency"` // always CanonicalCurrency
	Stops         int             `json:"stops"`
	Duration      time.Duration   `json:"duration"`
	CabinClass    string          `json:"cabin_class,omitempty"`
	SeatsLeft     int             `json:"seats_left,omitempty"`
	Refundable    bool            `json:"refundable,omitempty"`
	Charter       bool            `json:"charter,omitempty"`
	DeepLink      string          `json:"deep_link,omitempty"`
}

// String renders a flight the way the CLI table does, one line.
func (f Flight) String() string {
	return fmt.Sprintf("%s %s | %s->%s | %s - %s | %s %s [%s]",
		f.Airline, f.FlightNumber,
		f.Origin, f.Destination,
		f.DepartureTime.Format("15:04"), f.ArrivalTime.Format("15:04"),
		f.Price.StringFixed(0), f.Currency, f.Source)
}

// Source is the contract every booking-site adapter implements.
//
// Search returns the raw listings for the given parameters. An empty slice
// with a nil error means the source answered but has no matching flights.
// ErrRouteNotSupported signals that the source does not serve the requested
// routing (for example a domestic-only carrier asked for an international
// route); any other error is a transport or payload failure.
//
// Implementations hold no per-search mutable state and must be safe to
// invoke concurrently with other sources.
type Source interface {
	// Name returns the unique registry name of this source.
	Name() string

	// Search fetches raw listings for the given parameters.
	Search(ctx context.Context, params SearchParams) ([]Listing, error)
}

// SourceFactory creates a Source from its configuration map.
type SourceFactory func(config map[string]interface{}) (Source, error)
