package flights

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func testParams() SearchParams {
	return SearchParams{
		Origin:      "THR",
		Destination: "IST",
		Date:        "2026-01-15",
		Adults:      1,
		CabinClass:  "economy",
	}
}

func testListing() Listing {
	dep := time.Date(2026, 1, 15, 8, 30, 0, 0, time.UTC)
	return Listing{
		Airline:       "Iran Air",
		FlightNumber:  "IR-710",
		DepartureTime: dep,
		ArrivalTime:   dep.Add(3 * time.Hour),
		Price:         decimal.NewFromInt(45_000_000),
		Currency:      "IRR",
		DurationMin:   180,
	}
}

func TestNormalize(t *testing.T) {
	flight, err := Normalize("alibaba", testParams(), testListing())
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if flight.Source != "alibaba" {
		t.Errorf("Expected source 'alibaba', got '%s'", flight.Source)
	}
	if flight.Currency != CanonicalCurrency {
		t.Errorf("Expected currency %s, got %s", CanonicalCurrency, flight.Currency)
	}
	if !flight.Price.Equal(decimal.NewFromInt(45_000_000)) {
		t.Errorf("IRR price must pass through unchanged, got %s", flight.Price)
	}
	if flight.Duration != 3*time.Hour {
		t.Errorf("Expected 3h duration, got %s", flight.Duration)
	}
	if flight.Origin != "THR" || flight.Destination != "IST" {
		t.Errorf("Route not carried over: %s->%s", flight.Origin, flight.Destination)
	}
}

func TestNormalize_TomanConversion(t *testing.T) {
	l := testListing()
	l.Currency = "IRT"
	l.Price = decimal.NewFromInt(4_500_000)

	flight, err := Normalize("mrbilit", testParams(), l)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if !flight.Price.Equal(decimal.NewFromInt(45_000_000)) {
		t.Errorf("Expected Toman converted to 45000000 Rial, got %s", flight.Price)
	}
	if flight.Currency != "IRR" {
		t.Errorf("Expected canonical IRR, got %s", flight.Currency)
	}
}

func TestNormalize_UnknownCurrencyRejected(t *testing.T) {
	l := testListing()
	l.Currency = "USD"

	_, err := Normalize("alibaba", testParams(), l)
	if !errors.Is(err, ErrUnknownCurrency) {
		t.Fatalf("Expected ErrUnknownCurrency, got %v", err)
	}
}

func TestNormalize_MissingPrice(t *testing.T) {
	l := testListing()
	l.Price = decimal.Zero

	_, err := Normalize("alibaba", testParams(), l)
	if !errors.Is(err, ErrMalformedListing) {
		t.Fatalf("Expected ErrMalformedListing, got %v", err)
	}
}

func TestNormalize_MissingFields(t *testing.T) {
	cases := map[string]func(*Listing){
		"airline":        func(l *Listing) { l.Airline = "  " },
		"departure":      func(l *Listing) { l.DepartureTime = time.Time{} },
		"arrival":        func(l *Listing) { l.ArrivalTime = time.Time{} },
		"inverted times": func(l *Listing) { l.ArrivalTime = l.DepartureTime.Add(-time.Hour) },
		"negative price": func(l *Listing) { l.Price = decimal.NewFromInt(-1) },
	}

	for name, mutate := range cases {
		l := testListing()
		mutate(&l)
		if _, err := Normalize("alibaba", testParams(), l); !errors.Is(err, ErrMalformedListing) {
			t.Errorf("%s: expected ErrMalformedListing, got %v", name, err)
		}
	}
}

func TestNormalize_DurationDerivedFromTimestamps(t *testing.T) {
	l := testListing()
	l.DurationMin = 0
	l.ArrivalTime = l.DepartureTime.Add(195 * time.Minute)

	flight, err := Normalize("ataair", testParams(), l)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if flight.Duration != 195*time.Minute {
		t.Errorf("Expected derived duration 3h15m, got %s", flight.Duration)
	}
}

func TestSearchParams_Validate(t *testing.T) {
	valid := testParams()
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid params rejected: %v", err)
	}

	cases := map[string]SearchParams{
		"same route":     {Origin: "THR", Destination: "THR", Date: "2026-01-15", Adults: 1},
		"no adults":      {Origin: "THR", Destination: "IST", Date: "2026-01-15", Adults: 0},
		"negative count": {Origin: "THR", Destination: "IST", Date: "2026-01-15", Adults: 1, Infants: -1},
		"bad date":       {Origin: "THR", Destination: "IST", Date: "15-01-2026", Adults: 1},
		"empty origin":   {Destination: "IST", Date: "2026-01-15", Adults: 1},
	}

	for name, params := range cases {
		if err := params.Validate(); !errors.Is(err, ErrInvalidParams) {
			t.Errorf("%s: expected ErrInvalidParams, got %v", name, err)
		}
	}
}

func TestRegistry_UnknownSource(t *testing.T) {
	_, err := Create("no-such-agency", nil)
	if !errors.Is(err, ErrUnknownSource) {
		t.Fatalf("Expected ErrUnknownSource, got %v", err)
	}
}
