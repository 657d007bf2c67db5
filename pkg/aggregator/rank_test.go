package aggregator

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iPurya/SkySniper/pkg/flights"
)

func rankedFlight(source string, price int64, duration time.Duration) flights.Flight {
	return flights.Flight{
		Source:   source,
		Airline:  "Test Air",
		Price:    decimal.NewFromInt(price),
		Currency: flights.CanonicalCurrency,
		Duration: duration,
	}
}

func TestRank_TotalOrder(t *testing.T) {
	input := []flights.Flight{
		rankedFlight("beta", 200, 2*time.Hour),
		rankedFlight("alpha", 100, 3*time.Hour),
		rankedFlight("alpha", 200, time.Hour),
		rankedFlight("alpha", 200, 2*time.Hour),
		rankedFlight("gamma", 100, 3*time.Hour),
	}

	ranked := Rank(input)

	// Non-decreasing by price.
	for i := 1; i < len(ranked); i++ {
		if ranked[i].Price.LessThan(ranked[i-1].Price) {
			t.Fatalf("price order violated at %d: %s < %s", i, ranked[i].Price, ranked[i-1].Price)
		}
	}

	// Full expected order: price, then duration, then source.
	expect := []struct {
		source   string
		price    int64
		duration time.Duration
	}{
		{"alpha", 100, 3 * time.Hour},
		{"gamma", 100, 3 * time.Hour},
		{"alpha", 200, time.Hour},
		{"alpha", 200, 2 * time.Hour},
		{"beta", 200, 2 * time.Hour},
	}
	for i, want := range expect {
		got := ranked[i]
		if got.Source != want.source || !got.Price.Equal(decimal.NewFromInt(want.price)) || got.Duration != want.duration {
			t.Errorf("position %d: got %s/%s/%s, want %s/%d/%s",
				i, got.Source, got.Price, got.Duration, want.source, want.price, want.duration)
		}
	}
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	input := []flights.Flight{
		rankedFlight("b", 300, time.Hour),
		rankedFlight("a", 100, time.Hour),
	}

	Rank(input)

	if input[0].Source != "b" {
		t.Error("Rank must not reorder its input slice")
	}
}

func TestCheapest_MatchesRankHead(t *testing.T) {
	input := []flights.Flight{
		rankedFlight("beta", 150, time.Hour),
		rankedFlight("alpha", 150, time.Hour),
		rankedFlight("gamma", 400, time.Hour),
	}

	ranked := Rank(input)
	cheapest, ok := Cheapest(input)
	if !ok {
		t.Fatal("expected a cheapest flight")
	}
	if cheapest.Source != ranked[0].Source || !cheapest.Price.Equal(ranked[0].Price) {
		t.Errorf("Cheapest (%s/%s) disagrees with Rank head (%s/%s)",
			cheapest.Source, cheapest.Price, ranked[0].Source, ranked[0].Price)
	}
	if cheapest.Source != "alpha" {
		t.Errorf("tie must break by source name, got %s", cheapest.Source)
	}
}

func TestCheapest_Empty(t *testing.T) {
	if _, ok := Cheapest(nil); ok {
		t.Error("Cheapest of an empty list must report absent")
	}
}
