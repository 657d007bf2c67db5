package flights

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// currencyToRial maps source-reported currencies to their factor into the
// canonical Rial unit. Iranian sites quote either Rial directly or Toman
// (1 Toman = 10 Rial). Anything absent from this table cannot be compared
// across sources and is rejected rather than silently approximated.
var currencyToRial = map[string]decimal.Decimal{
	"IRR":   decimal.NewFromInt(1),
	"RIAL":  decimal.NewFromInt(1),
	"IRT":   decimal.NewFromInt(10),
	"TOMAN": decimal.NewFromInt(10),
}

// Normalize converts one raw listing from the named source into the
// canonical Flight record. It fails with ErrMalformedListing when required
// fields (price, timestamps, airline) are absent or unusable, and with
// ErrUnknownCurrency when the reported currency has no conversion.
//
// Duration is derived from the timestamps when the source did not supply
// it. Pure: no I/O, no shared state.
func Normalize(sourceName string, params SearchParams, l Listing) (Flight, error) {
	if strings.TrimSpace(l.Airline) == "" {
		return Flight{}, fmt.Errorf("%w: missing airline", ErrMalformedListing)
	}
	if l.Price.LessThanOrEqual(decimal.Zero) {
		return Flight{}, fmt.Errorf("%w: missing or non-positive price", ErrMalformedListing)
	}
	if l.DepartureTime.IsZero() || l.ArrivalTime.IsZero() {
		return Flight{}, fmt.Errorf("%w: missing timestamps", ErrMalformedListing)
	}
	if l.ArrivalTime.Before(l.DepartureTime) {
		return Flight{}, fmt.Errorf("%w: arrival before departure", ErrMalformedListing)
	}

	currency := strings.ToUpper(strings.TrimSpace(l.Currency))
	if currency == "" {
		currency = CanonicalCurrency
	}
	factor, ok := currencyToRial[currency]
	if !ok {
		return Flight{}, fmt.Errorf("%w: %s", ErrUnknownCurrency, currency)
	}

	duration := time.Duration(l.DurationMin) * time.Minute
	if duration == 0 {
		duration = l.ArrivalTime.Sub(l.DepartureTime)
	}

	cabin := strings.ToLower(strings.TrimSpace(l.CabinClass))
	if cabin == "" {
		cabin = params.CabinClass
	}

	return Flight{
		Source:        sourceName,
		Airline:       strings.TrimSpace(l.Airline),
		FlightNumber:  strings.TrimSpace(l.FlightNumber),
		Origin:        params.Origin,
		Destination:   params.Destination,
		DepartureTime: l.DepartureTime,
		ArrivalTime:   l.ArrivalTime,
		Price:         l.Price.Mul(factor),
		Currency:      CanonicalCurrency,
		Stops:         l.Stops,
		Duration:      duration,
		CabinClass:    cabin,
		SeatsLeft:     l.SeatsLeft,
		Refundable:    l.Refundable,
		Charter:       l.Charter,
		DeepLink:      l.DeepLink,
	}, nil
}
