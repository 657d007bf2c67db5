package aggregator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iPurya/SkySniper/pkg/flights"
	"github.com/iPurya/SkySniper/pkg/logging"
	"github.com/iPurya/SkySniper/pkg/metrics"
)

const defaultSourceTimeout = 30 * time.Second

// Aggregator queries a fixed set of booking sources. Safe for concurrent
// use; each Search is independent.
type Aggregator struct {
	sources       map[string]flights.Source
	sourceTimeout time.Duration
	logger        *logging.Logger
}

// New creates an aggregator over the given sources. sourceTimeout bounds
// each individual source fetch; zero selects the default.
func New(sources []flights.Source, sourceTimeout time.Duration, logger *logging.Logger) *Aggregator {
	if sourceTimeout <= 0 {
		sourceTimeout = defaultSourceTimeout
	}
	if logger == nil {
		logger = logging.NewNoopLogger()
	}

	byName := make(map[string]flights.Source, len(sources))
	for _, s := range sources {
		byName[s.Name()] = s
	}

	return &Aggregator{
		sources:       byName,
		sourceTimeout: sourceTimeout,
		logger:        logger,
	}
}

// SourceNames returns the names of all configured sources, sorted.
func (a *Aggregator) SourceNames() []string {
	names := make([]string, 0, len(a.sources))
	for name := range a.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Search fans the request out to every requested source concurrently,
// normalizes whatever comes back and returns one ranked result.
//
// One source's failure or latency never aborts the others: per-source
// errors become SourceStatus entries and the call itself only fails when
// no source produced any flights. The result is independent of the order in which
// sources complete; listings are merged after all sources settle and
// then sorted.
func (a *Aggregator) Search(ctx context.Context, params flights.SearchParams) (*Result, error) {
	params = params.Normalized()
	if err := params.Validate(); err != nil {
		return nil, err
	}

	requested, err := a.resolve(params.Sources)
	if err != nil {
		return nil, err
	}

	start := time.Now()

	statuses := make([]SourceStatus, len(requested))
	merged := make([][]flights.Flight, len(requested))
	var wg sync.WaitGroup

	for i, src := range requested {
		wg.Add(1)
		go func(i int, src flights.Source) {
			defer wg.Done()

			fetchCtx, cancel := context.WithTimeout(ctx, a.sourceTimeout)
			defer cancel()

			statuses[i], merged[i] = a.fetchOne(fetchCtx, src, params)
		}(i, src)
	}

	wg.Wait()

	result := &Result{
		ID:         uuid.New(),
		Params:     params,
		Statuses:   statuses,
		SearchedAt: start,
	}

	for _, list := range merged {
		result.Flights = append(result.Flights, list...)
	}

	// Some sources answering empty is normal as long as anyone produced
	// data; a search where nobody did is a failure, not an empty success.
	if len(result.Flights) == 0 {
		metrics.RecordSearch("failed", time.Since(start))
		return nil, fmt.Errorf("%w: %s", ErrAllSourcesFailed, joinFailures(result.Statuses))
	}

	result.Flights = Rank(result.Flights)

	metrics.RecordSearch("ok", time.Since(start))
	a.logger.Debug("Search completed",
		"route", params.Origin+"-"+params.Destination,
		"flights", len(result.Flights),
		"sources_ok", result.Succeeded(),
		"sources_total", len(result.Statuses),
		"elapsed", time.Since(start).String())

	return result, nil
}

// resolve maps the source-filter list to concrete sources. An unknown
// name is a configuration error surfaced before any network call.
func (a *Aggregator) resolve(filter []string) ([]flights.Source, error) {
	if len(a.sources) == 0 {
		return nil, fmt.Errorf("%w", ErrNoSources)
	}

	if len(filter) == 0 {
		names := a.SourceNames()
		all := make([]flights.Source, 0, len(names))
		for _, name := range names {
			all = append(all, a.sources[name])
		}
		return all, nil
	}

	selected := make([]flights.Source, 0, len(filter))
	for _, name := range filter {
		src, ok := a.sources[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s (configured: %v)", flights.ErrUnknownSource, name, a.SourceNames())
		}
		selected = append(selected, src)
	}
	return selected, nil
}

// fetchOne runs one source and normalizes its listings. Every failure
// mode - transport errors, unsupported routes, malformed records - is
// absorbed into the returned status.
func (a *Aggregator) fetchOne(ctx context.Context, src flights.Source, params flights.SearchParams) (SourceStatus, []flights.Flight) {
	name := src.Name()
	status := SourceStatus{Source: name}

	listings, err := src.Search(ctx, params)
	if err != nil {
		status.State = SourceStateFailed
		status.Error = err.Error()

		reason := "transport"
		if errors.Is(err, flights.ErrRouteNotSupported) {
			reason = "unsupported"
		} else if errors.Is(err, context.DeadlineExceeded) {
			reason = "timeout"
		}
		metrics.RecordSourceFailure(name, reason)
		a.logger.Warn("Source failed", "source", name, "reason", reason, "error", err.Error())
		return status, nil
	}

	var usable []flights.Flight
	for _, listing := range listings {
		flight, err := flights.Normalize(name, params, listing)
		if err != nil {
			status.Dropped++
			metrics.RecordDroppedListing(name)
			a.logger.Debug("Dropped malformed listing", "source", name, "error", err.Error())
			continue
		}
		usable = append(usable, flight)
	}

	status.Listings = len(usable)
	if len(usable) == 0 {
		if status.Dropped > 0 {
			// Every record the source produced was unusable.
			status.State = SourceStateFailed
			status.Error = flights.ErrMalformedListing.Error()
		} else {
			status.State = SourceStateEmpty
		}
		return status, nil
	}

	status.State = SourceStateOK
	metrics.RecordSourceListings(name, len(usable))
	return status, usable
}

func joinFailures(statuses []SourceStatus) string {
	msg := ""
	for _, s := range statuses {
		if msg != "" {
			msg += "; "
		}
		detail := s.Error
		if s.State == SourceStateEmpty {
			detail = "no flights"
		}
		msg += s.Source + ": " + detail
	}
	return msg
}
