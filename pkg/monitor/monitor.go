// Package monitor implements the long-lived price-drop watcher: it
// re-runs one search on a fixed interval, tracks the lowest fare seen
// and emits alert events on improvements.
package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iPurya/SkySniper/pkg/aggregator"
	"github.com/iPurya/SkySniper/pkg/flights"
	"github.com/iPurya/SkySniper/pkg/logging"
	"github.com/iPurya/SkySniper/pkg/metrics"
)

const (
	defaultInterval    = 30 * time.Minute
	defaultEventBuffer = 16
)

// Searcher is the slice of the aggregator the monitor depends on.
type Searcher interface {
	Search(ctx context.Context, params flights.SearchParams) (*aggregator.Result, error)
}

// Options configures a Monitor.
type Options struct {
	// Interval between checks. Defaults to 30 minutes.
	Interval time.Duration
	// TargetPrice alerts on any fare at or under it. Zero disables.
	TargetPrice decimal.Decimal
	// AlertOnInitial controls whether the first observed price emits an
	// "initial" alert or just silently establishes the baseline.
	AlertOnInitial bool
	// EventBuffer sizes the alert channel. Defaults to 16.
	EventBuffer int
}

// Snapshot is a read-only view of the monitor's state.
type Snapshot struct {
	Params      flights.SearchParams
	State       State
	Lowest      *decimal.Decimal // nil until the first successful check
	LastChecked time.Time        // zero until the first successful check
	Checks      int              // completed cycles, successful or not
	Missed      int              // cycles where no price could be obtained
}

// Monitor repeatedly re-runs one search and watches for price drops.
// All state is mutated only by the Run loop; Snapshot and State are the
// only concurrent readers.
type Monitor struct {
	searcher Searcher
	params   flights.SearchParams
	opts     Options
	logger   *logging.Logger

	events chan AlertEvent

	mu          sync.RWMutex
	state       State
	track       tracker
	lastChecked time.Time
	checks      int
	missed      int

	now func() time.Time // swapped in tests
}

// New creates a monitor for the given search. Run must be called to
// start it.
func New(searcher Searcher, params flights.SearchParams, opts Options, logger *logging.Logger) (*Monitor, error) {
	params = params.Normalized()
	if err := params.Validate(); err != nil {
		return nil, err
	}

	if opts.Interval <= 0 {
		opts.Interval = defaultInterval
	}
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = defaultEventBuffer
	}
	if opts.TargetPrice.IsNegative() {
		return nil, fmt.Errorf("%w: target price cannot be negative", flights.ErrInvalidParams)
	}
	if logger == nil {
		logger = logging.NewNoopLogger()
	}

	return &Monitor{
		searcher: searcher,
		params:   params,
		opts:     opts,
		logger:   logger,
		events:   make(chan AlertEvent, opts.EventBuffer),
		state:    StateIdle,
		track: tracker{
			target:         opts.TargetPrice,
			hasTarget:      opts.TargetPrice.IsPositive(),
			alertOnInitial: opts.AlertOnInitial,
		},
		now: time.Now,
	}, nil
}

// Events returns the alert stream. Closed when the monitor stops.
func (m *Monitor) Events() <-chan AlertEvent {
	return m.events
}

// State returns the monitor's current state.
func (m *Monitor) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Snapshot returns a copy of the monitor's observable state.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := Snapshot{
		Params:      m.params,
		State:       m.state,
		LastChecked: m.lastChecked,
		Checks:      m.checks,
		Missed:      m.missed,
	}
	if lowest, ok := m.track.minimum(); ok {
		snap.Lowest = &lowest
	}
	return snap
}

// Run executes check cycles until the context is cancelled or the
// departure day has passed. It blocks; run it in its own goroutine and
// consume Events. The event channel is closed on return.
func (m *Monitor) Run(ctx context.Context) error {
	defer close(m.events)
	defer m.setState(StateStopped)

	departure, err := m.params.DepartureDate()
	if err != nil {
		return err
	}

	m.logger.Info("Monitor started",
		"route", m.params.Origin+"-"+m.params.Destination,
		"date", m.params.Date,
		"interval", m.opts.Interval.String(),
		"target", m.opts.TargetPrice.String())

	for {
		if m.now().After(departure) {
			m.logger.Info("Departure passed, stopping monitor", "date", m.params.Date)
			return nil
		}

		m.check(ctx)

		m.setState(StateWaiting)
		select {
		case <-ctx.Done():
			m.logger.Info("Monitor cancelled")
			return ctx.Err()
		case <-time.After(m.opts.Interval):
		}
	}
}

// check runs one cycle: search, compare against the rolling minimum,
// maybe alert. A failed or empty cycle is only counted; it never touches
// the stored minimum.
func (m *Monitor) check(ctx context.Context) {
	m.setState(StateChecking)

	result, err := m.searcher.Search(ctx, m.params)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.checks++

	if err != nil {
		// Covers AllSourcesFailed and mid-check cancellation alike: a
		// partial check must not corrupt the minimum.
		m.missed++
		metrics.RecordMonitorCycle("failed")
		m.logger.Warn("Check failed, keeping previous minimum", "check", m.checks, "error", err.Error())
		return
	}

	cheapest, ok := result.Cheapest()
	if !ok {
		m.missed++
		metrics.RecordMonitorCycle("empty")
		m.logger.Info("No flights found", "check", m.checks)
		return
	}

	m.lastChecked = m.now()
	price, _ := cheapest.Price.Float64()
	metrics.RecordCheapestPrice(m.params.Origin, m.params.Destination, m.params.Date, price)

	prev, reason, fire := m.track.observe(cheapest.Price)
	if !fire {
		metrics.RecordMonitorCycle("no_change")
		m.logger.Info("No improvement",
			"check", m.checks,
			"cheapest", cheapest.Price.StringFixed(0),
			"lowest", m.track.lowest.StringFixed(0))
		return
	}

	m.state = StateAlerting
	metrics.RecordMonitorCycle("alert")
	metrics.RecordAlert(string(reason))
	m.logger.Info("Price alert",
		"reason", string(reason),
		"price", cheapest.Price.StringFixed(0),
		"airline", cheapest.Airline,
		"source", cheapest.Source)

	event := AlertEvent{
		Flight:      cheapest,
		PrevMinimum: prev,
		Reason:      reason,
		CheckedAt:   m.lastChecked,
	}
	select {
	case m.events <- event:
	default:
		// Consumer is not keeping up; dropping beats blocking the loop.
		m.logger.Warn("Event channel full, dropping alert", "reason", string(reason))
	}
}

func (m *Monitor) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}
