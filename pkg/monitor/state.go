package monitor

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iPurya/SkySniper/pkg/flights"
)

// State is the monitor's position in its check-then-wait cycle.
type State string

const (
	// StateIdle means the monitor has not been started.
	StateIdle State = "idle"
	// StateChecking means a search is in flight.
	StateChecking State = "checking"
	// StateAlerting means an alert is being emitted for the last check.
	StateAlerting State = "alerting"
	// StateWaiting means the monitor is sleeping until the next check.
	StateWaiting State = "waiting"
	// StateStopped means the monitor has terminated.
	StateStopped State = "stopped"
)

// Reason tags why an alert fired.
type Reason string

const (
	// ReasonInitial marks the first observed price of a monitored search.
	ReasonInitial Reason = "initial"
	// ReasonNewMinimum marks a price strictly below every prior observation.
	ReasonNewMinimum Reason = "new_minimum"
	// ReasonTargetReached marks a price at or under the configured target.
	ReasonTargetReached Reason = "target_reached"
)

// AlertEvent is emitted on the monitor's event stream whenever a check
// warrants attention.
type AlertEvent struct {
	Flight      flights.Flight   `json:"flight"`
	PrevMinimum *decimal.Decimal `json:"prev_minimum,omitempty"` // nil on the first observation
	Reason      Reason           `json:"reason"`
	CheckedAt   time.Time        `json:"checked_at"`
}

// tracker holds the rolling-minimum state and decides, one price per
// completed cycle, whether an alert fires. It is the monitor's whole
// decision logic, kept free of I/O so it can be driven by a scripted
// price sequence in tests.
//
// Rules, in order:
//   - the same price value never alerts twice in a row;
//   - a price at or under the target alerts with target_reached, whether
//     or not it improves the minimum;
//   - the first observed price establishes the baseline and, when
//     alertOnInitial is set, alerts with initial;
//   - a price strictly below the stored minimum alerts with new_minimum.
//
// The stored minimum is always updated before the caller emits anything.
type tracker struct {
	lowest         decimal.Decimal
	hasLowest      bool
	target         decimal.Decimal
	hasTarget      bool
	alertOnInitial bool

	lastAlert    decimal.Decimal
	hasLastAlert bool
}

// observe feeds one cheapest-of-cycle price into the tracker. It returns
// the previous minimum (nil on the first observation), the alert reason
// and whether an alert fires.
func (t *tracker) observe(price decimal.Decimal) (prev *decimal.Decimal, reason Reason, fire bool) {
	if t.hasLowest {
		p := t.lowest
		prev = &p
	}

	first := !t.hasLowest
	improved := first || price.LessThan(t.lowest)
	if improved {
		t.lowest = price
		t.hasLowest = true
	}

	if t.hasLastAlert && price.Equal(t.lastAlert) {
		return prev, "", false
	}

	switch {
	case t.hasTarget && price.LessThanOrEqual(t.target):
		reason, fire = ReasonTargetReached, true
	case first:
		reason, fire = ReasonInitial, t.alertOnInitial
	case improved:
		reason, fire = ReasonNewMinimum, true
	}

	if fire {
		t.lastAlert = price
		t.hasLastAlert = true
	}
	return prev, reason, fire
}

// minimum returns the lowest price seen so far, if any.
func (t *tracker) minimum() (decimal.Decimal, bool) {
	return t.lowest, t.hasLowest
}
