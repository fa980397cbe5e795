// Package gate decides whether a run falls inside the send window: a fixed
// hour of the day, business days only, evaluated in a fixed timezone.
package gate

import (
	"fmt"
	"time"
)

// SkipReason classifies why an evaluation declined to proceed.
type SkipReason int

const (
	SkipNone SkipReason = iota
	SkipWeekend
	SkipWrongHour
)

func (r SkipReason) String() string {
	switch r {
	case SkipWeekend:
		return "weekend"
	case SkipWrongHour:
		return "wrong_hour"
	default:
		return "none"
	}
}

// Gate holds the window parameters. Evaluation converts the sampled instant
// into Location before any comparison.
type Gate struct {
	Location *time.Location
	Hour     int
}

// New builds a gate for the given timezone and target hour. A nil location
// falls back to UTC.
func New(loc *time.Location, hour int) *Gate {
	if loc == nil {
		loc = time.UTC
	}
	return &Gate{Location: loc, Hour: hour}
}

// Decision is the outcome of one gate evaluation. LocalTime is the sampled
// instant converted into the gate's timezone.
type Decision struct {
	Proceed   bool
	Reason    SkipReason
	LocalTime time.Time
}

// Describe renders the decision for logs.
func (d Decision) Describe() string {
	switch d.Reason {
	case SkipWeekend:
		return fmt.Sprintf("weekend (%s is a %s)", d.LocalTime.Format(time.RFC3339), d.LocalTime.Weekday())
	case SkipWrongHour:
		return fmt.Sprintf("outside send hour (local hour is %02d)", d.LocalTime.Hour())
	default:
		return "send window open"
	}
}

// Evaluate samples the wall clock.
func (g *Gate) Evaluate() Decision {
	return g.EvaluateAt(time.Now())
}

// EvaluateAt evaluates the window for an explicit instant. The weekend check
// runs first, so a Saturday at the target hour still reports a weekend skip.
func (g *Gate) EvaluateAt(now time.Time) Decision {
	local := now.In(g.Location)
	decision := Decision{LocalTime: local}

	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		decision.Reason = SkipWeekend
		return decision
	}
	if local.Hour() != g.Hour {
		decision.Reason = SkipWrongHour
		return decision
	}

	decision.Proceed = true
	return decision
}
