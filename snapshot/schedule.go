package snapshot

import (
	"time"

	"github.com/gorhill/cronexpr"
)

const (
	lookBack        = 2 * 24 * time.Hour
	maximumLookBack = 200 * 365 * 24 * time.Hour
)

// Schedule computes the activations of a cron expression.
type Schedule struct {
	cron *cronexpr.Expression
}

func NewSchedule(cron *cronexpr.Expression) *Schedule {
	return &Schedule{cron: cron}
}

func ParseSchedule(line string) (*Schedule, error) {
	cron, err := cronexpr.Parse(line)
	if err != nil {
		return nil, err
	}
	return NewSchedule(cron), nil
}

// Next returns the first activation strictly after moment, or the zero time if there is none.
func (s *Schedule) Next(moment time.Time) time.Time {
	if s == nil || s.cron == nil {
		return time.Time{}
	}
	return s.cron.Next(moment)
}

// Previous returns the latest activation at or before moment, or the zero time if there is none.
func (s *Schedule) Previous(moment time.Time) time.Time {
	if s == nil || s.cron == nil {
		return time.Time{}
	}

	// widen the window until it contains an activation
	span := lookBack
	low := s.cron.Next(moment.Add(-span))
	for low.IsZero() || low.After(moment) {
		span *= 2
		if span > maximumLookBack {
			return time.Time{}
		}
		low = s.cron.Next(moment.Add(-span))
	}

	// low is always an activation, none lies in (high, moment]
	high := moment
	for high.Sub(low) >= time.Second {
		median := low.Add(high.Sub(low) / 2)
		next := s.cron.Next(median)
		if !next.IsZero() && !next.After(moment) {
			low = next
		} else {
			high = median
		}
	}

	return low
}
