package snapshot

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// Target persists editing sessions.
type Target interface {
	// Snapshot persists every session with unsaved changes.
	Snapshot(ctx context.Context) (int, error)
	// SnapshotSavedBefore persists every session with unsaved changes that was last saved before moment.
	SnapshotSavedBefore(ctx context.Context, moment time.Time) (int, error)
}

type Scheduler struct {
	schedule *Schedule
	target   Target
	now      func() time.Time
	after    func(time.Duration) <-chan time.Time
}

func NewScheduler(schedule *Schedule, target Target) *Scheduler {
	return &Scheduler{
		schedule: schedule,
		target:   target,
		now:      time.Now,
		after:    time.After,
	}
}

// Start runs the scheduler in the background. The returned stop function cancels it and
// returns once a snapshot in progress has finished.
func (s *Scheduler) Start(ctx context.Context) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		_ = s.Run(ctx)
	}()

	return func() {
		cancel()
		<-done
	}
}

// Run catches up on a missed activation, then snapshots at every activation until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	if previous := s.schedule.Previous(s.now()); !previous.IsZero() {
		count, err := s.target.SnapshotSavedBefore(ctx, previous)
		if err != nil {
			log.Errorf("Catching up on snapshot of %s failed: %s", previous.Format(time.RFC3339), err)
		} else if count > 0 {
			log.Infof("Caught up on %d session(s) missed by the snapshot at %s", count, previous.Format(time.RFC3339))
		}
	}

	for {
		now := s.now()
		next := s.schedule.Next(now)
		if next.IsZero() {
			log.Warn("Snapshot schedule has no further activations")
			return nil
		}
		log.Debugf("Next snapshot at %s", next.Format(time.RFC3339))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.after(next.Sub(now)):
		}

		count, err := s.target.Snapshot(ctx)
		if err != nil {
			log.Errorf("Snapshot failed: %s", err)
			continue
		}
		log.Debugf("Snapshot persisted %d session(s)", count)
	}
}
