package governance

import (
	"context"
	"log"
	"time"

	"github.com/stake-plus/groupgov/src/types"
)

// Scheduler periodically expires pending proposals that outlived the
// 30-day horizon, independent of voting activity. It guarantees forward
// progress when attendance is never satisfied.
type Scheduler struct {
	store    Store
	notifier Notifier
	interval time.Duration
	now      func() time.Time
}

func NewScheduler(store Store, notifier Notifier, interval time.Duration) *Scheduler {
	return &Scheduler{
		store:    store,
		notifier: notifier,
		interval: interval,
		now:      time.Now,
	}
}

func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				log.Printf("governance: expiry sweep: %v", err)
			}
		}
	}
}

// Sweep expires every pending proposal older than the horizon. Each
// expiry races the evaluators on the same compare-and-set, so a
// proposal that closes concurrently is skipped without a notice.
func (s *Scheduler) Sweep(ctx context.Context) error {
	cutoff := s.now().Add(-ExpiryHorizon)
	stale, err := s.store.ListPendingBefore(ctx, cutoff)
	if err != nil {
		return err
	}

	for i := range stale {
		p := &stale[i]
		won, err := s.store.UpdateStatus(ctx, p.ID, types.StatusPending, types.StatusExpired)
		if err != nil {
			return err
		}
		if !won {
			continue
		}
		if err := s.notifier.Outcome(ctx, p, types.StatusExpired); err != nil {
			log.Printf("governance: expiry notice %s: %v", p.ID, err)
		}
	}
	return nil
}
