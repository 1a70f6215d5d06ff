package donation

import (
	"context"
	"log"
	"time"

	"github.com/rohits-web03/foodlink/internal/models"
)

// DefaultSweepInterval matches the original cron cadence of the expiry check.
const DefaultSweepInterval = 5 * time.Minute

// Sweeper periodically demotes stale available listings to expired. It keeps
// no per-donation state between runs; each tick is a single set-based
// conditional update. Claimed and picked-up donations are deliberately left
// alone: a claim protects a listing from auto-expiry.
type Sweeper struct {
	store    Store
	clock    Clock
	interval time.Duration
}

func NewSweeper(store Store, clock Clock, interval time.Duration) *Sweeper {
	if clock == nil {
		clock = SystemClock
	}
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{store: store, clock: clock, interval: interval}
}

// Sweep expires every available donation whose deadline has passed and
// returns how many records changed. Calling it again with the same clock
// reading is a no-op: the first pass moved every match out of available.
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	now := s.clock.Now()
	n, err := s.store.BulkConditionalUpdate(ctx,
		Filter{Statuses: []models.Status{models.StatusAvailable}, ExpiresBefore: &now},
		Patch{Status: models.StatusExpired, UpdatedAt: now},
	)
	if err != nil {
		return 0, &StorageError{Op: "sweep", Err: err}
	}
	return n, nil
}

// Run drives Sweep on a fixed ticker until ctx is cancelled. Failures are
// logged and retried on the next tick; a broken store must never take the
// host process down with it.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Printf("Expiry sweeper running every %s", s.interval)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n, err := s.Sweep(ctx)
			switch {
			case err != nil:
				log.Printf("Expiry sweep failed, will retry next tick: %v", err)
			case n > 0:
				log.Printf("Expiry sweep marked %d donation(s) as expired", n)
			}
		}
	}
}
