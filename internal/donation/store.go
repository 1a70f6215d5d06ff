package donation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rohits-web03/foodlink/internal/models"
)

// Filter narrows donation queries. Zero fields match everything.
type Filter struct {
	DonorID       *uuid.UUID
	Statuses      []models.Status
	ExpiresBefore *time.Time
}

// Patch is the set of columns a transition may change. Status and UpdatedAt
// are always applied; the pointers only when non-nil.
type Patch struct {
	Status        models.Status
	UpdatedAt     time.Time
	AssignedRider *uuid.UUID
	CompletedAt   *time.Time
}

// Store is the persistence contract for donations. Every mutation after
// creation goes through a conditional update keyed on the current status;
// that precondition is what keeps concurrent transitions linearizable per
// record without any lock held across I/O.
type Store interface {
	Insert(ctx context.Context, d *models.Donation) error
	// FindByID returns ErrNotFound when the id does not resolve.
	FindByID(ctx context.Context, id uuid.UUID) (*models.Donation, error)
	// FindMany returns matches ordered by created_at descending.
	FindMany(ctx context.Context, f Filter) ([]models.Donation, error)
	// ConditionalUpdate applies the patch only if the record is still in
	// expected status. Returns false, without error, when the precondition
	// failed (the record moved on or does not exist).
	ConditionalUpdate(ctx context.Context, id uuid.UUID, expected models.Status, p Patch) (bool, error)
	// BulkConditionalUpdate applies the patch to every match of f and
	// returns how many records changed. Atomic per record, not per batch.
	BulkConditionalUpdate(ctx context.Context, f Filter, p Patch) (int64, error)
}

// Clock abstracts wall-clock reads so expiry logic is deterministic in tests.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the real wall clock.
var SystemClock Clock = ClockFunc(time.Now)
