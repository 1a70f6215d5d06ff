package donation

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rohits-web03/foodlink/internal/models"
)

// transitions is the single source of truth for the lifecycle graph: for
// each current status, the statuses it may move to and the roles allowed to
// trigger each edge. Expiry edges belong to the system actor alone so a
// client can never force-expire a listing.
var transitions = map[models.Status]map[models.Status][]models.Role{
	models.StatusAvailable: {
		models.StatusClaimed: {models.RoleNGO, models.RoleRider},
		models.StatusExpired: {models.RoleSystem},
	},
	models.StatusClaimed: {
		models.StatusPickedUp: {models.RoleRider},
		models.StatusExpired:  {models.RoleSystem},
	},
	models.StatusPickedUp: {
		models.StatusCompleted: {models.RoleRider, models.RoleNGO},
	},
}

// Manager owns the donation lifecycle: creation with a server-computed
// expiry, legal transition enforcement, and role-scoped listing.
type Manager struct {
	store Store
	clock Clock
}

func NewManager(store Store, clock Clock) *Manager {
	if clock == nil {
		clock = SystemClock
	}
	return &Manager{store: store, clock: clock}
}

// CreateInput carries the donor-supplied fields of a new listing. The expiry
// is never part of the input; trusting a client-sent deadline would let a
// spoofed listing dodge the sweeper.
type CreateInput struct {
	DonorID        uuid.UUID
	DonorName      string
	ContactNumber  string
	Address        string
	FoodType       string
	Quantity       string
	Notes          string
	CookedTime     time.Time
	ShelfLifeHours float64
}

func (in *CreateInput) validate() error {
	required := []struct{ field, value string }{
		{"donorName", in.DonorName},
		{"address", in.Address},
		{"foodType", in.FoodType},
		{"quantity", in.Quantity},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &ValidationError{Field: r.field, Reason: "must not be empty"}
		}
	}
	if in.DonorID == uuid.Nil {
		return &ValidationError{Field: "donorId", Reason: "must not be empty"}
	}
	if in.CookedTime.IsZero() {
		return &ValidationError{Field: "cookedTime", Reason: "must be a valid timestamp"}
	}
	if math.IsNaN(in.ShelfLifeHours) || math.IsInf(in.ShelfLifeHours, 0) || in.ShelfLifeHours <= 0 {
		return &ValidationError{Field: "shelfLifeHours", Reason: "must be a positive, finite number of hours"}
	}
	return nil
}

// expiryFrom computes cookedTime + shelfLifeHours as a fixed-point duration
// add in milliseconds. No calendar math: a shelf life is a duration, not a
// date offset.
func expiryFrom(cooked time.Time, shelfLifeHours float64) time.Time {
	ms := int64(math.Round(shelfLifeHours * float64(time.Hour/time.Millisecond)))
	return cooked.Add(time.Duration(ms) * time.Millisecond)
}

// Create validates the input, derives the expiry deadline, and persists the
// new listing in the available state. Duplicate submissions create distinct
// records; there is no idempotency key.
func (m *Manager) Create(ctx context.Context, in CreateInput) (*models.Donation, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := m.clock.Now()
	d := &models.Donation{
		ID:             uuid.New(),
		DonorID:        in.DonorID,
		DonorName:      in.DonorName,
		ContactNumber:  in.ContactNumber,
		Address:        in.Address,
		FoodType:       in.FoodType,
		Quantity:       in.Quantity,
		Notes:          in.Notes,
		CookedTime:     in.CookedTime,
		ShelfLifeHours: in.ShelfLifeHours,
		ExpiryDateTime: expiryFrom(in.CookedTime, in.ShelfLifeHours),
		Status:         models.StatusAvailable,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := m.store.Insert(ctx, d); err != nil {
		return nil, &StorageError{Op: "insert", Err: err}
	}
	return d, nil
}

// Get returns a single donation by id.
func (m *Manager) Get(ctx context.Context, id uuid.UUID) (*models.Donation, error) {
	d, err := m.store.FindByID(ctx, id)
	if err != nil {
		if err == ErrNotFound {
			return nil, err
		}
		return nil, &StorageError{Op: "find", Err: err}
	}
	return d, nil
}

// Transition moves a donation along one legal edge of the lifecycle graph
// and reports the status the record moved from. riderID is only consulted on
// a claim, where it records the assigned rider. The status precondition on
// the underlying update guarantees that of two concurrent transitions
// exactly one commits; the loser gets an InvalidTransitionError.
func (m *Manager) Transition(ctx context.Context, id uuid.UUID, actor models.Role, target models.Status, riderID *uuid.UUID) (*models.Donation, models.Status, error) {
	if !target.Valid() {
		return nil, "", &ValidationError{Field: "status", Reason: "unknown status " + string(target)}
	}

	d, err := m.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	from := d.Status

	allowed, ok := transitions[from][target]
	if !ok {
		return nil, "", &InvalidTransitionError{From: from, To: target}
	}
	roleOK := false
	for _, r := range allowed {
		if r == actor {
			roleOK = true
			break
		}
	}
	if !roleOK {
		return nil, "", &InvalidTransitionError{From: from, To: target, Role: actor}
	}

	now := m.clock.Now()
	patch := Patch{Status: target, UpdatedAt: now}
	if target == models.StatusClaimed {
		if actor == models.RoleRider && riderID == nil {
			return nil, "", &ValidationError{Field: "riderId", Reason: "a rider claim must identify the rider"}
		}
		patch.AssignedRider = riderID
	}
	if target == models.StatusCompleted {
		patch.CompletedAt = &now
	}

	applied, err := m.store.ConditionalUpdate(ctx, id, from, patch)
	if err != nil {
		return nil, "", &StorageError{Op: "update", Err: err}
	}
	if !applied {
		// Lost a race: someone else moved the record first.
		return nil, "", &InvalidTransitionError{From: from, To: target}
	}

	d.Status = target
	d.UpdatedAt = now
	if patch.AssignedRider != nil {
		d.AssignedRider = patch.AssignedRider
	}
	if patch.CompletedAt != nil {
		d.CompletedAt = patch.CompletedAt
	}
	return d, from, nil
}

// operativeStatuses is what a rider's queue shows: listings they could act on.
var operativeStatuses = []models.Status{models.StatusAvailable, models.StatusClaimed, models.StatusPickedUp}

// intersect clamps a requested status filter to an allowed subset. An empty
// request means no preference and yields the whole subset.
func intersect(requested, allowed []models.Status) []models.Status {
	if len(requested) == 0 {
		return allowed
	}
	var out []models.Status
	for _, st := range requested {
		for _, a := range allowed {
			if st == a {
				out = append(out, st)
				break
			}
		}
	}
	return out
}

// List answers a role-scoped query, most recent first. Donors only ever see
// their own listings; NGOs see everything; riders see the operative subset
// whatever status filter they ask for.
func (m *Manager) List(ctx context.Context, actor models.Role, actorID uuid.UUID, f Filter) ([]models.Donation, error) {
	switch actor {
	case models.RoleDonor:
		f.DonorID = &actorID
	case models.RoleNGO:
		// Unrestricted: NGOs triage across every status.
	case models.RoleRider:
		f.Statuses = intersect(f.Statuses, operativeStatuses)
		if len(f.Statuses) == 0 {
			// The filter asked only for statuses riders never see.
			return []models.Donation{}, nil
		}
	default:
		return nil, &ValidationError{Field: "role", Reason: "unknown role " + string(actor)}
	}

	ds, err := m.store.FindMany(ctx, f)
	if err != nil {
		return nil, &StorageError{Op: "query", Err: err}
	}
	return ds, nil
}
