package donation

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rohits-web03/foodlink/internal/models"
)

// memStore is the in-memory Store the core tests run against. A single mutex
// around each operation gives the same per-record atomicity the real store
// gets from its conditional UPDATE.
type memStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]models.Donation

	failNext error // when set, the next operation fails once with this error
}

func newMemStore() *memStore {
	return &memStore{records: make(map[uuid.UUID]models.Donation)}
}

func (s *memStore) takeFailure() error {
	err := s.failNext
	s.failNext = nil
	return err
}

func (s *memStore) Insert(_ context.Context, d *models.Donation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}
	s.records[d.ID] = *d
	return nil
}

func (s *memStore) FindByID(_ context.Context, id uuid.UUID) (*models.Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return nil, err
	}
	d, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

func matches(d models.Donation, f Filter) bool {
	if f.DonorID != nil && d.DonorID != *f.DonorID {
		return false
	}
	if len(f.Statuses) > 0 {
		ok := false
		for _, st := range f.Statuses {
			if d.Status == st {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if f.ExpiresBefore != nil && !d.ExpiryDateTime.Before(*f.ExpiresBefore) {
		return false
	}
	return true
}

func (s *memStore) FindMany(_ context.Context, f Filter) ([]models.Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return nil, err
	}
	var out []models.Donation
	for _, d := range s.records {
		if matches(d, f) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func applyPatch(d *models.Donation, p Patch) {
	d.Status = p.Status
	d.UpdatedAt = p.UpdatedAt
	if p.AssignedRider != nil {
		d.AssignedRider = p.AssignedRider
	}
	if p.CompletedAt != nil {
		d.CompletedAt = p.CompletedAt
	}
}

func (s *memStore) ConditionalUpdate(_ context.Context, id uuid.UUID, expected models.Status, p Patch) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return false, err
	}
	d, ok := s.records[id]
	if !ok || d.Status != expected {
		return false, nil
	}
	applyPatch(&d, p)
	s.records[id] = d
	return true, nil
}

func (s *memStore) BulkConditionalUpdate(_ context.Context, f Filter, p Patch) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return 0, err
	}
	var n int64
	for id, d := range s.records {
		if matches(d, f) {
			applyPatch(&d, p)
			s.records[id] = d
			n++
		}
	}
	return n, nil
}

func (s *memStore) get(id uuid.UUID) models.Donation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[id]
}

var errStoreDown = errors.New("store unavailable")

// fixedClock is a settable Clock for deterministic expiry tests.
type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
