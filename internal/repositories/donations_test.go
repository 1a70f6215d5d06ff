package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rohits-web03/foodlink/internal/donation"
	"github.com/rohits-web03/foodlink/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testStore(t *testing.T) *DonationStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewDonationStore(db)
}

func seedDonation(t *testing.T, s *DonationStore, status models.Status, created, expiry time.Time) *models.Donation {
	t.Helper()
	d := &models.Donation{
		ID:             uuid.New(),
		DonorID:        uuid.New(),
		DonorName:      "Raj Hotel",
		Address:        "456, RC Dutt Road",
		FoodType:       "Bread & Sabzi",
		Quantity:       "60 servings",
		CookedTime:     created,
		ShelfLifeHours: 2,
		ExpiryDateTime: expiry,
		Status:         status,
		CreatedAt:      created,
		UpdatedAt:      created,
	}
	if err := s.Insert(context.Background(), d); err != nil {
		t.Fatalf("insert: %v", err)
	}
	return d
}

func TestFindByIDNotFound(t *testing.T) {
	s := testStore(t)
	_, err := s.FindByID(context.Background(), uuid.New())
	if !errors.Is(err, donation.ErrNotFound) {
		t.Fatalf("got %v, want donation.ErrNotFound", err)
	}
}

func TestConditionalUpdatePrecondition(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	base := time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)
	d := seedDonation(t, s, models.StatusAvailable, base, base.Add(2*time.Hour))
	rider := uuid.New()

	ok, err := s.ConditionalUpdate(ctx, d.ID, models.StatusAvailable, donation.Patch{
		Status:        models.StatusClaimed,
		UpdatedAt:     base.Add(time.Minute),
		AssignedRider: &rider,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("update with matching precondition was rejected")
	}

	// Same precondition again: the record has moved on, so this must no-op.
	ok, err = s.ConditionalUpdate(ctx, d.ID, models.StatusAvailable, donation.Patch{
		Status:    models.StatusClaimed,
		UpdatedAt: base.Add(2 * time.Minute),
	})
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("stale precondition was applied; concurrent transitions could both win")
	}

	got, err := s.FindByID(ctx, d.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.StatusClaimed {
		t.Errorf("status = %q, want claimed", got.Status)
	}
	if got.AssignedRider == nil || *got.AssignedRider != rider {
		t.Errorf("assigned rider not persisted")
	}
	if !got.UpdatedAt.Equal(base.Add(time.Minute)) {
		t.Errorf("UpdatedAt = %v, want the patch's value, not gorm's own stamp", got.UpdatedAt)
	}
}

func TestConditionalUpdateUnknownID(t *testing.T) {
	s := testStore(t)
	ok, err := s.ConditionalUpdate(context.Background(), uuid.New(), models.StatusAvailable, donation.Patch{
		Status:    models.StatusClaimed,
		UpdatedAt: time.Now(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("update against a missing record reported success")
	}
}

func TestBulkConditionalUpdateSweep(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	base := time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)
	now := base.Add(3 * time.Hour)

	stale := seedDonation(t, s, models.StatusAvailable, base, base.Add(2*time.Hour))
	fresh := seedDonation(t, s, models.StatusAvailable, base, base.Add(10*time.Hour))
	claimed := seedDonation(t, s, models.StatusClaimed, base, base.Add(2*time.Hour))

	n, err := s.BulkConditionalUpdate(ctx,
		donation.Filter{Statuses: []models.Status{models.StatusAvailable}, ExpiresBefore: &now},
		donation.Patch{Status: models.StatusExpired, UpdatedAt: now},
	)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("bulk update changed %d rows, want 1", n)
	}

	for _, tc := range []struct {
		id   uuid.UUID
		want models.Status
	}{
		{stale.ID, models.StatusExpired},
		{fresh.ID, models.StatusAvailable},
		{claimed.ID, models.StatusClaimed},
	} {
		got, err := s.FindByID(ctx, tc.id)
		if err != nil {
			t.Fatal(err)
		}
		if got.Status != tc.want {
			t.Errorf("donation %s: status %q, want %q", tc.id, got.Status, tc.want)
		}
	}
}

func TestRecordActivityKeepsBothEndsOfTheEdge(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	DB = db

	entry := &models.ActivityEntry{
		ID:         uuid.New(),
		DonationID: uuid.New(),
		Actor:      models.RoleRider,
		FromStatus: models.StatusAvailable,
		ToStatus:   models.StatusClaimed,
		Message:    "rider claimed a listing",
	}
	if err := RecordActivity(context.Background(), entry); err != nil {
		t.Fatal(err)
	}

	var got models.ActivityEntry
	if err := db.First(&got, "id = ?", entry.ID).Error; err != nil {
		t.Fatal(err)
	}
	if got.FromStatus != models.StatusAvailable || got.ToStatus != models.StatusClaimed {
		t.Errorf("feed entry edge = %s -> %s, want available -> claimed", got.FromStatus, got.ToStatus)
	}
}

func TestFindManyOrdersByRecency(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	base := time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)

	oldest := seedDonation(t, s, models.StatusAvailable, base, base.Add(2*time.Hour))
	middle := seedDonation(t, s, models.StatusClaimed, base.Add(time.Minute), base.Add(2*time.Hour))
	newest := seedDonation(t, s, models.StatusAvailable, base.Add(2*time.Minute), base.Add(2*time.Hour))

	all, err := s.FindMany(ctx, donation.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d donations, want 3", len(all))
	}
	for i, want := range []uuid.UUID{newest.ID, middle.ID, oldest.ID} {
		if all[i].ID != want {
			t.Fatalf("position %d: got %s, want %s (created_at DESC)", i, all[i].ID, want)
		}
	}

	available, err := s.FindMany(ctx, donation.Filter{Statuses: []models.Status{models.StatusAvailable}})
	if err != nil {
		t.Fatal(err)
	}
	if len(available) != 2 {
		t.Fatalf("status filter returned %d donations, want 2", len(available))
	}

	donorView, err := s.FindMany(ctx, donation.Filter{DonorID: &oldest.DonorID})
	if err != nil {
		t.Fatal(err)
	}
	if len(donorView) != 1 || donorView[0].ID != oldest.ID {
		t.Fatalf("donor filter returned %d donations, want just the donor's own", len(donorView))
	}
}
