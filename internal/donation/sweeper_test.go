package donation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rohits-web03/foodlink/internal/models"
)

func TestSweepExpiresOnlyStaleAvailable(t *testing.T) {
	m, store, clock := newTestManager()
	sweeper := NewSweeper(store, clock, 0)
	ctx := context.Background()
	rider := uuid.New()

	// All cooked at testBase with a 2h shelf life.
	stale, err := m.Create(ctx, validInput(uuid.New()))
	if err != nil {
		t.Fatal(err)
	}
	fresh := validInput(uuid.New())
	fresh.ShelfLifeHours = 10
	keep, err := m.Create(ctx, fresh)
	if err != nil {
		t.Fatal(err)
	}
	claimed, err := m.Create(ctx, validInput(uuid.New()))
	if err != nil {
		t.Fatal(err)
	}
	clock.Set(testBase.Add(30 * time.Minute))
	if _, _, err := m.Transition(ctx, claimed.ID, models.RoleRider, models.StatusClaimed, &rider); err != nil {
		t.Fatal(err)
	}

	// At T+1h nothing has expired yet.
	clock.Set(testBase.Add(time.Hour))
	n, err := sweeper.Sweep(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("sweep at T+1h expired %d donations, want 0", n)
	}
	if got := store.get(stale.ID).Status; got != models.StatusAvailable {
		t.Errorf("donation before its deadline is %q, want available", got)
	}

	// At T+3h only the still-available stale listing goes.
	clock.Set(testBase.Add(3 * time.Hour))
	n, err = sweeper.Sweep(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("sweep at T+3h expired %d donations, want 1", n)
	}
	if got := store.get(stale.ID).Status; got != models.StatusExpired {
		t.Errorf("stale donation is %q, want expired", got)
	}
	if got := store.get(keep.ID).Status; got != models.StatusAvailable {
		t.Errorf("long-shelf-life donation is %q, want available", got)
	}
	if got := store.get(claimed.ID).Status; got != models.StatusClaimed {
		t.Errorf("claimed donation is %q after sweep, want claimed: a claim protects from expiry", got)
	}
}

func TestSweepIsIdempotent(t *testing.T) {
	m, store, clock := newTestManager()
	sweeper := NewSweeper(store, clock, 0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := m.Create(ctx, validInput(uuid.New())); err != nil {
			t.Fatal(err)
		}
	}

	clock.Set(testBase.Add(3 * time.Hour))
	first, err := sweeper.Sweep(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if first != 3 {
		t.Fatalf("first sweep expired %d donations, want 3", first)
	}
	second, err := sweeper.Sweep(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if second != 0 {
		t.Fatalf("second sweep with the same now expired %d donations, want 0", second)
	}
}

func TestSweepSetsUpdatedAt(t *testing.T) {
	m, store, clock := newTestManager()
	sweeper := NewSweeper(store, clock, 0)
	ctx := context.Background()

	d, err := m.Create(ctx, validInput(uuid.New()))
	if err != nil {
		t.Fatal(err)
	}

	sweepTime := testBase.Add(3 * time.Hour)
	clock.Set(sweepTime)
	if _, err := sweeper.Sweep(ctx); err != nil {
		t.Fatal(err)
	}
	if got := store.get(d.ID).UpdatedAt; !got.Equal(sweepTime) {
		t.Errorf("UpdatedAt = %v, want the sweep time %v", got, sweepTime)
	}
}

func TestSweepWrapsStorageFailures(t *testing.T) {
	_, store, clock := newTestManager()
	sweeper := NewSweeper(store, clock, 0)

	store.failNext = errStoreDown
	_, err := sweeper.Sweep(context.Background())
	var serr *StorageError
	if !errors.As(err, &serr) {
		t.Fatalf("got %v, want StorageError", err)
	}
	if !errors.Is(err, errStoreDown) {
		t.Errorf("StorageError does not wrap the underlying cause")
	}
}

func TestSweepRacesManualTransition(t *testing.T) {
	m, store, clock := newTestManager()
	sweeper := NewSweeper(store, clock, 0)
	ctx := context.Background()
	rider := uuid.New()

	for i := 0; i < 50; i++ {
		d, err := m.Create(ctx, validInput(uuid.New()))
		if err != nil {
			t.Fatal(err)
		}
		clock.Set(testBase.Add(3 * time.Hour))

		claimErr := make(chan error, 1)
		go func() {
			_, _, err := m.Transition(ctx, d.ID, models.RoleRider, models.StatusClaimed, &rider)
			claimErr <- err
		}()
		if _, err := sweeper.Sweep(ctx); err != nil {
			t.Fatal(err)
		}
		err = <-claimErr

		final := store.get(d.ID).Status
		switch {
		case err == nil && final != models.StatusClaimed:
			t.Fatalf("claim won but final state is %q", final)
		case err != nil && final != models.StatusExpired:
			t.Fatalf("sweep won but final state is %q (claim error: %v)", final, err)
		}
		if err != nil {
			var terr *InvalidTransitionError
			if !errors.As(err, &terr) {
				t.Fatalf("losing claim got %v, want InvalidTransitionError", err)
			}
		}

		clock.Set(testBase)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	m, store, clock := newTestManager()
	sweeper := NewSweeper(store, clock, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	if _, err := m.Create(ctx, validInput(uuid.New())); err != nil {
		t.Fatal(err)
	}
	clock.Set(testBase.Add(3 * time.Hour))

	done := make(chan error, 1)
	go func() { done <- sweeper.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for {
		expired, err := store.FindMany(ctx, Filter{Statuses: []models.Status{models.StatusExpired}})
		if err != nil {
			t.Fatal(err)
		}
		if len(expired) == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("sweeper loop never expired the stale donation")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}
