package game

import (
	"io"
	"log/slog"
	"math/rand"
	"testing"
	"time"
)

type fakeStore struct {
	saves int
	wipes int
	last  *State
}

func (f *fakeStore) Save(st *State) error {
	f.saves++
	f.last = st
	return nil
}

func (f *fakeStore) Wipe() error {
	f.wipes++
	return nil
}

func newTestService(store Store) *Service {
	cat := NewCatalog()
	return NewService(NewState(cat), cat, store,
		slog.New(slog.NewTextHandler(io.Discard, nil)), rand.New(rand.NewSource(1)))
}

func TestTickAutosaves(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)
	svc.Tick()
	if store.saves != 1 {
		t.Fatalf("saves = %d, want 1", store.saves)
	}
	if store.last == nil || store.last.Hour != 9 {
		t.Fatalf("persisted hour = %+v", store.last)
	}
}

func TestIntentPersistsOnlyOnSuccess(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)

	if err := svc.BuySupplies(SupplyPreforms, 1_000_000); err == nil {
		t.Fatal("unaffordable buy succeeded")
	}
	if store.saves != 0 {
		t.Fatalf("failed intent saved %d times", store.saves)
	}

	if err := svc.BuySupplies(SupplyPreforms, 10); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if store.saves != 1 {
		t.Fatalf("saves = %d, want 1", store.saves)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	svc := newTestService(nil)
	snap := svc.Snapshot()
	snap.CashMicros = 0
	if svc.Snapshot().CashMicros != StarterCashMicros {
		t.Fatal("snapshot shares state with the service")
	}
}

func TestFirstCatchUpOnlySetsMarker(t *testing.T) {
	svc := newTestService(nil)
	if ticks := svc.RunOfflineCatchUp(time.Second, 0); ticks != 0 {
		t.Fatalf("fresh state replayed %d ticks", ticks)
	}
	if svc.Snapshot().LastTickUnix == 0 {
		t.Fatal("marker not set on first catch-up")
	}
}

func TestCatchUpReplaysElapsedTime(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)
	svc.Tick()
	day, hour := svc.Snapshot().Day, svc.Snapshot().Hour

	// Pretend the last tick happened two minutes ago.
	past := time.Now().Add(-2 * time.Minute)
	func() {
		svc.mu.Lock()
		defer svc.mu.Unlock()
		svc.st.LastTickUnix = past.Unix()
	}()

	ticks := svc.RunOfflineCatchUp(time.Second, 30)
	if ticks != 30 {
		t.Fatalf("ticks = %d, want the 30-tick cap", ticks)
	}
	st := svc.Snapshot()
	if st.Day == day && st.Hour == hour {
		t.Fatal("catch-up did not advance the calendar")
	}
	if store.saves < 2 {
		t.Fatalf("saves = %d, want a post-catch-up save", store.saves)
	}
}

func TestHardResetWipesStore(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)
	if err := svc.BuySupplies(SupplyLabels, 10); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if err := svc.HardReset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if store.wipes != 1 {
		t.Fatalf("wipes = %d", store.wipes)
	}
	st := svc.Snapshot()
	if st.Inventory.Labels != 500 || st.CashMicros != StarterCashMicros {
		t.Fatalf("state not fresh: %+v", st.Inventory)
	}
	if st.LastTickUnix == 0 {
		t.Fatal("marker not set after reset")
	}
}
