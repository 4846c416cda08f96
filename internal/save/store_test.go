package save

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"fizzworks/internal/game"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "save.json")
	store, err := NewFileStore(path, slog.New(slog.NewTextHandler(os.Stderr, nil)))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func TestLoadMissingFileStartsFresh(t *testing.T) {
	store := newTestStore(t)
	st, fresh, err := store.Load(game.NewCatalog())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !fresh {
		t.Fatal("missing file should report fresh")
	}
	if st.CashMicros != game.StarterCashMicros {
		t.Fatalf("fresh cash = %d", st.CashMicros)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	cat := game.NewCatalog()
	store := newTestStore(t)

	st := game.NewState(cat)
	st.CashMicros = 123_456_789
	st.Day = 12
	st.Hour = 7
	st.Inventory.Bottles = 321
	st.PurchasedUpgrades["line_2"] = true
	st.Flavors["cherry"].Unlocked = true
	st.LegacyMilli = 1_500

	if err := store.Save(st); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, fresh, err := store.Load(cat)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if fresh {
		t.Fatal("round trip reported fresh")
	}
	if got.CashMicros != st.CashMicros || got.Day != st.Day || got.Hour != st.Hour {
		t.Fatalf("scalars lost: %+v", got)
	}
	if got.Inventory != st.Inventory {
		t.Fatalf("inventory lost: %+v", got.Inventory)
	}
	if !got.PurchasedUpgrades["line_2"] || !got.Flavors["cherry"].Unlocked {
		t.Fatal("sets lost in round trip")
	}
	if got.LegacyMilli != 1_500 {
		t.Fatalf("legacy lost: %d", got.LegacyMilli)
	}
}

func TestLoadCorruptFileBacksUpAndStartsFresh(t *testing.T) {
	store := newTestStore(t)
	if err := os.WriteFile(store.Path(), []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write corrupt: %v", err)
	}
	st, fresh, err := store.Load(game.NewCatalog())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !fresh || st == nil {
		t.Fatal("corrupt save should fall back to a fresh state")
	}
	backup, err := os.ReadFile(store.Path() + ".corrupt")
	if err != nil {
		t.Fatalf("backup missing: %v", err)
	}
	if string(backup) != "{not json" {
		t.Fatalf("backup content = %q", backup)
	}
}

func TestLoadNormalizesOldSnapshots(t *testing.T) {
	store := newTestStore(t)
	if err := os.WriteFile(store.Path(), []byte(`{"cash_micros": 5000000, "day": 2}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	st, fresh, err := store.Load(game.NewCatalog())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if fresh {
		t.Fatal("valid JSON reported fresh")
	}
	if st.CapacityPerHour != game.BaseCapacityPerLine {
		t.Fatalf("capacity not defaulted: %d", st.CapacityPerHour)
	}
	if st.ActiveFlavorID == "" || st.Flavors[st.ActiveFlavorID] == nil {
		t.Fatal("active flavor not repaired")
	}
}

func TestWipe(t *testing.T) {
	store := newTestStore(t)
	if err := store.Save(game.NewState(game.NewCatalog())); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Wipe(); err != nil {
		t.Fatalf("wipe: %v", err)
	}
	if _, err := os.Stat(store.Path()); !os.IsNotExist(err) {
		t.Fatalf("save still on disk: %v", err)
	}
	// Wiping an already-missing save is fine.
	if err := store.Wipe(); err != nil {
		t.Fatalf("second wipe: %v", err)
	}
}
