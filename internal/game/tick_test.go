package game

import (
	"math/rand"
	"testing"
	"time"
)

func newTestEngine(seed int64) (*Engine, *State) {
	cat := NewCatalog()
	eng := NewEngine(cat, rand.New(rand.NewSource(seed)), NewJournal(nil))
	return eng, NewState(cat)
}

func TestFirstTickNumbers(t *testing.T) {
	eng, st := newTestEngine(1)
	eng.Advance(st, true, time.Unix(1_000_000, 0))

	if st.Day != 1 || st.Hour != 9 {
		t.Fatalf("calendar = day %d hour %d, want day 1 hour 9", st.Day, st.Hour)
	}
	// 25 bottles produced at full capacity, all sold into ample demand.
	if st.LastProduced != 25 {
		t.Fatalf("produced = %d, want 25", st.LastProduced)
	}
	if st.LastSold != 25 {
		t.Fatalf("sold = %d, want 25", st.LastSold)
	}
	if st.Inventory.Preforms != 475 || st.Inventory.Labels != 475 || st.Inventory.Packaging != 475 {
		t.Fatalf("materials = %+v, want 475 each", st.Inventory)
	}
	if st.Inventory.Bottles != 0 {
		t.Fatalf("bottles left = %d, want 0", st.Inventory.Bottles)
	}
	// $2500 start, -$40 fixed, +$50 revenue (25 x $2.00).
	wantCash := StarterCashMicros - 40*MicrosPerDollar + 50*MicrosPerDollar
	if st.CashMicros != wantCash {
		t.Fatalf("cash = %d, want %d", st.CashMicros, wantCash)
	}
	if st.Stats.RevenueMicros != 50*MicrosPerDollar {
		t.Fatalf("revenue = %d, want %d", st.Stats.RevenueMicros, 50*MicrosPerDollar)
	}
	if st.Stats.ExpensesMicros != 40*MicrosPerDollar {
		t.Fatalf("expenses = %d, want %d", st.Stats.ExpensesMicros, 40*MicrosPerDollar)
	}
	if st.LastMarketShare != 1.0 {
		t.Fatalf("market share without rivals = %v, want 1.0", st.LastMarketShare)
	}
	if !st.UnlockedAchievements["first_sale"] {
		t.Fatal("first_sale achievement should unlock on the first sold bottle")
	}
	if st.LastTickUnix != 1_000_000 {
		t.Fatalf("online tick marker = %d, want 1000000", st.LastTickUnix)
	}
}

func TestOfflineTickSkipsMarker(t *testing.T) {
	eng, st := newTestEngine(1)
	st.LastTickUnix = 77
	eng.Advance(st, false, time.Unix(1_000_000, 0))
	if st.LastTickUnix != 77 {
		t.Fatalf("offline tick rewrote marker to %d", st.LastTickUnix)
	}
}

func TestCalendarDayAndMonthRollover(t *testing.T) {
	eng, st := newTestEngine(1)
	st.Hour = 23
	eng.advanceCalendar(st)
	if st.Day != 2 || st.Hour != 0 {
		t.Fatalf("after rollover: day %d hour %d, want day 2 hour 0", st.Day, st.Hour)
	}

	st.Day = 30
	st.Hour = 23
	st.Monthly = Totals{Produced: 10, Sold: 8, RevenueMicros: 16 * MicrosPerDollar}
	eng.advanceCalendar(st)
	if st.Day != 31 {
		t.Fatalf("day = %d, want 31", st.Day)
	}
	if st.MonthIndex() != 2 || st.LastMonthIndex != 2 {
		t.Fatalf("month index = %d / last %d, want 2 / 2", st.MonthIndex(), st.LastMonthIndex)
	}
	if st.Monthly != (Totals{}) {
		t.Fatalf("monthly totals not reset after recap: %+v", st.Monthly)
	}
}

func TestFixedCostsExtraLinesAndEvents(t *testing.T) {
	eng, st := newTestEngine(1)
	st.Lines = 3
	st.Event = &ActiveEvent{ID: "billboard", RemainingHours: 5, ExtraCostMicrosPerHour: 5 * MicrosPerDollar}
	start := st.CashMicros
	eng.applyFixedCosts(st)
	// $40 base + 2 x $15 extra lines + $5 event surcharge.
	want := int64(75) * MicrosPerDollar
	if start-st.CashMicros != want {
		t.Fatalf("fixed costs deducted %d, want %d", start-st.CashMicros, want)
	}
}

func TestAutoBuyTopsUpToStorage(t *testing.T) {
	eng, st := newTestEngine(1)
	st.CashMicros = DollarsToMicros(10_000)
	eng.autoBuySupplies(st)
	if st.Inventory.Preforms != st.StorageCapacity ||
		st.Inventory.Labels != st.StorageCapacity ||
		st.Inventory.Packaging != st.StorageCapacity {
		t.Fatalf("materials not topped to storage: %+v", st.Inventory)
	}
	// 1500 units each: preforms $375, labels $75, packaging $150.
	want := DollarsToMicros(10_000) - DollarsToMicros(600)
	if st.CashMicros != want {
		t.Fatalf("cash = %d, want %d", st.CashMicros, want)
	}
}

func TestAutoBuySkipsUnaffordableMaterial(t *testing.T) {
	eng, st := newTestEngine(1)
	st.Inventory = Inventory{Preforms: 0, Labels: 0, Packaging: 2_000}
	// Preform top-up costs $500, labels $100. Only labels fit.
	st.CashMicros = DollarsToMicros(120)
	eng.autoBuySupplies(st)
	if st.Inventory.Preforms != 0 {
		t.Fatalf("preforms bought despite insufficient cash: %d", st.Inventory.Preforms)
	}
	if st.Inventory.Labels != 2_000 {
		t.Fatalf("labels = %d, want 2000", st.Inventory.Labels)
	}
	if st.CashMicros != DollarsToMicros(20) {
		t.Fatalf("cash = %d, want %d", st.CashMicros, DollarsToMicros(20))
	}
}

func TestEffectiveCapacityMultipliers(t *testing.T) {
	eng, st := newTestEngine(1)
	if got := eng.EffectiveCapacity(st); got != 25 {
		t.Fatalf("base capacity = %d, want 25", got)
	}
	st.ActiveFormatID = "small_500"
	if got := eng.EffectiveCapacity(st); got != 27 { // floor(25 x 1.10)
		t.Fatalf("small format capacity = %d, want 27", got)
	}
	st.ActiveFormatID = "medium_1000"
	st.Event = &ActiveEvent{ID: "strike", RemainingHours: 4, CapacityMult: 0.6}
	if got := eng.EffectiveCapacity(st); got != 15 {
		t.Fatalf("strike capacity = %d, want 15", got)
	}
	st.Event = nil
	st.LegacyMilli = 5_000                           // 5 points, +10%
	if got := eng.EffectiveCapacity(st); got != 27 { // floor(25 x 1.10)
		t.Fatalf("prestige capacity = %d, want 27", got)
	}
}

func TestProduceLimitedByMaterials(t *testing.T) {
	eng, st := newTestEngine(1)
	st.Inventory.Labels = 7
	if got := eng.produce(st); got != 7 {
		t.Fatalf("produced = %d, want 7 (label-bound)", got)
	}
	if st.Inventory.Bottles != 7 || st.Inventory.Labels != 0 {
		t.Fatalf("inventory after production: %+v", st.Inventory)
	}
}

func TestStorageFullTriggersClearanceEvent(t *testing.T) {
	eng, st := newTestEngine(1)
	st.Inventory.Bottles = st.StorageCapacity
	if got := eng.produce(st); got != 0 {
		t.Fatalf("produced = %d with full storage, want 0", got)
	}
	if st.Event == nil || st.Event.ID != EventStorageFullID {
		t.Fatalf("expected %s event, got %+v", EventStorageFullID, st.Event)
	}
	if st.Event.RemainingHours != 6 || st.Event.DemandMult != 1.2 {
		t.Fatalf("clearance event params: %+v", st.Event)
	}
}

func TestStorageFullDoesNotFireWithoutMaterials(t *testing.T) {
	eng, st := newTestEngine(1)
	st.Inventory = Inventory{Bottles: st.StorageCapacity}
	if got := eng.produce(st); got != 0 {
		t.Fatalf("produced = %d, want 0", got)
	}
	if st.Event != nil {
		t.Fatalf("clearance event fired while material-starved: %+v", st.Event)
	}
}

func TestFlavorUnlocksByLifetimeRevenue(t *testing.T) {
	eng, st := newTestEngine(1)
	st.Stats.RevenueMicros = DollarsToMicros(20_000)
	eng.checkFlavorUnlocks(st)
	if !st.Flavors["cherry"].Unlocked {
		t.Fatal("cherry should unlock at $20k revenue")
	}
	if st.Flavors["zero"].Unlocked || st.Flavors["lime"].Unlocked {
		t.Fatal("zero and lime must stay locked below their thresholds")
	}
}

func TestRivalActivation(t *testing.T) {
	eng, st := newTestEngine(1)
	eng.checkRivalActivation(st)
	if st.RivalsActive {
		t.Fatal("rivals active on a fresh run")
	}
	st.Stats.RevenueMicros = RivalActivationRevenueMicros
	eng.checkRivalActivation(st)
	if !st.RivalsActive {
		t.Fatal("rivals should activate at the revenue threshold")
	}
	for _, r := range eng.Catalog().Rivals {
		if len(st.RivalPrices[r.ID]) != len(eng.Catalog().Channels) {
			t.Fatalf("rival %s has no prices after activation", r.ID)
		}
	}
}

func TestEventLifecycleDecrementsThenClears(t *testing.T) {
	eng, st := newTestEngine(1)
	st.Event = &ActiveEvent{ID: "heatwave", Name: "Heatwave", RemainingHours: 2, DemandMult: 1.5}
	eng.advanceEvents(st)
	if st.Event == nil || st.Event.RemainingHours != 1 {
		t.Fatalf("event after one hour: %+v", st.Event)
	}
	eng.advanceEvents(st)
	if st.Event != nil {
		t.Fatalf("event should have ended, got %+v", st.Event)
	}
}

func TestRandomEventDurationWithinBounds(t *testing.T) {
	eng, st := newTestEngine(7)
	for _, def := range eng.Catalog().RandomEventPool() {
		for i := 0; i < 50; i++ {
			st.Event = nil
			eng.startEvent(st, def)
			if st.Event.RemainingHours < def.MinHours || st.Event.RemainingHours > def.MaxHours {
				t.Fatalf("event %s duration %d outside [%d,%d]",
					def.ID, st.Event.RemainingHours, def.MinHours, def.MaxHours)
			}
		}
	}
}

func TestMissionCompletionStagesReward(t *testing.T) {
	eng, st := newTestEngine(1)
	st.Inventory.Bottles = 500
	if err := eng.StartMission(st, "stadium_promo"); err != nil {
		t.Fatalf("start mission: %v", err)
	}
	if st.Inventory.Bottles != 300 {
		t.Fatalf("bottles after upfront cost = %d, want 300", st.Inventory.Bottles)
	}
	for i := 0; i < 8; i++ {
		if st.Mission.Pending != nil {
			t.Fatalf("reward staged early at hour %d", i)
		}
		eng.advanceMission(st)
	}
	if st.Mission.ActiveID != "" {
		t.Fatal("mission still active after its duration")
	}
	r := st.Mission.Pending
	if r == nil || r.MissionID != "stadium_promo" {
		t.Fatalf("pending reward = %+v", r)
	}
	if r.CashMicros != DollarsToMicros(8_000) || r.LegacyMilli != 100 {
		t.Fatalf("reward values = %+v", r)
	}

	cash := st.CashMicros
	if err := eng.ClaimMissionReward(st); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if st.CashMicros != cash+DollarsToMicros(8_000) || st.LegacyMilli != 100 {
		t.Fatalf("after claim: cash %d legacy %d", st.CashMicros, st.LegacyMilli)
	}
	if err := eng.ClaimMissionReward(st); err != ErrNoPendingReward {
		t.Fatalf("double claim error = %v, want ErrNoPendingReward", err)
	}
}

func TestApportionSumsExactly(t *testing.T) {
	tests := []struct {
		total   int64
		weights []float64
		want    []int64
	}{
		{10, []float64{1, 1}, []int64{5, 5}},
		{10, []float64{2, 1}, []int64{7, 3}},
		{3, []float64{1, 1, 1, 1}, []int64{1, 1, 1, 0}},
		{5, []float64{0, 0}, []int64{5, 0}},
	}
	for _, tc := range tests {
		got := apportion(tc.total, tc.weights)
		var sum int64
		for i, v := range got {
			sum += v
			if v != tc.want[i] {
				t.Fatalf("apportion(%d, %v) = %v, want %v", tc.total, tc.weights, got, tc.want)
			}
		}
		if sum != tc.total {
			t.Fatalf("apportion(%d, %v) sums to %d", tc.total, tc.weights, sum)
		}
	}
}

func TestConservationOverManyTicks(t *testing.T) {
	eng, st := newTestEngine(99)
	now := time.Unix(2_000_000, 0)
	for i := 0; i < 200; i++ {
		eng.Advance(st, true, now)
	}
	if got := st.Stats.Produced - st.Stats.Sold; got != st.Inventory.Bottles {
		t.Fatalf("bottle conservation broken: produced-sold=%d, on hand=%d", got, st.Inventory.Bottles)
	}
	if st.Inventory.Preforms != 500-st.Stats.Produced {
		t.Fatalf("preform conservation broken: %d left after %d produced", st.Inventory.Preforms, st.Stats.Produced)
	}
	wantCash := StarterCashMicros + st.Stats.RevenueMicros - st.Stats.ExpensesMicros
	if st.CashMicros != wantCash {
		t.Fatalf("cash ledger broken: %d, want %d", st.CashMicros, wantCash)
	}
	if st.Inventory.Bottles < 0 || st.Inventory.Bottles > st.StorageCapacity {
		t.Fatalf("bottles out of bounds: %d", st.Inventory.Bottles)
	}
}

func TestDeterministicReplay(t *testing.T) {
	run := func() *State {
		eng, st := newTestEngine(1234)
		now := time.Unix(3_000_000, 0)
		for i := 0; i < 500; i++ {
			eng.Advance(st, true, now)
		}
		return st
	}
	a, b := run(), run()
	if a.CashMicros != b.CashMicros || a.Stats != b.Stats || a.Inventory != b.Inventory {
		t.Fatalf("same seed diverged:\n a=%+v %+v\n b=%+v %+v", a.Stats, a.Inventory, b.Stats, b.Inventory)
	}
	if (a.Event == nil) != (b.Event == nil) {
		t.Fatal("event presence diverged between identical runs")
	}
}
