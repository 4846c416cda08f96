package game

import (
	"math"
	"math/rand"
	"time"
)

// Engine advances the simulation and applies user intents. It is not safe
// for concurrent use; Service serializes all access behind its mutex. The
// RNG is injected so a fixed seed replays identically.
type Engine struct {
	cat     *Catalog
	rng     *rand.Rand
	journal *Journal
}

func NewEngine(cat *Catalog, rng *rand.Rand, journal *Journal) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{cat: cat, rng: rng, journal: journal}
}

func (e *Engine) Catalog() *Catalog { return e.cat }

func (e *Engine) Journal() *Journal { return e.journal }

func (e *Engine) log(st *State, sev Severity, format string, args ...any) {
	e.journal.Push(st.Day, st.Hour, sev, format, args...)
}

// Advance runs exactly one simulated hour. Step order is load-bearing:
// calendar, fixed costs, procurement, production, sales, flavor unlocks,
// rival activation, events, missions, achievements, tick marker.
func (e *Engine) Advance(st *State, online bool, now time.Time) {
	e.advanceCalendar(st)
	e.applyFixedCosts(st)
	if st.AutoBuy {
		e.autoBuySupplies(st)
	}
	produced := e.produce(st)
	sale := e.resolveSales(st)
	e.checkFlavorUnlocks(st)
	e.checkRivalActivation(st)
	e.advanceEvents(st)
	e.advanceMission(st)
	e.checkAchievements(st)

	st.LastProduced = produced
	st.LastSold = sale.Sold
	st.LastRevenueMicros = sale.RevenueMicros
	st.LastDemandLevel = sale.Demanded
	st.LastMarketShare = sale.MarketShare

	if online {
		st.LastTickUnix = now.Unix()
	}
}

func (e *Engine) advanceCalendar(st *State) {
	st.Hour++
	if st.Hour < HoursPerDay {
		return
	}
	st.Hour = 0
	st.Day++
	if st.RivalsActive {
		e.repriceRivals(st)
	}
	if current := st.MonthIndex(); current != st.LastMonthIndex {
		m := st.Monthly
		profit := m.RevenueMicros - m.ExpensesMicros
		sev := SeverityGood
		if profit < 0 {
			sev = SeverityBad
		}
		e.log(st, sev, "Month %d recap: produced %d / sold %d bottles. Revenue $%.2f, expenses $%.2f, profit $%.2f.",
			st.LastMonthIndex, m.Produced, m.Sold,
			MicrosToDollars(m.RevenueMicros), MicrosToDollars(m.ExpensesMicros), MicrosToDollars(profit))
		st.Monthly = Totals{}
		st.LastMonthIndex = current
	}
}

func (e *Engine) applyFixedCosts(st *State) {
	cost := st.FixedCostMicrosPerHour
	if st.Lines > 1 {
		cost += int64(st.Lines-1) * 15 * MicrosPerDollar
	}
	if st.Event != nil {
		cost += st.Event.ExtraCostMicrosPerHour
	}
	if cost <= 0 {
		return
	}
	st.CashMicros -= cost
	st.Stats.ExpensesMicros += cost
	st.Monthly.ExpensesMicros += cost
}

// autoBuySupplies tops each raw material up to storage capacity. Each
// material is all-or-nothing: if the full top-up is unaffordable this tick,
// that material is skipped entirely.
func (e *Engine) autoBuySupplies(st *State) {
	buy := func(current *int64, unitCostMicros int64) {
		need := st.StorageCapacity - *current
		if need <= 0 {
			return
		}
		cost := need * ApplyBpsMult(unitCostMicros, st.CostModBps)
		if cost <= 0 || st.CashMicros < cost {
			return
		}
		st.CashMicros -= cost
		*current += need
		st.Stats.ExpensesMicros += cost
		st.Monthly.ExpensesMicros += cost
	}
	buy(&st.Inventory.Preforms, PreformCostMicros)
	buy(&st.Inventory.Labels, LabelCostMicros)
	buy(&st.Inventory.Packaging, PackagingCostMicros)
}

// EffectiveCapacity is the per-tick production ceiling after event,
// prestige and bottle-format multipliers.
func (e *Engine) EffectiveCapacity(st *State) int64 {
	mult := 1.0
	if st.Event != nil && st.Event.CapacityMult > 0 {
		mult *= st.Event.CapacityMult
	}
	mult *= 1.0 + float64(LegacyPoints(st.LegacyMilli))*0.02
	if f, ok := e.cat.Format(st.ActiveFormatID); ok {
		mult *= f.CapacityMult
	}
	units := int64(math.Floor(float64(st.CapacityPerHour) * mult))
	if units < 0 {
		return 0
	}
	return units
}

func (e *Engine) produce(st *State) int64 {
	capacity := e.EffectiveCapacity(st)
	room := st.StorageCapacity - st.Inventory.Bottles
	producible := min64(capacity,
		min64(st.Inventory.Preforms,
			min64(st.Inventory.Labels,
				min64(st.Inventory.Packaging, room))))
	if producible <= 0 {
		// Storage being the sole binding constraint starts a clearance event.
		if room <= 0 && capacity > 0 &&
			st.Inventory.Preforms > 0 && st.Inventory.Labels > 0 && st.Inventory.Packaging > 0 {
			e.triggerStorageFullEvent(st)
		}
		return 0
	}

	st.Inventory.Preforms -= producible
	st.Inventory.Labels -= producible
	st.Inventory.Packaging -= producible
	st.Inventory.Bottles += producible
	st.Stats.Produced += producible
	st.Monthly.Produced += producible

	ids, weights := e.unlockedFlavorWeights(st)
	for i, units := range apportion(producible, weights) {
		fs := st.Flavors[ids[i]]
		fs.ProducedLifetime += units
		fs.MonthlyProduced += units
	}
	return producible
}

func (e *Engine) triggerStorageFullEvent(st *State) {
	if st.Event != nil {
		return
	}
	def, ok := e.cat.Event(EventStorageFullID)
	if !ok {
		return
	}
	e.startEvent(st, def)
}

func (e *Engine) checkFlavorUnlocks(st *State) {
	for _, def := range e.cat.Flavors {
		fs := st.Flavors[def.ID]
		if fs.Unlocked || st.Stats.RevenueMicros < def.UnlockRevenueMicros {
			continue
		}
		fs.Unlocked = true
		e.log(st, SeverityGood, "New flavor unlocked: %s. Set a price and put it on shelves.", def.Name)
	}
}

func (e *Engine) checkRivalActivation(st *State) {
	if st.RivalsActive {
		return
	}
	if st.Stats.RevenueMicros < RivalActivationRevenueMicros && st.Stats.Sold < RivalActivationUnitsSold {
		return
	}
	st.RivalsActive = true
	e.repriceRivals(st)
	e.log(st, SeverityBad, "Rival bottlers noticed your growth. BudgetFizz, RoyalCola and ColaMax enter the market.")
}

// advanceEvents decrements the active event first, then rolls for a new one
// when the slot is free.
func (e *Engine) advanceEvents(st *State) {
	if st.Event != nil {
		st.Event.RemainingHours--
		if st.Event.RemainingHours <= 0 {
			e.log(st, SeverityInfo, "Event ended: %s", st.Event.Name)
			st.Event = nil
		}
		return
	}
	if e.rng.Float64() >= EventTriggerChance {
		return
	}
	pool := e.cat.RandomEventPool()
	if len(pool) == 0 {
		return
	}
	e.startEvent(st, pool[e.rng.Intn(len(pool))])
}

func (e *Engine) startEvent(st *State, def EventDef) {
	hours := def.MinHours
	if def.MaxHours > def.MinHours {
		hours += e.rng.Intn(def.MaxHours - def.MinHours + 1)
	}
	st.Event = &ActiveEvent{
		ID:                     def.ID,
		Name:                   def.Name,
		RemainingHours:         hours,
		CapacityMult:           def.CapacityMult,
		DemandMult:             def.DemandMult,
		ExtraCostMicrosPerHour: def.ExtraCostMicrosPerHour,
	}
	e.log(st, SeverityInfo, "Event started: %s", def.Name)
}

func (e *Engine) advanceMission(st *State) {
	if st.Mission.ActiveID == "" {
		return
	}
	st.Mission.RemainingHours--
	if st.Mission.RemainingHours > 0 {
		return
	}
	def, ok := e.cat.Mission(st.Mission.ActiveID)
	st.Mission.ActiveID = ""
	st.Mission.RemainingHours = 0
	if !ok {
		return
	}
	st.Mission.Pending = &MissionReward{
		MissionID:   def.ID,
		CashMicros:  def.RewardCashMicros,
		LegacyMilli: def.RewardLegacyMilli,
	}
	e.log(st, SeverityGood, "Mission complete: %s. Claim the reward to collect it.", def.Name)
}

func (e *Engine) checkAchievements(st *State) {
	for _, def := range e.cat.Achievements {
		if st.UnlockedAchievements[def.ID] || !def.Check(st) {
			continue
		}
		st.UnlockedAchievements[def.ID] = true
		e.log(st, SeverityGood, "Achievement unlocked: %s", def.Label)
	}
}

func (e *Engine) unlockedFlavorWeights(st *State) ([]string, []float64) {
	ids := make([]string, 0, len(e.cat.Flavors))
	weights := make([]float64, 0, len(e.cat.Flavors))
	for _, def := range e.cat.Flavors {
		if st.Flavors[def.ID].Unlocked {
			ids = append(ids, def.ID)
			weights = append(weights, def.DemandMultiplier)
		}
	}
	return ids, weights
}

// apportion splits total integer units across weights proportionally,
// handing leftover units out in slice order so the split is deterministic
// and sums exactly to total.
func apportion(total int64, weights []float64) []int64 {
	out := make([]int64, len(weights))
	if total <= 0 || len(weights) == 0 {
		return out
	}
	var sum float64
	for _, w := range weights {
		if w > 0 {
			sum += w
		}
	}
	if sum <= 0 {
		out[0] = total
		return out
	}
	var assigned int64
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		out[i] = int64(math.Floor(float64(total) * w / sum))
		assigned += out[i]
	}
	for i := 0; assigned < total; i = (i + 1) % len(out) {
		out[i]++
		assigned++
	}
	return out
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
