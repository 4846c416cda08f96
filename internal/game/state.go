package game

// SaveVersion is bumped whenever the persisted shape changes incompatibly.
const SaveVersion = 1

// State is the single root aggregate of the simulation. It is owned by the
// engine; everything outside the game package sees read-only snapshot views.
// All money fields are micro-dollars, all modifiers are bps (10_000 = x1.0),
// brand legacy is milli-points.
type State struct {
	Version int `json:"version"`

	CashMicros int64 `json:"cash_micros"`

	Day            int `json:"day"`
	Hour           int `json:"hour"`
	LastMonthIndex int `json:"last_month_index"`

	Inventory Inventory `json:"inventory"`

	Lines      int `json:"lines"`
	Warehouses int `json:"warehouses"`

	CapacityPerHour        int64 `json:"capacity_per_hour"`
	StorageCapacity        int64 `json:"storage_capacity"`
	FixedCostMicrosPerHour int64 `json:"fixed_cost_micros_per_hour"`

	DemandModBps int64 `json:"demand_mod_bps"`
	CostModBps   int64 `json:"cost_mod_bps"`

	AutoBuy bool `json:"auto_buy"`

	Flavors        map[string]*FlavorState `json:"flavors"`
	ActiveFlavorID string                  `json:"active_flavor_id"`
	ActiveFormatID string                  `json:"active_format_id"`

	RivalsActive bool `json:"rivals_active"`
	// rival id -> channel id -> price in micros; refreshed on day rollover.
	RivalPrices map[string]map[string]int64 `json:"rival_prices"`

	Event   *ActiveEvent `json:"event,omitempty"`
	Mission MissionState `json:"mission"`

	PurchasedUpgrades    map[string]bool `json:"purchased_upgrades"`
	OwnedEquipment       map[string]bool `json:"owned_equipment"`
	UnlockedAchievements map[string]bool `json:"unlocked_achievements"`
	PrestigeNodes        map[string]bool `json:"prestige_nodes"`

	LegacyMilli       int64 `json:"legacy_milli"`
	LegacySpentPoints int64 `json:"legacy_spent_points"`
	Resets            int64 `json:"resets"`

	Stats   Totals `json:"stats"`
	Monthly Totals `json:"monthly"`

	// Observability only; never read back by the engine.
	LastProduced      int64   `json:"last_produced"`
	LastSold          int64   `json:"last_sold"`
	LastRevenueMicros int64   `json:"last_revenue_micros"`
	LastDemandLevel   float64 `json:"last_demand_level"`
	LastMarketShare   float64 `json:"last_market_share"`

	LastTickUnix int64 `json:"last_tick_unix"`
}

type Inventory struct {
	Preforms  int64 `json:"preforms"`
	Labels    int64 `json:"labels"`
	Packaging int64 `json:"packaging"`
	Bottles   int64 `json:"bottles"`
}

type FlavorState struct {
	Unlocked         bool  `json:"unlocked"`
	PriceMicros      int64 `json:"price_micros"`
	ProducedLifetime int64 `json:"produced_lifetime"`
	SoldLifetime     int64 `json:"sold_lifetime"`
	MonthlyProduced  int64 `json:"monthly_produced"`
	MonthlySold      int64 `json:"monthly_sold"`
}

type ActiveEvent struct {
	ID                     string  `json:"id"`
	Name                   string  `json:"name"`
	RemainingHours         int     `json:"remaining_hours"`
	CapacityMult           float64 `json:"capacity_mult"`
	DemandMult             float64 `json:"demand_mult"`
	ExtraCostMicrosPerHour int64   `json:"extra_cost_micros_per_hour"`
}

type MissionState struct {
	ActiveID       string         `json:"active_id,omitempty"`
	RemainingHours int            `json:"remaining_hours"`
	Pending        *MissionReward `json:"pending,omitempty"`
}

type MissionReward struct {
	MissionID   string `json:"mission_id"`
	CashMicros  int64  `json:"cash_micros"`
	LegacyMilli int64  `json:"legacy_milli"`
}

type Totals struct {
	Produced       int64 `json:"produced"`
	Sold           int64 `json:"sold"`
	RevenueMicros  int64 `json:"revenue_micros"`
	ExpensesMicros int64 `json:"expenses_micros"`
}

// NewState builds the fresh first-run state for a catalog.
func NewState(cat *Catalog) *State {
	s := &State{
		Version:                SaveVersion,
		CashMicros:             StarterCashMicros,
		Day:                    1,
		Hour:                   8,
		LastMonthIndex:         1,
		Lines:                  1,
		Warehouses:             1,
		CapacityPerHour:        BaseCapacityPerLine,
		StorageCapacity:        BaseStorageCapacity,
		FixedCostMicrosPerHour: BaseFixedCostMicros,
		DemandModBps:           BpsScale,
		CostModBps:             BpsScale,
		Inventory: Inventory{
			Preforms:  500,
			Labels:    500,
			Packaging: 500,
		},
		Flavors:              make(map[string]*FlavorState, len(cat.Flavors)),
		RivalPrices:          make(map[string]map[string]int64),
		PurchasedUpgrades:    make(map[string]bool),
		OwnedEquipment:       make(map[string]bool),
		UnlockedAchievements: make(map[string]bool),
		PrestigeNodes:        make(map[string]bool),
	}
	for _, f := range cat.Flavors {
		s.Flavors[f.ID] = &FlavorState{
			Unlocked:    f.UnlockRevenueMicros == 0,
			PriceMicros: f.BasePriceMicros,
		}
	}
	if len(cat.Flavors) > 0 {
		s.ActiveFlavorID = cat.Flavors[0].ID
	}
	s.ActiveFormatID = "medium_1000"
	return s
}

// Normalize repairs a decoded snapshot once at load time: nil maps become
// empty, catalog entries missing from the blob are added with defaults, and
// out-of-range scalars are clamped. Loaders call this exactly once; the
// engine never checks these conditions again.
func (s *State) Normalize(cat *Catalog) {
	if s.Version == 0 {
		s.Version = SaveVersion
	}
	if s.Day < 1 {
		s.Day = 1
	}
	if s.Hour < 0 || s.Hour >= HoursPerDay {
		s.Hour = 0
	}
	if s.LastMonthIndex < 1 {
		s.LastMonthIndex = (s.Day-1)/DaysPerMonth + 1
	}
	if s.Lines < 1 {
		s.Lines = 1
	}
	if s.Warehouses < 1 {
		s.Warehouses = 1
	}
	if s.CapacityPerHour <= 0 {
		s.CapacityPerHour = BaseCapacityPerLine * int64(s.Lines)
	}
	if s.StorageCapacity <= 0 {
		s.StorageCapacity = BaseStorageCapacity * int64(s.Warehouses)
	}
	if s.FixedCostMicrosPerHour <= 0 {
		s.FixedCostMicrosPerHour = BaseFixedCostMicros
	}
	if s.DemandModBps <= 0 {
		s.DemandModBps = BpsScale
	}
	if s.CostModBps <= 0 {
		s.CostModBps = BpsScale
	}
	if s.Inventory.Preforms < 0 {
		s.Inventory.Preforms = 0
	}
	if s.Inventory.Labels < 0 {
		s.Inventory.Labels = 0
	}
	if s.Inventory.Packaging < 0 {
		s.Inventory.Packaging = 0
	}
	if s.Inventory.Bottles < 0 {
		s.Inventory.Bottles = 0
	}
	if s.Inventory.Bottles > s.StorageCapacity {
		s.Inventory.Bottles = s.StorageCapacity
	}
	if s.LegacyMilli < 0 {
		s.LegacyMilli = 0
	}
	if s.LegacySpentPoints < 0 {
		s.LegacySpentPoints = 0
	}

	if s.Flavors == nil {
		s.Flavors = make(map[string]*FlavorState, len(cat.Flavors))
	}
	for _, f := range cat.Flavors {
		fs, ok := s.Flavors[f.ID]
		if !ok || fs == nil {
			s.Flavors[f.ID] = &FlavorState{
				Unlocked:    f.UnlockRevenueMicros == 0,
				PriceMicros: f.BasePriceMicros,
			}
			continue
		}
		if fs.PriceMicros <= 0 {
			fs.PriceMicros = f.BasePriceMicros
		}
	}
	if _, ok := s.Flavors[s.ActiveFlavorID]; !ok || s.ActiveFlavorID == "" {
		if len(cat.Flavors) > 0 {
			s.ActiveFlavorID = cat.Flavors[0].ID
		}
	}
	if fs := s.Flavors[s.ActiveFlavorID]; fs != nil && !fs.Unlocked {
		fs.Unlocked = true
	}
	if _, ok := cat.Format(s.ActiveFormatID); !ok {
		s.ActiveFormatID = "medium_1000"
	}

	if s.RivalPrices == nil {
		s.RivalPrices = make(map[string]map[string]int64)
	}
	if s.PurchasedUpgrades == nil {
		s.PurchasedUpgrades = make(map[string]bool)
	}
	if s.OwnedEquipment == nil {
		s.OwnedEquipment = make(map[string]bool)
	}
	if s.UnlockedAchievements == nil {
		s.UnlockedAchievements = make(map[string]bool)
	}
	if s.PrestigeNodes == nil {
		s.PrestigeNodes = make(map[string]bool)
	}

	if s.Event != nil && s.Event.RemainingHours <= 0 {
		s.Event = nil
	}
	if s.Mission.ActiveID != "" {
		if _, ok := cat.Mission(s.Mission.ActiveID); !ok {
			s.Mission = MissionState{}
		}
	}
	if s.Mission.RemainingHours < 0 {
		s.Mission.RemainingHours = 0
	}
}

// Clone deep-copies the state. Snapshots handed to callers are clones so
// the engine's copy is never aliased.
func (s *State) Clone() *State {
	out := *s
	out.Flavors = make(map[string]*FlavorState, len(s.Flavors))
	for id, fs := range s.Flavors {
		cp := *fs
		out.Flavors[id] = &cp
	}
	out.RivalPrices = make(map[string]map[string]int64, len(s.RivalPrices))
	for id, per := range s.RivalPrices {
		inner := make(map[string]int64, len(per))
		for ch, p := range per {
			inner[ch] = p
		}
		out.RivalPrices[id] = inner
	}
	out.PurchasedUpgrades = copyBoolSet(s.PurchasedUpgrades)
	out.OwnedEquipment = copyBoolSet(s.OwnedEquipment)
	out.UnlockedAchievements = copyBoolSet(s.UnlockedAchievements)
	out.PrestigeNodes = copyBoolSet(s.PrestigeNodes)
	if s.Event != nil {
		ev := *s.Event
		out.Event = &ev
	}
	if s.Mission.Pending != nil {
		r := *s.Mission.Pending
		out.Mission.Pending = &r
	}
	return &out
}

func copyBoolSet(in map[string]bool) map[string]bool {
	out := make(map[string]bool, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// MonthIndex is the 1-based 30-day month the calendar is currently in.
func (s *State) MonthIndex() int {
	return (s.Day-1)/DaysPerMonth + 1
}

// BrandPower is the market-share weight of the player's brand.
func (s *State) BrandPower() float64 {
	return 1.0 + float64(LegacyPoints(s.LegacyMilli))*0.03
}

// AvailableLegacyPoints is whole points earned minus points spent on nodes.
func (s *State) AvailableLegacyPoints() int64 {
	avail := LegacyPoints(s.LegacyMilli) - s.LegacySpentPoints
	if avail < 0 {
		return 0
	}
	return avail
}
