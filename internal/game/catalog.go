package game

// Catalog is the immutable set of static definitions the simulation runs
// against: flavors, channels, rivals, upgrades, equipment, bottle formats,
// achievements, world events, missions and prestige nodes. It is assembled
// once at startup; nothing mutates it afterwards.
type Catalog struct {
	Flavors       []FlavorDef
	Channels      []ChannelDef
	Rivals        []RivalDef
	Upgrades      []UpgradeDef
	Equipment     []EquipmentDef
	Formats       []FormatDef
	Achievements  []AchievementDef
	Events        []EventDef
	Missions      []MissionDef
	PrestigeNodes []PrestigeNodeDef
}

type FlavorDef struct {
	ID                  string
	Name                string
	DemandMultiplier    float64
	BasePriceMicros     int64
	UnlockRevenueMicros int64
}

type ChannelDef struct {
	ID         string
	Name       string
	BaseDemand float64
}

// RivalDef is a static competitor archetype. Pricing describes how the
// rival tracks the player's shelf price on its daily reprice.
type RivalDef struct {
	ID              string
	Name            string
	BrandPower      float64
	Pricing         RivalPricing
	ChannelStrength map[string]float64
}

type RivalPricing string

const (
	PricingUndercut RivalPricing = "undercut"
	PricingPremium  RivalPricing = "premium"
	PricingShadow   RivalPricing = "shadow"
)

func (p RivalPricing) TargetMult() float64 {
	switch p {
	case PricingUndercut:
		return 0.90
	case PricingPremium:
		return 1.30
	default:
		return 1.02
	}
}

type UpgradeDef struct {
	ID         string
	Label      string
	Desc       string
	CostMicros int64
	Requires   []string
	Apply      func(*State)
}

type EquipmentDef struct {
	ID         string
	Name       string
	Desc       string
	Promo      bool
	CostMicros int64
	Apply      func(*State)
}

type FormatDef struct {
	ID           string
	Label        string
	PriceMult    float64
	CapacityMult float64
}

type AchievementDef struct {
	ID    string
	Label string
	Check func(*State) bool
}

type EventDef struct {
	ID                     string
	Name                   string
	Desc                   string
	MinHours               int
	MaxHours               int
	CapacityMult           float64
	DemandMult             float64
	ExtraCostMicrosPerHour int64
	// Random events roll from the idle pool; triggered ones (storage_full)
	// only start from an explicit engine condition.
	Triggered bool
}

type MissionDef struct {
	ID                string
	Name              string
	Desc              string
	DurationHours     int
	BottlesRequired   int64
	RewardCashMicros  int64
	RewardLegacyMilli int64
}

type PrestigeNodeDef struct {
	ID         string
	Name       string
	Desc       string
	CostPoints int64
	Apply      func(*State)
}

// NewCatalog assembles the full static catalog. Each feature contributes
// through its own builder so definitions stay grouped by system.
func NewCatalog() *Catalog {
	return &Catalog{
		Flavors:       flavorDefs(),
		Channels:      channelDefs(),
		Rivals:        rivalDefs(),
		Upgrades:      upgradeDefs(),
		Equipment:     equipmentDefs(),
		Formats:       formatDefs(),
		Achievements:  achievementDefs(),
		Events:        eventDefs(),
		Missions:      missionDefs(),
		PrestigeNodes: prestigeNodeDefs(),
	}
}

func flavorDefs() []FlavorDef {
	return []FlavorDef{
		{ID: "classic", Name: "Classic Cola", DemandMultiplier: 1.0, BasePriceMicros: DollarsToMicros(2.00), UnlockRevenueMicros: 0},
		{ID: "cherry", Name: "Cherry Pop", DemandMultiplier: 1.1, BasePriceMicros: DollarsToMicros(2.20), UnlockRevenueMicros: DollarsToMicros(20_000)},
		{ID: "zero", Name: "Zero Sugar", DemandMultiplier: 1.05, BasePriceMicros: DollarsToMicros(2.10), UnlockRevenueMicros: DollarsToMicros(40_000)},
		{ID: "lime", Name: "Lime Twist", DemandMultiplier: 1.2, BasePriceMicros: DollarsToMicros(2.40), UnlockRevenueMicros: DollarsToMicros(80_000)},
	}
}

func channelDefs() []ChannelDef {
	return []ChannelDef{
		{ID: "supermarket", Name: "Supermarkets", BaseDemand: 1000},
		{ID: "kiosk", Name: "Kiosks", BaseDemand: 600},
		{ID: "vending", Name: "Vending", BaseDemand: 400},
		{ID: "stadium", Name: "Stadiums", BaseDemand: 800},
	}
}

func rivalDefs() []RivalDef {
	return []RivalDef{
		{
			ID: "discounters", Name: "BudgetFizz", BrandPower: 0.7, Pricing: PricingUndercut,
			ChannelStrength: map[string]float64{"supermarket": 1.1, "kiosk": 1.0, "vending": 0.9, "stadium": 0.8},
		},
		{
			ID: "premium", Name: "RoyalCola", BrandPower: 1.3, Pricing: PricingPremium,
			ChannelStrength: map[string]float64{"supermarket": 1.0, "kiosk": 0.9, "vending": 1.0, "stadium": 1.2},
		},
		{
			ID: "copycat", Name: "ColaMax", BrandPower: 1.0, Pricing: PricingShadow,
			ChannelStrength: map[string]float64{"supermarket": 1.0, "kiosk": 1.1, "vending": 1.1, "stadium": 1.0},
		},
	}
}

func upgradeDefs() []UpgradeDef {
	return []UpgradeDef{
		{
			ID: "line_2", Label: "Second Production Line",
			Desc:       "Double your base capacity by adding a second production line.",
			CostMicros: DollarsToMicros(10_000),
			Apply: func(s *State) {
				if s.Lines < 2 {
					s.Lines = 2
				}
				s.CapacityPerHour = BaseCapacityPerLine * int64(s.Lines)
			},
		},
		{
			ID: "line_3", Label: "Third Production Line",
			Desc:       "Add a third production line to increase capacity further.",
			CostMicros: DollarsToMicros(25_000),
			Requires:   []string{"line_2"},
			Apply: func(s *State) {
				if s.Lines < 3 {
					s.Lines = 3
				}
				s.CapacityPerHour = BaseCapacityPerLine * int64(s.Lines)
			},
		},
		{
			ID: "warehouse_2", Label: "Warehouse Expansion II",
			Desc:       "Double your storage capacity to hold more finished bottles.",
			CostMicros: DollarsToMicros(15_000),
			Apply: func(s *State) {
				if s.Warehouses < 2 {
					s.Warehouses = 2
				}
				s.StorageCapacity = BaseStorageCapacity * int64(s.Warehouses)
			},
		},
		{
			ID: "warehouse_3", Label: "Warehouse Expansion III",
			Desc:       "Add a third warehouse for even more storage.",
			CostMicros: DollarsToMicros(35_000),
			Requires:   []string{"warehouse_2"},
			Apply: func(s *State) {
				if s.Warehouses < 3 {
					s.Warehouses = 3
				}
				s.StorageCapacity = BaseStorageCapacity * int64(s.Warehouses)
			},
		},
		{
			ID: "auto_buy", Label: "Auto Procurement System",
			Desc:       "Automatically purchase preforms, labels, and packaging when stock is low.",
			CostMicros: DollarsToMicros(5_000),
			Apply:      func(s *State) { s.AutoBuy = true },
		},
		{
			ID: "marketing_push", Label: "Citywide Marketing Campaign",
			Desc:       "Launch a major marketing push to increase demand by 15%.",
			CostMicros: DollarsToMicros(8_000),
			Apply:      func(s *State) { s.DemandModBps = ApplyBpsMult(s.DemandModBps, 11_500) },
		},
		{
			ID: "marketing_blitz", Label: "Regional Marketing Blitz",
			Desc:       "Expand marketing to neighboring cities. +20% demand boost.",
			CostMicros: DollarsToMicros(20_000),
			Requires:   []string{"marketing_push"},
			Apply:      func(s *State) { s.DemandModBps = ApplyBpsMult(s.DemandModBps, 12_000) },
		},
		{
			ID: "energy_efficiency", Label: "Energy Efficiency Program",
			Desc:       "Reduce hourly fixed costs by 10% through energy savings.",
			CostMicros: DollarsToMicros(9_000),
			Apply: func(s *State) {
				s.FixedCostMicrosPerHour = s.FixedCostMicrosPerHour * 9 / 10
				if s.FixedCostMicrosPerHour < MicrosPerDollar {
					s.FixedCostMicrosPerHour = MicrosPerDollar
				}
			},
		},
		{
			ID: "bulk_purchasing", Label: "Bulk Purchasing Discount",
			Desc:       "Negotiate better rates with suppliers. -5% on all material costs.",
			CostMicros: DollarsToMicros(12_000),
			Apply:      func(s *State) { s.CostModBps = ApplyBpsMult(s.CostModBps, 9_500) },
		},
		{
			ID: "quality_control", Label: "Quality Control Systems",
			Desc:       "Reduce waste and improve output quality. +5% effective capacity.",
			CostMicros: DollarsToMicros(18_000),
			Apply:      func(s *State) { s.CapacityPerHour = s.CapacityPerHour * 105 / 100 },
		},
	}
}

func equipmentDefs() []EquipmentDef {
	return []EquipmentDef{
		{
			ID: "neck_trimmer", Name: "Neck Trimmer Station",
			Desc:       "Trims bottle necks inline for a smoother fill. +10% capacity.",
			CostMicros: DollarsToMicros(6_500),
			Apply:      func(s *State) { s.CapacityPerHour = s.CapacityPerHour * 110 / 100 },
		},
		{
			ID: "inline_inspection", Name: "Inline Inspection Camera",
			Desc:       "Catches defects before they ship. +5% capacity, -3% material costs.",
			CostMicros: DollarsToMicros(12_000),
			Apply: func(s *State) {
				s.CapacityPerHour = s.CapacityPerHour * 105 / 100
				s.CostModBps = ApplyBpsMult(s.CostModBps, 9_700)
			},
		},
		{
			ID: "energy_recovery", Name: "Energy Recovery System",
			Desc:       "Recycles compressor heat. -10% fixed costs.",
			CostMicros: DollarsToMicros(18_000),
			Apply:      func(s *State) { s.FixedCostMicrosPerHour = s.FixedCostMicrosPerHour * 9 / 10 },
		},
		{
			ID: "cooler_fridge", Name: "Branded Cooler Fridges", Promo: true,
			Desc:       "Branded fridges in corner shops. +6% demand.",
			CostMicros: DollarsToMicros(9_000),
			Apply:      func(s *State) { s.DemandModBps = ApplyBpsMult(s.DemandModBps, 10_600) },
		},
		{
			ID: "billboard_city", Name: "City Billboard Pack", Promo: true,
			Desc:       "Billboards across the city. +8% demand, +$5/h upkeep.",
			CostMicros: DollarsToMicros(16_000),
			Apply: func(s *State) {
				s.DemandModBps = ApplyBpsMult(s.DemandModBps, 10_800)
				s.FixedCostMicrosPerHour += 5 * MicrosPerDollar
			},
		},
		{
			// Heatwave synergy is read at tick time from ownership, no stat change here.
			ID: "music_truck", Name: "Promo Music Truck", Promo: true,
			Desc:       "Drives around playing your jingle. +10% demand during heatwaves.",
			CostMicros: DollarsToMicros(22_000),
			Apply:      func(s *State) {},
		},
	}
}

func formatDefs() []FormatDef {
	return []FormatDef{
		{ID: "small_500", Label: "0.5L On-the-go", PriceMult: 0.85, CapacityMult: 1.10},
		{ID: "medium_1000", Label: "1.0L Standard", PriceMult: 1.0, CapacityMult: 1.0},
		{ID: "family_1500", Label: "1.5L Family Pack", PriceMult: 1.25, CapacityMult: 0.90},
	}
}

func achievementDefs() []AchievementDef {
	return []AchievementDef{
		{ID: "first_sale", Label: "First Sale", Check: func(s *State) bool { return s.Stats.Sold >= 1 }},
		{ID: "ten_k_sold", Label: "10k Sold", Check: func(s *State) bool { return s.Stats.Sold >= 10_000 }},
		{ID: "hundred_k_sold", Label: "100k Sold", Check: func(s *State) bool { return s.Stats.Sold >= 100_000 }},
		{ID: "million_sold", Label: "One Million Bottles", Check: func(s *State) bool { return s.Stats.Sold >= 1_000_000 }},
		{ID: "rich", Label: "First 100k", Check: func(s *State) bool { return s.CashMicros >= DollarsToMicros(100_000) }},
		{ID: "legacy_1", Label: "First Legacy", Check: func(s *State) bool { return s.LegacyMilli >= LegacyMilliScale }},
		{ID: "legacy_2x", Label: "Brand Legacy x2", Check: func(s *State) bool { return s.LegacyMilli >= 2*LegacyMilliScale }},
	}
}

const EventStorageFullID = "storage_full"

func eventDefs() []EventDef {
	return []EventDef{
		{
			ID: "sugar_tax", Name: "Sugar Tax Proposal",
			Desc:     "A new sugar tax on soft drinks is proposed. Demand dips while retailers hesitate.",
			MinHours: 12, MaxHours: 36, CapacityMult: 1.0, DemandMult: 0.8,
		},
		{
			ID: "strike", Name: "Partial Strike",
			Desc:     "Workers are unhappy. Capacity is reduced until an agreement is reached.",
			MinHours: 8, MaxHours: 24, CapacityMult: 0.6, DemandMult: 1.0,
		},
		{
			ID: "heatwave", Name: "Heatwave",
			Desc:     "Scorching weather spikes cola demand across the city.",
			MinHours: 6, MaxHours: 18, CapacityMult: 1.0, DemandMult: 1.5,
		},
		{
			ID: EventStorageFullID, Name: "Storage Full Clearance",
			Desc:     "Warehouses are packed. Retailers run a clearance push on your stock.",
			MinHours: 6, MaxHours: 6, CapacityMult: 1.0, DemandMult: 1.2,
			Triggered: true,
		},
	}
}

func missionDefs() []MissionDef {
	return []MissionDef{
		{
			ID: "stadium_promo", Name: "Stadium Promotion",
			Desc:          "Sponsor the big game. Consume 200 bottles now for a big payout later.",
			DurationHours: 8, BottlesRequired: 200,
			RewardCashMicros: DollarsToMicros(8_000), RewardLegacyMilli: 100,
		},
		{
			ID: "music_festival", Name: "Summer Music Festival",
			Desc:          "Stock the festival bars for a weekend of heavy pours.",
			DurationHours: 10, BottlesRequired: 400,
			RewardCashMicros: DollarsToMicros(14_000), RewardLegacyMilli: 180,
		},
		{
			ID: "campus_takeover", Name: "Campus Takeover",
			Desc:          "Seed every campus vending machine in the city.",
			DurationHours: 12, BottlesRequired: 350,
			RewardCashMicros: DollarsToMicros(9_000), RewardLegacyMilli: 250,
		},
		{
			ID: "night_run", Name: "City Night Run",
			Desc:          "Hydration sponsor for the midnight marathon.",
			DurationHours: 8, BottlesRequired: 300,
			RewardCashMicros: DollarsToMicros(11_000), RewardLegacyMilli: 200,
		},
	}
}

func prestigeNodeDefs() []PrestigeNodeDef {
	return []PrestigeNodeDef{
		{
			ID: "legacy_auto_buy", Name: "Legacy Procurement", CostPoints: 1,
			Desc: "Auto-buy is always available, even in fresh runs.",
			Apply: func(s *State) {
				s.AutoBuy = true
				s.PurchasedUpgrades["auto_buy"] = true
			},
		},
		{
			ID: "legacy_storage", Name: "Legacy Warehousing", CostPoints: 2,
			Desc:  "+300 base storage capacity every new run.",
			Apply: func(s *State) { s.StorageCapacity += 300 },
		},
		{
			ID: "legacy_demand", Name: "Legacy Branding", CostPoints: 2,
			Desc:  "Permanent +5% demand modifier.",
			Apply: func(s *State) { s.DemandModBps = ApplyBpsMult(s.DemandModBps, 10_500) },
		},
		{
			ID: "legacy_capacity", Name: "Legacy Line Tuning", CostPoints: 3,
			Desc:  "Permanent +15 bottles/hour capacity.",
			Apply: func(s *State) { s.CapacityPerHour += 15 },
		},
	}
}

func (c *Catalog) Flavor(id string) (FlavorDef, bool) {
	for _, f := range c.Flavors {
		if f.ID == id {
			return f, true
		}
	}
	return FlavorDef{}, false
}

func (c *Catalog) Rival(id string) (RivalDef, bool) {
	for _, r := range c.Rivals {
		if r.ID == id {
			return r, true
		}
	}
	return RivalDef{}, false
}

func (c *Catalog) Upgrade(id string) (UpgradeDef, bool) {
	for _, u := range c.Upgrades {
		if u.ID == id {
			return u, true
		}
	}
	return UpgradeDef{}, false
}

func (c *Catalog) EquipmentByID(id string) (EquipmentDef, bool) {
	for _, e := range c.Equipment {
		if e.ID == id {
			return e, true
		}
	}
	return EquipmentDef{}, false
}

func (c *Catalog) Format(id string) (FormatDef, bool) {
	for _, f := range c.Formats {
		if f.ID == id {
			return f, true
		}
	}
	return FormatDef{}, false
}

func (c *Catalog) Event(id string) (EventDef, bool) {
	for _, e := range c.Events {
		if e.ID == id {
			return e, true
		}
	}
	return EventDef{}, false
}

func (c *Catalog) Mission(id string) (MissionDef, bool) {
	for _, m := range c.Missions {
		if m.ID == id {
			return m, true
		}
	}
	return MissionDef{}, false
}

func (c *Catalog) PrestigeNode(id string) (PrestigeNodeDef, bool) {
	for _, n := range c.PrestigeNodes {
		if n.ID == id {
			return n, true
		}
	}
	return PrestigeNodeDef{}, false
}

// RandomEventPool is the subset of events eligible for the per-tick roll.
func (c *Catalog) RandomEventPool() []EventDef {
	pool := make([]EventDef, 0, len(c.Events))
	for _, e := range c.Events {
		if !e.Triggered {
			pool = append(pool, e)
		}
	}
	return pool
}
