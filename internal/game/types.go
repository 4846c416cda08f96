package game

import "sort"

// View types are the read-only JSON shapes served to the API and terminal
// clients. They are built from a locked state and carry no references back
// into it.

type StateView struct {
	CashMicros int64 `json:"cash_micros"`

	Day   int `json:"day"`
	Hour  int `json:"hour"`
	Month int `json:"month"`

	Inventory Inventory `json:"inventory"`

	CapacityPerHour        int64 `json:"capacity_per_hour"`
	EffectiveCapacity      int64 `json:"effective_capacity"`
	StorageCapacity        int64 `json:"storage_capacity"`
	FixedCostMicrosPerHour int64 `json:"fixed_cost_micros_per_hour"`

	DemandModifier float64 `json:"demand_modifier"`
	CostModifier   float64 `json:"cost_modifier"`
	BrandPower     float64 `json:"brand_power"`
	AutoBuy        bool    `json:"auto_buy"`

	ActiveFlavorID string       `json:"active_flavor_id"`
	ActiveFormatID string       `json:"active_format_id"`
	Flavors        []FlavorView `json:"flavors"`

	Event   *ActiveEvent `json:"event,omitempty"`
	Mission MissionView  `json:"mission"`

	PurchasedUpgrades    []string `json:"purchased_upgrades"`
	OwnedEquipment       []string `json:"owned_equipment"`
	UnlockedAchievements []string `json:"unlocked_achievements"`
	PrestigeNodes        []string `json:"prestige_nodes"`

	LegacyPoints     float64 `json:"legacy_points"`
	AvailablePoints  int64   `json:"available_points"`
	Resets           int64   `json:"resets"`
	PrestigeEligible bool    `json:"prestige_eligible"`

	Stats   Totals `json:"stats"`
	Monthly Totals `json:"monthly"`

	LastProduced      int64   `json:"last_produced"`
	LastSold          int64   `json:"last_sold"`
	LastRevenueMicros int64   `json:"last_revenue_micros"`
	LastDemandLevel   float64 `json:"last_demand_level"`
	LastMarketShare   float64 `json:"last_market_share"`
}

type FlavorView struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Unlocked         bool   `json:"unlocked"`
	Active           bool   `json:"active"`
	PriceMicros      int64  `json:"price_micros"`
	ProducedLifetime int64  `json:"produced_lifetime"`
	SoldLifetime     int64  `json:"sold_lifetime"`
	MonthlyProduced  int64  `json:"monthly_produced"`
	MonthlySold      int64  `json:"monthly_sold"`
}

type MissionView struct {
	ActiveID       string         `json:"active_id,omitempty"`
	ActiveName     string         `json:"active_name,omitempty"`
	RemainingHours int            `json:"remaining_hours"`
	Pending        *MissionReward `json:"pending,omitempty"`
}

type MarketView struct {
	DemandLevel  float64        `json:"demand_level"`
	MarketShare  float64        `json:"market_share"`
	RivalsActive bool           `json:"rivals_active"`
	Channels     []ChannelShare `json:"channels"`
	Rivals       []RivalView    `json:"rivals"`
}

type RivalView struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	BrandPower    float64          `json:"brand_power"`
	ChannelPrices map[string]int64 `json:"channel_prices"`
}

func buildStateView(st *State, eng *Engine) StateView {
	cat := eng.Catalog()
	view := StateView{
		CashMicros:             st.CashMicros,
		Day:                    st.Day,
		Hour:                   st.Hour,
		Month:                  st.MonthIndex(),
		Inventory:              st.Inventory,
		CapacityPerHour:        st.CapacityPerHour,
		EffectiveCapacity:      eng.EffectiveCapacity(st),
		StorageCapacity:        st.StorageCapacity,
		FixedCostMicrosPerHour: st.FixedCostMicrosPerHour,
		DemandModifier:         BpsToFloat(st.DemandModBps),
		CostModifier:           BpsToFloat(st.CostModBps),
		BrandPower:             st.BrandPower(),
		AutoBuy:                st.AutoBuy,
		ActiveFlavorID:         st.ActiveFlavorID,
		ActiveFormatID:         st.ActiveFormatID,
		LegacyPoints:           float64(st.LegacyMilli) / float64(LegacyMilliScale),
		AvailablePoints:        st.AvailableLegacyPoints(),
		Resets:                 st.Resets,
		PrestigeEligible:       eng.PrestigeEligible(st),
		Stats:                  st.Stats,
		Monthly:                st.Monthly,
		LastProduced:           st.LastProduced,
		LastSold:               st.LastSold,
		LastRevenueMicros:      st.LastRevenueMicros,
		LastDemandLevel:        st.LastDemandLevel,
		LastMarketShare:        st.LastMarketShare,
	}
	if st.Event != nil {
		ev := *st.Event
		view.Event = &ev
	}
	view.Mission = MissionView{
		ActiveID:       st.Mission.ActiveID,
		RemainingHours: st.Mission.RemainingHours,
	}
	if st.Mission.ActiveID != "" {
		if def, ok := cat.Mission(st.Mission.ActiveID); ok {
			view.Mission.ActiveName = def.Name
		}
	}
	if st.Mission.Pending != nil {
		r := *st.Mission.Pending
		view.Mission.Pending = &r
	}
	for _, def := range cat.Flavors {
		fs := st.Flavors[def.ID]
		view.Flavors = append(view.Flavors, FlavorView{
			ID:               def.ID,
			Name:             def.Name,
			Unlocked:         fs.Unlocked,
			Active:           def.ID == st.ActiveFlavorID,
			PriceMicros:      fs.PriceMicros,
			ProducedLifetime: fs.ProducedLifetime,
			SoldLifetime:     fs.SoldLifetime,
			MonthlyProduced:  fs.MonthlyProduced,
			MonthlySold:      fs.MonthlySold,
		})
	}
	view.PurchasedUpgrades = sortedKeys(st.PurchasedUpgrades)
	view.OwnedEquipment = sortedKeys(st.OwnedEquipment)
	view.UnlockedAchievements = sortedKeys(st.UnlockedAchievements)
	view.PrestigeNodes = sortedKeys(st.PrestigeNodes)
	return view
}

func buildMarketView(st *State, eng *Engine) MarketView {
	view := MarketView{
		DemandLevel:  st.LastDemandLevel,
		MarketShare:  st.LastMarketShare,
		RivalsActive: st.RivalsActive,
		Channels:     eng.ChannelShares(st),
	}
	if !st.RivalsActive {
		return view
	}
	for _, r := range eng.Catalog().Rivals {
		rv := RivalView{
			ID:            r.ID,
			Name:          r.Name,
			BrandPower:    r.BrandPower,
			ChannelPrices: make(map[string]int64),
		}
		for ch, p := range st.RivalPrices[r.ID] {
			rv.ChannelPrices[ch] = p
		}
		view.Rivals = append(view.Rivals, rv)
	}
	return view
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k, v := range set {
		if v {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
