package game

import "math"

// SalesResult is what one sales resolution produced. Demanded and
// MarketShare are observability values; the engine never reads them back.
type SalesResult struct {
	Demanded      float64
	Sold          int64
	RevenueMicros int64
	MarketShare   float64
}

// ChannelShare is the per-channel competitive picture exposed to clients.
type ChannelShare struct {
	ChannelID   string             `json:"channel_id"`
	Demand      float64            `json:"demand"`
	PlayerShare float64            `json:"player_share"`
	RivalShares map[string]float64 `json:"rival_shares"`
}

// shelfPriceMicros is the price the active flavor actually sells at:
// flavor price times the bottle-format multiplier, floored.
func (e *Engine) shelfPriceMicros(st *State, flavorID string) int64 {
	fs, ok := st.Flavors[flavorID]
	if !ok {
		return BaseMarketPriceMicros
	}
	price := fs.PriceMicros
	if f, ok := e.cat.Format(st.ActiveFormatID); ok {
		price = int64(math.Round(float64(price) * f.PriceMult))
	}
	if price < MinEffectivePriceMicros {
		price = MinEffectivePriceMicros
	}
	return price
}

func priceAttractiveness(priceMicros int64) float64 {
	p := MicrosToDollars(priceMicros)
	if p < PriceAttractivenessFloor {
		p = PriceAttractivenessFloor
	}
	return 1.0 / p
}

// channelDemand is the per-channel demand pool scaled by brand power. The
// global demand modifier, event multiplier and prestige demand bonus apply
// once at the end of resolveSales, never here, so nothing is counted twice.
func (e *Engine) channelDemand(st *State) map[string]float64 {
	brand := st.BrandPower()
	out := make(map[string]float64, len(e.cat.Channels))
	for _, ch := range e.cat.Channels {
		out[ch.ID] = ch.BaseDemand * brand
	}
	return out
}

// ChannelShares computes the proportional score allocation per channel:
// score = brandPower x channelStrength x 1/max(floor, price). With no
// positive scores the pool splits evenly.
func (e *Engine) ChannelShares(st *State) []ChannelShare {
	demand := e.channelDemand(st)
	playerPrice := e.shelfPriceMicros(st, st.ActiveFlavorID)
	playerBrand := st.BrandPower()

	out := make([]ChannelShare, 0, len(e.cat.Channels))
	for _, ch := range e.cat.Channels {
		share := ChannelShare{
			ChannelID:   ch.ID,
			Demand:      demand[ch.ID],
			RivalShares: make(map[string]float64, len(e.cat.Rivals)),
		}
		playerScore := playerBrand * priceAttractiveness(playerPrice)
		total := playerScore
		rivalScores := make([]float64, len(e.cat.Rivals))
		if st.RivalsActive {
			for i, r := range e.cat.Rivals {
				price := playerPrice
				if per, ok := st.RivalPrices[r.ID]; ok {
					if p, ok := per[ch.ID]; ok {
						price = p
					}
				}
				strength := r.ChannelStrength[ch.ID]
				if strength == 0 {
					strength = 1.0
				}
				rivalScores[i] = r.BrandPower * strength * priceAttractiveness(price)
				total += rivalScores[i]
			}
		}
		if total < 1e-9 {
			n := 1
			if st.RivalsActive {
				n += len(e.cat.Rivals)
			}
			share.PlayerShare = 1.0 / float64(n)
			if st.RivalsActive {
				for _, r := range e.cat.Rivals {
					share.RivalShares[r.ID] = 1.0 / float64(n)
				}
			}
		} else {
			share.PlayerShare = playerScore / total
			if st.RivalsActive {
				for i, r := range e.cat.Rivals {
					share.RivalShares[r.ID] = rivalScores[i] / total
				}
			}
		}
		out = append(out, share)
	}
	return out
}

// effectiveDemandMult folds the global demand modifier, the active event,
// the prestige demand bonus and promo-equipment synergies into one factor.
func (e *Engine) effectiveDemandMult(st *State) float64 {
	mult := BpsToFloat(st.DemandModBps)
	if st.Event != nil && st.Event.DemandMult > 0 {
		mult *= st.Event.DemandMult
	}
	mult *= 1.0 + float64(LegacyPoints(st.LegacyMilli))*0.01
	if st.OwnedEquipment["music_truck"] && st.Event != nil && st.Event.ID == "heatwave" {
		mult *= 1.10
	}
	return mult
}

// resolveSales allocates channel demand between the player and the rival
// roster, apportions the player's demand across unlocked flavors by their
// own price/score, sells from the shared bottle pool and books revenue.
// Demand the stock cannot cover is lost; there are no backorders.
func (e *Engine) resolveSales(st *State) SalesResult {
	shares := e.ChannelShares(st)

	var totalDemanded, totalPool float64
	for _, sh := range shares {
		totalDemanded += sh.Demand * sh.PlayerShare
		totalPool += sh.Demand
	}

	demanded := totalDemanded * e.effectiveDemandMult(st)
	result := SalesResult{Demanded: totalDemanded}
	if totalPool > 0 {
		var weighted float64
		for _, sh := range shares {
			weighted += sh.Demand * sh.PlayerShare
		}
		result.MarketShare = weighted / totalPool
	}
	if demanded <= 0 || st.Inventory.Bottles <= 0 {
		return result
	}

	// Per-flavor apportionment by each flavor's own score, with one uniform
	// limiting factor so no flavor starves the others beyond its share.
	ids, _ := e.unlockedFlavorWeights(st)
	scores := make([]float64, len(ids))
	var scoreSum float64
	for i, id := range ids {
		def, _ := e.cat.Flavor(id)
		scores[i] = def.DemandMultiplier * priceAttractiveness(e.shelfPriceMicros(st, id))
		scoreSum += scores[i]
	}
	if scoreSum <= 0 {
		return result
	}

	limit := 1.0
	if demanded > float64(st.Inventory.Bottles) {
		limit = float64(st.Inventory.Bottles) / demanded
	}

	var sold int64
	var revenue int64
	for i, id := range ids {
		units := int64(math.Floor(demanded * scores[i] / scoreSum * limit))
		if units <= 0 {
			continue
		}
		fs := st.Flavors[id]
		fs.SoldLifetime += units
		fs.MonthlySold += units
		sold += units
		revenue += units * e.shelfPriceMicros(st, id)
	}
	if sold <= 0 {
		return result
	}
	if sold > st.Inventory.Bottles {
		// Floor rounding keeps this unreachable; guard the invariant anyway.
		sold = st.Inventory.Bottles
	}

	st.Inventory.Bottles -= sold
	st.CashMicros += revenue
	st.Stats.Sold += sold
	st.Stats.RevenueMicros += revenue
	st.Monthly.Sold += sold
	st.Monthly.RevenueMicros += revenue

	result.Sold = sold
	result.RevenueMicros = revenue
	return result
}

// repriceRivals recomputes every rival's per-channel price from the
// player's current shelf price: archetype target plus bounded symmetric
// jitter, clamped to a $0.30 floor. Runs on day rollover and on rival
// activation, never per tick.
func (e *Engine) repriceRivals(st *State) {
	playerPrice := MicrosToDollars(e.shelfPriceMicros(st, st.ActiveFlavorID))
	for _, r := range e.cat.Rivals {
		per := make(map[string]int64, len(e.cat.Channels))
		for _, ch := range e.cat.Channels {
			target := playerPrice * r.Pricing.TargetMult()
			wiggle := (e.rng.Float64() - 0.5) * 0.05 * playerPrice
			price := target + wiggle
			if price < PriceAttractivenessFloor {
				price = PriceAttractivenessFloor
			}
			per[ch.ID] = DollarsToMicros(price)
		}
		st.RivalPrices[r.ID] = per
	}
}
