package game

// PrestigeEligible reports whether the current run qualifies for a brand
// relaunch: at least one full legacy point and $50k of lifetime revenue.
func (e *Engine) PrestigeEligible(st *State) bool {
	return st.LegacyMilli >= PrestigeMinLegacyMilli && st.Stats.RevenueMicros >= PrestigeMinRevenueMicros
}

// PerformPrestige replaces the whole state with a fresh run seeded by the
// accumulated brand legacy. The old aggregate is not mutated; callers must
// adopt the returned state. Carried across the reset: legacy total (plus
// the fixed one-point relaunch gain), spent-point counter, owned prestige
// nodes (effects re-applied to the fresh state) and achievements.
func (e *Engine) PerformPrestige(st *State) (*State, error) {
	if !e.PrestigeEligible(st) {
		return nil, ErrNotEligible
	}

	next := NewState(e.cat)
	next.LegacyMilli = st.LegacyMilli + PrestigeGainMilli
	next.LegacySpentPoints = st.LegacySpentPoints
	next.Resets = st.Resets + 1
	next.UnlockedAchievements = copyBoolSet(st.UnlockedAchievements)
	next.PrestigeNodes = copyBoolSet(st.PrestigeNodes)

	points := LegacyPoints(next.LegacyMilli)
	next.CashMicros = DollarsToMicros(1500.0 * (1.0 + float64(points)*0.25))
	next.CapacityPerHour = BaseCapacityPerLine + 5*points
	next.DemandModBps = BpsScale + 1_000*points

	for _, node := range e.cat.PrestigeNodes {
		if next.PrestigeNodes[node.ID] {
			node.Apply(next)
		}
	}

	e.journal.Push(next.Day, next.Hour, SeverityGood,
		"Brand relaunched. Legacy %.2f carries into this run and boosts everything you do.",
		float64(next.LegacyMilli)/float64(LegacyMilliScale))
	return next, nil
}

// BuyPrestigeNode spends unspent whole legacy points on a permanent node.
// The node's effect applies immediately and again after every future reset.
func (e *Engine) BuyPrestigeNode(st *State, nodeID string) error {
	node, ok := e.cat.PrestigeNode(nodeID)
	if !ok {
		return ErrUnknownID
	}
	if st.PrestigeNodes[nodeID] {
		return ErrAlreadyOwned
	}
	if st.AvailableLegacyPoints() < node.CostPoints {
		return ErrInsufficientLegacyPoints
	}
	st.LegacySpentPoints += node.CostPoints
	st.PrestigeNodes[nodeID] = true
	node.Apply(st)
	e.log(st, SeverityGood, "Legacy node unlocked: %s", node.Name)
	return nil
}
