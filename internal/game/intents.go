package game

import "fmt"

// SupplyKind names a raw-material stream. Every bottle consumes one of each.
type SupplyKind string

const (
	SupplyPreforms  SupplyKind = "preforms"
	SupplyLabels    SupplyKind = "labels"
	SupplyPackaging SupplyKind = "packaging"
)

func (k SupplyKind) unitCostMicros() (int64, bool) {
	switch k {
	case SupplyPreforms:
		return PreformCostMicros, true
	case SupplyLabels:
		return LabelCostMicros, true
	case SupplyPackaging:
		return PackagingCostMicros, true
	default:
		return 0, false
	}
}

// Intents below are the only mutations outside the tick. Each validates
// against current state and either applies atomically or returns a domain
// error with the state untouched.

func (e *Engine) BuySupplies(st *State, kind SupplyKind, quantity int64) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	unitCost, ok := kind.unitCostMicros()
	if !ok {
		return fmt.Errorf("%w: supply kind %q", ErrUnknownID, kind)
	}
	cost := quantity * ApplyBpsMult(unitCost, st.CostModBps)
	if st.CashMicros < cost {
		e.log(st, SeverityBad, "Not enough cash for %d %s.", quantity, kind)
		return ErrInsufficientFunds
	}
	st.CashMicros -= cost
	st.Stats.ExpensesMicros += cost
	st.Monthly.ExpensesMicros += cost
	switch kind {
	case SupplyPreforms:
		st.Inventory.Preforms += quantity
	case SupplyLabels:
		st.Inventory.Labels += quantity
	case SupplyPackaging:
		st.Inventory.Packaging += quantity
	}
	return nil
}

func (e *Engine) SetActiveFlavor(st *State, flavorID string) error {
	fs, ok := st.Flavors[flavorID]
	if !ok {
		return fmt.Errorf("%w: flavor %q", ErrUnknownID, flavorID)
	}
	if !fs.Unlocked {
		return ErrFlavorLocked
	}
	st.ActiveFlavorID = flavorID
	return nil
}

// SetPrice updates the active flavor's list price.
func (e *Engine) SetPrice(st *State, priceMicros int64) error {
	if priceMicros <= 0 {
		return ErrInvalidPrice
	}
	fs, ok := st.Flavors[st.ActiveFlavorID]
	if !ok {
		return fmt.Errorf("%w: flavor %q", ErrUnknownID, st.ActiveFlavorID)
	}
	fs.PriceMicros = priceMicros
	return nil
}

func (e *Engine) SetBottleFormat(st *State, formatID string) error {
	if _, ok := e.cat.Format(formatID); !ok {
		return fmt.Errorf("%w: format %q", ErrUnknownID, formatID)
	}
	st.ActiveFormatID = formatID
	return nil
}

func (e *Engine) PurchaseUpgrade(st *State, upgradeID string) error {
	def, ok := e.cat.Upgrade(upgradeID)
	if !ok {
		return fmt.Errorf("%w: upgrade %q", ErrUnknownID, upgradeID)
	}
	if st.PurchasedUpgrades[upgradeID] {
		return ErrAlreadyOwned
	}
	for _, req := range def.Requires {
		if !st.PurchasedUpgrades[req] {
			return fmt.Errorf("%w: %s needs %s", ErrMissingPrerequisite, upgradeID, req)
		}
	}
	if st.CashMicros < def.CostMicros {
		e.log(st, SeverityBad, "Not enough cash for upgrade %s.", def.Label)
		return ErrInsufficientFunds
	}
	st.CashMicros -= def.CostMicros
	st.Stats.ExpensesMicros += def.CostMicros
	st.Monthly.ExpensesMicros += def.CostMicros
	st.PurchasedUpgrades[upgradeID] = true
	def.Apply(st)
	e.log(st, SeverityGood, "Upgrade purchased: %s", def.Label)
	return nil
}

func (e *Engine) BuyEquipment(st *State, equipmentID string) error {
	def, ok := e.cat.EquipmentByID(equipmentID)
	if !ok {
		return fmt.Errorf("%w: equipment %q", ErrUnknownID, equipmentID)
	}
	if st.OwnedEquipment[equipmentID] {
		return ErrAlreadyOwned
	}
	if st.CashMicros < def.CostMicros {
		e.log(st, SeverityBad, "Not enough cash for %s.", def.Name)
		return ErrInsufficientFunds
	}
	st.CashMicros -= def.CostMicros
	st.Stats.ExpensesMicros += def.CostMicros
	st.Monthly.ExpensesMicros += def.CostMicros
	st.OwnedEquipment[equipmentID] = true
	def.Apply(st)
	e.log(st, SeverityGood, "Equipment installed: %s", def.Name)
	return nil
}

// StartMission consumes the upfront bottle cost and starts the clock. Only
// one mission runs at a time; completion stages a reward that must be
// claimed separately.
func (e *Engine) StartMission(st *State, missionID string) error {
	if st.Mission.ActiveID != "" {
		return ErrMissionActive
	}
	def, ok := e.cat.Mission(missionID)
	if !ok {
		return fmt.Errorf("%w: mission %q", ErrUnknownID, missionID)
	}
	if st.Inventory.Bottles < def.BottlesRequired {
		e.log(st, SeverityBad, "Not enough bottles for %s.", def.Name)
		return ErrInsufficientStock
	}
	st.Inventory.Bottles -= def.BottlesRequired
	st.Mission.ActiveID = def.ID
	st.Mission.RemainingHours = def.DurationHours
	e.log(st, SeverityInfo, "Mission started: %s (%dh)", def.Name, def.DurationHours)
	return nil
}

func (e *Engine) ClaimMissionReward(st *State) error {
	reward := st.Mission.Pending
	if reward == nil {
		return ErrNoPendingReward
	}
	st.CashMicros += reward.CashMicros
	st.LegacyMilli += reward.LegacyMilli
	st.Mission.Pending = nil
	e.log(st, SeverityGood, "Mission reward claimed: $%.2f and +%.2f Brand Legacy.",
		MicrosToDollars(reward.CashMicros), float64(reward.LegacyMilli)/float64(LegacyMilliScale))
	return nil
}
