package game

import (
	"errors"
	"math"
)

const (
	MicrosPerDollar = int64(1_000_000)

	// One basis-point scale for all multiplicative modifiers: 10_000 = x1.0.
	BpsScale = int64(10_000)

	// Brand legacy is tracked in milli-points: 1_000 = 1.0 points.
	LegacyMilliScale = int64(1_000)

	BaseMarketPriceMicros   = int64(2_000_000) // $2.00
	BaseCapacityPerLine     = int64(25)
	BaseStorageCapacity     = int64(2_000)
	BaseFixedCostMicros     = int64(40) * MicrosPerDollar
	StarterCashMicros       = int64(2_500) * MicrosPerDollar
	MinEffectivePriceMicros = int64(100_000) // $0.10 floor after discounts

	PreformCostMicros   = int64(250_000) // per unit
	LabelCostMicros     = int64(50_000)
	PackagingCostMicros = int64(100_000)

	// Demand scoring floor: price attractiveness is 1/max($0.30, price).
	PriceAttractivenessFloor = 0.30

	// Rival roster wakes up once the player is big enough to notice.
	RivalActivationRevenueMicros = int64(40_000) * MicrosPerDollar
	RivalActivationUnitsSold     = int64(8_000)

	// Prestige gating and seeding.
	PrestigeMinLegacyMilli   = int64(1_000)
	PrestigeMinRevenueMicros = int64(50_000) * MicrosPerDollar
	PrestigeGainMilli        = int64(1_000)

	EventTriggerChance = 0.03 // per idle tick

	DaysPerMonth    = 30
	HoursPerDay     = 24
	MaxOfflineTicks = 3600
)

var (
	ErrInsufficientFunds        = errors.New("insufficient funds")
	ErrInsufficientStock        = errors.New("insufficient finished stock")
	ErrUnknownID                = errors.New("unknown catalog id")
	ErrFlavorLocked             = errors.New("flavor not unlocked yet")
	ErrAlreadyOwned             = errors.New("already owned")
	ErrMissingPrerequisite      = errors.New("missing prerequisite upgrade")
	ErrMissionActive            = errors.New("a mission is already running")
	ErrNoPendingReward          = errors.New("no mission reward to claim")
	ErrNotEligible              = errors.New("prestige requirements not met")
	ErrInsufficientLegacyPoints = errors.New("not enough unspent legacy points")
	ErrInvalidQuantity          = errors.New("quantity must be > 0")
	ErrInvalidPrice             = errors.New("price must be > 0")
)

func DollarsToMicros(v float64) int64 {
	return int64(math.Round(v * float64(MicrosPerDollar)))
}

func MicrosToDollars(v int64) float64 {
	return float64(v) / float64(MicrosPerDollar)
}

func BpsToFloat(v int64) float64 {
	return float64(v) / float64(BpsScale)
}

// ApplyBpsMult compounds a bps-scaled modifier by a bps-scaled multiplier,
// e.g. ApplyBpsMult(10_000, 11_500) = 11_500 (x1.0 then x1.15).
func ApplyBpsMult(value, multBps int64) int64 {
	return value * multBps / BpsScale
}

// LegacyPoints returns whole brand-legacy points, floored.
func LegacyPoints(legacyMilli int64) int64 {
	if legacyMilli <= 0 {
		return 0
	}
	return legacyMilli / LegacyMilliScale
}
