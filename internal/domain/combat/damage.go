package combat

import (
	"fmt"
	"math"
)

// BodyPart identifies where a resolved hit landed.
type BodyPart string

// Hit locations with distinct damage multipliers.
const (
	BodyPartHead  BodyPart = "head"
	BodyPartChest BodyPart = "chest"
	BodyPartLegs  BodyPart = "legs"
)

// Damage model constants.
const (
	falloffRange     = 1000.0 // units at which falloff bottoms out
	minFalloff       = 0.3
	maxArmorFraction = 0.8
	fallbackDamage   = 25.0
)

// weaponDamages maps weapon types to base damage per hit.
var weaponDamages = map[string]float64{
	"AK-74M": 33,
	"SVD":    95,
	"PN":     25,
}

// bodyPartMultipliers scales damage by hit location.
var bodyPartMultipliers = map[BodyPart]float64{
	BodyPartHead:  4,
	BodyPartChest: 1,
	BodyPartLegs:  0.75,
}

// CalculateDamage computes the damage of a resolved hit: base weapon damage
// scaled by linear distance falloff (floored at 30%), hit location, and the
// target's armor (capped at 80% reduction). Unknown weapons fall back to a
// sidearm-grade base and an error so callers can log the bad type.
func CalculateDamage(weaponType string, distance float64, part BodyPart, targetArmor float64) (int, error) {
	damage, ok := weaponDamages[weaponType]
	var err error
	if !ok {
		damage = fallbackDamage
		err = fmt.Errorf("%w: %q", ErrUnknownWeapon, weaponType)
	}

	falloff := math.Max(minFalloff, 1-distance/falloffRange)
	damage *= falloff

	if mult, ok := bodyPartMultipliers[part]; ok {
		damage *= mult
	}

	armorReduction := math.Min(targetArmor/100, maxArmorFraction)
	damage *= 1 - armorReduction

	return int(math.Round(damage)), err
}
