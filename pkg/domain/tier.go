package domain

import (
	"fmt"
)

// Tier represents a tenant entitlement level. It is the single canonical
// ordering used for both subscription gating and module visibility, so
// comparisons between the two are always well-defined.
type Tier string

// Supported tiers, lowest to highest.
const (
	TierTrial      Tier = "trial"
	TierStarter    Tier = "starter"
	TierPro        Tier = "pro"
	TierEnterprise Tier = "enterprise"
)

// tierOrder defines the ordering of tiers for comparison.
// Higher numbers represent higher entitlement.
var tierOrder = map[Tier]int{
	TierTrial:      0,
	TierStarter:    1,
	TierPro:        2,
	TierEnterprise: 3,
}

// ParseTier validates and returns a Tier.
// Returns an error if the tier is unknown.
func ParseTier(s string) (Tier, error) {
	t := Tier(s)
	if _, ok := tierOrder[t]; !ok {
		return "", fmt.Errorf("unknown tier: %s", s)
	}
	return t, nil
}

// IsValid checks if the tier is one of the supported enum values.
func (t Tier) IsValid() bool {
	_, ok := tierOrder[t]
	return ok
}

// AtLeast reports whether t meets or exceeds the required tier.
func (t Tier) AtLeast(required Tier) bool {
	return tierOrder[t] >= tierOrder[required]
}

// String returns the string representation of the tier.
func (t Tier) String() string {
	return string(t)
}
