package domain

import (
	"fmt"
	"strings"
	"time"
)

// Tier represents a seller's service level, which determines how long a
// fanned-out request is withheld before becoming visible to that seller.
type Tier string

const (
	TierPremium  Tier = "PREMIUM"
	TierStandard Tier = "STANDARD"
	TierBasic    Tier = "BASIC"
)

func (t Tier) String() string { return string(t) }

func (t Tier) IsValid() bool {
	switch t {
	case TierPremium, TierStandard, TierBasic:
		return true
	}
	return false
}

func ParseTierFromString(s string) (Tier, error) {
	t := Tier(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("%w: invalid tier %q", ErrValidation, s)
	}
	return t, nil
}

// Default request delays per tier. Premium sellers see requests immediately.
const (
	PremiumRequestDelay  = 0
	StandardRequestDelay = 6 * time.Hour
	BasicRequestDelay    = 24 * time.Hour
)

// RequestDelay returns the default visibility delay for the tier.
func (t Tier) RequestDelay() time.Duration {
	switch t {
	case TierPremium:
		return PremiumRequestDelay
	case TierStandard:
		return StandardRequestDelay
	default:
		return BasicRequestDelay
	}
}

// SellerTier is the persisted tier assignment for one seller.
type SellerTier struct {
	SellerID  string
	Tier      Tier
	UpdatedAt time.Time
}
