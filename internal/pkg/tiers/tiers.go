// Package tiers holds the static launch tier policy: daily slot limits and
// scheduling windows per tier, plus the per-user daily launch caps. The
// policy is a lookup table so adding a tier is a data change.
package tiers

import (
	"strconv"
	"strings"

	"github.com/ManuelReschke/LaunchBoard/internal/pkg/env"
)

type Tier string

const (
	TierFree        Tier = "free"
	TierPremium     Tier = "premium"
	TierPremiumPlus Tier = "premium_plus"
)

// Policy is the per-tier scheduling rule set.
type Policy struct {
	DailySlotLimit int
	MinDaysAhead   int
	MaxDaysAhead   int
}

// PolicySet is the full tier policy table plus the cross-tier limits.
type PolicySet struct {
	Tiers           map[Tier]Policy
	TotalDailyLimit int
	// UserDailyLimit caps launches per user per day; premium account
	// holders get the raised cap.
	UserDailyLimit        int
	PremiumUserDailyLimit int
}

// BadgeFastTrackMinDays is the min-days-ahead override for badge-verified
// accounts launching on the free tier (next-day launch).
const BadgeFastTrackMinDays = 1

// AllTiers lists the known tiers in display order.
var AllTiers = []Tier{TierFree, TierPremium, TierPremiumPlus}

// ParseTier normalizes a raw tier string. Unknown values map to the free
// tier, mirroring the plan normalization in billing.
func ParseTier(raw string) (Tier, bool) {
	switch Tier(strings.ToLower(strings.TrimSpace(raw))) {
	case TierFree:
		return TierFree, true
	case TierPremium:
		return TierPremium, true
	case TierPremiumPlus:
		return TierPremiumPlus, true
	default:
		return TierFree, false
	}
}

// IsPaid reports whether the tier goes through checkout before scheduling.
func (t Tier) IsPaid() bool {
	return t == TierPremium || t == TierPremiumPlus
}

// Default returns the policy table built from env configuration with
// sensible fallbacks.
func Default() PolicySet {
	free := Policy{
		DailySlotLimit: envInt("LAUNCH_FREE_DAILY_LIMIT", 5),
		MinDaysAhead:   envInt("LAUNCH_FREE_MIN_DAYS_AHEAD", 7),
		MaxDaysAhead:   envInt("LAUNCH_FREE_MAX_DAYS_AHEAD", 90),
	}
	premium := Policy{
		DailySlotLimit: envInt("LAUNCH_PREMIUM_DAILY_LIMIT", 10),
		MinDaysAhead:   envInt("LAUNCH_PREMIUM_MIN_DAYS_AHEAD", 1),
		MaxDaysAhead:   envInt("LAUNCH_PREMIUM_MAX_DAYS_AHEAD", 90),
	}
	premiumPlus := Policy{
		DailySlotLimit: envInt("LAUNCH_PREMIUM_PLUS_DAILY_LIMIT", 3),
		MinDaysAhead:   envInt("LAUNCH_PREMIUM_PLUS_MIN_DAYS_AHEAD", 1),
		MaxDaysAhead:   envInt("LAUNCH_PREMIUM_PLUS_MAX_DAYS_AHEAD", 90),
	}

	total := envInt("LAUNCH_TOTAL_DAILY_LIMIT",
		free.DailySlotLimit+premium.DailySlotLimit+premiumPlus.DailySlotLimit)

	return PolicySet{
		Tiers: map[Tier]Policy{
			TierFree:        free,
			TierPremium:     premium,
			TierPremiumPlus: premiumPlus,
		},
		TotalDailyLimit:       total,
		UserDailyLimit:        envInt("LAUNCH_USER_DAILY_LIMIT", 1),
		PremiumUserDailyLimit: envInt("LAUNCH_PREMIUM_USER_DAILY_LIMIT", 3),
	}
}

// PolicyFor returns the policy for a tier. Unknown tiers fall back to the
// free policy.
func (ps PolicySet) PolicyFor(t Tier) Policy {
	if p, ok := ps.Tiers[t]; ok {
		return p
	}
	return ps.Tiers[TierFree]
}

// WindowFor returns the [min, max] days-ahead scheduling window for a tier.
// Badge-verified accounts on the free tier get the next-day fast track; all
// other rules are unchanged.
func (ps PolicySet) WindowFor(t Tier, badgeVerified bool) (minDays, maxDays int) {
	p := ps.PolicyFor(t)
	minDays, maxDays = p.MinDaysAhead, p.MaxDaysAhead
	if t == TierFree && badgeVerified {
		minDays = BadgeFastTrackMinDays
	}
	return minDays, maxDays
}

// UserLimitFor returns the per-day launch cap for an account.
func (ps PolicySet) UserLimitFor(premiumAccount bool) int {
	if premiumAccount {
		return ps.PremiumUserDailyLimit
	}
	return ps.UserDailyLimit
}

func envInt(key string, def int) int {
	raw := env.GetEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}
