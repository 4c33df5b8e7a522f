package tiers

import "testing"

func testSet() PolicySet {
	return PolicySet{
		Tiers: map[Tier]Policy{
			TierFree:        {DailySlotLimit: 5, MinDaysAhead: 7, MaxDaysAhead: 90},
			TierPremium:     {DailySlotLimit: 10, MinDaysAhead: 1, MaxDaysAhead: 90},
			TierPremiumPlus: {DailySlotLimit: 3, MinDaysAhead: 1, MaxDaysAhead: 90},
		},
		TotalDailyLimit:       18,
		UserDailyLimit:        1,
		PremiumUserDailyLimit: 3,
	}
}

func TestParseTier(t *testing.T) {
	tests := []struct {
		raw  string
		want Tier
		ok   bool
	}{
		{"free", TierFree, true},
		{"premium", TierPremium, true},
		{"premium_plus", TierPremiumPlus, true},
		{"  Premium ", TierPremium, true},
		{"PREMIUM_PLUS", TierPremiumPlus, true},
		{"", TierFree, false},
		{"gold", TierFree, false},
		{"premium-plus", TierFree, false},
	}
	for _, tt := range tests {
		got, ok := ParseTier(tt.raw)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseTier(%q) = %v, %v; want %v, %v", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}

func TestIsPaid(t *testing.T) {
	if TierFree.IsPaid() {
		t.Error("free tier must not require checkout")
	}
	if !TierPremium.IsPaid() || !TierPremiumPlus.IsPaid() {
		t.Error("paid tiers must require checkout")
	}
}

func TestPolicyForUnknownTierFallsBackToFree(t *testing.T) {
	ps := testSet()
	if got := ps.PolicyFor(Tier("gold")); got != ps.Tiers[TierFree] {
		t.Errorf("PolicyFor(gold) = %+v, want free policy", got)
	}
}

func TestWindowFor(t *testing.T) {
	ps := testSet()
	tests := []struct {
		name    string
		tier    Tier
		badge   bool
		minDays int
		maxDays int
	}{
		{"free", TierFree, false, 7, 90},
		{"free badge fast track", TierFree, true, 1, 90},
		{"premium", TierPremium, false, 1, 90},
		{"premium badge unchanged", TierPremium, true, 1, 90},
		{"premium plus", TierPremiumPlus, false, 1, 90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			minDays, maxDays := ps.WindowFor(tt.tier, tt.badge)
			if minDays != tt.minDays || maxDays != tt.maxDays {
				t.Errorf("WindowFor(%s, %v) = %d, %d; want %d, %d",
					tt.tier, tt.badge, minDays, maxDays, tt.minDays, tt.maxDays)
			}
		})
	}
}

func TestUserLimitFor(t *testing.T) {
	ps := testSet()
	if got := ps.UserLimitFor(false); got != 1 {
		t.Errorf("UserLimitFor(false) = %d, want 1", got)
	}
	if got := ps.UserLimitFor(true); got != 3 {
		t.Errorf("UserLimitFor(true) = %d, want 3", got)
	}
}

func TestDefaultTotalsSumOfTierLimits(t *testing.T) {
	ps := Default()
	sum := 0
	for _, tier := range AllTiers {
		sum += ps.PolicyFor(tier).DailySlotLimit
	}
	if ps.TotalDailyLimit != sum {
		t.Errorf("TotalDailyLimit = %d, want %d", ps.TotalDailyLimit, sum)
	}
}
