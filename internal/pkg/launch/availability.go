package launch

import (
	"time"

	"github.com/ManuelReschke/LaunchBoard/internal/pkg/launchcalendar"
	"github.com/ManuelReschke/LaunchBoard/internal/pkg/tiers"
)

// Availability describes the remaining launch slots for one calendar day.
// Counts are recomputed from project rows on every call; the daily quota
// ledger is never consulted here.
type Availability struct {
	Date             time.Time `json:"date"`
	FreeSlots        int       `json:"free_slots"`
	PremiumSlots     int       `json:"premium_slots"`
	PremiumPlusSlots int       `json:"premium_plus_slots"`
	TotalSlots       int       `json:"total_slots"`
}

// SlotsFor returns the remaining slots for a tier on this day.
func (a Availability) SlotsFor(tier tiers.Tier) int {
	switch tier {
	case tiers.TierPremium:
		return a.PremiumSlots
	case tiers.TierPremiumPlus:
		return a.PremiumPlusSlots
	default:
		return a.FreeSlots
	}
}

// GetAvailability computes the remaining slots per tier plus the cross-tier
// total for the UTC day containing date.
func (s *Service) GetAvailability(date time.Time) (Availability, error) {
	from, to := launchcalendar.DayWindow(date)

	var counts [3]int64
	for i, tier := range tiers.AllTiers {
		n, err := s.repo.CountScheduledInWindow(string(tier), from, to)
		if err != nil {
			return Availability{}, err
		}
		counts[i] = n
	}
	total := counts[0] + counts[1] + counts[2]

	return Availability{
		Date:             from,
		FreeSlots:        remaining(s.policies.PolicyFor(tiers.TierFree).DailySlotLimit, counts[0]),
		PremiumSlots:     remaining(s.policies.PolicyFor(tiers.TierPremium).DailySlotLimit, counts[1]),
		PremiumPlusSlots: remaining(s.policies.PolicyFor(tiers.TierPremiumPlus).DailySlotLimit, counts[2]),
		TotalSlots:       remaining(s.policies.TotalDailyLimit, total),
	}, nil
}

// GetAvailabilityRange returns one availability record per selectable date
// for a tier, clamped to [today+minDaysAhead, today+maxDaysAhead]. Badge
// verification shortens the free-tier window per the fast-track rule.
// A non-zero start or end narrows the range further; dates outside the
// tier window are never included.
func (s *Service) GetAvailabilityRange(tier tiers.Tier, badgeVerified bool, start, end time.Time) ([]Availability, error) {
	minDays, maxDays := s.policies.WindowFor(tier, badgeVerified)
	today := s.today()

	first := launchcalendar.AddDays(today, minDays)
	last := launchcalendar.AddDays(today, maxDays)
	if !start.IsZero() {
		if day := launchcalendar.DayStart(start); day.After(first) {
			first = day
		}
	}
	if !end.IsZero() {
		if day := launchcalendar.DayStart(end); day.Before(last) {
			last = day
		}
	}

	out := []Availability{}
	for day := first; !day.After(last); day = launchcalendar.AddDays(day, 1) {
		a, err := s.GetAvailability(day)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func remaining(limit int, used int64) int {
	r := limit - int(used)
	if r < 0 {
		return 0
	}
	return r
}
