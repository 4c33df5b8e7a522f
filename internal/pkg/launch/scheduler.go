package launch

import (
	"github.com/ManuelReschke/LaunchBoard/app/models"
	"github.com/ManuelReschke/LaunchBoard/internal/pkg/launchcalendar"
	"github.com/ManuelReschke/LaunchBoard/internal/pkg/tiers"
)

// ScheduleResult reports a successful placement.
type ScheduleResult struct {
	ProjectID   uint       `json:"project_id"`
	ProjectUUID string     `json:"project_uuid"`
	Tier        tiers.Tier `json:"tier"`
	Status      string     `json:"status"`
	ScheduledAt string     `json:"scheduled_at"`
	Quota       UserQuota  `json:"quota"`
	Remaining   int        `json:"remaining_slots"`
}

// ScheduleLaunch places a project on a launch date. Validation runs fully
// before the single commit, in order: date parse, tier window, user quota,
// tier availability. Every rejection is a typed error and leaves no partial
// mutation behind.
func (s *Service) ScheduleLaunch(projectUUID string, rawDate string, tier tiers.Tier, userID uint) (*ScheduleResult, error) {
	project, err := s.repo.GetProjectByUUID(projectUUID)
	if err != nil {
		return nil, err
	}
	if project.UserID != userID {
		return nil, ErrNotOwner
	}
	switch project.Status {
	case models.StatusScheduled, models.StatusOngoing, models.StatusLaunched:
		return nil, ErrAlreadyScheduled
	case models.StatusPaymentPending:
		return nil, ErrCheckoutInFlight
	}

	// 1. Date must parse (canonical format, permissive fallback).
	day, err := launchcalendar.ParseDate(rawDate)
	if err != nil {
		return nil, &DateError{Raw: rawDate}
	}

	// 2. Day must fall inside the tier's scheduling window.
	badge := false
	if tier == tiers.TierFree {
		badge, err = s.accounts.IsBadgeVerified(userID)
		if err != nil {
			return nil, err
		}
	}
	minDays, maxDays := s.policies.WindowFor(tier, badge)
	today := s.today()
	earliest := launchcalendar.AddDays(today, minDays)
	latest := launchcalendar.AddDays(today, maxDays)
	if day.Before(earliest) {
		return nil, &WindowError{Date: day, Earliest: earliest, Latest: latest, TooEarly: true}
	}
	if day.After(latest) {
		return nil, &WindowError{Date: day, Earliest: earliest, Latest: latest, TooEarly: false}
	}

	// 3. User daily cap, checked before global capacity so the quota
	// rejection message wins when both would fail.
	quota, err := s.CheckUserLimit(userID, day)
	if err != nil {
		return nil, err
	}
	if !quota.Allowed {
		return nil, &QuotaError{Count: quota.Count, Limit: quota.Limit}
	}

	// 4. Remaining capacity for the tier and for the day as a whole.
	availability, err := s.GetAvailability(day)
	if err != nil {
		return nil, err
	}
	if availability.SlotsFor(tier) <= 0 || availability.TotalSlots <= 0 {
		return nil, ErrNoAvailability
	}

	// Single commit: canonical timestamp at the launch hour, initial
	// status by tier. The repository re-validates capacity inside the
	// commit transaction, so the advisory check above only shapes the
	// error message. Paid tiers stay out of the ledger until the payment
	// reconciler confirms them.
	scheduledAt := launchcalendar.AtLaunchHour(day)
	status := models.StatusScheduled
	if tier.IsPaid() {
		status = models.StatusPaymentPending
	}
	featured := tier == tiers.TierPremiumPlus

	committed, err := s.repo.CommitScheduleIfCapacity(
		project.ID, scheduledAt, status, featured,
		string(tier), s.policies.PolicyFor(tier).DailySlotLimit, s.policies.TotalDailyLimit)
	if err != nil {
		return nil, err
	}
	if !committed {
		return nil, ErrNoAvailability
	}

	if tier == tiers.TierFree {
		if err := s.repo.IncrementQuotaLedger(day, string(tier)); err != nil {
			return nil, err
		}
	}

	return &ScheduleResult{
		ProjectID:   project.ID,
		ProjectUUID: project.UUID,
		Tier:        tier,
		Status:      status,
		ScheduledAt: scheduledAt.Format(launchcalendar.DateFormat),
		Quota:       UserQuota{Allowed: true, Count: quota.Count + 1, Limit: quota.Limit},
		Remaining:   availability.SlotsFor(tier) - 1,
	}, nil
}
