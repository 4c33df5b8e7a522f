package launch

import (
	"github.com/ManuelReschke/LaunchBoard/app/models"
	"github.com/ManuelReschke/LaunchBoard/internal/pkg/launchcalendar"
)

// CycleResult summarizes one lifecycle advancer run.
type CycleResult struct {
	MovedToOngoing  []uint          `json:"moved_to_ongoing"`
	MovedToLaunched []uint          `json:"moved_to_launched"`
	Ranked          []RankedProject `json:"ranked"`
	SweptPayments   int64           `json:"swept_payments"`
}

// AdvanceScheduledToOngoing moves every scheduled project whose launch day
// is today into the ongoing status.
func (s *Service) AdvanceScheduledToOngoing() ([]uint, error) {
	from, to := launchcalendar.DayWindow(s.clock.Now())
	return s.repo.AdvanceStatusInWindow(models.StatusScheduled, models.StatusOngoing, from, to)
}

// AdvanceOngoingToLaunched moves every ongoing project whose launch day was
// yesterday into the launched status and returns the transitioned ids so
// ranking can run over exactly this set.
func (s *Service) AdvanceOngoingToLaunched() ([]uint, error) {
	yesterday := launchcalendar.AddDays(s.clock.Now(), -1)
	from, to := launchcalendar.DayWindow(yesterday)
	return s.repo.AdvanceStatusInWindow(models.StatusOngoing, models.StatusLaunched, from, to)
}

// SweepAbandonedPayments deletes payment_pending projects whose checkout
// was started more than AbandonedPaymentTTL ago and never completed or
// explicitly failed.
func (s *Service) SweepAbandonedPayments() (int64, error) {
	cutoff := s.clock.Now().Add(-AbandonedPaymentTTL)
	return s.repo.DeleteAbandonedPending(cutoff)
}

// RunLaunchCycle performs one full advancer run in order: scheduled to
// ongoing, ongoing to launched, ranking over the freshly launched set, then
// the abandoned-payment sweep. Each phase only touches rows still in its
// source status, so re-running after a partial failure re-applies cleanly.
// The two day windows are disjoint, so no project can transition twice in
// one run.
func (s *Service) RunLaunchCycle() (*CycleResult, error) {
	result := &CycleResult{}

	ongoing, err := s.AdvanceScheduledToOngoing()
	if err != nil {
		return nil, err
	}
	result.MovedToOngoing = ongoing

	launched, err := s.AdvanceOngoingToLaunched()
	if err != nil {
		return nil, err
	}
	result.MovedToLaunched = launched

	ranked, err := s.ComputeRanking(launched)
	if err != nil {
		return nil, err
	}
	result.Ranked = ranked

	swept, err := s.SweepAbandonedPayments()
	if err != nil {
		return nil, err
	}
	result.SweptPayments = swept

	return result, nil
}
