package launch

import (
	"github.com/ManuelReschke/LaunchBoard/app/models"
	"github.com/ManuelReschke/LaunchBoard/internal/pkg/launchcalendar"
	"github.com/ManuelReschke/LaunchBoard/internal/pkg/tiers"
)

// ConfirmPayment transitions a paid project from payment_pending to
// scheduled. The webhook callback and the verify-on-redirect fast path both
// land here; the conditional update guarantees that only one of them
// performs the transition and the follow-on side effects (homepage flag,
// ledger increment). The loser observes an already-transitioned row and
// reports won=false, which is a correct no-op rather than an error.
func (s *Service) ConfirmPayment(projectID uint) (won bool, err error) {
	project, err := s.repo.GetProjectByID(projectID)
	if err != nil {
		return false, err
	}

	featured := project.LaunchTier == string(tiers.TierPremiumPlus)
	won, err = s.repo.TransitionFromPending(projectID, models.StatusScheduled, featured)
	if err != nil || !won {
		return won, err
	}

	// Side effects run only on the winning transition, so the ledger is
	// incremented at most once per confirmed payment.
	if project.ScheduledAt != nil {
		day := launchcalendar.DayStart(*project.ScheduledAt)
		if err := s.repo.IncrementQuotaLedger(day, project.LaunchTier); err != nil {
			return true, err
		}
	}
	return true, nil
}

// FailPayment marks a payment_pending project as payment_failed after the
// provider reports the checkout expired or unpaid. Idempotent for the same
// reason as ConfirmPayment.
func (s *Service) FailPayment(projectID uint) (bool, error) {
	return s.repo.TransitionFromPending(projectID, models.StatusPaymentFailed, false)
}
