// Package launch implements the launch scheduling and ranking engine: slot
// allocation across tiers, the time-driven status lifecycle, payment
// reconciliation and the tie-aware daily ranking.
package launch

import (
	"time"

	"github.com/ManuelReschke/LaunchBoard/internal/pkg/launchcalendar"
	"github.com/ManuelReschke/LaunchBoard/internal/pkg/tiers"
	"gorm.io/gorm"
)

// AbandonedPaymentTTL is how long a payment_pending project may sit
// untouched before the sweep removes it.
const AbandonedPaymentTTL = 24 * time.Hour

// Service is the scheduling engine. It is short-lived-request friendly:
// all state lives in the data store, concurrency control is per-row
// conditional updates.
type Service struct {
	repo     Repository
	accounts AccountService
	votes    VoteCounter
	policies tiers.PolicySet
	clock    launchcalendar.Clock
}

// NewService wires the engine from injected collaborators.
func NewService(repo Repository, accounts AccountService, votes VoteCounter, policies tiers.PolicySet, clock launchcalendar.Clock) *Service {
	return &Service{
		repo:     repo,
		accounts: accounts,
		votes:    votes,
		policies: policies,
		clock:    clock,
	}
}

// NewServiceFromDB creates the engine over a GORM handle with the
// env-configured tier policy and the real clock.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(
		NewRepository(db),
		NewAccountService(db),
		NewVoteCounter(db),
		tiers.Default(),
		launchcalendar.RealClock{},
	)
}

// Policies exposes the active tier policy table (read-only use).
func (s *Service) Policies() tiers.PolicySet {
	return s.policies
}

func (s *Service) today() time.Time {
	return launchcalendar.DayStart(s.clock.Now())
}
