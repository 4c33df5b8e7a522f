package launch

import (
	"time"

	"github.com/ManuelReschke/LaunchBoard/internal/pkg/launchcalendar"
)

// UserQuota is the result of the per-user daily launch cap check.
type UserQuota struct {
	Allowed bool `json:"allowed"`
	Count   int  `json:"count"`
	Limit   int  `json:"limit"`
}

// CheckUserLimit reports whether the user may add another launch on the
// given day. Premium accounts get the raised cap; payment_pending and
// payment_failed rows do not count against the quota.
func (s *Service) CheckUserLimit(userID uint, date time.Time) (UserQuota, error) {
	premium, err := s.accounts.IsPremiumAccount(userID)
	if err != nil {
		return UserQuota{}, err
	}
	limit := s.policies.UserLimitFor(premium)

	from, to := launchcalendar.DayWindow(date)
	count, err := s.repo.CountUserLaunchesInWindow(userID, from, to)
	if err != nil {
		return UserQuota{}, err
	}

	return UserQuota{
		Allowed: int(count) < limit,
		Count:   int(count),
		Limit:   limit,
	}, nil
}
