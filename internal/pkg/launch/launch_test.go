package launch

import (
	"fmt"
	"sync"
	"time"

	"github.com/ManuelReschke/LaunchBoard/app/models"
	"github.com/ManuelReschke/LaunchBoard/internal/pkg/launchcalendar"
	"github.com/ManuelReschke/LaunchBoard/internal/pkg/tiers"
	"gorm.io/gorm"
)

// memoryRepo is an in-memory Repository with the same conditional-update
// semantics as the GORM implementation.
type memoryRepo struct {
	mu       sync.Mutex
	nextID   uint
	projects map[uint]*models.Project
	// ledger[day][tier] mirrors the daily quota table.
	ledger map[string]map[string]int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		nextID:   1,
		projects: make(map[uint]*models.Project),
		ledger:   make(map[string]map[string]int),
	}
}

func (r *memoryRepo) addProject(p models.Project) *models.Project {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = r.nextID
	if p.UUID == "" {
		p.UUID = fmt.Sprintf("uuid-%d", p.ID)
	}
	if p.Status == "" {
		p.Status = models.StatusDraft
	}
	p.UpdatedAt = time.Now()
	r.nextID++
	copied := p
	r.projects[p.ID] = &copied
	return &copied
}

func (r *memoryRepo) ledgerCount(day time.Time, tier string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ledger[day.Format(launchcalendar.DateFormat)][tier]
}

func (r *memoryRepo) GetProjectByID(id uint) (*models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *memoryRepo) GetProjectByUUID(uuid string) (*models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.projects {
		if p.UUID == uuid {
			copied := *p
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func inWindow(p *models.Project, from, to time.Time) bool {
	return p.ScheduledAt != nil && !p.ScheduledAt.Before(from) && p.ScheduledAt.Before(to)
}

func (r *memoryRepo) CountScheduledInWindow(tier string, from, to time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, p := range r.projects {
		if p.Status != models.StatusScheduled || !inWindow(p, from, to) {
			continue
		}
		if tier != "" && p.LaunchTier != tier {
			continue
		}
		count++
	}
	return count, nil
}

func (r *memoryRepo) CountUserLaunchesInWindow(userID uint, from, to time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, p := range r.projects {
		if p.UserID != userID || !inWindow(p, from, to) {
			continue
		}
		if p.Status == models.StatusPaymentPending || p.Status == models.StatusPaymentFailed {
			continue
		}
		count++
	}
	return count, nil
}

func (r *memoryRepo) CommitScheduleIfCapacity(projectID uint, scheduledAt time.Time, status string, featured bool, tier string, tierLimit, totalLimit int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[projectID]
	if !ok {
		return false, gorm.ErrRecordNotFound
	}

	from, to := launchcalendar.DayWindow(scheduledAt)
	var tierCount, totalCount int
	for _, other := range r.projects {
		if other.Status != models.StatusScheduled || !inWindow(other, from, to) {
			continue
		}
		totalCount++
		if other.LaunchTier == tier {
			tierCount++
		}
	}
	if tierCount >= tierLimit || totalCount >= totalLimit {
		return false, nil
	}

	at := scheduledAt
	p.ScheduledAt = &at
	p.Status = status
	p.FeaturedOnHomepage = featured
	p.DailyRank = nil
	p.UpdatedAt = time.Now()
	return true, nil
}

func (r *memoryRepo) AdvanceStatusInWindow(fromStatus, toStatus string, from, to time.Time) ([]uint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []uint
	for _, p := range r.projects {
		if p.Status == fromStatus && inWindow(p, from, to) {
			p.Status = toStatus
			p.UpdatedAt = time.Now()
			ids = append(ids, p.ID)
		}
	}
	return ids, nil
}

func (r *memoryRepo) SetDailyRank(projectID uint, rank int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[projectID]
	if !ok {
		return false, gorm.ErrRecordNotFound
	}
	if p.DailyRank != nil {
		return false, nil
	}
	assigned := rank
	p.DailyRank = &assigned
	return true, nil
}

func (r *memoryRepo) TransitionFromPending(projectID uint, toStatus string, featured bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[projectID]
	if !ok {
		return false, gorm.ErrRecordNotFound
	}
	if p.Status != models.StatusPaymentPending {
		return false, nil
	}
	p.Status = toStatus
	p.FeaturedOnHomepage = featured
	p.UpdatedAt = time.Now()
	return true, nil
}

func (r *memoryRepo) DeleteAbandonedPending(cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed int64
	for id, p := range r.projects {
		if p.Status == models.StatusPaymentPending && p.UpdatedAt.Before(cutoff) {
			delete(r.projects, id)
			removed++
		}
	}
	return removed, nil
}

func (r *memoryRepo) IncrementQuotaLedger(day time.Time, tier string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := day.Format(launchcalendar.DateFormat)
	if r.ledger[key] == nil {
		r.ledger[key] = make(map[string]int)
	}
	r.ledger[key][tier]++
	return nil
}

type stubAccounts struct {
	premium map[uint]bool
	badge   map[uint]bool
}

func (a *stubAccounts) IsPremiumAccount(userID uint) (bool, error) { return a.premium[userID], nil }
func (a *stubAccounts) IsBadgeVerified(userID uint) (bool, error)  { return a.badge[userID], nil }

type stubVotes struct {
	counts map[uint]int64
}

func (v *stubVotes) CountVotes(projectID uint) (int64, error) { return v.counts[projectID], nil }

func testPolicies() tiers.PolicySet {
	return tiers.PolicySet{
		Tiers: map[tiers.Tier]tiers.Policy{
			tiers.TierFree:        {DailySlotLimit: 5, MinDaysAhead: 7, MaxDaysAhead: 90},
			tiers.TierPremium:     {DailySlotLimit: 10, MinDaysAhead: 1, MaxDaysAhead: 90},
			tiers.TierPremiumPlus: {DailySlotLimit: 3, MinDaysAhead: 1, MaxDaysAhead: 90},
		},
		TotalDailyLimit:       18,
		UserDailyLimit:        1,
		PremiumUserDailyLimit: 3,
	}
}

// The fixed "now" used across engine tests: 2025-06-01 10:00 UTC.
var testNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func projectDraft(userID uint, tier string) models.Project {
	return models.Project{UserID: userID, LaunchTier: tier, Status: models.StatusDraft}
}

func projectScheduledOn(userID uint, tier string, day time.Time) models.Project {
	at := launchcalendar.AtLaunchHour(day)
	return models.Project{
		UserID:      userID,
		LaunchTier:  tier,
		Status:      models.StatusScheduled,
		ScheduledAt: &at,
	}
}

func projectLaunched(userID uint) models.Project {
	at := launchcalendar.AtLaunchHour(launchcalendar.AddDays(testNow, -1))
	return models.Project{
		UserID:      userID,
		LaunchTier:  models.LaunchTierFree,
		Status:      models.StatusLaunched,
		ScheduledAt: &at,
	}
}

func newTestService(now time.Time) (*Service, *memoryRepo, *stubAccounts, *stubVotes) {
	repo := newMemoryRepo()
	accounts := &stubAccounts{premium: map[uint]bool{}, badge: map[uint]bool{}}
	votes := &stubVotes{counts: map[uint]int64{}}
	svc := NewService(repo, accounts, votes, testPolicies(), launchcalendar.FixedClock{T: now})
	return svc, repo, accounts, votes
}
