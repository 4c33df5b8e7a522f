package launch

import (
	"time"

	"github.com/ManuelReschke/LaunchBoard/app/models"
	"github.com/ManuelReschke/LaunchBoard/internal/pkg/launchcalendar"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository is the persistence surface the scheduling engine writes
// through. All status transitions on individual projects are conditional
// updates keyed on the current status, so concurrent writers cannot apply
// the same transition twice.
type Repository interface {
	GetProjectByID(id uint) (*models.Project, error)
	GetProjectByUUID(uuid string) (*models.Project, error)

	// CountScheduledInWindow counts projects with status "scheduled" whose
	// scheduled_at falls inside [from, to). An empty tier counts across
	// all tiers.
	CountScheduledInWindow(tier string, from, to time.Time) (int64, error)

	// CountUserLaunchesInWindow counts a user's projects scheduled inside
	// [from, to), excluding payment_pending and payment_failed rows: an
	// unpaid or failed attempt does not consume quota.
	CountUserLaunchesInWindow(userID uint, from, to time.Time) (int64, error)

	// CommitScheduleIfCapacity re-validates remaining capacity for the
	// tier and the day inside one transaction and writes the single
	// scheduling mutation only if a slot remains. Reports false when a
	// concurrent scheduler took the last slot between the advisory check
	// and the commit, so the per-day limits hold under arbitrary
	// interleavings.
	CommitScheduleIfCapacity(projectID uint, scheduledAt time.Time, status string, featured bool, tier string, tierLimit, totalLimit int) (bool, error)

	// AdvanceStatusInWindow moves every project in fromStatus whose
	// scheduled_at falls inside [from, to) into toStatus and returns the
	// ids that transitioned. Rows already past fromStatus no longer match,
	// which makes re-runs a no-op.
	AdvanceStatusInWindow(fromStatus, toStatus string, from, to time.Time) ([]uint, error)

	// SetDailyRank persists a rank once; an already-ranked project is left
	// untouched and reported as false.
	SetDailyRank(projectID uint, rank int) (bool, error)

	// TransitionFromPending performs the atomic conditional update
	// "set status where status = payment_pending" and reports whether this
	// caller won the transition.
	TransitionFromPending(projectID uint, toStatus string, featured bool) (bool, error)

	// DeleteAbandonedPending removes payment_pending projects not touched
	// since before the cutoff and returns the number removed.
	DeleteAbandonedPending(cutoff time.Time) (int64, error)

	// IncrementQuotaLedger upserts the daily quota ledger row for the day
	// with an atomic in-SQL increment.
	IncrementQuotaLedger(day time.Time, tier string) error
}

// AccountService resolves account attributes the engine needs. Accounts are
// a collaborator, not part of the engine.
type AccountService interface {
	IsPremiumAccount(userID uint) (bool, error)
	IsBadgeVerified(userID uint) (bool, error)
}

// VoteCounter provides vote totals for ranking. The vote store itself is a
// collaborator.
type VoteCounter interface {
	CountVotes(projectID uint) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates the GORM-backed engine repository.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetProjectByID(id uint) (*models.Project, error) {
	var project models.Project
	if err := r.db.First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *gormRepository) GetProjectByUUID(uuid string) (*models.Project, error) {
	return models.FindProjectByUUID(r.db, uuid)
}

func (r *gormRepository) CountScheduledInWindow(tier string, from, to time.Time) (int64, error) {
	q := r.db.Model(&models.Project{}).
		Where("status = ?", models.StatusScheduled).
		Where("scheduled_at >= ? AND scheduled_at < ?", from, to)
	if tier != "" {
		q = q.Where("launch_tier = ?", tier)
	}
	var count int64
	err := q.Count(&count).Error
	return count, err
}

func (r *gormRepository) CountUserLaunchesInWindow(userID uint, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Project{}).
		Where("user_id = ?", userID).
		Where("scheduled_at >= ? AND scheduled_at < ?", from, to).
		Where("status NOT IN ?", []string{models.StatusPaymentPending, models.StatusPaymentFailed}).
		Count(&count).Error
	return count, err
}

func (r *gormRepository) CommitScheduleIfCapacity(projectID uint, scheduledAt time.Time, status string, featured bool, tier string, tierLimit, totalLimit int) (bool, error) {
	committed := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		from, to := launchcalendar.DayWindow(scheduledAt)

		// SELECT ... FOR UPDATE over the day's scheduled rows; InnoDB
		// range locks keep a concurrent commit from slipping a new row
		// into the window until this transaction finishes.
		var tierCount int64
		if err := tx.Model(&models.Project{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("status = ?", models.StatusScheduled).
			Where("scheduled_at >= ? AND scheduled_at < ?", from, to).
			Where("launch_tier = ?", tier).
			Count(&tierCount).Error; err != nil {
			return err
		}
		var totalCount int64
		if err := tx.Model(&models.Project{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("status = ?", models.StatusScheduled).
			Where("scheduled_at >= ? AND scheduled_at < ?", from, to).
			Count(&totalCount).Error; err != nil {
			return err
		}
		if int(tierCount) >= tierLimit || int(totalCount) >= totalLimit {
			return nil
		}

		if err := tx.Model(&models.Project{}).
			Where("id = ?", projectID).
			Updates(map[string]interface{}{
				"scheduled_at":         scheduledAt,
				"status":               status,
				"featured_on_homepage": featured,
				"daily_rank":           nil,
			}).Error; err != nil {
			return err
		}
		committed = true
		return nil
	})
	return committed, err
}

func (r *gormRepository) AdvanceStatusInWindow(fromStatus, toStatus string, from, to time.Time) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Project{}).
		Where("status = ?", fromStatus).
		Where("scheduled_at >= ? AND scheduled_at < ?", from, to).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	// The status guard keeps a concurrent run from double-applying the
	// transition to the same rows.
	err = r.db.Model(&models.Project{}).
		Where("id IN ? AND status = ?", ids, fromStatus).
		Update("status", toStatus).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *gormRepository) SetDailyRank(projectID uint, rank int) (bool, error) {
	res := r.db.Model(&models.Project{}).
		Where("id = ? AND daily_rank IS NULL", projectID).
		Update("daily_rank", rank)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *gormRepository) TransitionFromPending(projectID uint, toStatus string, featured bool) (bool, error) {
	res := r.db.Model(&models.Project{}).
		Where("id = ? AND status = ?", projectID, models.StatusPaymentPending).
		Updates(map[string]interface{}{
			"status":               toStatus,
			"featured_on_homepage": featured,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *gormRepository) DeleteAbandonedPending(cutoff time.Time) (int64, error) {
	res := r.db.Where("status = ? AND updated_at < ?", models.StatusPaymentPending, cutoff).
		Delete(&models.Project{})
	return res.RowsAffected, res.Error
}

func (r *gormRepository) IncrementQuotaLedger(day time.Time, tier string) error {
	return models.IncrementDailyLaunchQuota(r.db, day, tier)
}

type gormAccounts struct {
	db *gorm.DB
}

// NewAccountService resolves premium/badge attributes from user settings.
func NewAccountService(db *gorm.DB) AccountService {
	return &gormAccounts{db: db}
}

func (a *gormAccounts) IsPremiumAccount(userID uint) (bool, error) {
	us, err := models.GetOrCreateUserSettings(a.db, userID)
	if err != nil {
		return false, err
	}
	return us.IsPremiumAccount(), nil
}

func (a *gormAccounts) IsBadgeVerified(userID uint) (bool, error) {
	us, err := models.GetOrCreateUserSettings(a.db, userID)
	if err != nil {
		return false, err
	}
	return us.BadgeVerified, nil
}

type gormVotes struct {
	db *gorm.DB
}

// NewVoteCounter counts votes from the vote table.
func NewVoteCounter(db *gorm.DB) VoteCounter {
	return &gormVotes{db: db}
}

func (v *gormVotes) CountVotes(projectID uint) (int64, error) {
	return models.CountVotesForProject(v.db, projectID)
}
