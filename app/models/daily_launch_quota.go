package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DailyLaunchQuota mirrors the committed launch counts per calendar day.
// It is a derived audit trail: the availability path recomputes counts from
// project rows and never reads this table. Rows are written on free-tier
// commits and on confirmed paid commits.
type DailyLaunchQuota struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	QuotaDate        time.Time `gorm:"type:date;uniqueIndex" json:"quota_date"`
	FreeCount        int       `gorm:"not null;default:0" json:"free_count"`
	PremiumCount     int       `gorm:"not null;default:0" json:"premium_count"`
	PremiumPlusCount int       `gorm:"not null;default:0" json:"premium_plus_count"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (DailyLaunchQuota) TableName() string {
	return "daily_launch_quotas"
}

// quotaColumnForTier maps a launch tier to its ledger column.
func quotaColumnForTier(tier string) (string, error) {
	switch tier {
	case LaunchTierFree:
		return "free_count", nil
	case LaunchTierPremium:
		return "premium_count", nil
	case LaunchTierPremiumPlus:
		return "premium_plus_count", nil
	default:
		return "", fmt.Errorf("unknown launch tier %q", tier)
	}
}

// IncrementDailyLaunchQuota creates the ledger row for the day with count 1
// or atomically increments the tier column. The increment happens in SQL,
// not read-modify-write, so concurrent schedulers cannot lose updates.
func IncrementDailyLaunchQuota(db *gorm.DB, day time.Time, tier string) error {
	column, err := quotaColumnForTier(tier)
	if err != nil {
		return err
	}

	row := DailyLaunchQuota{QuotaDate: day}
	switch tier {
	case LaunchTierFree:
		row.FreeCount = 1
	case LaunchTierPremium:
		row.PremiumCount = 1
	case LaunchTierPremiumPlus:
		row.PremiumPlusCount = 1
	}

	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "quota_date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			column: gorm.Expr(column + " + 1"),
		}),
	}).Create(&row).Error
}

// GetDailyLaunchQuota returns the ledger row for a day, if present.
func GetDailyLaunchQuota(db *gorm.DB, day time.Time) (*DailyLaunchQuota, error) {
	var row DailyLaunchQuota
	if err := db.Where("quota_date = ?", day).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}
