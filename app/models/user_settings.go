package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Account plans. A premium account raises the per-day launch cap; it is
// independent of the tier a single launch is booked on.
const (
	PlanFree    = "free"
	PlanPremium = "premium"
)

// UserSettings stores per-user preferences and plan info
type UserSettings struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	UserID        uint           `gorm:"uniqueIndex" json:"user_id"`
	Plan          string         `gorm:"type:varchar(50);default:'free'" json:"plan"`
	BadgeVerified bool           `gorm:"default:false" json:"badge_verified"`
	NotifyOnRank  bool           `gorm:"default:true" json:"notify_on_rank"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// GetOrCreateUserSettings returns existing settings or creates defaults
func GetOrCreateUserSettings(db *gorm.DB, userID uint) (*UserSettings, error) {
	var us UserSettings
	if err := db.Where("user_id = ?", userID).First(&us).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			us = UserSettings{UserID: userID, Plan: PlanFree}
			if err := db.Create(&us).Error; err != nil {
				return nil, err
			}
			return &us, nil
		}
		return nil, err
	}
	return &us, nil
}

// IsPremiumAccount reports whether the account holds the premium plan.
func (us *UserSettings) IsPremiumAccount() bool {
	return us != nil && strings.ToLower(us.Plan) == PlanPremium
}
