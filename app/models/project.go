package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Launch tiers. Each tier has its own daily capacity and scheduling window,
// configured in the tiers package.
const (
	LaunchTierFree        = "free"
	LaunchTierPremium     = "premium"
	LaunchTierPremiumPlus = "premium_plus"
)

// Project launch statuses. Intake creates a draft; free tier projects go straight to "scheduled";
// paid tiers pass through "payment_pending" until checkout is confirmed.
const (
	StatusDraft          = "draft"
	StatusPaymentPending = "payment_pending"
	StatusPaymentFailed  = "payment_failed"
	StatusScheduled      = "scheduled"
	StatusOngoing        = "ongoing"
	StatusLaunched       = "launched"
)

type Project struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	UUID               string         `gorm:"type:varchar(36);uniqueIndex" json:"uuid"`
	Slug               string         `gorm:"type:varchar(150);uniqueIndex" json:"slug" validate:"required,min=3,max=150"`
	Name               string         `gorm:"type:varchar(150)" json:"name" validate:"required,min=2,max=150"`
	Tagline            string         `gorm:"type:varchar(255)" json:"tagline" validate:"max=255"`
	WebsiteURL         string         `gorm:"type:varchar(255)" json:"website_url" validate:"required,url,max=255"`
	Description        string         `gorm:"type:text" json:"description" validate:"max=5000"`
	UserID             uint           `gorm:"not null;index" json:"user_id"`
	User               User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	LaunchTier         string         `gorm:"type:varchar(20);not null;default:'free';index" json:"launch_tier" validate:"oneof=free premium premium_plus"`
	Status             string         `gorm:"type:varchar(20);not null;default:'draft';index:idx_projects_status_scheduled_at,priority:1" json:"status" validate:"oneof=draft payment_pending payment_failed scheduled ongoing launched"`
	ScheduledAt        *time.Time     `gorm:"type:timestamp;default:null;index:idx_projects_status_scheduled_at,priority:2" json:"scheduled_at,omitempty"`
	FeaturedOnHomepage bool           `gorm:"default:false" json:"featured_on_homepage"`
	DailyRank          *int           `gorm:"default:null" json:"daily_rank,omitempty"`
	CheckoutSessionID  string         `gorm:"type:varchar(191);default:'';index" json:"-"`
	ViewCount          uint64         `gorm:"default:0" json:"view_count"`
	CreatedAt          time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *Project) Validate() error {
	v := validator.New()

	return v.Struct(p)
}

// BeforeCreate assigns the public identifier.
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == "" {
		p.UUID = uuid.New().String()
	}
	return nil
}

// IsPaidTier reports whether the project sits on a tier that requires
// checkout before it is truly scheduled.
func (p *Project) IsPaidTier() bool {
	return p.LaunchTier == LaunchTierPremium || p.LaunchTier == LaunchTierPremiumPlus
}

// IsLive reports whether the project is inside or past its exhibition day.
func (p *Project) IsLive() bool {
	return p.Status == StatusOngoing || p.Status == StatusLaunched
}

// FindProjectByUUID looks up a project by its public identifier.
func FindProjectByUUID(db *gorm.DB, id string) (*Project, error) {
	var project Project
	if err := db.Where("uuid = ?", id).First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}
