package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validProject() *Project {
	return &Project{
		Slug:       "rocket-notes",
		Name:       "Rocket Notes",
		WebsiteURL: "https://rocketnotes.example.com",
		UserID:     1,
		LaunchTier: LaunchTierFree,
		Status:     StatusDraft,
	}
}

func TestProjectValidate(t *testing.T) {
	assert.NoError(t, validProject().Validate())

	p := validProject()
	p.WebsiteURL = "not a url"
	assert.Error(t, p.Validate())

	p = validProject()
	p.LaunchTier = "platinum"
	assert.Error(t, p.Validate())

	p = validProject()
	p.Status = "archived"
	assert.Error(t, p.Validate())
}

func TestProjectIsPaidTier(t *testing.T) {
	p := validProject()
	assert.False(t, p.IsPaidTier())

	p.LaunchTier = LaunchTierPremium
	assert.True(t, p.IsPaidTier())

	p.LaunchTier = LaunchTierPremiumPlus
	assert.True(t, p.IsPaidTier())
}

func TestProjectIsLive(t *testing.T) {
	p := validProject()
	for status, want := range map[string]bool{
		StatusDraft:          false,
		StatusPaymentPending: false,
		StatusPaymentFailed:  false,
		StatusScheduled:      false,
		StatusOngoing:        true,
		StatusLaunched:       true,
	} {
		p.Status = status
		assert.Equal(t, want, p.IsLive(), status)
	}
}
