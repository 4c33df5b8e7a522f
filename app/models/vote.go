package models

import (
	"time"

	"gorm.io/gorm"
)

// Vote is an upvote on a project. One vote per user per project, enforced
// by the unique index. Votes are removed for real on un-vote so the index
// never blocks a re-vote.
type Vote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index:idx_votes_user_project,unique,priority:1" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ProjectID uint      `gorm:"index:idx_votes_user_project,unique,priority:2;index" json:"project_id"`
	Project   Project   `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// ToggleVote creates or removes a vote and reports whether the vote exists
// afterwards.
func ToggleVote(db *gorm.DB, userID, projectID uint) (bool, error) {
	var vote Vote
	result := db.Where("user_id = ? AND project_id = ?", userID, projectID).First(&vote)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			newVote := Vote{
				UserID:    userID,
				ProjectID: projectID,
			}
			return true, db.Create(&newVote).Error
		}
		return false, result.Error
	}

	return false, db.Delete(&vote).Error
}

// CountVotesForProject returns the number of votes for a project.
func CountVotesForProject(db *gorm.DB, projectID uint) (int64, error) {
	var count int64
	err := db.Model(&Vote{}).Where("project_id = ?", projectID).Count(&count).Error
	return count, err
}

// HasUserVoted reports whether the user currently has a vote on the project.
func HasUserVoted(db *gorm.DB, userID, projectID uint) (bool, error) {
	var count int64
	err := db.Model(&Vote{}).Where("user_id = ? AND project_id = ?", userID, projectID).Count(&count).Error
	return count > 0, err
}
