package repository

import (
	"gorm.io/gorm"

	"github.com/ManuelReschke/LaunchBoard/app/models"
)

// voteRepository implements the VoteRepository interface
type voteRepository struct {
	db *gorm.DB
}

// NewVoteRepository creates a new vote repository instance
func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &voteRepository{db: db}
}

// Toggle creates or removes a vote and reports whether the vote exists
// afterwards.
func (r *voteRepository) Toggle(userID, projectID uint) (bool, error) {
	return models.ToggleVote(r.db, userID, projectID)
}

// CountForProject returns the number of votes on a project
func (r *voteRepository) CountForProject(projectID uint) (int64, error) {
	return models.CountVotesForProject(r.db, projectID)
}

// HasUserVoted reports whether the user has an active vote on the project
func (r *voteRepository) HasUserVoted(userID, projectID uint) (bool, error) {
	return models.HasUserVoted(r.db, userID, projectID)
}

// CountsForProjects returns the vote count per project for a set of IDs.
// Projects without votes are absent from the result.
func (r *voteRepository) CountsForProjects(projectIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(projectIDs))
	if len(projectIDs) == 0 {
		return counts, nil
	}

	type row struct {
		ProjectID uint
		Total     int64
	}
	var rows []row
	err := r.db.Model(&models.Vote{}).
		Select("project_id, COUNT(*) AS total").
		Where("project_id IN ?", projectIDs).
		Group("project_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, rr := range rows {
		counts[rr.ProjectID] = rr.Total
	}
	return counts, nil
}
