package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/ManuelReschke/LaunchBoard/app/models"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	Delete(id uint) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
}

// ProjectRepository defines the interface for project-related database operations
type ProjectRepository interface {
	Create(project *models.Project) error
	GetByID(id uint) (*models.Project, error)
	GetByUUID(uuid string) (*models.Project, error)
	GetBySlug(slug string) (*models.Project, error)
	GetByUserID(userID uint, offset, limit int) ([]models.Project, error)
	Update(project *models.Project) error
	Delete(id uint) error
	Count() (int64, error)
	CountByUserID(userID uint) (int64, error)
	Search(query string) ([]models.Project, error)
	// GetLiveProjects returns the projects launching right now, ranked
	// projects first in rank order.
	GetLiveProjects() ([]models.Project, error)
	GetScheduledOn(day time.Time) ([]models.Project, error)
	GetLaunchedProjects(offset, limit int) ([]models.Project, error)
	GetFeaturedProjects(limit int) ([]models.Project, error)
	AddViewCount(id uint, delta uint64) error
	SlugExists(slug string) (bool, error)
	SlugExistsExceptID(slug string, id uint) (bool, error)
}

// VoteRepository defines the interface for vote operations
type VoteRepository interface {
	Toggle(userID, projectID uint) (voted bool, err error)
	CountForProject(projectID uint) (int64, error)
	HasUserVoted(userID, projectID uint) (bool, error)
	CountsForProjects(projectIDs []uint) (map[uint]int64, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	User    UserRepository
	Project ProjectRepository
	Vote    VoteRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:    NewUserRepository(db),
		Project: NewProjectRepository(db),
		Vote:    NewVoteRepository(db),
	}
}
