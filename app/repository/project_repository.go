package repository

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ManuelReschke/LaunchBoard/app/models"
	"github.com/ManuelReschke/LaunchBoard/internal/pkg/launchcalendar"
)

// projectRepository implements the ProjectRepository interface
type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new project repository instance
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

// Create creates a new project in the database
func (r *projectRepository) Create(project *models.Project) error {
	return r.db.Create(project).Error
}

// GetByID retrieves a project by its ID
func (r *projectRepository) GetByID(id uint) (*models.Project, error) {
	var project models.Project
	err := r.db.First(&project, id).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// GetByUUID retrieves a project by its UUID
func (r *projectRepository) GetByUUID(uuid string) (*models.Project, error) {
	var project models.Project
	err := r.db.Where("uuid = ?", uuid).First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// GetBySlug retrieves a project by its slug
func (r *projectRepository) GetBySlug(slug string) (*models.Project, error) {
	var project models.Project
	err := r.db.Where("slug = ?", slug).First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// GetByUserID retrieves a user's projects, newest first
func (r *projectRepository) GetByUserID(userID uint, offset, limit int) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&projects).Error
	return projects, err
}

// Update updates an existing project in the database
func (r *projectRepository) Update(project *models.Project) error {
	return r.db.Save(project).Error
}

// Delete soft deletes a project by its ID
func (r *projectRepository) Delete(id uint) error {
	return r.db.Delete(&models.Project{}, id).Error
}

// Count returns the total number of projects
func (r *projectRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Project{}).Count(&count).Error
	return count, err
}

// CountByUserID returns the number of projects owned by a user
func (r *projectRepository) CountByUserID(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Project{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// Search searches projects by name or tagline
func (r *projectRepository) Search(query string) ([]models.Project, error) {
	var projects []models.Project
	searchPattern := "%" + strings.TrimSpace(query) + "%"
	err := r.db.Where("name LIKE ? OR tagline LIKE ?", searchPattern, searchPattern).
		Find(&projects).Error
	return projects, err
}

// GetLiveProjects returns today's ongoing launches. Ranked projects come
// first in rank order, the unranked rest follows newest first.
func (r *projectRepository) GetLiveProjects() ([]models.Project, error) {
	var projects []models.Project
	err := r.db.Where("status = ?", models.StatusOngoing).
		Order("daily_rank IS NULL, daily_rank ASC, created_at DESC").
		Find(&projects).Error
	return projects, err
}

// GetScheduledOn returns the committed launches for one UTC day.
func (r *projectRepository) GetScheduledOn(day time.Time) ([]models.Project, error) {
	from, to := launchcalendar.DayWindow(day)
	var projects []models.Project
	err := r.db.Where("status = ? AND scheduled_at >= ? AND scheduled_at < ?",
		models.StatusScheduled, from, to).
		Order("scheduled_at ASC, created_at ASC").
		Find(&projects).Error
	return projects, err
}

// GetLaunchedProjects returns past launches, most recent launch day first.
func (r *projectRepository) GetLaunchedProjects(offset, limit int) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.Where("status = ?", models.StatusLaunched).
		Order("scheduled_at DESC, daily_rank IS NULL, daily_rank ASC").
		Offset(offset).Limit(limit).
		Find(&projects).Error
	return projects, err
}

// GetFeaturedProjects returns live or launched projects flagged for the
// homepage spotlight.
func (r *projectRepository) GetFeaturedProjects(limit int) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.Where("featured_on_homepage = ? AND status IN ?",
		true, []string{models.StatusOngoing, models.StatusLaunched}).
		Order("scheduled_at DESC").
		Limit(limit).
		Find(&projects).Error
	return projects, err
}

// AddViewCount adds a batch of drained view counter hits to a project.
func (r *projectRepository) AddViewCount(id uint, delta uint64) error {
	if delta == 0 {
		return nil
	}
	return r.db.Model(&models.Project{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", delta)).Error
}

// SlugExists checks whether a slug is already taken
func (r *projectRepository) SlugExists(slug string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Project{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

// SlugExistsExceptID checks whether a slug is taken by another project
func (r *projectRepository) SlugExistsExceptID(slug string, id uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Project{}).Where("slug = ? AND id != ?", slug, id).Count(&count).Error
	return count > 0, err
}
