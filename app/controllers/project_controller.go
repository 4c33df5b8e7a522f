package controllers

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"
	"gorm.io/gorm"

	"github.com/ManuelReschke/LaunchBoard/app/models"
	"github.com/ManuelReschke/LaunchBoard/app/repository"
	"github.com/ManuelReschke/LaunchBoard/internal/pkg/metrics/counter"
	"github.com/ManuelReschke/LaunchBoard/internal/pkg/shortener"
	"github.com/ManuelReschke/LaunchBoard/internal/pkg/usercontext"
)

// HandleProjectNew renders the submission form and creates a draft on POST.
func HandleProjectNew(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)

	if c.Method() == fiber.MethodPost {
		project := &models.Project{
			Name:        strings.TrimSpace(c.FormValue("name")),
			Tagline:     strings.TrimSpace(c.FormValue("tagline")),
			WebsiteURL:  strings.TrimSpace(c.FormValue("website_url")),
			Description: c.FormValue("description"),
			UserID:      userID,
			LaunchTier:  models.LaunchTierFree,
			Status:      models.StatusDraft,
		}

		slug, err := uniqueSlug(project.Name)
		if err != nil {
			return flash.WithError(c, fiber.Map{
				"type":    "error",
				"message": "could not generate a project link, please try again",
			}).Redirect("/projects/new")
		}
		project.Slug = slug

		if err := project.Validate(); err != nil {
			return flash.WithError(c, fiber.Map{
				"type":    "error",
				"message": fmt.Sprintf("please check your input: %s", err),
			}).Redirect("/projects/new")
		}

		if err := repository.GetGlobalRepositories().Project.Create(project); err != nil {
			log.Printf("project create failed: %v", err)
			return flash.WithError(c, fiber.Map{
				"type":    "error",
				"message": "could not save the project",
			}).Redirect("/projects/new")
		}

		return flash.WithSuccess(c, fiber.Map{
			"type":    "success",
			"message": "Project saved. Pick a launch date to go live!",
		}).Redirect("/projects/" + project.UUID + "/schedule")
	}

	return c.Render("project/new", fiber.Map{
		"Title":      "Submit your project",
		"IsLoggedIn": true,
		"Flash":      flash.Get(c),
		"CSRFToken":  csrfToken(c),
	}, "layouts/main")
}

// HandleProjectDetail renders a project page and counts the view.
func HandleProjectDetail(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()

	project, err := repos.Project.GetBySlug(c.Params("slug"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "project not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "could not load project")
	}

	// Drafts and pending checkouts are only visible to their owner.
	userID := usercontext.GetUserID(c)
	if !project.IsLive() && project.Status != models.StatusScheduled && project.UserID != userID {
		return fiber.NewError(fiber.StatusNotFound, "project not found")
	}

	if err := counter.AddProjectView(project.ID); err != nil {
		log.Printf("view counter for project %d failed: %v", project.ID, err)
	}

	voteCount, err := repos.Vote.CountForProject(project.ID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not load votes")
	}

	hasVoted := false
	if userID != 0 {
		hasVoted, _ = repos.Vote.HasUserVoted(userID, project.ID)
	}

	return c.Render("project/detail", fiber.Map{
		"Title":      project.Name,
		"IsLoggedIn": usercontext.IsLoggedIn(c),
		"Flash":      flash.Get(c),
		"Project":    project,
		"VoteCount":  voteCount,
		"HasVoted":   hasVoted,
		"IsOwner":    project.UserID == userID,
		"CSRFToken":  csrfToken(c),
	}, "layouts/main")
}

// HandleProjectVote toggles the current user's vote on a live project.
func HandleProjectVote(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()

	project, err := repos.Project.GetBySlug(c.Params("slug"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "project not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "could not load project")
	}

	// Voting opens with the launch and stays open afterwards.
	if !project.IsLive() {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":   "not_live",
			"message": "voting opens when the project launches",
		})
	}

	userID := usercontext.GetUserID(c)
	voted, err := repos.Vote.Toggle(userID, project.ID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not save vote")
	}

	count, err := repos.Vote.CountForProject(project.ID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not load votes")
	}

	return c.JSON(fiber.Map{
		"voted": voted,
		"votes": count,
	})
}

// HandleUserProjects renders the dashboard list of the user's submissions.
func HandleUserProjects(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	repos := repository.GetGlobalRepositories()

	projects, err := repos.Project.GetByUserID(userID, 0, 50)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not load your projects")
	}

	return c.Render("project/list", fiber.Map{
		"Title":      "Your projects",
		"IsLoggedIn": true,
		"Flash":      flash.Get(c),
		"Projects":   projects,
	}, "layouts/main")
}

// uniqueSlug builds a URL slug from the project name, adding a random
// suffix when the plain slug is taken.
func uniqueSlug(name string) (string, error) {
	base := shortener.Slugify(name)
	if base == "" {
		base = "project"
	}

	repo := repository.GetGlobalRepositories().Project
	taken, err := repo.SlugExists(base)
	if err != nil {
		return "", err
	}
	if !taken {
		return base, nil
	}

	for i := 0; i < 5; i++ {
		suffix, err := shortener.GenerateSecureSlug(6)
		if err != nil {
			return "", err
		}
		candidate := base + "-" + strings.ToLower(suffix)
		taken, err := repo.SlugExists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", errors.New("could not find a free slug")
}
