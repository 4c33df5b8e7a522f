package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/ManuelReschke/LaunchBoard/app/repository"
	"github.com/ManuelReschke/LaunchBoard/internal/pkg/statistics"
	"github.com/ManuelReschke/LaunchBoard/internal/pkg/usercontext"
)

// HandleStart renders the homepage: today's launches in rank order, the
// featured spotlight and the headline statistics.
func HandleStart(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()

	live, err := repos.Project.GetLiveProjects()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not load today's launches")
	}

	ids := make([]uint, 0, len(live))
	for _, p := range live {
		ids = append(ids, p.ID)
	}
	votes, err := repos.Vote.CountsForProjects(ids)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not load votes")
	}

	featured, err := repos.Project.GetFeaturedProjects(3)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not load featured launches")
	}

	stats := statistics.GetStatisticsData()

	return c.Render("index", fiber.Map{
		"Title":      "Today's Launches",
		"IsLoggedIn": usercontext.IsLoggedIn(c),
		"Flash":      flash.Get(c),
		"Live":       live,
		"Votes":      votes,
		"Featured":   featured,
		"Stats":      stats,
	}, "layouts/main")
}
