package controllers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"
	"gorm.io/gorm"

	"github.com/ManuelReschke/LaunchBoard/app/models"
	"github.com/ManuelReschke/LaunchBoard/app/repository"
	"github.com/ManuelReschke/LaunchBoard/internal/pkg/billing"
	"github.com/ManuelReschke/LaunchBoard/internal/pkg/database"
	"github.com/ManuelReschke/LaunchBoard/internal/pkg/env"
	"github.com/ManuelReschke/LaunchBoard/internal/pkg/launch"
	"github.com/ManuelReschke/LaunchBoard/internal/pkg/launchcalendar"
	"github.com/ManuelReschke/LaunchBoard/internal/pkg/tiers"
	"github.com/ManuelReschke/LaunchBoard/internal/pkg/usercontext"
)

// HandleScheduleForm renders the launch date picker with per-day
// availability for the selected tier.
func HandleScheduleForm(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	db := database.GetDB()

	project, err := models.FindProjectByUUID(db, c.Params("uuid"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "project not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "could not load project")
	}
	if project.UserID != userID {
		return fiber.NewError(fiber.StatusNotFound, "project not found")
	}

	tier, _ := tiers.ParseTier(c.Query("tier", project.LaunchTier))

	badge := false
	if settings, err := models.GetOrCreateUserSettings(db, userID); err == nil {
		badge = settings.BadgeVerified
	}

	svc := launch.NewServiceFromDB(db)
	days, err := svc.GetAvailabilityRange(tier, badge, time.Time{}, time.Time{})
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not load availability")
	}

	return c.Render("project/schedule", fiber.Map{
		"Title":      "Pick a launch date",
		"IsLoggedIn": true,
		"Flash":      flash.Get(c),
		"Project":    project,
		"Tier":       tier,
		"Days":       days,
		"CSRFToken":  csrfToken(c),
	}, "layouts/main")
}

// HandleScheduleLaunch places a project on a launch date. Free tier
// launches are committed immediately; paid tiers reserve the slot and get
// redirected to checkout.
func HandleScheduleLaunch(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	uuid := c.Params("uuid")
	formURL := "/projects/" + uuid + "/schedule"

	tier, ok := tiers.ParseTier(c.FormValue("tier"))
	if !ok {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": "unknown launch tier",
		}).Redirect(formURL)
	}

	db := database.GetDB()
	svc := launch.NewServiceFromDB(db)

	result, err := svc.ScheduleLaunch(uuid, c.FormValue("launch_date"), tier, userID)
	if err != nil {
		status, msg := scheduleErrorResponse(err)
		if status == fiber.StatusNotFound {
			return fiber.NewError(fiber.StatusNotFound, msg)
		}
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": msg,
		}).Redirect(formURL)
	}

	if result.Status == models.StatusPaymentPending {
		project, err := models.FindProjectByUUID(db, uuid)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not load project")
		}

		baseURL := env.GetEnv("PUBLIC_DOMAIN", "http://localhost:8080")
		billingSvc := billing.NewServiceFromDB(db, billing.NewStripeProviderFromEnv())
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		checkoutURL, err := billingSvc.StartCheckout(ctx, project,
			baseURL+"/checkout/success?session_id={CHECKOUT_SESSION_ID}",
			baseURL+"/checkout/cancel")
		if err != nil {
			log.Printf("start checkout for project %s failed: %v", uuid, err)
			return flash.WithError(c, fiber.Map{
				"type":    "error",
				"message": "could not start checkout, your slot is held, please retry",
			}).Redirect(formURL)
		}

		return c.Redirect(checkoutURL, fiber.StatusSeeOther)
	}

	return flash.WithSuccess(c, fiber.Map{
		"type":    "success",
		"message": "Launch scheduled for " + result.ScheduledAt + "!",
	}).Redirect("/projects")
}

// HandleAPIToday returns today's live launches with votes and ranks.
func HandleAPIToday(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()

	live, err := repos.Project.GetLiveProjects()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "launches_failed"})
	}

	ids := make([]uint, 0, len(live))
	for _, p := range live {
		ids = append(ids, p.ID)
	}
	votes, err := repos.Vote.CountsForProjects(ids)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "votes_failed"})
	}

	type entry struct {
		UUID      string `json:"uuid"`
		Slug      string `json:"slug"`
		Name      string `json:"name"`
		Tagline   string `json:"tagline"`
		Tier      string `json:"tier"`
		DailyRank *int   `json:"daily_rank,omitempty"`
		Votes     int64  `json:"votes"`
	}
	out := make([]entry, 0, len(live))
	for _, p := range live {
		out = append(out, entry{
			UUID:      p.UUID,
			Slug:      p.Slug,
			Name:      p.Name,
			Tagline:   p.Tagline,
			Tier:      p.LaunchTier,
			DailyRank: p.DailyRank,
			Votes:     votes[p.ID],
		})
	}

	return c.JSON(fiber.Map{"launches": out})
}

// HandleAPIProjectDetail returns a project as JSON, with the same
// visibility rules as the HTML detail page.
func HandleAPIProjectDetail(c *fiber.Ctx) error {
	project, err := models.FindProjectByUUID(database.GetDB(), c.Params("uuid"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "project_failed"})
	}

	userID := usercontext.GetUserID(c)
	if !project.IsLive() && project.Status != models.StatusScheduled && project.UserID != userID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found"})
	}

	votes, err := repository.GetGlobalRepositories().Vote.CountForProject(project.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "votes_failed"})
	}

	return c.JSON(fiber.Map{
		"project": project,
		"votes":   votes,
	})
}

// HandleAPIAvailability returns the remaining slots for one day.
func HandleAPIAvailability(c *fiber.Ctx) error {
	rawDate := c.Query("date")
	day, err := launchcalendar.ParseDate(rawDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "invalid_date",
			"message": "date must be formatted as YYYY-MM-DD",
		})
	}

	svc := launch.NewServiceFromDB(database.GetDB())
	availability, err := svc.GetAvailability(day)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "availability_failed"})
	}

	return c.JSON(availability)
}

// HandleAPIAvailabilityRange returns per-day availability over the
// requesting user's scheduling window for a tier.
func HandleAPIAvailabilityRange(c *fiber.Ctx) error {
	tier, ok := tiers.ParseTier(c.Query("tier", string(tiers.TierFree)))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "invalid_tier",
			"message": "tier must be one of free, premium, premium_plus",
		})
	}

	var start, end time.Time
	if raw := c.Query("start"); raw != "" {
		var err error
		if start, err = launchcalendar.ParseDate(raw); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "invalid_date",
				"message": "start must be formatted as YYYY-MM-DD",
			})
		}
	}
	if raw := c.Query("end"); raw != "" {
		var err error
		if end, err = launchcalendar.ParseDate(raw); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "invalid_date",
				"message": "end must be formatted as YYYY-MM-DD",
			})
		}
	}

	db := database.GetDB()
	badge := false
	if userID := usercontext.GetUserID(c); userID != 0 {
		if settings, err := models.GetOrCreateUserSettings(db, userID); err == nil {
			badge = settings.BadgeVerified
		}
	}

	svc := launch.NewServiceFromDB(db)
	days, err := svc.GetAvailabilityRange(tier, badge, start, end)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "availability_failed"})
	}

	return c.JSON(fiber.Map{
		"tier": tier,
		"days": days,
	})
}

// HandleAPIUserQuota reports how many launches the user has left on a day.
func HandleAPIUserQuota(c *fiber.Ctx) error {
	day, err := launchcalendar.ParseDate(c.Query("date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "invalid_date",
			"message": "date must be formatted as YYYY-MM-DD",
		})
	}

	svc := launch.NewServiceFromDB(database.GetDB())
	quota, err := svc.CheckUserLimit(usercontext.GetUserID(c), day)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "quota_failed"})
	}

	return c.JSON(quota)
}

// HandleAPIScheduleLaunch is the JSON twin of HandleScheduleLaunch, minus
// the checkout redirect: paid tiers get the checkout URL in the response.
func HandleAPIScheduleLaunch(c *fiber.Ctx) error {
	var body struct {
		LaunchDate string `json:"launch_date"`
		Tier       string `json:"tier"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_body"})
	}

	tier, ok := tiers.ParseTier(body.Tier)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "invalid_tier",
			"message": "tier must be one of free, premium, premium_plus",
		})
	}

	userID := usercontext.GetUserID(c)
	uuid := c.Params("uuid")
	db := database.GetDB()
	svc := launch.NewServiceFromDB(db)

	result, err := svc.ScheduleLaunch(uuid, body.LaunchDate, tier, userID)
	if err != nil {
		status, msg := scheduleErrorResponse(err)
		return c.Status(status).JSON(fiber.Map{
			"error":   "schedule_rejected",
			"message": msg,
		})
	}

	response := fiber.Map{"result": result}

	if result.Status == models.StatusPaymentPending {
		project, err := models.FindProjectByUUID(db, uuid)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "project_lookup_failed"})
		}

		baseURL := env.GetEnv("PUBLIC_DOMAIN", "http://localhost:8080")
		billingSvc := billing.NewServiceFromDB(db, billing.NewStripeProviderFromEnv())
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		checkoutURL, err := billingSvc.StartCheckout(ctx, project,
			baseURL+"/checkout/success?session_id={CHECKOUT_SESSION_ID}",
			baseURL+"/checkout/cancel")
		if err != nil {
			log.Printf("start checkout for project %s failed: %v", uuid, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "checkout_failed"})
		}
		response["checkout_url"] = checkoutURL
	}

	return c.JSON(response)
}

// scheduleErrorResponse maps scheduling errors to an HTTP status and a
// user-facing message.
func scheduleErrorResponse(err error) (int, string) {
	var dateErr *launch.DateError
	var windowErr *launch.WindowError
	var quotaErr *launch.QuotaError

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fiber.StatusNotFound, "project not found"
	case errors.Is(err, launch.ErrNotOwner):
		return fiber.StatusNotFound, "project not found"
	case errors.Is(err, launch.ErrAlreadyScheduled):
		return fiber.StatusConflict, "this project already has a launch"
	case errors.Is(err, launch.ErrCheckoutInFlight):
		return fiber.StatusConflict, "a checkout for this project is in progress"
	case errors.Is(err, launch.ErrNoAvailability):
		return fiber.StatusConflict, "no slots left on that day, pick another date"
	case errors.As(err, &dateErr), errors.As(err, &windowErr), errors.As(err, &quotaErr):
		return fiber.StatusUnprocessableEntity, err.Error()
	default:
		return fiber.StatusInternalServerError, "scheduling failed, please try again"
	}
}
