package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/ManuelReschke/LaunchBoard/app/controllers"
	"github.com/ManuelReschke/LaunchBoard/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	// API v1 routes
	v1 := api.Group("/v1")
	v1.Get("/launches/today", controllers.HandleAPIToday)
	v1.Get("/projects/:uuid", controllers.HandleAPIProjectDetail)
	v1.Get("/availability", controllers.HandleAPIAvailability)
	v1.Get("/availability/range", controllers.HandleAPIAvailabilityRange)
	v1.Get("/user/quota", middleware.RequireAPISessionAuth, controllers.HandleAPIUserQuota)
	v1.Post("/projects/:uuid/schedule", middleware.RequireAPISessionAuth, controllers.HandleAPIScheduleLaunch)

	// Internal cron endpoints, shared-secret protected
	cron := api.Group("/internal/cron", middleware.CronAuthMiddleware())
	cron.Post("/launch-cycle", controllers.HandleCronLaunchCycle)
	cron.Post("/sweep-payments", controllers.HandleCronSweepPayments)
	cron.Post("/flush-counters", controllers.HandleCronFlushCounters)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
