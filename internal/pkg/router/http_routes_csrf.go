package router

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/csrf"

	"github.com/ManuelReschke/LaunchBoard/app/controllers"
	"github.com/ManuelReschke/LaunchBoard/internal/pkg/env"
	"github.com/ManuelReschke/LaunchBoard/internal/pkg/middleware"
)

func (h HttpRouter) registerCSRFProtectedRoutes(app *fiber.App) {
	csrfConf := csrf.Config{
		KeyLookup:      "form:_csrf",
		ContextKey:     "csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		Expiration:     1 * time.Hour,
		CookieSecure:   !env.IsDev(),
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/") || strings.HasPrefix(c.Path(), "/webhooks/")
		},
	}

	group := app.Group("", cors.New(), csrf.New(csrfConf))
	group.Get("/", loggedInMiddleware, controllers.HandleStart)
	group.Get("/login", loggedInMiddleware, controllers.HandleAuthLogin)
	group.Post("/login", loggedInMiddleware, controllers.HandleAuthLogin)
	group.Get("/register", loggedInMiddleware, controllers.HandleAuthRegister)
	group.Post("/register", loggedInMiddleware, controllers.HandleAuthRegister)

	// Project intake and management
	group.Get("/projects", middleware.RequireAuth, controllers.HandleUserProjects)
	group.Get("/projects/new", middleware.RequireAuth, controllers.HandleProjectNew)
	group.Post("/projects/new", middleware.RequireAuth, controllers.HandleProjectNew)
	group.Get("/projects/:uuid/schedule", middleware.RequireAuth, controllers.HandleScheduleForm)
	group.Post("/projects/:uuid/schedule", middleware.RequireAuth, controllers.HandleScheduleLaunch)

	// Voting on live launches
	group.Post("/launch/:slug/vote", middleware.RequireAuth, controllers.HandleProjectVote)
}
