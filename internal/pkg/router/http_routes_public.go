package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/LaunchBoard/app/controllers"
	"github.com/ManuelReschke/LaunchBoard/internal/pkg/middleware"
)

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	// Public project pages
	app.Get("/launch/:slug", loggedInMiddleware, controllers.HandleProjectDetail)

	// Auth
	app.Post("/logout", middleware.RequireAuth, controllers.HandleAuthLogout)

	// Payment provider webhooks (no CSRF, signature-verified in controller)
	app.Post("/webhooks/stripe", controllers.HandleStripeWebhook)

	// Checkout redirects
	app.Get("/checkout/success", middleware.RequireAuth, controllers.HandleCheckoutSuccess)
	app.Get("/checkout/cancel", middleware.RequireAuth, controllers.HandleCheckoutCancel)
}
