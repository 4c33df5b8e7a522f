package controllers

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/ManuelReschke/LaunchBoard/internal/pkg/billing"
	"github.com/ManuelReschke/LaunchBoard/internal/pkg/database"
)

// HandleCheckoutSuccess is the redirect target after a completed checkout.
// It verifies the session directly instead of waiting for the webhook, so
// the user sees the confirmed launch immediately.
func HandleCheckoutSuccess(c *fiber.Ctx) error {
	sessionID := strings.TrimSpace(c.Query("session_id"))
	if sessionID == "" {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": "missing checkout session",
		}).Redirect("/projects")
	}

	svc := billing.NewServiceFromDB(database.GetDB(), billing.NewStripeProviderFromEnv())
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	won, err := svc.VerifyCheckout(ctx, sessionID)
	if err != nil {
		log.Printf("checkout verify failed for session %s: %v", sessionID, err)
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": "We could not verify your payment yet. It will be confirmed automatically in a moment.",
		}).Redirect("/projects")
	}

	// Losing the race against the webhook is fine, the launch is confirmed
	// either way.
	_ = won

	return flash.WithSuccess(c, fiber.Map{
		"type":    "success",
		"message": "Payment received, your launch is locked in!",
	}).Redirect("/projects")
}

// HandleCheckoutCancel is the redirect target after an abandoned checkout.
// The reserved slot stays in payment-pending until the sweeper releases it.
func HandleCheckoutCancel(c *fiber.Ctx) error {
	return flash.WithError(c, fiber.Map{
		"type":    "error",
		"message": "Checkout cancelled. Your launch date is held for a while, complete the payment to keep it.",
	}).Redirect("/projects")
}

// HandleStripeWebhook processes Stripe event deliveries.
func HandleStripeWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := strings.TrimSpace(c.Get("Stripe-Signature"))

	svc := billing.NewServiceFromDB(database.GetDB(), billing.NewStripeProviderFromEnv())
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := svc.HandleWebhook(ctx, rawBody, signature); err != nil {
		log.Printf("stripe webhook failed: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "webhook_failed"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}
