package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/LaunchBoard/internal/pkg/database"
	"github.com/ManuelReschke/LaunchBoard/internal/pkg/launch"
	"github.com/ManuelReschke/LaunchBoard/internal/pkg/metrics/counter"
	"github.com/ManuelReschke/LaunchBoard/internal/pkg/statistics"
)

// HandleCronLaunchCycle runs the full daily launch cycle: yesterday's
// launches complete and get ranked, today's go live, stale checkouts are
// swept.
func HandleCronLaunchCycle(c *fiber.Ctx) error {
	svc := launch.NewServiceFromDB(database.GetDB())

	result, err := svc.RunLaunchCycle()
	if err != nil {
		log.Printf("launch cycle failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "launch_cycle_failed"})
	}

	statistics.ResetCacheUpdateTimer()

	return c.JSON(result)
}

// HandleCronSweepPayments releases slots held by abandoned checkouts.
func HandleCronSweepPayments(c *fiber.Ctx) error {
	svc := launch.NewServiceFromDB(database.GetDB())

	swept, err := svc.SweepAbandonedPayments()
	if err != nil {
		log.Printf("payment sweep failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "sweep_failed"})
	}

	return c.JSON(fiber.Map{"swept": swept})
}

// HandleCronFlushCounters drains the pending view counters to the database.
func HandleCronFlushCounters(c *fiber.Ctx) error {
	if err := counter.FlushAll(); err != nil {
		log.Printf("counter flush failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "flush_failed"})
	}

	return c.JSON(fiber.Map{"ok": true})
}
