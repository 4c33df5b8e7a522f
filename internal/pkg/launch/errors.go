package launch

import (
	"errors"
	"fmt"
	"time"

	"github.com/ManuelReschke/LaunchBoard/internal/pkg/launchcalendar"
)

var (
	// ErrNoAvailability signals that the requested tier (or the day as a
	// whole) has no remaining slots on the requested date.
	ErrNoAvailability = errors.New("no launch availability for the requested date")

	// ErrNotOwner signals a scheduling attempt on someone else's project.
	ErrNotOwner = errors.New("project does not belong to the requesting user")

	// ErrAlreadyScheduled signals that the project already sits in the
	// launch pipeline and cannot be placed again.
	ErrAlreadyScheduled = errors.New("project is already scheduled or live")

	// ErrCheckoutInFlight signals a scheduling attempt while a checkout
	// for the project is still pending.
	ErrCheckoutInFlight = errors.New("a checkout for this project is still pending")
)

// DateError reports an unparseable launch date.
type DateError struct {
	Raw string
}

func (e *DateError) Error() string {
	return fmt.Sprintf("invalid launch date %q: expected %s", e.Raw, launchcalendar.DateFormat)
}

// WindowError reports a date outside the tier's scheduling window, naming
// the bound that failed.
type WindowError struct {
	Date     time.Time
	Earliest time.Time
	Latest   time.Time
	// TooEarly is true when the date precedes the earliest allowed day,
	// false when it exceeds the latest.
	TooEarly bool
}

func (e *WindowError) Error() string {
	if e.TooEarly {
		return fmt.Sprintf("launch date %s is before the earliest allowed date %s",
			e.Date.Format(launchcalendar.DateFormat), e.Earliest.Format(launchcalendar.DateFormat))
	}
	return fmt.Sprintf("launch date %s is after the latest allowed date %s",
		e.Date.Format(launchcalendar.DateFormat), e.Latest.Format(launchcalendar.DateFormat))
}

// QuotaError reports a user over their per-day launch cap, carrying the
// current count and limit for user-facing messaging.
type QuotaError struct {
	Count int
	Limit int
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("daily launch limit reached (%d/%d)", e.Count, e.Limit)
}
