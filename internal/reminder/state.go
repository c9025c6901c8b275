// Package reminder holds the notification-state logic for service
// reminders. The state per equipment is derivable from two stored fields:
// no expiry date (no reminder possible), expiry set and notification not
// sent (armed), expiry set and notification sent (sent). Every mutation
// path that changes the expiry date or appends service history re-arms
// through this package instead of flipping the flag at the call site.
package reminder

import (
	"time"

	"equiptrack/internal/models"
)

// WindowDays is the reminder eligibility window: a reminder is owed while
// the expiry date lies within the next seven days.
const WindowDays = 7

// StartOfDay truncates t to local midnight.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of t's day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// Window returns the sweep range [today 00:00, today+WindowDays end of day].
func Window(now time.Time) (from, to time.Time) {
	from = StartOfDay(now)
	to = EndOfDay(from.AddDate(0, 0, WindowDays))
	return from, to
}

// Owed reports whether a reminder is currently owed: an expiry date is set,
// no reminder was dispatched for it yet, and the date falls inside the
// window. Dates are compared at day granularity.
func Owed(expiry *time.Time, notificationSent bool, now time.Time) bool {
	if expiry == nil || notificationSent {
		return false
	}
	day := StartOfDay(*expiry)
	from, to := Window(now)
	return !day.Before(from) && !day.After(to)
}

// ExpiryChanged reports whether two expiry values differ at day granularity.
// An update carrying the same date as already stored is not a change and
// must not re-arm.
func ExpiryChanged(old, updated *time.Time) bool {
	if old == nil && updated == nil {
		return false
	}
	if old == nil || updated == nil {
		return true
	}
	return !StartOfDay(*old).Equal(StartOfDay(*updated))
}

// Rearm makes the record eligible for a future reminder. This is the single
// reset path shared by expiry edits and service-history appends.
func Rearm(eq *models.Equipment) {
	eq.NotificationSent = false
}

// MarkSent records a confirmed dispatch for the currently stored expiry
// date. Only the scheduler calls this, and only after the transport
// accepted the message.
func MarkSent(eq *models.Equipment) {
	eq.NotificationSent = true
}

// DaysUntil returns the whole days from now until the expiry day, at day
// granularity. Due today yields 0.
func DaysUntil(expiry, now time.Time) int {
	return int(StartOfDay(expiry).Sub(StartOfDay(now)) / (24 * time.Hour))
}
