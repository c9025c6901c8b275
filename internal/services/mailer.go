package services

import (
	"context"
	"strings"
)

// Mailer is the outbound notification capability. Implementations must
// treat a returned error as "not accepted for delivery"; callers decide
// whether that is fatal (the scheduler retries next sweep, the
// registration flow ignores it).
type Mailer interface {
	SendServiceReminder(ctx context.Context, to string, summary ReminderSummary) error
	SendWelcome(ctx context.Context, to, name string) error
}

// ReminderSummary is the rendered payload of one service reminder.
type ReminderSummary struct {
	EquipmentID  string
	Title        string
	Model        string
	SerialNumber string
	Location     string
	DueDate      string
	DaysUntilDue int
}

// normalizeBaseURL mirrors the QR codec's scheme guard for deep links in
// email bodies.
func normalizeBaseURL(base string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	return base
}
