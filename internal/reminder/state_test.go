package reminder

import (
	"testing"
	"time"

	"equiptrack/internal/models"

	"github.com/stretchr/testify/assert"
)

var now = time.Date(2025, 6, 10, 14, 30, 0, 0, time.Local)

func datePtr(t time.Time) *time.Time { return &t }

func TestWindow(t *testing.T) {
	from, to := Window(now)

	assert.Equal(t, time.Date(2025, 6, 10, 0, 0, 0, 0, time.Local), from)
	assert.Equal(t, 2025, to.Year())
	assert.Equal(t, time.June, to.Month())
	assert.Equal(t, 17, to.Day())
	assert.Equal(t, 23, to.Hour())
}

func TestOwed(t *testing.T) {
	tests := []struct {
		name   string
		expiry *time.Time
		sent   bool
		want   bool
	}{
		{"no expiry date", nil, false, false},
		{"due today", datePtr(now), false, true},
		{"due today, already sent", datePtr(now), true, false},
		{"due in 5 days", datePtr(now.AddDate(0, 0, 5)), false, true},
		{"due on window edge (7 days)", datePtr(now.AddDate(0, 0, 7)), false, true},
		{"due beyond window (8 days)", datePtr(now.AddDate(0, 0, 8)), false, false},
		{"overdue since yesterday", datePtr(now.AddDate(0, 0, -1)), false, false},
		{"due at midnight of edge day", datePtr(StartOfDay(now.AddDate(0, 0, 7))), false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Owed(tt.expiry, tt.sent, now))
		})
	}
}

func TestExpiryChanged(t *testing.T) {
	day := time.Date(2025, 7, 1, 0, 0, 0, 0, time.Local)

	assert.False(t, ExpiryChanged(nil, nil))
	assert.True(t, ExpiryChanged(nil, datePtr(day)))
	assert.True(t, ExpiryChanged(datePtr(day), nil))
	assert.True(t, ExpiryChanged(datePtr(day), datePtr(day.AddDate(0, 0, 1))))

	// Same calendar day at a different time of day is not a change.
	assert.False(t, ExpiryChanged(datePtr(day), datePtr(day.Add(9*time.Hour))))
	assert.False(t, ExpiryChanged(datePtr(day), datePtr(day)))
}

func TestRearmAndMarkSent(t *testing.T) {
	eq := &models.Equipment{NotificationSent: true}

	Rearm(eq)
	assert.False(t, eq.NotificationSent)

	MarkSent(eq)
	assert.True(t, eq.NotificationSent)
}

func TestDaysUntil(t *testing.T) {
	assert.Equal(t, 0, DaysUntil(now, now))
	assert.Equal(t, 5, DaysUntil(now.AddDate(0, 0, 5), now))
	// Day granularity: a late-evening "now" against an early-morning due
	// date still counts whole days.
	assert.Equal(t, 3, DaysUntil(StartOfDay(now.AddDate(0, 0, 3)), EndOfDay(now)))
}
