package services

import (
	"context"

	"go.uber.org/zap"
)

// DevMailer logs messages instead of sending them. Used whenever SMTP
// credentials are not configured.
type DevMailer struct {
	log *zap.Logger
}

func NewDevMailer(log *zap.Logger) *DevMailer {
	return &DevMailer{log: log}
}

func (m *DevMailer) SendServiceReminder(ctx context.Context, to string, summary ReminderSummary) error {
	m.log.Info("dev mode: service reminder email",
		zap.String("to", to),
		zap.String("equipment_id", summary.EquipmentID),
		zap.String("title", summary.Title),
		zap.String("due_date", summary.DueDate),
		zap.Int("days_until_due", summary.DaysUntilDue),
	)
	return nil
}

func (m *DevMailer) SendWelcome(ctx context.Context, to, name string) error {
	m.log.Info("dev mode: welcome email",
		zap.String("to", to),
		zap.String("name", name),
	)
	return nil
}
