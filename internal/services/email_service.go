package services

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"equiptrack/internal/apperrors"
	"equiptrack/internal/config"
)

// EmailService sends mail over SMTP with STARTTLS when the server offers it.
type EmailService struct {
	host     string
	port     string
	username string
	password string
	from     string
	fromName string
	baseURL  string
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		from:     cfg.EmailFrom,
		fromName: cfg.EmailFromName,
		baseURL:  normalizeBaseURL(cfg.PublicBaseURL),
	}
}

// SendServiceReminder delivers the reminder for one equipment record. The
// context deadline bounds the whole SMTP conversation.
func (s *EmailService) SendServiceReminder(ctx context.Context, to string, summary ReminderSummary) error {
	subject := fmt.Sprintf("Service Reminder: %s - Due in %d days", summary.Title, summary.DaysUntilDue)

	var details strings.Builder
	details.WriteString(fmt.Sprintf(`<p><strong>Model:</strong> %s</p>`, summary.Model))
	if summary.SerialNumber != "" {
		details.WriteString(fmt.Sprintf(`<p><strong>Serial Number:</strong> %s</p>`, summary.SerialNumber))
	}
	if summary.Location != "" {
		details.WriteString(fmt.Sprintf(`<p><strong>Location:</strong> %s</p>`, summary.Location))
	}
	details.WriteString(fmt.Sprintf(`<p><strong>Service Due Date:</strong> <span style="color:#dc2626;font-weight:bold">%s</span></p>`, summary.DueDate))

	plural := "s"
	if summary.DaysUntilDue == 1 {
		plural = ""
	}
	body := fmt.Sprintf(`<html><body style="font-family:Arial,sans-serif;color:#333">
<div style="max-width:600px;margin:0 auto;padding:20px">
  <h1 style="color:#1e293b">Service Reminder</h1>
  <p style="background:#fef3c7;border-left:4px solid #f59e0b;padding:15px">
    <strong>Attention required.</strong> The following equipment requires service in %d day%s.
  </p>
  <div style="background:#f8fafc;padding:20px;border-left:4px solid #667eea">
    <h2 style="margin-top:0;color:#1e293b">%s</h2>
    %s
  </div>
  <p>Please schedule the necessary service or calibration to ensure continued operation and compliance.</p>
  <p><a href="%s/equipment/%s" style="background:#667eea;color:white;padding:12px 30px;text-decoration:none;border-radius:5px">View Equipment Details</a></p>
  <p style="color:#64748b;font-size:14px">This is an automated reminder from Equipment Tracker. Please do not reply to this email.</p>
</div>
</body></html>`, summary.DaysUntilDue, plural, summary.Title, details.String(), s.baseURL, summary.EquipmentID)

	if err := s.sendEmail(ctx, to, subject, body); err != nil {
		return &apperrors.DispatchError{Recipient: to, Err: err}
	}
	return nil
}

// SendWelcome greets a freshly registered account. Best effort; callers
// never fail registration on a mail error.
func (s *EmailService) SendWelcome(ctx context.Context, to, name string) error {
	body := fmt.Sprintf(`<html><body style="font-family:Arial,sans-serif;color:#333">
<div style="max-width:600px;margin:0 auto;padding:20px">
  <h1 style="color:#1e293b">Welcome to Equipment Tracker!</h1>
  <h2>Hello %s!</h2>
  <p>Thank you for registering with Equipment Tracker. You can now:</p>
  <ul>
    <li>Add and manage your equipment inventory</li>
    <li>Generate QR codes for easy tracking</li>
    <li>Schedule and track maintenance</li>
    <li>Receive automated service reminders</li>
  </ul>
  <p><a href="%s/login" style="background:#667eea;color:white;padding:12px 30px;text-decoration:none;border-radius:5px">Get Started</a></p>
</div>
</body></html>`, name, s.baseURL)

	if err := s.sendEmail(ctx, to, "Welcome to Equipment Tracker", body); err != nil {
		return &apperrors.DispatchError{Recipient: to, Err: err}
	}
	return nil
}

func (s *EmailService) sendEmail(ctx context.Context, to, subject, htmlBody string) error {
	if s.username == "" || s.password == "" {
		return fmt.Errorf("email credentials not configured, set EMAIL_USERNAME and EMAIL_PASSWORD")
	}

	addr := net.JoinHostPort(s.host, s.port)

	headers := []string{
		fmt.Sprintf("From: %s<%s>", safeName(s.fromName), s.from),
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
	}

	var msg strings.Builder
	for _, h := range headers {
		msg.WriteString(h)
		msg.WriteString("\r\n")
	}
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	auth := smtp.PlainAuth("", s.username, s.password, s.host)

	// The context deadline bounds the dial and the whole conversation.
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			conn.Close()
			return err
		}
	} else {
		_ = conn.SetDeadline(time.Now().Add(30 * time.Second))
	}

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Close()

	if err = client.Hello("localhost"); err != nil {
		return err
	}
	if ok, _ := client.Extension("STARTTLS"); ok {
		tlsConfig := &tls.Config{ServerName: s.host}
		if err = client.StartTLS(tlsConfig); err != nil {
			return err
		}
	}
	if ok, _ := client.Extension("AUTH"); ok {
		if err = client.Auth(auth); err != nil {
			return err
		}
	}
	if err = client.Mail(s.from); err != nil {
		return err
	}
	if err = client.Rcpt(to); err != nil {
		return err
	}
	wc, err := client.Data()
	if err != nil {
		return err
	}
	if _, err = wc.Write([]byte(msg.String())); err != nil {
		return err
	}
	if err = wc.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func safeName(name string) string {
	return strings.ReplaceAll(name, "\n", " ")
}
