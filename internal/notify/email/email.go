package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/mealtrack/internal/config"
	mail "github.com/xhit/go-simple-mail/v2"
)

// NotificationService sends meal reminder emails.
type NotificationService struct {
	config *config.EmailConfig
}

// Reminder contains the data for a single reminder email.
type Reminder struct {
	UserEmail     string
	UserName      string
	LastMealName  string
	LastMealAt    time.Time
	LastMealAgo   string
	IntervalHours int
	ServerURL     string
}

// New creates a new email notification service.
func New(cfg *config.EmailConfig) *NotificationService {
	return &NotificationService{
		config: cfg,
	}
}

// SendReminder emails a user that they have not logged a meal for a while.
func (n *NotificationService) SendReminder(ctx context.Context, reminder Reminder) error {
	if !n.config.Enabled {
		log.Debug("Email notifications are disabled, skipping reminder")
		return nil
	}

	if reminder.UserEmail == "" {
		log.Warn("User email is empty, skipping reminder", "user", reminder.UserName)
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	subject := fmt.Sprintf("[Mealtrack] No meal logged for %d hours", reminder.IntervalHours)

	body, err := generateEmailBody(reminder)
	if err != nil {
		return fmt.Errorf("failed to generate email body: %w", err)
	}

	return n.sendEmail(reminder.UserEmail, subject, body)
}

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.New("").ParseFS(templatesFS, "templates/*.html"))

// generateEmailBody renders the HTML email body.
func generateEmailBody(reminder Reminder) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "reminder.html", reminder); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// sendEmail sends an email using go-simple-mail library.
func (n *NotificationService) sendEmail(to, subject, body string) error {
	server := mail.NewSMTPClient()
	server.Host = n.config.SMTPHost
	server.Port = n.config.SMTPPort
	server.Username = n.config.Username
	server.Password = n.config.Password

	switch {
	case n.config.UseSSL:
		server.Encryption = mail.EncryptionSSLTLS
	case n.config.UseTLS:
		server.Encryption = mail.EncryptionSTARTTLS
	default:
		server.Encryption = mail.EncryptionNone
	}

	if n.config.InsecureSkipVerify {
		server.TLSConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	server.KeepAlive = false
	server.ConnectTimeout = 10 * time.Second
	server.SendTimeout = 10 * time.Second

	smtpClient, err := server.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer func() {
		if closeErr := smtpClient.Close(); closeErr != nil {
			log.Warn("Failed to close SMTP client", "error", closeErr)
		}
	}()

	fromName := n.config.FromName
	if fromName == "" {
		fromName = "Mealtrack"
	}

	email := mail.NewMSG()
	email.SetFrom(fmt.Sprintf("%s <%s>", fromName, n.config.FromEmail))
	email.AddTo(to)
	email.SetSubject(subject)
	email.SetBody(mail.TextHTML, body)

	if email.Error != nil {
		return fmt.Errorf("failed to create email: %w", email.Error)
	}

	if err := email.Send(smtpClient); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Info("Reminder email sent", "to", to)
	return nil
}
