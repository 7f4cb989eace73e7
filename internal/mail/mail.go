// Package mail delivers the verification and password-reset emails over SMTP.
package mail

import (
	"fmt"
	"log/slog"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/erbaiy/PediTrack-api/internal/config"
)

// Mailer sends a single HTML email. Delivery is best-effort: the caller
// decides whether a failure is fatal.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// SMTPMailer sends through the configured SMTP relay.
type SMTPMailer struct {
	cfg config.MailConfig
	log *slog.Logger
}

func NewSMTPMailer(cfg config.MailConfig, log *slog.Logger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, log: log}
}

func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	if m.cfg.Host == "" || m.cfg.User == "" {
		return fmt.Errorf("mail transport not configured")
	}
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("empty recipient")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.User, m.cfg.Pass)
	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	m.log.Info("email sent", slog.String("to", to), slog.String("subject", subject))
	return nil
}

// VerificationEmail renders the account-verification message. The link leads
// to the frontend, which forwards the token to GET /auth/verify-email.
func VerificationEmail(frontendURL, token string) (subject, html string) {
	link := fmt.Sprintf("%s/verify-email/%s", frontendURL, token)
	return "Email Verification", linkEmail(
		"Email Verification",
		"Please click the button below to verify your email address:",
		"Verify Email",
		link,
	)
}

// PasswordResetEmail renders the password-reset message.
func PasswordResetEmail(frontendURL, token string) (subject, html string) {
	link := fmt.Sprintf("%s/auth/reset-password?token=%s", frontendURL, token)
	return "Password Reset", linkEmail(
		"Password Reset",
		"Please click the button below to reset your password:",
		"Reset Password",
		link,
	)
}

func linkEmail(title, intro, action, link string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <style>
    .container { padding: 20px; max-width: 600px; margin: 0 auto; font-family: Arial, sans-serif; }
    .button { background-color: #4CAF50; border: none; color: white !important; padding: 15px 32px;
              text-align: center; text-decoration: none; display: inline-block; font-size: 16px;
              margin: 4px 2px; cursor: pointer; border-radius: 4px; }
    a { color: #4CAF50; word-break: break-all; }
  </style>
</head>
<body>
  <div class="container">
    <h1>%s</h1>
    <p>%s</p>
    <a href="%s" class="button">%s</a>
    <p>If the button doesn't work, you can copy and paste this link into your browser:</p>
    <a href="%s">%s</a>
  </div>
</body>
</html>`, title, intro, link, action, link, link)
}
