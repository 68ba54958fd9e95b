package utils

import (
	"context"
	"fmt"
	"html"
	"log"
	"time"

	"coursehub/config"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer delivers one HTML email.
type Mailer interface {
	Send(ctx context.Context, toEmail, toName, subject, htmlBody string) error
}

// SendgridMailer sends through the SendGrid v3 API. With no API key it only
// logs what it would have sent.
type SendgridMailer struct {
	APIKey string
	Sender string
}

func NewMailer() *SendgridMailer {
	if config.AppConfig == nil {
		return &SendgridMailer{}
	}
	return &SendgridMailer{APIKey: config.AppConfig.SendgridApiKey, Sender: config.AppConfig.EmailSender}
}

func (m *SendgridMailer) Send(ctx context.Context, toEmail, toName, subject, htmlBody string) error {
	if m.APIKey == "" {
		log.Printf("[EMAIL] SENDGRID_API_KEY not set, skipping %q to %s", subject, toEmail)
		return nil
	}

	from := mail.NewEmail("CourseHub", m.Sender)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, subject, htmlBody)

	resp, err := sendgrid.NewSendClient(m.APIKey).SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	log.Printf("[EMAIL] Sent %q to %s", subject, toEmail)
	return nil
}

func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
			.header { background-color: #1F3A5F; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; }
			.content { padding: 40px 30px; color: #1F3A5F; line-height: 1.6; }
			.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; border-left: 4px solid #4A90D9; margin: 20px 0; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header"><h1>COURSEHUB</h1></div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">You are receiving this because you completed a course on CourseHub.</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}

// ExpiryReminderEmail renders the subject and body of an enrollment expiry reminder.
func ExpiryReminderEmail(name, courseTitle string, expiresAt time.Time) (string, string) {
	subject := fmt.Sprintf("Your access to %s expires soon", courseTitle)
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Your access to <b>%s</b> ends soon.</p>
		<div class="info-box">Access expires on <b>%s</b></div>
		<p>Revisit the material before then to keep your certificate fresh.</p>
	`, html.EscapeString(name), html.EscapeString(courseTitle), expiresAt.Format("02 Jan 2006"))
	return subject, getEmailTemplate("Course access expiring", body)
}
