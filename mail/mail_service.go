package mail

import (
	"log/slog"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

type MailService struct {
	dialer *gomail.Dialer
	from   string
}

// NewMailService builds a service from SMTP_* environment variables. It
// returns nil when SMTP_HOST is unset; callers treat a nil service as
// "delivery disabled".
func NewMailService() *MailService {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return nil
	}
	port, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if port == 0 {
		port = 587
	}
	user := os.Getenv("SMTP_USER")
	pass := os.Getenv("SMTP_PASSWORD")
	return &MailService{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   user,
	}
}

// SendFamilyInviteMail delivers the invite link to the invited address.
func (m *MailService) SendFamilyInviteMail(to, familyName, inviteLink string) error {
	message := gomail.NewMessage()
	message.SetHeader("From", m.from)
	message.SetHeader("To", to)
	message.SetHeader("Subject", "You are invited to join "+familyName)
	message.SetBody("text/html", `
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: auto; padding: 20px; border: 1px solid #ddd; border-radius: 8px;">
			<h2 style="color: #333; text-align: center;">Family invitation</h2>
			<p>Hello,</p>
			<p>You have been invited to join the family <b>`+familyName+`</b>. Follow the link below to accept:</p>
			<p style="text-align: center;"><a href="`+inviteLink+`" style="display: inline-block; padding: 10px 20px; background-color: #28a745; color: #fff; text-decoration: none; border-radius: 5px;">Accept invitation</a></p>
			<p>The invitation expires in 7 days. If you do not have an account yet, register first and then open the link.</p>
		</div>
	`)
	return m.dialer.DialAndSend(message)
}

// SendInviteAsync fires the invite mail on a goroutine. Delivery failures are
// logged and never fail the originating request.
func (m *MailService) SendInviteAsync(to, familyName, inviteLink string) {
	if m == nil {
		slog.Debug("smtp not configured, skipping invite mail", "to", to)
		return
	}
	go func() {
		if err := m.SendFamilyInviteMail(to, familyName, inviteLink); err != nil {
			slog.Error("failed to send invite mail", "to", to, "error", err)
		}
	}()
}
