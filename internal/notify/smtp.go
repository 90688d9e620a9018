package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/AyushSingh360/Aryan-portfolio/internal/config"
	"github.com/AyushSingh360/Aryan-portfolio/internal/models"
	"gopkg.in/gomail.v2"
)

// sender is the part of *gomail.Dialer the notifier uses.
type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type SMTPNotifier struct {
	config config.SMTPConfig
	dialer sender
}

func NewSMTPNotifier(cfg config.SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{
		config: cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (s *SMTPNotifier) Send(ctx context.Context, n models.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.dialer.DialAndSend(s.buildMessage(n)); err != nil {
		return fmt.Errorf("failed to send contact mail: %w", err)
	}
	return nil
}

func (s *SMTPNotifier) buildMessage(n models.Notification) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", s.config.From)
	m.SetHeader("To", s.config.To)
	m.SetHeader("Reply-To", n.Email)
	m.SetHeader("Subject", fmt.Sprintf("New contact form submission from %s", n.Name))
	m.SetBody("text/html", renderHTML(n))
	m.AddAlternative("text/plain", renderText(n))
	return m
}

func renderHTML(n models.Notification) string {
	var b strings.Builder
	b.WriteString("<h2>New Contact Form Submission</h2>\n")
	fmt.Fprintf(&b, "<p><strong>Name:</strong> %s</p>\n", html.EscapeString(n.Name))
	fmt.Fprintf(&b, "<p><strong>Email:</strong> %s</p>\n", html.EscapeString(n.Email))
	b.WriteString("<p><strong>Message:</strong></p>\n")
	fmt.Fprintf(&b, "<p>%s</p>\n", strings.ReplaceAll(html.EscapeString(n.Message), "\n", "<br>"))
	return b.String()
}

func renderText(n models.Notification) string {
	return fmt.Sprintf("Name: %s\nEmail: %s\n\n%s\n", n.Name, n.Email, n.Message)
}
