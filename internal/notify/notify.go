// Package notify delivers accepted contact submissions to the site owner.
package notify

import (
	"context"
	"log"

	"github.com/AyushSingh360/Aryan-portfolio/internal/models"
)

type Notifier interface {
	Send(ctx context.Context, n models.Notification) error
}

const previewLength = 50

// LogNotifier only writes the submission to the log. It is the default
// transport when no mail relay is configured.
type LogNotifier struct {
	logger *log.Logger
}

func NewLogNotifier(logger *log.Logger) *LogNotifier {
	if logger == nil {
		logger = log.Default()
	}
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Send(ctx context.Context, n models.Notification) error {
	l.logger.Printf("[%s] [Contact Form] Received message from %s (%s): %s...",
		n.RequestID, n.Name, n.Email, preview(n.Message))
	return nil
}

func preview(s string) string {
	r := []rune(s)
	if len(r) <= previewLength {
		return s
	}
	return string(r[:previewLength])
}
