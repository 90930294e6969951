package mail

import (
	"context"
	"errors"
	"strings"

	"github.com/hylla/taskcollab/internal/app"
)

// ErrMissingFields is returned when a request has no recipients or subject.
var ErrMissingFields = errors.New("missing required fields")

// sentMessage is the success text reported to callers.
const sentMessage = "📩 Email sent successfully"

// Mailer renders and delivers task notifications. It implements app.Notifier.
type Mailer struct {
	sender Sender
	from   string
}

// NewMailer constructs a new value for this package.
func NewMailer(sender Sender, from string) *Mailer {
	return &Mailer{sender: sender, from: strings.TrimSpace(from)}
}

// Deliver validates, renders and sends req.
func (m *Mailer) Deliver(ctx context.Context, req app.EmailRequest) error {
	if len(req.To) == 0 || strings.TrimSpace(req.Subject) == "" {
		return ErrMissingFields
	}
	body, err := RenderTaskEmail(req)
	if err != nil {
		return err
	}
	return m.sender.Send(ctx, Message{
		From:    m.from,
		To:      []string(req.To),
		Subject: req.Subject,
		HTML:    body,
	})
}

// SendEmail implements app.Notifier.
func (m *Mailer) SendEmail(ctx context.Context, req app.EmailRequest) app.EmailResult {
	if err := m.Deliver(ctx, req); err != nil {
		return app.EmailResult{Success: false, Message: err.Error()}
	}
	return app.EmailResult{Success: true, Message: sentMessage}
}
