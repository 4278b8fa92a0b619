package services

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/hadealahmad/anonymous-messages/models"
	"github.com/hadealahmad/anonymous-messages/utils"
)

// MailFunc sends a single email. Injected so tests can capture mail without
// an SMTP server.
type MailFunc func(to, subject, body string) error

// Notifier emails reviewers about new submissions. Delivery is best-effort:
// failures are logged and never fail the submission.
type Notifier struct {
	users      *UserStore
	adminEmail string
	send       MailFunc
}

func NewNotifier(users *UserStore, adminEmail string) *Notifier {
	return &Notifier{users: users, adminEmail: adminEmail, send: utils.SendMail}
}

// NotifyNewMessage emails the assigned reviewer, falling back to the
// configured admin address when no reviewer is assigned or the reviewer has
// no email. Runs in its own goroutine.
func (n *Notifier) NotifyNewMessage(msg *models.Message) {
	to := n.adminEmail
	if msg.AssignedUserID != nil {
		if u, err := n.users.Get(*msg.AssignedUserID); err == nil && u.Email != "" {
			to = u.Email
		}
	}
	if to == "" {
		return
	}

	subject := fmt.Sprintf("New anonymous message from %s", msg.SenderName)
	body := fmt.Sprintf("A new anonymous message is waiting for review.\n\nFrom: %s\n\n%s\n", msg.SenderName, msg.Body)

	go func() {
		if err := n.send(to, subject, body); err != nil {
			zap.L().Warn("notify mail failed", zap.String("to", to), zap.Error(err))
		}
	}()
}
