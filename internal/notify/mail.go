package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
	"time"

	"github.com/jordan-wright/email"

	"exam_exchange/internal/model"
)

// SMTPConfig describes the outgoing mail server.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer implements Notifier over SMTP.
type Mailer struct {
	cfg  SMTPConfig
	send func(e *email.Email) error
	log  *slog.Logger
}

// NewMailer creates a Mailer for the given server.
func NewMailer(cfg SMTPConfig, log *slog.Logger) *Mailer {
	m := &Mailer{cfg: cfg, log: log}
	m.send = m.sendSMTP
	return m
}

// NotifyCreated mails the management link to the author.
func (m *Mailer) NotifyCreated(_ context.Context, view model.GeneralizedView, searchDates []time.Time, manageURL string) error {
	mail := m.newEmail(view.ContactEmail, "Your exam date exchange advert")
	mail.Text = []byte(FormatCreated(view, searchDates, manageURL))
	if err := m.send(mail); err != nil {
		return fmt.Errorf("send creation mail: %w", err)
	}
	return nil
}

// NotifyReply forwards a reply to the advert author with Reply-To set to the
// interested student.
func (m *Mailer) NotifyReply(_ context.Context, advert model.Advert, replyTo, message string) (bool, error) {
	mail := m.newEmail(advert.ContactEmail, "Reply to your exam date exchange advert")
	mail.ReplyTo = []string{replyTo}
	mail.Text = []byte(FormatReply(advert, replyTo, message))
	if err := m.send(mail); err != nil {
		return false, fmt.Errorf("send reply mail: %w", err)
	}
	m.log.Debug("reply delivered", "advert_id", advert.ID)
	return true, nil
}

func (m *Mailer) newEmail(to, subject string) *email.Email {
	mail := email.NewEmail()
	mail.From = fmt.Sprintf("Exam Exchange <%s>", m.cfg.From)
	mail.To = []string{to}
	mail.Subject = subject
	return mail
}

func (m *Mailer) sendSMTP(mail *email.Email) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	err := mail.Send(addr, auth)
	if err != nil && auth != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(addr, nil)
	}
	return err
}
