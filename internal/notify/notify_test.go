package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/jordan-wright/email"

	"exam_exchange/internal/model"
)

var discardLog = slog.New(slog.NewTextHandler(io.Discard, nil))

type sentMsg struct {
	ChatID int64
	Text   string
}

type mockAPI struct {
	mu   sync.Mutex
	sent []sentMsg
	err  error
}

func (m *mockAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if m.err != nil {
		return tgbotapi.Message{}, m.err
	}
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		m.mu.Lock()
		m.sent = append(m.sent, sentMsg{ChatID: msg.ChatID, Text: msg.Text})
		m.mu.Unlock()
	}
	return tgbotapi.Message{}, nil
}

func testAdvert() model.Advert {
	at := time.Date(2024, 6, 12, 8, 0, 0, 0, time.UTC)
	d := time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC)
	return model.Advert{
		ID: 5, Token: model.Token{0xab, 0xcd}, ExternalOfferID: 813811, OfferedAt: &at,
		SubjectCode: "NPRG030", SubjectName: "Programming I", DesiredDate: &d,
		ContactEmail: "author@example.com", Active: true,
	}
}

func newTestMailer() (*Mailer, *[]*email.Email) {
	var sent []*email.Email
	m := NewMailer(SMTPConfig{Host: "smtp.example.com", Port: 587, From: "noreply@example.com"}, discardLog)
	m.send = func(e *email.Email) error {
		sent = append(sent, e)
		return nil
	}
	return m, &sent
}

func TestMailerNotifyCreated(t *testing.T) {
	m, sent := newTestMailer()
	a := testAdvert()
	dates := []time.Time{time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 24, 0, 0, 0, 0, time.UTC)}
	url := "http://localhost:8080/advert?token=" + a.Token.String()

	if err := m.NotifyCreated(context.Background(), a.Generalize(), dates, url); err != nil {
		t.Fatalf("notify created: %v", err)
	}
	if len(*sent) != 1 {
		t.Fatalf("expected 1 mail, got %d", len(*sent))
	}
	mail := (*sent)[0]
	if diff := cmp.Diff([]string{"author@example.com"}, mail.To); diff != "" {
		t.Errorf("recipients mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff("Exam Exchange <noreply@example.com>", mail.From); diff != "" {
		t.Errorf("sender mismatch (-want +got):\n%s", diff)
	}
	body := string(mail.Text)
	for _, want := range []string{url, "2024-06-12 08:00", "2024-06-20, 2024-06-24"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
}

func TestMailerNotifyReply(t *testing.T) {
	m, sent := newTestMailer()
	delivered, err := m.NotifyReply(context.Background(), testAdvert(), "student@example.com", "  I have the 20th.  ")
	if err != nil {
		t.Fatalf("notify reply: %v", err)
	}
	if !delivered {
		t.Error("expected delivery")
	}
	mail := (*sent)[0]
	if diff := cmp.Diff([]string{"student@example.com"}, mail.ReplyTo); diff != "" {
		t.Errorf("reply-to mismatch (-want +got):\n%s", diff)
	}
	body := string(mail.Text)
	for _, want := range []string{"Programming I", "2024-06-20", "\n\nI have the 20th.\n\n"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
}

func TestMailerSendFailure(t *testing.T) {
	m, _ := newTestMailer()
	boom := errors.New("connection refused")
	m.send = func(*email.Email) error { return boom }

	delivered, err := m.NotifyReply(context.Background(), testAdvert(), "s@example.com", "hi")
	if !errors.Is(err, boom) {
		t.Errorf("expected send error, got %v", err)
	}
	if delivered {
		t.Error("failed send reported as delivered")
	}
	if err := m.NotifyCreated(context.Background(), testAdvert().Generalize(), nil, "u"); !errors.Is(err, boom) {
		t.Errorf("expected send error, got %v", err)
	}
}

func TestTelegramAnnounce(t *testing.T) {
	api := &mockAPI{}
	tg := &Telegram{api: api, chatID: -100123, log: discardLog}
	a := testAdvert()
	subjects := []model.Subject{{Code: "NPRG030", Name: "Programming I"}, {Code: "NPRG062", Name: "Introduction to Algorithms"}}
	dates := []time.Time{time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC)}

	if err := tg.Announce(context.Background(), a.Generalize(), subjects, dates); err != nil {
		t.Fatalf("announce: %v", err)
	}
	want := []sentMsg{{
		ChatID: -100123,
		Text: "New exam date on offer: 2024-06-12 08:00\n" +
			"  NPRG030 Programming I\n" +
			"  NPRG062 Introduction to Algorithms\n" +
			"Wanted: 2024-06-20\n",
	}}
	if diff := cmp.Diff(want, api.sent); diff != "" {
		t.Errorf("sent messages mismatch (-want +got):\n%s", diff)
	}

	api.err = errors.New("chat not found")
	if err := tg.Announce(context.Background(), a.Generalize(), subjects, dates); err == nil {
		t.Error("expected error from failing api")
	}
}

func TestFormatCreatedUnknownDate(t *testing.T) {
	got := FormatCreated(model.GeneralizedView{}, nil, "http://x/advert")
	if !strings.Contains(got, "Offered exam date: unknown\n") {
		t.Errorf("unexpected text:\n%s", got)
	}
	if strings.Contains(got, "Wanted in exchange") {
		t.Errorf("empty dates rendered:\n%s", got)
	}
}

func TestDiscard(t *testing.T) {
	var d Discard
	var _ Notifier = d
	var _ Announcer = d
	delivered, err := d.NotifyReply(context.Background(), testAdvert(), "s@example.com", "hi")
	if err != nil || delivered {
		t.Errorf("NotifyReply() = %v, %v; want false, nil", delivered, err)
	}
}
