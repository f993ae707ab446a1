package notification

import (
	"context"
	"fmt"
	"html"

	"gopkg.in/gomail.v2"

	"servicematch/internal/domain/user"
	"servicematch/internal/logger"
)

// StoreSink persists events into the in-app inbox.
type StoreSink struct {
	repo *Repository
}

func NewStoreSink(repo *Repository) *StoreSink {
	return &StoreSink{repo: repo}
}

func (s *StoreSink) Name() string { return "store" }

func (s *StoreSink) Deliver(ctx context.Context, e Event) error {
	return s.repo.Create(ctx, fromEvent(e))
}

// LogSink writes a structured log line per event.
type LogSink struct{}

func (LogSink) Name() string { return "log" }

func (LogSink) Deliver(ctx context.Context, e Event) error {
	logger.CtxInfo(ctx, "notification",
		"recipient_id", e.UserID,
		"kind", e.Kind,
		"action_ref", e.ActionRef,
	)
	return nil
}

// RecipientLookup resolves the e-mail address of a user.
type RecipientLookup interface {
	FindByID(ctx context.Context, id int64) (*user.User, error)
}

type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailSink mails events to users that have an address on file.
type EmailSink struct {
	sender mailSender
	from   string
	users  RecipientLookup
}

func NewEmailSink(host string, port int, username, password, from string, users RecipientLookup) *EmailSink {
	return &EmailSink{
		sender: gomail.NewDialer(host, port, username, password),
		from:   from,
		users:  users,
	}
}

func (s *EmailSink) Name() string { return "email" }

func (s *EmailSink) Deliver(ctx context.Context, e Event) error {
	u, err := s.users.FindByID(ctx, e.UserID)
	if err != nil {
		return err
	}
	if u == nil || u.Email == "" {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", u.Email)
	m.SetHeader("Subject", e.Title)
	m.SetBody("text/html", fmt.Sprintf("<p>%s</p>", html.EscapeString(e.Message)))

	return s.sender.DialAndSend(m)
}
