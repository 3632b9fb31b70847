package notification

import (
	"bytes"
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

type Mailer interface {
	Send(ctx context.Context, msg *gomail.Message) error
}

func NewMessage(from, to, toName, subject, body string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetAddressHeader("To", to, toName)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	return m
}

// SimulatedMailer renders the message but never opens a connection.
type SimulatedMailer struct {
	logger *logrus.Logger

	mu   sync.Mutex
	sent int
}

func NewSimulatedMailer(logger *logrus.Logger) *SimulatedMailer {
	return &SimulatedMailer{logger: logger}
}

func (m *SimulatedMailer) Send(ctx context.Context, msg *gomail.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		return errors.Wrap(err, "render email")
	}

	m.mu.Lock()
	m.sent++
	m.mu.Unlock()

	m.logger.WithFields(logrus.Fields{
		"to":      msg.GetHeader("To"),
		"subject": msg.GetHeader("Subject"),
		"bytes":   buf.Len(),
	}).Info("email simulated")
	return nil
}

func (m *SimulatedMailer) Sent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

type SMTPMailer struct {
	dialer *gomail.Dialer
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)}
}

func (m *SMTPMailer) Send(ctx context.Context, msg *gomail.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.dialer.DialAndSend(msg); err != nil {
		return errors.Wrapf(err, "smtp send to %s", m.dialer.Host)
	}
	return nil
}
