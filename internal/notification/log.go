// Package notification keeps the console's notification feed and sends the
// (simulated by default) emails behind it.
package notification

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sirupsen/logrus"

	"qrmenu-backend/internal/models"
)

// Alerter surfaces a freshly added notification to whoever is watching
// (toast in the console, log line on the server).
type Alerter interface {
	Alert(n models.Notification)
}

type LogAlerter struct {
	Logger *logrus.Logger
}

func (a LogAlerter) Alert(n models.Notification) {
	entry := a.Logger.WithFields(logrus.Fields{
		"notification_id": n.ID,
		"type":            n.Type,
		"business_id":     n.BusinessID,
	})
	switch n.Type {
	case models.NotificationError:
		entry.Error(n.Title)
	case models.NotificationWarning:
		entry.Warn(n.Title)
	default:
		entry.Info(n.Title)
	}
}

type LogOptions struct {
	Node     *snowflake.Node
	Now      func() time.Time
	Alerter  Alerter
	Mailer   Mailer
	MailFrom string
	Logger   *logrus.Logger
}

// Log is the notification feed, most recent first.
type Log struct {
	mu    sync.RWMutex
	items []models.Notification

	node     *snowflake.Node
	now      func() time.Time
	alerter  Alerter
	mailer   Mailer
	mailFrom string
	logger   *logrus.Logger
}

func NewLog(opts LogOptions) (*Log, error) {
	l := &Log{
		node:     opts.Node,
		now:      opts.Now,
		alerter:  opts.Alerter,
		mailer:   opts.Mailer,
		mailFrom: opts.MailFrom,
		logger:   opts.Logger,
	}
	if l.node == nil {
		node, err := snowflake.NewNode(2)
		if err != nil {
			return nil, err
		}
		l.node = node
	}
	if l.now == nil {
		l.now = time.Now
	}
	if l.logger == nil {
		l.logger = logrus.StandardLogger()
	}
	if l.alerter == nil {
		l.alerter = LogAlerter{Logger: l.logger}
	}
	if l.mailer == nil {
		l.mailer = NewSimulatedMailer(l.logger)
	}
	if l.mailFrom == "" {
		l.mailFrom = "no-reply@qrmenu.local"
	}
	return l, nil
}

// Add stores a new unread notification at the head of the feed and alerts.
func (l *Log) Add(in models.NewNotification) models.Notification {
	n := models.Notification{
		ID:           l.node.Generate().Int64(),
		Title:        in.Title,
		Message:      in.Message,
		Type:         in.Type,
		BusinessID:   in.BusinessID,
		BusinessName: in.BusinessName,
		Timestamp:    l.now(),
		IsRead:       false,
	}
	if !n.Type.IsValid() {
		n.Type = models.NotificationInfo
	}

	l.mu.Lock()
	l.items = append([]models.Notification{n}, l.items...)
	l.mu.Unlock()

	l.alerter.Alert(n)
	return n
}

func (l *Log) MarkAsRead(id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.items {
		if l.items[i].ID == id {
			l.items[i].IsRead = true
			return nil
		}
	}
	return models.ErrNotificationNotFound
}

// MarkAllAsRead returns how many notifications were flipped; a second call
// returns 0.
func (l *Log) MarkAllAsRead() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	flipped := 0
	for i := range l.items {
		if !l.items[i].IsRead {
			l.items[i].IsRead = true
			flipped++
		}
	}
	return flipped
}

func (l *Log) Delete(id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.items {
		if l.items[i].ID == id {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return nil
		}
	}
	return models.ErrNotificationNotFound
}

func (l *Log) UnreadCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	count := 0
	for _, n := range l.items {
		if !n.IsRead {
			count++
		}
	}
	return count
}

func (l *Log) Get(id int64) (models.Notification, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, n := range l.items {
		if n.ID == id {
			return n, nil
		}
	}
	return models.Notification{}, models.ErrNotificationNotFound
}

func (l *Log) List() []models.Notification {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]models.Notification(nil), l.items...)
}

// SendEmailNotification hands one email to the mailer and records the
// attempt in the feed. The returned notification documents the outcome.
func (l *Log) SendEmailNotification(ctx context.Context, email, name, subject, body string) (models.Notification, error) {
	err := l.deliver(ctx, email, name, subject, body)
	if err != nil {
		l.logger.WithFields(logrus.Fields{"recipient": email, "subject": subject}).WithError(err).Error("email delivery failed")
		n := l.Add(models.NewNotification{
			Title:   "Échec de l'envoi d'email",
			Message: fmt.Sprintf("L'email « %s » à %s n'a pas pu être envoyé.", subject, recipientLabel(email, name)),
			Type:    models.NotificationError,
		})
		return n, err
	}

	n := l.Add(models.NewNotification{
		Title:   "Email envoyé",
		Message: fmt.Sprintf("Email « %s » envoyé à %s.", subject, recipientLabel(email, name)),
		Type:    models.NotificationSuccess,
	})
	return n, nil
}

func (l *Log) deliver(ctx context.Context, email, name, subject, body string) error {
	msg := NewMessage(l.mailFrom, email, name, subject, body)
	return l.mailer.Send(ctx, msg)
}

func recipientLabel(email, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}
