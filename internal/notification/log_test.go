package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"qrmenu-backend/internal/models"
)

// --- Mocks ---

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg *gomail.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type recordingAlerter struct {
	mu     sync.Mutex
	alerts []models.Notification
}

func (a *recordingAlerter) Alert(n models.Notification) {
	a.mu.Lock()
	a.alerts = append(a.alerts, n)
	a.mu.Unlock()
}

// --- Setup ---

var testNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func setupLog(t *testing.T, mailer Mailer) (*Log, *recordingAlerter) {
	t.Helper()
	node, err := snowflake.NewNode(7)
	require.NoError(t, err)
	logger, _ := test.NewNullLogger()
	alerter := &recordingAlerter{}
	l, err := NewLog(LogOptions{
		Node:    node,
		Now:     func() time.Time { return testNow },
		Alerter: alerter,
		Mailer:  mailer,
		Logger:  logger,
	})
	require.NoError(t, err)
	return l, alerter
}

func info(title string) models.NewNotification {
	return models.NewNotification{Title: title, Message: title + " message", Type: models.NotificationInfo}
}

// --- Tests ---

func TestAdd_PrependsUnreadAndAlerts(t *testing.T) {
	l, alerter := setupLog(t, nil)

	first := l.Add(info("first"))
	second := l.Add(info("second"))

	list := l.List()
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.False(t, list[0].IsRead)
	assert.Equal(t, testNow, list[0].Timestamp)
	assert.Equal(t, 2, l.UnreadCount())
	assert.Len(t, alerter.alerts, 2)
}

func TestAdd_DefaultsUnknownTypeToInfo(t *testing.T) {
	l, _ := setupLog(t, nil)

	n := l.Add(models.NewNotification{Title: "t", Message: "m"})

	assert.Equal(t, models.NotificationInfo, n.Type)
}

func TestMarkAsRead(t *testing.T) {
	l, _ := setupLog(t, nil)
	a := l.Add(info("a"))
	l.Add(info("b"))

	require.NoError(t, l.MarkAsRead(a.ID))
	assert.Equal(t, 1, l.UnreadCount())

	got, err := l.Get(a.ID)
	require.NoError(t, err)
	assert.True(t, got.IsRead)

	assert.ErrorIs(t, l.MarkAsRead(42), models.ErrNotificationNotFound)
	assert.Equal(t, 1, l.UnreadCount())
}

func TestMarkAllAsRead_Idempotent(t *testing.T) {
	l, _ := setupLog(t, nil)
	l.Add(info("a"))
	l.Add(info("b"))
	l.Add(info("c"))

	assert.Equal(t, 3, l.MarkAllAsRead())
	assert.Equal(t, 0, l.UnreadCount())
	assert.Equal(t, 0, l.MarkAllAsRead())
}

func TestDelete(t *testing.T) {
	l, _ := setupLog(t, nil)
	a := l.Add(info("a"))
	b := l.Add(info("b"))

	require.NoError(t, l.Delete(a.ID))
	list := l.List()
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)

	assert.ErrorIs(t, l.Delete(a.ID), models.ErrNotificationNotFound)
	_, err := l.Get(a.ID)
	assert.ErrorIs(t, err, models.ErrNotificationNotFound)
}

func TestList_ReturnsCopy(t *testing.T) {
	l, _ := setupLog(t, nil)
	l.Add(info("a"))

	list := l.List()
	list[0].Title = "changed"

	assert.Equal(t, "a", l.List()[0].Title)
}

func TestSendEmailNotification_Success(t *testing.T) {
	mailer := new(MockMailer)
	mailer.On("Send", mock.Anything, mock.MatchedBy(func(msg *gomail.Message) bool {
		return len(msg.GetHeader("Subject")) == 1 && msg.GetHeader("Subject")[0] == "Rappel"
	})).Return(nil).Once()
	l, _ := setupLog(t, mailer)

	n, err := l.SendEmailNotification(context.Background(), "awa@example.com", "Awa", "Rappel", "Bonjour")

	require.NoError(t, err)
	assert.Equal(t, models.NotificationSuccess, n.Type)
	assert.Contains(t, n.Message, "Awa <awa@example.com>")
	assert.Len(t, l.List(), 1)
	mailer.AssertExpectations(t)
}

func TestSendEmailNotification_FailureRecordsError(t *testing.T) {
	mailer := new(MockMailer)
	mailer.On("Send", mock.Anything, mock.Anything).Return(errors.New("smtp down")).Once()
	l, _ := setupLog(t, mailer)

	n, err := l.SendEmailNotification(context.Background(), "awa@example.com", "", "Rappel", "Bonjour")

	require.Error(t, err)
	assert.Equal(t, models.NotificationError, n.Type)
	assert.Contains(t, n.Message, "awa@example.com")
	assert.Len(t, l.List(), 1)
	mailer.AssertExpectations(t)
}

func TestSimulatedMailer_CountsAndHonoursContext(t *testing.T) {
	logger, hook := test.NewNullLogger()
	m := NewSimulatedMailer(logger)

	require.NoError(t, m.Send(context.Background(), NewMessage("a@x.io", "b@x.io", "B", "Hi", "body")))
	assert.Equal(t, 1, m.Sent())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.Send(ctx, NewMessage("a@x.io", "b@x.io", "B", "Hi", "body")), context.Canceled)
	assert.Equal(t, 1, m.Sent())
}

func TestLogAlerter_LevelFollowsType(t *testing.T) {
	logger, hook := test.NewNullLogger()
	a := LogAlerter{Logger: logger}

	a.Alert(models.Notification{Title: "x", Type: models.NotificationError})
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	a.Alert(models.Notification{Title: "x", Type: models.NotificationWarning})
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	a.Alert(models.Notification{Title: "x", Type: models.NotificationSuccess})
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
}

func TestConcurrentAdd(t *testing.T) {
	l, _ := setupLog(t, nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Add(info("x"))
		}()
	}
	wg.Wait()

	assert.Len(t, l.List(), 50)
	assert.Equal(t, 50, l.UnreadCount())
}
