package app

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrmenu-backend/internal/audit"
	"qrmenu-backend/internal/config"
	"qrmenu-backend/internal/menu"
	"qrmenu-backend/internal/models"
	"qrmenu-backend/internal/payment"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:            "0123456789abcdef0123456789abcdef",
		PublicOrigin:         "https://menu.example.com",
		QRServiceURL:         "https://qr.example.com/create",
		QRSize:               300,
		AdminEmail:           "admin@example.com",
		AdminPassword:        "secret",
		PaymentDelay:         time.Millisecond,
		PaymentSuccessRate:   1,
		MenuMonthlyEditLimit: 3,
		MailMode:             "simulated",
		MailFrom:             "no-reply@example.com",
		CampaignWorkers:      2,
		SnowflakeNode:        1,
		Location:             "UTC",
	}
}

func newTestApp(t *testing.T) *Application {
	t.Helper()
	logger, _ := test.NewNullLogger()
	a, err := New(testConfig(), logger, Options{})
	require.NoError(t, err)
	return a
}

func TestNew_WiresStoreEventsIntoNotifications(t *testing.T) {
	a := newTestApp(t)

	b := a.Store().Add(models.NewBusiness{Name: "Chez Awa"})
	_, err := a.Store().SuspendForNonPayment(b.ID, true)
	require.NoError(t, err)

	list := a.Notifications().List()
	require.Len(t, list, 2)
	assert.Equal(t, "Entreprise suspendue", list[0].Title)
	assert.Equal(t, "Nouvelle entreprise", list[1].Title)
}

func TestNew_PurgeForgetsMenu(t *testing.T) {
	a := newTestApp(t)
	b := a.Store().Add(models.NewBusiness{Name: "Pizzeria Roma"})
	_, err := a.Menus().Add(menu.ActorAdmin, b.ID, models.MenuItemInput{Name: "Margherita", Price: decimal.NewFromInt(4500)})
	require.NoError(t, err)

	require.NoError(t, a.Store().Delete(b.ID))
	require.NoError(t, a.Store().PermanentlyDelete(b.ID))

	assert.Empty(t, a.Menus().AvailableItems(b.ID))
}

func TestNew_QRBuilderUsesPublicOrigin(t *testing.T) {
	a := newTestApp(t)

	assert.Equal(t, "https://menu.example.com/menu/7", a.QR().MenuURL(7))
}

func TestNew_AdminDirectory(t *testing.T) {
	a := newTestApp(t)

	_, ok := a.Directory().Authenticate("admin@example.com", "secret")
	assert.True(t, ok)
}

func TestNew_RejectsBadSnowflakeNode(t *testing.T) {
	logger, _ := test.NewNullLogger()
	cfg := testConfig()
	cfg.SnowflakeNode = 5000

	_, err := New(cfg, logger, Options{})

	assert.Error(t, err)
}

func TestStartRelease(t *testing.T) {
	a := newTestApp(t)
	b := a.Store().Add(models.NewBusiness{Name: "Le Baobab"})
	s, err := a.Payments().Open(b.ID)
	require.NoError(t, err)

	require.NoError(t, a.Start())
	a.Release()

	assert.Equal(t, 0, a.Payments().Len())
	assert.Equal(t, payment.StateAbandoned, s.State())
}

func TestNew_WiresAuditTrail(t *testing.T) {
	a := newTestApp(t)

	b := a.Store().Add(models.NewBusiness{Name: "Chez Awa"})
	require.NoError(t, a.Store().Delete(b.ID))

	logs := a.Trail().List(audit.Filter{EntityID: b.ID})
	require.Len(t, logs, 2)
	assert.Equal(t, models.AuditActionDelete, logs[0].Action)
	assert.Equal(t, models.AuditActionCreate, logs[1].Action)
}
