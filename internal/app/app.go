// Package app wires the console's services together. Everything lives in
// memory for the lifetime of the process.
package app

import (
	"time"
	_ "time/tzdata"

	"github.com/bwmarrin/snowflake"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"qrmenu-backend/internal/audit"
	"qrmenu-backend/internal/auth"
	"qrmenu-backend/internal/business"
	"qrmenu-backend/internal/catalog"
	"qrmenu-backend/internal/config"
	"qrmenu-backend/internal/dashboard"
	"qrmenu-backend/internal/events"
	"qrmenu-backend/internal/menu"
	"qrmenu-backend/internal/notification"
	"qrmenu-backend/internal/payment"
	"qrmenu-backend/internal/qrcode"
	"qrmenu-backend/internal/scheduler"
)

type Application struct {
	cfg    *config.Config
	logger *logrus.Logger
	now    func() time.Time

	node          *snowflake.Node
	types         *catalog.BusinessTypeRegistry
	packages      *catalog.SubscriptionCatalog
	qr            *qrcode.Builder
	bus           *events.Bus
	store         *business.Store
	notifications *notification.Log
	trail         *audit.Trail
	revenue       *dashboard.RevenueLedger
	campaign      *notification.Campaign
	payments      *payment.Manager
	menus         *menu.Service
	sched         *scheduler.Scheduler
	directory     *auth.Directory
}

// Options overrides the pieces tests need to control.
type Options struct {
	Now     func() time.Time
	Gateway payment.Gateway
	Mailer  notification.Mailer
}

func New(cfg *config.Config, logger *logrus.Logger, opts Options) (*Application, error) {
	loc := cfg.TimeLocation()
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().In(loc) }
	}

	a := &Application{
		cfg:      cfg,
		logger:   logger,
		now:      now,
		types:    catalog.NewBusinessTypeRegistry(),
		packages: catalog.NewSubscriptionCatalog(),
		qr:       qrcode.NewBuilder(cfg.QRServiceURL, cfg.PublicOrigin, cfg.QRSize),
		bus:      events.NewBus(),
		sched:    scheduler.New(loc, logger),
	}

	var err error
	if a.node, err = snowflake.NewNode(cfg.SnowflakeNode); err != nil {
		return nil, errors.Wrap(err, "snowflake node")
	}

	a.store, err = business.NewStore(business.StoreOptions{
		Node:      a.node,
		Types:     a.types,
		Packages:  a.packages,
		QR:        a.qr,
		Publisher: a.bus,
		Now:       now,
		Logger:    logger,
	})
	if err != nil {
		return nil, errors.Wrap(err, "business store")
	}

	mailer := opts.Mailer
	if mailer == nil {
		mailer = newMailer(cfg, logger)
	}
	a.notifications, err = notification.NewLog(notification.LogOptions{
		Node:     a.node,
		Now:      now,
		Mailer:   mailer,
		MailFrom: cfg.MailFrom,
		Logger:   logger,
	})
	if err != nil {
		return nil, errors.Wrap(err, "notification log")
	}
	a.trail = audit.NewTrail(a.node, now, audit.DefaultCapacity)
	a.revenue = dashboard.NewRevenueLedger()
	a.campaign = notification.NewCampaign(a.notifications, cfg.CampaignWorkers)

	gateway := opts.Gateway
	if gateway == nil {
		gateway = payment.NewSimulatedGateway(cfg.PaymentDelay, cfg.PaymentSuccessRate, time.Now().UnixNano())
	}
	a.payments = payment.NewManager(payment.ManagerOptions{
		Gateway:   gateway,
		Store:     a.store,
		Packages:  a.packages,
		Publisher: a.bus,
		Now:       now,
		Logger:    logger,
	})

	a.menus = menu.NewService(a.store, cfg.MenuMonthlyEditLimit, now, logger)

	if a.directory, err = auth.NewDirectory(cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return nil, errors.Wrap(err, "admin account")
	}

	if err := a.subscribe(); err != nil {
		return nil, err
	}
	return a, nil
}

func newMailer(cfg *config.Config, logger *logrus.Logger) notification.Mailer {
	if cfg.MailMode == "smtp" {
		return notification.NewSMTPMailer(notification.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
		})
	}
	return notification.NewSimulatedMailer(logger)
}

func (a *Application) subscribe() error {
	if err := a.notifications.Subscribe(a.bus); err != nil {
		return errors.Wrap(err, "notification subscriptions")
	}
	if err := a.trail.Subscribe(a.bus); err != nil {
		return errors.Wrap(err, "audit subscriptions")
	}
	if err := a.revenue.Subscribe(a.bus); err != nil {
		return errors.Wrap(err, "revenue subscription")
	}
	err := a.bus.Subscribe(events.TopicBusinessPurged, func(e events.BusinessPurged) {
		a.menus.Forget(e.BusinessID)
	})
	return errors.Wrap(err, "menu purge subscription")
}

// Start schedules the housekeeping jobs.
func (a *Application) Start() error {
	if err := a.sched.RegisterDefaults(a.menus, a.payments); err != nil {
		return err
	}
	a.sched.Start()
	a.logger.WithField("jobs", a.sched.Len()).Info("scheduler started")
	return nil
}

// Release stops the scheduler and abandons the open payment sessions.
func (a *Application) Release() {
	<-a.sched.Stop().Done()
	if n := a.payments.CloseAll(); n > 0 {
		a.logger.WithField("sessions", n).Info("payment sessions abandoned on shutdown")
	}
	a.bus.WaitAsync()
}

func (a *Application) Now() time.Time                         { return a.now() }
func (a *Application) Revenue() *dashboard.RevenueLedger      { return a.revenue }
func (a *Application) Config() *config.Config                 { return a.cfg }
func (a *Application) Logger() *logrus.Logger                 { return a.logger }
func (a *Application) Types() *catalog.BusinessTypeRegistry   { return a.types }
func (a *Application) Packages() *catalog.SubscriptionCatalog { return a.packages }
func (a *Application) QR() *qrcode.Builder                    { return a.qr }
func (a *Application) Bus() *events.Bus                       { return a.bus }
func (a *Application) Store() *business.Store                 { return a.store }
func (a *Application) Notifications() *notification.Log       { return a.notifications }
func (a *Application) Trail() *audit.Trail                    { return a.trail }
func (a *Application) Campaign() *notification.Campaign       { return a.campaign }
func (a *Application) Payments() *payment.Manager             { return a.payments }
func (a *Application) Menus() *menu.Service                   { return a.menus }
func (a *Application) Directory() *auth.Directory             { return a.directory }
