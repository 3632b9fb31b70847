package main

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"

	"qrmenu-backend/internal/admin"
	"qrmenu-backend/internal/app"
	"qrmenu-backend/internal/audit"
	"qrmenu-backend/internal/auth"
	"qrmenu-backend/internal/dashboard"
	"qrmenu-backend/internal/menu"
	"qrmenu-backend/internal/models"
	"qrmenu-backend/internal/public"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func newServer(a *app.Application) *fiber.App {
	cfg := a.Config()
	logger := a.Logger()

	server := fiber.New(fiber.Config{
		AppName:     "qrmenu-backend",
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			logger.WithFields(logrus.Fields{"method": c.Method(), "path": c.Path()}).WithError(err).Error("unexpected error")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Erreur serveur inattendue",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	server.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))
	server.Use(requestLogger(logger))

	store := a.Store()
	types := a.Types()
	packages := a.Packages()
	notifications := a.Notifications()
	menus := a.Menus()
	payments := a.Payments()

	api := server.Group("/api")

	// Auth
	api.Post("/auth/login", auth.LoginHandler(cfg, a.Directory()))

	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))
	protected.Get("/auth/me", auth.MeHandler(store))

	// Admin
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))

	// Entreprises
	adminRoutes.Get("/businesses", admin.ListBusinessesHandler(store))
	adminRoutes.Post("/businesses", admin.CreateBusinessHandler(store))
	adminRoutes.Post("/businesses/import", admin.ImportBusinessesHandler(store, logger))
	adminRoutes.Get("/businesses/:id", admin.GetBusinessHandler(store))
	adminRoutes.Put("/businesses/:id", admin.UpdateBusinessHandler(store))
	adminRoutes.Delete("/businesses/:id", admin.DeleteBusinessHandler(store))
	adminRoutes.Post("/businesses/:id/toggle-status", admin.ToggleStatusHandler(store))
	adminRoutes.Post("/businesses/:id/suspend", admin.SuspendBusinessHandler(store))
	adminRoutes.Post("/businesses/:id/reactivate", admin.ReactivateBusinessHandler(store))
	adminRoutes.Post("/businesses/:id/qr-code", admin.GenerateQRCodeHandler(store))
	adminRoutes.Post("/businesses/:id/payment-qr-code", admin.GeneratePaymentQRCodeHandler(store))
	adminRoutes.Post("/businesses/:id/client-token", admin.ClientTokenHandler(cfg, store, logger))

	// Menus (admin)
	adminRoutes.Get("/businesses/:id/menu-items", menu.AdminListHandler(menus))
	adminRoutes.Post("/businesses/:id/menu-items", menu.AdminCreateHandler(menus))
	adminRoutes.Put("/businesses/:id/menu-items/:itemId", menu.AdminUpdateHandler(menus))
	adminRoutes.Delete("/businesses/:id/menu-items/:itemId", menu.AdminDeleteHandler(menus))

	// Corbeille
	adminRoutes.Get("/trash", admin.ListTrashHandler(store))
	adminRoutes.Delete("/trash", admin.EmptyTrashHandler(store))
	adminRoutes.Post("/trash/:id/restore", admin.RestoreBusinessHandler(store))
	adminRoutes.Delete("/trash/:id", admin.PermanentlyDeleteHandler(store))

	// Tableau de bord & export
	adminRoutes.Get("/stats", dashboard.StatsHandler(store, types, packages, notifications))
	adminRoutes.Get("/export/businesses.csv", admin.ExportCSVHandler(store, types, logger))
	adminRoutes.Get("/export/businesses.xlsx", admin.ExportXLSXHandler(store, types, logger))
	adminRoutes.Get("/qr-preview", admin.QRPreviewHandler(a.QR()))
	adminRoutes.Get("/revenue-chart", dashboard.RevenueChartHandler(a.Revenue(), a.Now))
	adminRoutes.Get("/audit-logs", audit.ListLogsHandler(a.Trail()))

	// Notifications
	adminRoutes.Get("/notifications", admin.ListNotificationsHandler(notifications))
	adminRoutes.Get("/notifications/unread-count", admin.UnreadCountHandler(notifications))
	adminRoutes.Post("/notifications", admin.CreateNotificationHandler(notifications))
	adminRoutes.Put("/notifications/read-all", admin.MarkAllAsReadHandler(notifications))
	adminRoutes.Put("/notifications/:id/read", admin.MarkAsReadHandler(notifications))
	adminRoutes.Delete("/notifications/:id", admin.DeleteNotificationHandler(notifications))
	adminRoutes.Post("/notifications/email", admin.SendEmailHandler(notifications))
	adminRoutes.Post("/notifications/campaign", admin.CampaignHandler(a.Campaign()))

	// Catalogue
	adminRoutes.Get("/business-types", admin.ListBusinessTypesHandler(types))
	adminRoutes.Post("/business-types", admin.CreateBusinessTypeHandler(types))
	adminRoutes.Put("/business-types/:key", admin.UpdateBusinessTypeHandler(types))
	adminRoutes.Delete("/business-types/:key", admin.DeleteBusinessTypeHandler(types))
	adminRoutes.Get("/subscriptions", admin.ListSubscriptionsHandler(packages))

	// Client (propriétaire d'une entreprise)
	clientRoutes := protected.Group("/client")
	clientRoutes.Use(auth.RequireRole(models.RoleClient))
	clientRoutes.Get("/menu-items", menu.ClientListHandler(menus))
	clientRoutes.Get("/menu-items/quota", menu.ClientQuotaHandler(menus))
	clientRoutes.Post("/menu-items", menu.ClientCreateHandler(menus))
	clientRoutes.Put("/menu-items/:itemId", menu.ClientUpdateHandler(menus))
	clientRoutes.Delete("/menu-items/:itemId", menu.ClientDeleteHandler(menus))

	// Public
	publicRoutes := api.Group("/public")
	publicRoutes.Get("/pricing", public.PricingHandler(packages))
	publicRoutes.Get("/features", public.FeaturesHandler())
	publicRoutes.Post("/contact", public.ContactHandler(notifications))
	publicRoutes.Post("/subscription-request", public.SubscriptionRequestHandler(notifications, packages, types))
	publicRoutes.Get("/menu/:id", public.MenuHandler(store, menus))
	publicRoutes.Get("/paiement-public", public.PaymentPageHandler(store, packages))
	publicRoutes.Post("/payments", public.OpenSessionHandler(payments))
	publicRoutes.Get("/payments/:sessionId", public.GetSessionHandler(payments))
	publicRoutes.Post("/payments/:sessionId/initiate", public.InitiateHandler(payments))
	publicRoutes.Post("/payments/:sessionId/retry", public.RetryHandler(payments))
	publicRoutes.Delete("/payments/:sessionId", public.CloseSessionHandler(payments))

	return server
}

func requestLogger(logger *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		} else if err != nil {
			status = fiber.StatusInternalServerError
		}

		entry := logger.WithFields(logrus.Fields{
			"method":  c.Method(),
			"path":    c.Path(),
			"status":  status,
			"latency": time.Since(start),
			"ip":      c.IP(),
		})
		if status >= fiber.StatusInternalServerError {
			entry.Warn("request")
		} else {
			entry.Debug("request")
		}
		return err
	}
}
