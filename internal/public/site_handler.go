// Package public serves the unauthenticated pages: the marketing site, the
// menu reached by QR code and the subscription payment page.
package public

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"qrmenu-backend/internal/catalog"
	"qrmenu-backend/internal/models"
	"qrmenu-backend/internal/notification"
	"qrmenu-backend/internal/web"
)

type Feature struct {
	Key         string `json:"key"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

var features = []Feature{
	{Key: "qr-menu", Title: "Menu QR code", Description: "Vos clients scannent et consultent votre carte sans contact."},
	{Key: "live-edit", Title: "Modification en temps réel", Description: "Mettez à jour plats et prix depuis votre espace."},
	{Key: "stats", Title: "Statistiques", Description: "Suivez le nombre de scans de votre menu."},
	{Key: "payment", Title: "Paiement mobile", Description: "Réglez votre abonnement par carte, Wave ou mobile money."},
	{Key: "support", Title: "Support dédié", Description: "Une équipe disponible pour vous accompagner."},
}

type ContactRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone"`
	Message string `json:"message" validate:"required"`
}

type SubscriptionRequest struct {
	BusinessName        string `json:"business_name" validate:"required"`
	Owner               string `json:"owner" validate:"required"`
	Email               string `json:"email" validate:"required,email"`
	Phone               string `json:"phone" validate:"required"`
	Address             string `json:"address"`
	BusinessType        string `json:"business_type"`
	SubscriptionPackage string `json:"subscription_package" validate:"required,oneof=basic premium enterprise"`
	Message             string `json:"message"`
}

func PricingHandler(packages *catalog.SubscriptionCatalog) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(packages.List())
	}
}

func FeaturesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(features)
	}
}

func ContactHandler(log *notification.Log) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ContactRequest
		if err := web.ParseBody(c, &body); err != nil {
			return err
		}

		log.Add(models.NewNotification{
			Title:   "Nouveau message de contact",
			Message: fmt.Sprintf("%s <%s> : %s", strings.TrimSpace(body.Name), body.Email, strings.TrimSpace(body.Message)),
			Type:    models.NotificationInfo,
		})
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"message": "Merci, nous vous répondrons rapidement."})
	}
}

func SubscriptionRequestHandler(log *notification.Log, packages *catalog.SubscriptionCatalog, types *catalog.BusinessTypeRegistry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SubscriptionRequest
		if err := web.ParseBody(c, &body); err != nil {
			return err
		}

		pkg, _ := packages.Get(body.SubscriptionPackage)
		t := types.Get(body.BusinessType)
		log.Add(models.NewNotification{
			Title: "Nouvelle demande d'abonnement",
			Message: fmt.Sprintf("%s (%s) souhaite l'offre %s pour %s. Contact : %s, %s.",
				strings.TrimSpace(body.BusinessName), t.Label, pkg.Name, strings.TrimSpace(body.Owner), body.Email, body.Phone),
			Type: models.NotificationSuccess,
		})
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"message": "Votre demande a bien été reçue.",
			"package": pkg,
		})
	}
}
