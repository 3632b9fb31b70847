package admin

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"qrmenu-backend/internal/models"
	"qrmenu-backend/internal/notification"
	"qrmenu-backend/internal/web"
)

type SendEmailRequest struct {
	Email   string `json:"email" validate:"required,email"`
	Name    string `json:"name"`
	Subject string `json:"subject" validate:"required"`
	Body    string `json:"body" validate:"required"`
}

type CampaignRequest struct {
	Recipients []notification.Recipient `json:"recipients" validate:"required,min=1,dive"`
	Subject    string                   `json:"subject" validate:"required"`
	Body       string                   `json:"body" validate:"required"`
}

func parseNotificationID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Identifiant de notification invalide")
	}
	return id, nil
}

// ----------------------------------------
// NOTIFICATIONS
// ----------------------------------------

// GET /api/admin/notifications?unread=true
func ListNotificationsHandler(log *notification.Log) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list := log.List()
		if c.QueryBool("unread") {
			unread := make([]models.Notification, 0, len(list))
			for _, n := range list {
				if !n.IsRead {
					unread = append(unread, n)
				}
			}
			list = unread
		}
		return c.JSON(list)
	}
}

func UnreadCountHandler(log *notification.Log) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"unread": log.UnreadCount()})
	}
}

func CreateNotificationHandler(log *notification.Log) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body models.NewNotification
		if err := web.ParseBody(c, &body); err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(log.Add(body))
	}
}

func MarkAsReadHandler(log *notification.Log) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseNotificationID(c)
		if err != nil {
			return err
		}
		if err := log.MarkAsRead(id); err != nil {
			return web.DomainError(err)
		}
		n, err := log.Get(id)
		if err != nil {
			return web.DomainError(err)
		}
		return c.JSON(n)
	}
}

func MarkAllAsReadHandler(log *notification.Log) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"updated": log.MarkAllAsRead()})
	}
}

func DeleteNotificationHandler(log *notification.Log) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseNotificationID(c)
		if err != nil {
			return err
		}
		if err := log.Delete(id); err != nil {
			return web.DomainError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ----------------------------------------
// EMAILS
// ----------------------------------------

func SendEmailHandler(log *notification.Log) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SendEmailRequest
		if err := web.ParseBody(c, &body); err != nil {
			return err
		}
		n, err := log.SendEmailNotification(c.UserContext(), body.Email, body.Name, body.Subject, body.Body)
		if err != nil {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "L'email n'a pas pu être envoyé", "notification": n})
		}
		return c.JSON(n)
	}
}

func CampaignHandler(campaign *notification.Campaign) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CampaignRequest
		if err := web.ParseBody(c, &body); err != nil {
			return err
		}
		res, err := campaign.Broadcast(c.UserContext(), body.Recipients, body.Subject, body.Body)
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}
