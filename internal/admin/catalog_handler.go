package admin

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"qrmenu-backend/internal/catalog"
	"qrmenu-backend/internal/models"
	"qrmenu-backend/internal/qrcode"
	"qrmenu-backend/internal/web"
)

type UpdateBusinessTypeRequest struct {
	Label string `json:"label" validate:"required"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// ----------------------------------------
// TYPES D'ENTREPRISE
// ----------------------------------------

func ListBusinessTypesHandler(types *catalog.BusinessTypeRegistry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(types.List())
	}
}

func CreateBusinessTypeHandler(types *catalog.BusinessTypeRegistry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body models.BusinessType
		if err := web.ParseBody(c, &body); err != nil {
			return err
		}
		if err := types.Add(body); err != nil {
			return web.DomainError(err)
		}
		t, _ := types.Lookup(body.Key)
		return c.Status(fiber.StatusCreated).JSON(t)
	}
}

func UpdateBusinessTypeHandler(types *catalog.BusinessTypeRegistry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Params("key")
		var body UpdateBusinessTypeRequest
		if err := web.ParseBody(c, &body); err != nil {
			return err
		}
		if err := types.Update(key, models.BusinessType{Label: body.Label, Icon: body.Icon, Color: body.Color}); err != nil {
			return web.DomainError(err)
		}
		t, _ := types.Lookup(key)
		return c.JSON(t)
	}
}

func DeleteBusinessTypeHandler(types *catalog.BusinessTypeRegistry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := types.Delete(c.Params("key")); err != nil {
			return web.DomainError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ----------------------------------------
// ABONNEMENTS / QR
// ----------------------------------------

func ListSubscriptionsHandler(packages *catalog.SubscriptionCatalog) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(packages.List())
	}
}

// GET /api/admin/qr-preview?data=...&size=200&bg=%23ffffff&fg=000000
func QRPreviewHandler(qr *qrcode.Builder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		data := strings.TrimSpace(c.Query("data"))
		if data == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Le paramètre data est obligatoire")
		}
		size := c.QueryInt("size", qrcode.DefaultSize)
		if size < 50 || size > 1000 {
			return fiber.NewError(fiber.StatusBadRequest, "La taille doit être comprise entre 50 et 1000")
		}
		return c.JSON(fiber.Map{
			"url": qr.ImageURL(data, qrcode.Options{
				Size:       size,
				Background: c.Query("bg"),
				Foreground: c.Query("fg"),
			}),
		})
	}
}
