package audit

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"qrmenu-backend/internal/models"
)

// GET /api/admin/audit-logs?business_id=...&action=status&limit=50
func ListLogsHandler(trail *Trail) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var f Filter
		if v := c.Query("business_id"); v != "" {
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "business_id invalide")
			}
			f.EntityID = id
		}
		f.Action = models.AuditAction(c.Query("action"))
		f.Limit = c.QueryInt("limit", 100)
		if f.Limit < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "limit invalide")
		}
		return c.JSON(trail.List(f))
	}
}
