package public

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"qrmenu-backend/internal/business"
	"qrmenu-backend/internal/menu"
	"qrmenu-backend/internal/models"
	"qrmenu-backend/internal/web"
)

type PublicBusiness struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Address     string              `json:"address"`
	Phone       string              `json:"phone"`
	Description string              `json:"description,omitempty"`
	Type        models.BusinessType `json:"type"`
}

type MenuResponse struct {
	Business PublicBusiness    `json:"business"`
	Items    []models.MenuItem `json:"items"`
}

// GET /api/public/menu/:id serves the menu of an active business and counts
// the scan.
func MenuHandler(store *business.Store, menus *menu.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParseID(c, "id")
		if err != nil {
			return err
		}
		b, err := store.Get(id)
		if err != nil {
			return web.DomainError(err)
		}
		if b.Status != models.StatusActive {
			return fiber.NewError(fiber.StatusForbidden, "Ce menu est temporairement indisponible")
		}
		if _, err := store.RecordScan(id); err != nil {
			return web.DomainError(err)
		}

		items := menus.AvailableItems(id)
		if items == nil {
			items = []models.MenuItem{}
		}
		return c.JSON(MenuResponse{
			Business: PublicBusiness{
				ID:          strconv.FormatInt(b.ID, 10),
				Name:        b.Name,
				Address:     b.Address,
				Phone:       b.Phone,
				Description: b.Description,
				Type:        store.TypeOf(b),
			},
			Items: items,
		})
	}
}
