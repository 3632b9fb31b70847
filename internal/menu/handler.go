package menu

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"qrmenu-backend/internal/auth"
	"qrmenu-backend/internal/models"
	"qrmenu-backend/internal/web"
)

// businessFor resolves the business a request acts on: the route parameter
// for admins, the token's business for clients.
type businessFor func(c *fiber.Ctx) (int64, error)

func fromParam(c *fiber.Ctx) (int64, error) {
	return web.ParseID(c, "id")
}

func fromToken(c *fiber.Ctx) (int64, error) {
	id, ok := auth.BusinessID(c)
	if !ok {
		return 0, fiber.NewError(fiber.StatusForbidden, "Aucune entreprise associée à ce compte")
	}
	return id, nil
}

func parseItemID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("itemId"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Identifiant de plat invalide")
	}
	return id, nil
}

func listHandler(svc *Service, resolve businessFor) fiber.Handler {
	return func(c *fiber.Ctx) error {
		businessID, err := resolve(c)
		if err != nil {
			return err
		}
		items, err := svc.List(businessID)
		if err != nil {
			return web.DomainError(err)
		}
		if items == nil {
			items = []models.MenuItem{}
		}
		return c.JSON(items)
	}
}

func createHandler(svc *Service, actor Actor, resolve businessFor) fiber.Handler {
	return func(c *fiber.Ctx) error {
		businessID, err := resolve(c)
		if err != nil {
			return err
		}
		var body models.MenuItemInput
		if err := web.ParseBody(c, &body); err != nil {
			return err
		}
		if body.Price.IsNegative() {
			return fiber.NewError(fiber.StatusBadRequest, "Le prix ne peut pas être négatif")
		}
		item, err := svc.Add(actor, businessID, body)
		if err != nil {
			return web.DomainError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(item)
	}
}

func updateHandler(svc *Service, actor Actor, resolve businessFor) fiber.Handler {
	return func(c *fiber.Ctx) error {
		businessID, err := resolve(c)
		if err != nil {
			return err
		}
		itemID, err := parseItemID(c)
		if err != nil {
			return err
		}
		var body models.MenuItemInput
		if err := web.ParseBody(c, &body); err != nil {
			return err
		}
		if body.Price.IsNegative() {
			return fiber.NewError(fiber.StatusBadRequest, "Le prix ne peut pas être négatif")
		}
		item, err := svc.Update(actor, businessID, itemID, body)
		if err != nil {
			return web.DomainError(err)
		}
		return c.JSON(item)
	}
}

func deleteHandler(svc *Service, actor Actor, resolve businessFor) fiber.Handler {
	return func(c *fiber.Ctx) error {
		businessID, err := resolve(c)
		if err != nil {
			return err
		}
		itemID, err := parseItemID(c)
		if err != nil {
			return err
		}
		if err := svc.Delete(actor, businessID, itemID); err != nil {
			return web.DomainError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ----------------------------------------
// ADMIN: /api/admin/businesses/:id/menu-items
// ----------------------------------------

func AdminListHandler(svc *Service) fiber.Handler {
	return listHandler(svc, fromParam)
}

func AdminCreateHandler(svc *Service) fiber.Handler {
	return createHandler(svc, ActorAdmin, fromParam)
}

func AdminUpdateHandler(svc *Service) fiber.Handler {
	return updateHandler(svc, ActorAdmin, fromParam)
}

func AdminDeleteHandler(svc *Service) fiber.Handler {
	return deleteHandler(svc, ActorAdmin, fromParam)
}

// ----------------------------------------
// CLIENT: /api/client/menu-items
// ----------------------------------------

func ClientListHandler(svc *Service) fiber.Handler {
	return listHandler(svc, fromToken)
}

func ClientCreateHandler(svc *Service) fiber.Handler {
	return createHandler(svc, ActorClient, fromToken)
}

func ClientUpdateHandler(svc *Service) fiber.Handler {
	return updateHandler(svc, ActorClient, fromToken)
}

func ClientDeleteHandler(svc *Service) fiber.Handler {
	return deleteHandler(svc, ActorClient, fromToken)
}

func ClientQuotaHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		businessID, err := fromToken(c)
		if err != nil {
			return err
		}
		return c.JSON(svc.Remaining(businessID))
	}
}
