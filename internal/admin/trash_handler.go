package admin

import (
	"github.com/gofiber/fiber/v2"

	"qrmenu-backend/internal/business"
	"qrmenu-backend/internal/web"
)

// ----------------------------------------
// CORBEILLE
// ----------------------------------------

func ListTrashHandler(store *business.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(toResponses(store, store.Trash()))
	}
}

func RestoreBusinessHandler(store *business.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParseID(c, "id")
		if err != nil {
			return err
		}
		if err := store.Restore(id); err != nil {
			return web.DomainError(err)
		}
		b, err := store.Get(id)
		if err != nil {
			return web.DomainError(err)
		}
		return c.JSON(toResponse(store, b))
	}
}

func PermanentlyDeleteHandler(store *business.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParseID(c, "id")
		if err != nil {
			return err
		}
		if err := store.PermanentlyDelete(id); err != nil {
			return web.DomainError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func EmptyTrashHandler(store *business.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"deleted": store.EmptyTrash()})
	}
}
