package admin

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"qrmenu-backend/internal/auth"
	"qrmenu-backend/internal/business"
	"qrmenu-backend/internal/config"
	"qrmenu-backend/internal/models"
	"qrmenu-backend/internal/web"
)

type BusinessResponse struct {
	models.Business
	Type models.BusinessType `json:"type"`
}

type UpdateBusinessRequest struct {
	Name                *string                `json:"name"`
	Address             *string                `json:"address"`
	Phone               *string                `json:"phone"`
	Email               *string                `json:"email" validate:"omitempty,email"`
	Owner               *string                `json:"owner"`
	Description         *string                `json:"description"`
	BusinessType        *string                `json:"business_type"`
	SubscriptionPackage *string                `json:"subscription_package" validate:"omitempty,oneof=basic premium enterprise"`
	Status              *models.BusinessStatus `json:"status" validate:"omitempty,oneof=Actif Inactif Suspendu"`
	PaymentStatus       *models.PaymentStatus  `json:"payment_status" validate:"omitempty,oneof=paid pending"`
}

type ConfirmRequest struct {
	Confirm bool `json:"confirm"`
}

func toResponse(store *business.Store, b models.Business) BusinessResponse {
	return BusinessResponse{Business: b, Type: store.TypeOf(b)}
}

func toResponses(store *business.Store, list []models.Business) []BusinessResponse {
	res := make([]BusinessResponse, 0, len(list))
	for _, b := range list {
		res = append(res, toResponse(store, b))
	}
	return res
}

// ----------------------------------------
// ENTREPRISES CRUD
// ----------------------------------------

// GET /api/admin/businesses?status=Actif&q=chez
func ListBusinessesHandler(store *business.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := models.BusinessStatus(c.Query("status"))
		q := strings.ToLower(strings.TrimSpace(c.Query("q")))

		var filtered []models.Business
		for _, b := range store.List() {
			if status != "" && b.Status != status {
				continue
			}
			if q != "" && !strings.Contains(strings.ToLower(b.Name), q) && !strings.Contains(strings.ToLower(b.Owner), q) {
				continue
			}
			filtered = append(filtered, b)
		}
		return c.JSON(toResponses(store, filtered))
	}
}

func GetBusinessHandler(store *business.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParseID(c, "id")
		if err != nil {
			return err
		}
		b, err := store.Get(id)
		if err != nil {
			return web.DomainError(err)
		}
		return c.JSON(toResponse(store, b))
	}
}

func CreateBusinessHandler(store *business.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body models.NewBusiness
		if err := web.ParseBody(c, &body); err != nil {
			return err
		}
		// validate:"required" lets a whitespace-only name through
		if strings.TrimSpace(body.Name) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Le nom de l'entreprise est obligatoire")
		}

		b := store.Add(body)
		return c.Status(fiber.StatusCreated).JSON(toResponse(store, b))
	}
}

func UpdateBusinessHandler(store *business.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParseID(c, "id")
		if err != nil {
			return err
		}

		var body UpdateBusinessRequest
		if err := web.ParseBody(c, &body); err != nil {
			return err
		}
		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Le nom de l'entreprise ne peut pas être vide")
			}
			body.Name = &name
		}

		b, err := store.UpdateDetails(id, models.BusinessPatch{
			Name:                body.Name,
			Address:             body.Address,
			Phone:               body.Phone,
			Email:               body.Email,
			Owner:               body.Owner,
			Description:         body.Description,
			BusinessType:        body.BusinessType,
			SubscriptionPackage: body.SubscriptionPackage,
			Status:              body.Status,
			PaymentStatus:       body.PaymentStatus,
		})
		if err != nil {
			return web.DomainError(err)
		}
		return c.JSON(toResponse(store, b))
	}
}

// DELETE moves the business to the trash.
func DeleteBusinessHandler(store *business.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParseID(c, "id")
		if err != nil {
			return err
		}
		if err := store.Delete(id); err != nil {
			return web.DomainError(err)
		}
		return c.JSON(fiber.Map{"message": "Entreprise déplacée dans la corbeille"})
	}
}

// ----------------------------------------
// STATUT / PAIEMENT
// ----------------------------------------

func ToggleStatusHandler(store *business.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParseID(c, "id")
		if err != nil {
			return err
		}
		b, err := store.ToggleStatus(id)
		if err != nil {
			return web.DomainError(err)
		}
		return c.JSON(toResponse(store, b))
	}
}

func SuspendBusinessHandler(store *business.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParseID(c, "id")
		if err != nil {
			return err
		}
		var body ConfirmRequest
		if err := web.ParseBody(c, &body); err != nil {
			return err
		}
		b, err := store.SuspendForNonPayment(id, body.Confirm)
		if err != nil {
			return web.DomainError(err)
		}
		return c.JSON(toResponse(store, b))
	}
}

func ReactivateBusinessHandler(store *business.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParseID(c, "id")
		if err != nil {
			return err
		}
		var body ConfirmRequest
		if err := web.ParseBody(c, &body); err != nil {
			return err
		}
		b, err := store.ReactivateAfterPayment(id, body.Confirm)
		if err != nil {
			return web.DomainError(err)
		}
		return c.JSON(toResponse(store, b))
	}
}

// ----------------------------------------
// QR CODES / ACCÈS CLIENT
// ----------------------------------------

func GenerateQRCodeHandler(store *business.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParseID(c, "id")
		if err != nil {
			return err
		}
		b, err := store.GenerateQRCode(id)
		if err != nil {
			return web.DomainError(err)
		}
		return c.JSON(fiber.Map{"qr_code_url": b.QRCodeURL, "business": toResponse(store, b)})
	}
}

func GeneratePaymentQRCodeHandler(store *business.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParseID(c, "id")
		if err != nil {
			return err
		}
		b, err := store.GeneratePaymentQRCode(id)
		if err != nil {
			return web.DomainError(err)
		}
		return c.JSON(fiber.Map{"payment_qr_code_url": b.PaymentQRCodeURL, "business": toResponse(store, b)})
	}
}

// POST /api/admin/businesses/:id/client-token mints a token for the owner's
// menu editor.
func ClientTokenHandler(cfg *config.Config, store *business.Store, logger *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParseID(c, "id")
		if err != nil {
			return err
		}
		b, err := store.Get(id)
		if err != nil {
			return web.DomainError(err)
		}
		if b.Status == models.StatusSuspended {
			return web.DomainError(models.ErrBusinessSuspended)
		}

		token, err := auth.GenerateToken(cfg.JWTSecret, auth.ClientUser(b))
		if err != nil {
			config.LogError(logger, "admin", "ClientTokenHandler", "sign client token", fiber.Map{"business_id": id}, err)
			return fiber.NewError(fiber.StatusInternalServerError, "Impossible de créer le token")
		}
		return c.JSON(fiber.Map{"token": token, "business_id": strconv.FormatInt(b.ID, 10), "expires_in": int(auth.TokenTTL.Seconds())})
	}
}
