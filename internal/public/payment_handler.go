package public

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"qrmenu-backend/internal/business"
	"qrmenu-backend/internal/catalog"
	"qrmenu-backend/internal/models"
	"qrmenu-backend/internal/payment"
	"qrmenu-backend/internal/web"
)

type PaymentPageResponse struct {
	BusinessID    string                     `json:"business_id"`
	BusinessName  string                     `json:"business_name"`
	Status        models.BusinessStatus      `json:"status"`
	PaymentStatus models.PaymentStatus       `json:"payment_status"`
	Package       models.SubscriptionPackage `json:"package"`
	AmountDue     decimal.Decimal            `json:"amount_due"`
	Methods       []string                   `json:"methods"`
}

type OpenSessionRequest struct {
	BusinessID int64 `json:"business_id,string" validate:"required"`
}

type InitiateRequest struct {
	Method string `json:"method" validate:"required,oneof=card mobile_money wave"`
}

var methods = []string{payment.MethodCard, payment.MethodMobileMoney, payment.MethodWave}

// GET /api/public/paiement-public?business={id} is the landing page of the
// payment QR code.
func PaymentPageHandler(store *business.Store, packages *catalog.SubscriptionCatalog) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.ParseInt(c.Query("business"), 10, 64)
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Paramètre business invalide")
		}
		b, err := store.Get(id)
		if err != nil {
			return web.DomainError(err)
		}

		pkg, ok := packages.Get(b.SubscriptionPackage)
		if !ok {
			pkg, _ = packages.Get(models.DefaultSubscriptionPackage)
		}
		return c.JSON(PaymentPageResponse{
			BusinessID:    strconv.FormatInt(b.ID, 10),
			BusinessName:  b.Name,
			Status:        b.Status,
			PaymentStatus: b.PaymentStatus,
			Package:       pkg,
			AmountDue:     packages.AmountDue(pkg.ID, b.LastPayment == nil),
			Methods:       methods,
		})
	}
}

func parseSessionID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("sessionId"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Identifiant de session invalide")
	}
	return id, nil
}

// ----------------------------------------
// SESSIONS DE PAIEMENT
// ----------------------------------------

// POST /api/public/payments opens a session. An unknown business answers
// 404 and no session is created.
func OpenSessionHandler(manager *payment.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body OpenSessionRequest
		if err := web.ParseBody(c, &body); err != nil {
			return err
		}
		s, err := manager.Open(body.BusinessID)
		if err != nil {
			return web.DomainError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(s.Snapshot())
	}
}

func GetSessionHandler(manager *payment.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseSessionID(c)
		if err != nil {
			return err
		}
		s, err := manager.Get(id)
		if err != nil {
			return web.DomainError(err)
		}
		return c.JSON(s.Snapshot())
	}
}

// POST /api/public/payments/:sessionId/initiate answers 202 while the charge
// runs; poll GET for the outcome.
func InitiateHandler(manager *payment.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseSessionID(c)
		if err != nil {
			return err
		}
		var body InitiateRequest
		if err := web.ParseBody(c, &body); err != nil {
			return err
		}
		s, err := manager.Get(id)
		if err != nil {
			return web.DomainError(err)
		}
		if err := s.Initiate(body.Method); err != nil {
			return web.DomainError(err)
		}
		return c.Status(fiber.StatusAccepted).JSON(s.Snapshot())
	}
}

func RetryHandler(manager *payment.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseSessionID(c)
		if err != nil {
			return err
		}
		s, err := manager.Get(id)
		if err != nil {
			return web.DomainError(err)
		}
		if err := s.Retry(); err != nil {
			return web.DomainError(err)
		}
		return c.JSON(s.Snapshot())
	}
}

// DELETE abandons the session, leaving the business untouched.
func CloseSessionHandler(manager *payment.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseSessionID(c)
		if err != nil {
			return err
		}
		if err := manager.Close(id); err != nil {
			return web.DomainError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
