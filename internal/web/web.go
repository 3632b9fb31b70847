// Package web holds the request helpers shared by the HTTP handlers.
package web

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"qrmenu-backend/internal/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate runs the struct tags of v.
func Validate(v interface{}) error {
	return validate.Struct(v)
}

// ProcessValidationErrors maps each failing field to its failing tag.
func ProcessValidationErrors(err error) map[string]string {
	out := make(map[string]string)
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return out
	}
	for _, ve := range ves {
		out[ve.Field()] = ve.Tag()
	}
	return out
}

// ParseBody decodes and validates the request body into dst.
func ParseBody(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Données invalides")
	}
	if err := Validate(dst); err != nil {
		var ves validator.ValidationErrors
		if errors.As(err, &ves) && len(ves) > 0 {
			return fiber.NewError(fiber.StatusBadRequest, validationMessage(ves[0]))
		}
		return fiber.NewError(fiber.StatusBadRequest, "Données invalides")
	}
	return nil
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Le champ " + fe.Field() + " est obligatoire"
	case "email":
		return "Le champ " + fe.Field() + " doit être un email valide"
	case "oneof":
		return "Le champ " + fe.Field() + " doit valoir l'une de : " + fe.Param()
	default:
		return "Le champ " + fe.Field() + " est invalide"
	}
}

// ParseID reads an int64 route parameter.
func ParseID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Identifiant invalide")
	}
	return id, nil
}

// DomainError turns store and service errors into HTTP errors. Anything
// unknown is returned as is and ends up as a 500.
func DomainError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, models.ErrBusinessNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Entreprise introuvable")
	case errors.Is(err, models.ErrBusinessSuspended):
		return fiber.NewError(fiber.StatusConflict, "Entreprise suspendue : la réactivation passe par un paiement")
	case errors.Is(err, models.ErrSuspensionChange):
		return fiber.NewError(fiber.StatusConflict, "La suspension se modifie via /suspend ou /reactivate")
	case errors.Is(err, models.ErrConfirmationRequired):
		return fiber.NewError(fiber.StatusBadRequest, "Confirmation requise pour cette action")
	case errors.Is(err, models.ErrNotificationNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Notification introuvable")
	case errors.Is(err, models.ErrSessionNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Session de paiement introuvable")
	case errors.Is(err, models.ErrInvalidTransition):
		return fiber.NewError(fiber.StatusConflict, "Action impossible dans l'état actuel du paiement")
	case errors.Is(err, models.ErrMenuItemNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Plat introuvable")
	case errors.Is(err, models.ErrModificationLimitReached):
		return fiber.NewError(fiber.StatusTooManyRequests, "Limite mensuelle de modifications du menu atteinte")
	case errors.Is(err, models.ErrBusinessTypeNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Type d'entreprise introuvable")
	case errors.Is(err, models.ErrBusinessTypeExists):
		return fiber.NewError(fiber.StatusConflict, "Ce type d'entreprise existe déjà")
	case errors.Is(err, models.ErrDefaultBusinessType):
		return fiber.NewError(fiber.StatusConflict, "Le type par défaut ne peut pas être supprimé")
	}
	return err
}
