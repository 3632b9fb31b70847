package auth

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"qrmenu-backend/internal/config"
	"qrmenu-backend/internal/models"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Directory holds the single admin account configured at boot.
type Directory struct {
	admin models.User
}

func NewDirectory(email, password string) (*Directory, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &Directory{admin: models.User{
		ID:           1,
		Name:         "Administrateur",
		Email:        strings.TrimSpace(strings.ToLower(email)),
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}}, nil
}

// Authenticate returns the admin when the credentials match.
func (d *Directory) Authenticate(email, password string) (*models.User, bool) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email != d.admin.Email {
		return nil, false
	}
	if err := bcrypt.CompareHashAndPassword([]byte(d.admin.PasswordHash), []byte(password)); err != nil {
		return nil, false
	}
	u := d.admin
	return &u, true
}

type BusinessLookup interface {
	Get(id int64) (models.Business, error)
}

func LoginHandler(cfg *config.Config, dir *Directory) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corps de requête invalide")
		}

		user, ok := dir.Authenticate(body.Email, body.Password)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Email ou mot de passe incorrect")
		}

		token, err := GenerateToken(cfg.JWTSecret, user)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Impossible de créer le token")
		}

		return c.JSON(fiber.Map{
			"token": token,
			"user": fiber.Map{
				"id":    user.ID,
				"name":  user.Name,
				"email": user.Email,
				"role":  user.Role,
			},
		})
	}
}

func MeHandler(businesses BusinessLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		response := fiber.Map{
			"user_id": c.Locals(CtxUserIDKey),
			"role":    c.Locals(CtxUserRoleKey),
		}

		// client tokens also describe their business
		if id, ok := BusinessID(c); ok {
			response["business_id"] = strconv.FormatInt(id, 10)
			if b, err := businesses.Get(id); err == nil {
				response["business"] = fiber.Map{
					"id":      strconv.FormatInt(b.ID, 10),
					"name":    b.Name,
					"status":  b.Status,
					"address": b.Address,
					"phone":   b.Phone,
				}
			}
		}

		return c.JSON(response)
	}
}
