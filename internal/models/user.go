package models

type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleClient UserRole = "client"
)

// User is the console operator. There is a single admin account configured
// at boot; client identities are derived from a business.
type User struct {
	ID           uint     `json:"id"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	PasswordHash string   `json:"-"`
	Role         UserRole `json:"role"`
	BusinessID   *int64   `json:"business_id,omitempty"`
}
