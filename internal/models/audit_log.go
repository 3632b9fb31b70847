package models

import "time"

type AuditAction string

const (
	AuditActionCreate  AuditAction = "create"
	AuditActionUpdate  AuditAction = "update"
	AuditActionStatus  AuditAction = "status"
	AuditActionDelete  AuditAction = "delete"
	AuditActionRestore AuditAction = "restore"
	AuditActionPurge   AuditAction = "purge"
	AuditActionPayment AuditAction = "payment"
)

type AuditLog struct {
	ID        int64     `json:"id,string"`
	CreatedAt time.Time `json:"created_at"`

	// "business" or "payment"
	EntityType string `json:"entity_type"`
	EntityID   int64  `json:"entity_id,string"`

	Action      AuditAction `json:"action"`
	Description string      `json:"description"`
}
