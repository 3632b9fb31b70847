package models

import "time"

type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)

func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationInfo, NotificationSuccess, NotificationWarning, NotificationError:
		return true
	}
	return false
}

type Notification struct {
	ID           int64            `json:"id,string"`
	Title        string           `json:"title"`
	Message      string           `json:"message"`
	Type         NotificationType `json:"type"`
	BusinessID   int64            `json:"business_id,string,omitempty"`
	BusinessName string           `json:"business_name,omitempty"`
	Timestamp    time.Time        `json:"timestamp"`
	IsRead       bool             `json:"is_read"`
}

type NewNotification struct {
	Title        string           `json:"title" validate:"required"`
	Message      string           `json:"message" validate:"required"`
	Type         NotificationType `json:"type" validate:"omitempty,oneof=info success warning error"`
	BusinessID   int64            `json:"business_id,string,omitempty"`
	BusinessName string           `json:"business_name,omitempty"`
}
