package models

import "errors"

var (
	ErrBusinessNotFound         = errors.New("business not found")
	ErrBusinessSuspended        = errors.New("business is suspended; reactivate it through payment")
	ErrConfirmationRequired     = errors.New("operator confirmation required")
	ErrSuspensionChange         = errors.New("suspension changes go through suspend or reactivate")
	ErrNotificationNotFound     = errors.New("notification not found")
	ErrSessionNotFound          = errors.New("payment session not found")
	ErrInvalidTransition        = errors.New("invalid payment session transition")
	ErrMenuItemNotFound         = errors.New("menu item not found")
	ErrModificationLimitReached = errors.New("monthly menu modification limit reached")
	ErrBusinessTypeNotFound     = errors.New("business type not found")
	ErrBusinessTypeExists       = errors.New("business type already exists")
	ErrDefaultBusinessType      = errors.New("default business type cannot be deleted")
)
