package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"qrmenu-backend/internal/models"
)

type BusinessCreated struct {
	BusinessID int64
	Name       string
}

func (e BusinessCreated) Type() string { return TopicBusinessCreated }

type BusinessUpdated struct {
	BusinessID int64
	Name       string
}

func (e BusinessUpdated) Type() string { return TopicBusinessUpdated }

type BusinessStatusChanged struct {
	BusinessID       int64
	Name             string
	OldStatus        models.BusinessStatus
	NewStatus        models.BusinessStatus
	OldPaymentStatus models.PaymentStatus
	NewPaymentStatus models.PaymentStatus
}

func (e BusinessStatusChanged) Type() string { return TopicBusinessStatusChanged }

type BusinessDeleted struct {
	BusinessID int64
	Name       string
}

func (e BusinessDeleted) Type() string { return TopicBusinessDeleted }

type BusinessRestored struct {
	BusinessID int64
	Name       string
}

func (e BusinessRestored) Type() string { return TopicBusinessRestored }

type BusinessPurged struct {
	BusinessID int64
	Name       string
}

func (e BusinessPurged) Type() string { return TopicBusinessPurged }

type PaymentSucceeded struct {
	SessionID    uuid.UUID
	BusinessID   int64
	BusinessName string
	Amount       decimal.Decimal
	Method       string
	ReceiptID    uuid.UUID
	PaidAt       time.Time
}

func (e PaymentSucceeded) Type() string { return TopicPaymentSucceeded }

type PaymentFailed struct {
	SessionID    uuid.UUID
	BusinessID   int64
	BusinessName string
	Amount       decimal.Decimal
	Reason       string
}

func (e PaymentFailed) Type() string { return TopicPaymentFailed }
