package models

import "time"

type BusinessStatus string

const (
	StatusActive    BusinessStatus = "Actif"
	StatusInactive  BusinessStatus = "Inactif"
	StatusSuspended BusinessStatus = "Suspendu"
)

func (s BusinessStatus) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "paid"
	PaymentPending PaymentStatus = "pending"
)

func (s PaymentStatus) IsValid() bool {
	return s == PaymentPaid || s == PaymentPending
}

const (
	DefaultBusinessType        = "restaurant"
	DefaultSubscriptionPackage = "basic"
)

// Business is a client establishment. Records are owned by the business store;
// everything handed out of the store is a copy.
type Business struct {
	ID                  int64          `json:"id,string"`
	Name                string         `json:"name"`
	Address             string         `json:"address"`
	Phone               string         `json:"phone"`
	Email               string         `json:"email"`
	Owner               string         `json:"owner"`
	Description         string         `json:"description,omitempty"`
	BusinessType        string         `json:"business_type"`
	SubscriptionPackage string         `json:"subscription_package"`
	Status              BusinessStatus `json:"status"`
	PaymentStatus       PaymentStatus  `json:"payment_status"`
	LastPayment         *time.Time     `json:"last_payment,omitempty"`
	MenuItems           int            `json:"menu_items"`
	TotalScans          int            `json:"total_scans"`
	QRCodeURL           string         `json:"qr_code_url,omitempty"`
	PaymentQRCodeURL    string         `json:"payment_qr_code_url,omitempty"`
	LastUpdate          time.Time      `json:"last_update"`
	CreatedAt           time.Time      `json:"created_at"`
}

// Clone returns a deep copy safe to hand out of the store.
func (b *Business) Clone() Business {
	c := *b
	if b.LastPayment != nil {
		lp := *b.LastPayment
		c.LastPayment = &lp
	}
	return c
}

type NewBusiness struct {
	Name                string         `json:"name" validate:"required"`
	Address             string         `json:"address"`
	Phone               string         `json:"phone"`
	Email               string         `json:"email" validate:"omitempty,email"`
	Owner               string         `json:"owner"`
	Description         string         `json:"description"`
	BusinessType        string         `json:"business_type"`
	SubscriptionPackage string         `json:"subscription_package"`
	Status              BusinessStatus `json:"status"`
}

// BusinessPatch is a sparse update: only non-nil fields are written.
type BusinessPatch struct {
	Name                *string         `json:"name"`
	Address             *string         `json:"address"`
	Phone               *string         `json:"phone"`
	Email               *string         `json:"email"`
	Owner               *string         `json:"owner"`
	Description         *string         `json:"description"`
	BusinessType        *string         `json:"business_type"`
	SubscriptionPackage *string         `json:"subscription_package"`
	Status              *BusinessStatus `json:"status"`
	PaymentStatus       *PaymentStatus  `json:"payment_status"`
	LastPayment         *time.Time      `json:"last_payment"`
	MenuItems           *int            `json:"menu_items"`
	TotalScans          *int            `json:"total_scans"`
	QRCodeURL           *string         `json:"qr_code_url"`
	PaymentQRCodeURL    *string         `json:"payment_qr_code_url"`
}

// CountersOnly reports whether p touches nothing but the usage counters.
func (p BusinessPatch) CountersOnly() bool {
	q := p
	q.MenuItems, q.TotalScans = nil, nil
	return q == BusinessPatch{} && p != BusinessPatch{}
}

// Apply merges the patch into b field by field.
func (b *Business) Apply(p BusinessPatch) {
	if p.Name != nil {
		b.Name = *p.Name
	}
	if p.Address != nil {
		b.Address = *p.Address
	}
	if p.Phone != nil {
		b.Phone = *p.Phone
	}
	if p.Email != nil {
		b.Email = *p.Email
	}
	if p.Owner != nil {
		b.Owner = *p.Owner
	}
	if p.Description != nil {
		b.Description = *p.Description
	}
	if p.BusinessType != nil {
		b.BusinessType = *p.BusinessType
	}
	if p.SubscriptionPackage != nil {
		b.SubscriptionPackage = *p.SubscriptionPackage
	}
	if p.Status != nil {
		b.Status = *p.Status
	}
	if p.PaymentStatus != nil {
		b.PaymentStatus = *p.PaymentStatus
	}
	if p.LastPayment != nil {
		lp := *p.LastPayment
		b.LastPayment = &lp
	}
	if p.MenuItems != nil {
		b.MenuItems = *p.MenuItems
	}
	if p.TotalScans != nil {
		b.TotalScans = *p.TotalScans
	}
	if p.QRCodeURL != nil {
		b.QRCodeURL = *p.QRCodeURL
	}
	if p.PaymentQRCodeURL != nil {
		b.PaymentQRCodeURL = *p.PaymentQRCodeURL
	}
}

type BusinessStats struct {
	Total          int `json:"total"`
	Active         int `json:"active"`
	Inactive       int `json:"inactive"`
	Suspended      int `json:"suspended"`
	PendingPayment int `json:"pending_payment"`
	TotalMenuItems int `json:"total_menu_items"`
	TotalScans     int `json:"total_scans"`
	InTrash        int `json:"in_trash"`
}
