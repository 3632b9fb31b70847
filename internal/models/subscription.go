package models

import "github.com/shopspring/decimal"

const (
	PackageBasic      = "basic"
	PackagePremium    = "premium"
	PackageEnterprise = "enterprise"
)

type SubscriptionPackage struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`     // mensuel
	SetupFee decimal.Decimal `json:"setup_fee"` // facturé au premier paiement
	Currency string          `json:"currency"`
	Features []string        `json:"features"`
}
