package catalog

import (
	"qrmenu-backend/internal/models"

	"github.com/shopspring/decimal"
)

const currency = "FCFA"

// SubscriptionCatalog is the fixed set of pricing tiers. It is built once and
// never mutated, so it needs no locking.
type SubscriptionCatalog struct {
	order    []string
	packages map[string]models.SubscriptionPackage
}

func NewSubscriptionCatalog() *SubscriptionCatalog {
	pkgs := []models.SubscriptionPackage{
		{
			ID:       models.PackageBasic,
			Name:     "Basique",
			Price:    decimal.NewFromInt(15000),
			SetupFee: decimal.NewFromInt(25000),
			Currency: currency,
			Features: []string{
				"Menu digital avec QR code",
				"Jusqu'à 30 plats",
				"Mise à jour du menu (10 par mois)",
				"Support par email",
			},
		},
		{
			ID:       models.PackagePremium,
			Name:     "Premium",
			Price:    decimal.NewFromInt(25000),
			SetupFee: decimal.NewFromInt(35000),
			Currency: currency,
			Features: []string{
				"Menu digital avec QR code personnalisé",
				"Plats illimités",
				"Photos des plats",
				"Statistiques de scans",
				"Support prioritaire",
			},
		},
		{
			ID:       models.PackageEnterprise,
			Name:     "Entreprise",
			Price:    decimal.NewFromInt(50000),
			SetupFee: decimal.NewFromInt(50000),
			Currency: currency,
			Features: []string{
				"Tout le pack Premium",
				"Multi-établissements",
				"Menus multilingues",
				"Paiement par QR code",
				"Gestionnaire de compte dédié",
			},
		},
	}

	c := &SubscriptionCatalog{packages: make(map[string]models.SubscriptionPackage, len(pkgs))}
	for _, p := range pkgs {
		c.order = append(c.order, p.ID)
		c.packages[p.ID] = p
	}
	return c
}

func (c *SubscriptionCatalog) Get(id string) (models.SubscriptionPackage, bool) {
	p, ok := c.packages[id]
	if !ok {
		return models.SubscriptionPackage{}, false
	}
	return clonePackage(p), true
}

func (c *SubscriptionCatalog) IsValid(id string) bool {
	_, ok := c.packages[id]
	return ok
}

// List returns the packages from cheapest to most expensive.
func (c *SubscriptionCatalog) List() []models.SubscriptionPackage {
	res := make([]models.SubscriptionPackage, 0, len(c.order))
	for _, id := range c.order {
		res = append(res, clonePackage(c.packages[id]))
	}
	return res
}

// AmountDue is the monthly price, plus the setup fee on the first payment.
func (c *SubscriptionCatalog) AmountDue(id string, firstPayment bool) decimal.Decimal {
	p, ok := c.packages[id]
	if !ok {
		p = c.packages[models.DefaultSubscriptionPackage]
	}
	if firstPayment {
		return p.Price.Add(p.SetupFee)
	}
	return p.Price
}

func clonePackage(p models.SubscriptionPackage) models.SubscriptionPackage {
	p.Features = append([]string(nil), p.Features...)
	return p
}
