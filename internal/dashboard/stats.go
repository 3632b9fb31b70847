package dashboard

import (
	"sort"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"qrmenu-backend/internal/business"
	"qrmenu-backend/internal/catalog"
	"qrmenu-backend/internal/models"
)

const defaultTop = 5

type Bucket struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

type TopBusiness struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	TotalScans int    `json:"total_scans"`
}

type StatsResponse struct {
	models.BusinessStats
	UnreadNotifications int             `json:"unread_notifications"`
	MonthlyRevenue      decimal.Decimal `json:"monthly_revenue"` // abonnements payés et actifs
	PendingRevenue      decimal.Decimal `json:"pending_revenue"` // montant attendu des paiements en attente
	Currency            string          `json:"currency"`
	ByType              []Bucket        `json:"by_type"`
	ByPackage           []Bucket        `json:"by_package"`
	TopScanned          []TopBusiness   `json:"top_scanned"`
}

type UnreadCounter interface {
	UnreadCount() int
}

// BuildStats aggregates the dashboard numbers over the active businesses.
func BuildStats(businesses []models.Business, stats models.BusinessStats, types *catalog.BusinessTypeRegistry, packages *catalog.SubscriptionCatalog, unread, top int) StatsResponse {
	res := StatsResponse{
		BusinessStats:       stats,
		UnreadNotifications: unread,
		MonthlyRevenue:      decimal.Zero,
		PendingRevenue:      decimal.Zero,
		Currency:            "FCFA",
	}

	byType := map[string]int{}
	byPackage := map[string]int{}
	for _, b := range businesses {
		t := types.Get(b.BusinessType)
		byType[t.Key]++
		byPackage[b.SubscriptionPackage]++

		switch {
		case b.PaymentStatus == models.PaymentPaid && b.Status == models.StatusActive:
			res.MonthlyRevenue = res.MonthlyRevenue.Add(packages.AmountDue(b.SubscriptionPackage, false))
		case b.PaymentStatus == models.PaymentPending:
			res.PendingRevenue = res.PendingRevenue.Add(packages.AmountDue(b.SubscriptionPackage, b.LastPayment == nil))
		}
	}

	for key, n := range byType {
		res.ByType = append(res.ByType, Bucket{Key: key, Label: types.Get(key).Label, Count: n})
	}
	sortBuckets(res.ByType)

	for _, p := range packages.List() {
		if n := byPackage[p.ID]; n > 0 {
			res.ByPackage = append(res.ByPackage, Bucket{Key: p.ID, Label: p.Name, Count: n})
		}
	}

	ranked := append([]models.Business(nil), businesses...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].TotalScans > ranked[j].TotalScans })
	for i := 0; i < len(ranked) && i < top; i++ {
		if ranked[i].TotalScans == 0 {
			break
		}
		res.TopScanned = append(res.TopScanned, TopBusiness{
			ID:         strconv.FormatInt(ranked[i].ID, 10),
			Name:       ranked[i].Name,
			TotalScans: ranked[i].TotalScans,
		})
	}
	return res
}

func sortBuckets(b []Bucket) {
	sort.Slice(b, func(i, j int) bool {
		if b[i].Count != b[j].Count {
			return b[i].Count > b[j].Count
		}
		return b[i].Key < b[j].Key
	})
}

// GET /api/admin/stats?top=5
func StatsHandler(store *business.Store, types *catalog.BusinessTypeRegistry, packages *catalog.SubscriptionCatalog, notifications UnreadCounter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		top := c.QueryInt("top", defaultTop)
		if top < 0 || top > 50 {
			return fiber.NewError(fiber.StatusBadRequest, "top doit être compris entre 0 et 50")
		}
		return c.JSON(BuildStats(store.List(), store.Stats(), types, packages, notifications.UnreadCount(), top))
	}
}
