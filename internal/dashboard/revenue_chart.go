package dashboard

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"qrmenu-backend/internal/events"
	"qrmenu-backend/internal/payment"
)

const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
)

type RevenueChartPoint struct {
	Label       string          `json:"label"` // jour, début de semaine ou début de mois
	Card        decimal.Decimal `json:"card"`
	MobileMoney decimal.Decimal `json:"mobile_money"`
	Wave        decimal.Decimal `json:"wave"`
	Total       decimal.Decimal `json:"total"`
	Payments    int             `json:"payments"`
}

type RevenueChartResponse struct {
	Period      string              `json:"period"`
	From        string              `json:"from"`
	To          string              `json:"to"`
	Currency    string              `json:"currency"`
	Points      []RevenueChartPoint `json:"points"`
	GrandTotals RevenueChartPoint   `json:"grand_totals"`
}

type ledgerEntry struct {
	PaidAt time.Time
	Method string
	Amount decimal.Decimal
}

// RevenueLedger remembers every successful subscription payment.
type RevenueLedger struct {
	mu      sync.RWMutex
	entries []ledgerEntry
}

func NewRevenueLedger() *RevenueLedger {
	return &RevenueLedger{}
}

func (l *RevenueLedger) Record(paidAt time.Time, method string, amount decimal.Decimal) {
	l.mu.Lock()
	l.entries = append(l.entries, ledgerEntry{PaidAt: paidAt, Method: method, Amount: amount})
	l.mu.Unlock()
}

func (l *RevenueLedger) Subscribe(bus *events.Bus) error {
	return bus.Subscribe(events.TopicPaymentSucceeded, func(e events.PaymentSucceeded) {
		l.Record(e.PaidAt, e.Method, e.Amount)
	})
}

func (l *RevenueLedger) snapshot() []ledgerEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]ledgerEntry(nil), l.entries...)
}

func defaultCount(period string) int {
	switch period {
	case PeriodWeekly:
		return 8
	case PeriodMonthly:
		return 12
	default:
		return 7
	}
}

func truncate(t time.Time, period string) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	switch period {
	case PeriodWeekly:
		// semaines du lundi au dimanche
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case PeriodMonthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	default:
		return day
	}
}

func step(t time.Time, period string, n int) time.Time {
	switch period {
	case PeriodWeekly:
		return t.AddDate(0, 0, 7*n)
	case PeriodMonthly:
		return t.AddDate(0, n, 0)
	default:
		return t.AddDate(0, 0, n)
	}
}

// BuildRevenueChart sums the ledger into count consecutive buckets ending
// with the one containing now. Empty buckets are kept so charts have no gaps.
func BuildRevenueChart(l *RevenueLedger, period string, count int, now time.Time) RevenueChartResponse {
	last := truncate(now, period)
	start := step(last, period, -(count - 1))
	end := step(last, period, 1)

	points := make([]RevenueChartPoint, count)
	for i := range points {
		points[i].Label = step(start, period, i).Format("2006-01-02")
	}

	var grand RevenueChartPoint
	for _, e := range l.snapshot() {
		at := e.PaidAt.In(now.Location())
		if at.Before(start) || !at.Before(end) {
			continue
		}
		bucket := truncate(at, period)
		i := 0
		for i < count-1 && !step(start, period, i+1).After(bucket) {
			i++
		}
		addPayment(&points[i], e)
		addPayment(&grand, e)
	}

	return RevenueChartResponse{
		Period:      period,
		From:        start.Format("2006-01-02"),
		To:          end.AddDate(0, 0, -1).Format("2006-01-02"),
		Currency:    "FCFA",
		Points:      points,
		GrandTotals: grand,
	}
}

func addPayment(p *RevenueChartPoint, e ledgerEntry) {
	switch e.Method {
	case payment.MethodCard:
		p.Card = p.Card.Add(e.Amount)
	case payment.MethodMobileMoney:
		p.MobileMoney = p.MobileMoney.Add(e.Amount)
	case payment.MethodWave:
		p.Wave = p.Wave.Add(e.Amount)
	}
	p.Total = p.Total.Add(e.Amount)
	p.Payments++
}

// GET /api/admin/revenue-chart?period=daily&count=7
func RevenueChartHandler(ledger *RevenueLedger, now func() time.Time) fiber.Handler {
	return func(c *fiber.Ctx) error {
		period := c.Query("period", PeriodDaily)
		switch period {
		case PeriodDaily, PeriodWeekly, PeriodMonthly:
		default:
			return fiber.NewError(fiber.StatusBadRequest, "period invalide (daily, weekly ou monthly)")
		}

		count := c.QueryInt("count", defaultCount(period))
		if count <= 0 || count > 366 {
			return fiber.NewError(fiber.StatusBadRequest, "count invalide")
		}

		return c.JSON(BuildRevenueChart(ledger, period, count, now()))
	}
}
