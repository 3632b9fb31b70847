// Package payment runs the simulated subscription payment flow: one session
// per visit to the public payment page, charged through a Gateway.
package payment

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	MethodCard        = "card"
	MethodMobileMoney = "mobile_money"
	MethodWave        = "wave"
)

type ChargeRequest struct {
	BusinessID int64
	Amount     decimal.Decimal
	Method     string
}

type Receipt struct {
	ID     uuid.UUID       `json:"id"`
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method"`
	PaidAt time.Time       `json:"paid_at"`
}

// GatewayError is a declined charge, as opposed to a transport failure.
type GatewayError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (Receipt, error)
}

// SimulatedGateway waits Delay and then succeeds with probability SuccessRate.
type SimulatedGateway struct {
	Delay       time.Duration
	SuccessRate float64
	Now         func() time.Time

	mu   sync.Mutex
	rand *rand.Rand
}

func NewSimulatedGateway(delay time.Duration, successRate float64, seed int64) *SimulatedGateway {
	return &SimulatedGateway{
		Delay:       delay,
		SuccessRate: successRate,
		Now:         time.Now,
		rand:        rand.New(rand.NewSource(seed)),
	}
}

func (g *SimulatedGateway) Charge(ctx context.Context, req ChargeRequest) (Receipt, error) {
	timer := time.NewTimer(g.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return Receipt{}, ctx.Err()
	case <-timer.C:
	}

	g.mu.Lock()
	roll := g.rand.Float64()
	g.mu.Unlock()

	if roll >= g.SuccessRate {
		return Receipt{}, &GatewayError{Code: "declined", Message: "Paiement refusé, veuillez réessayer."}
	}
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	return Receipt{
		ID:     uuid.New(),
		Amount: req.Amount,
		Method: req.Method,
		PaidAt: now(),
	}, nil
}
