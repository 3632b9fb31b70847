package payment

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"qrmenu-backend/internal/events"
	"qrmenu-backend/internal/models"
)

type State string

const (
	StateNone      State = "none"
	StatePending   State = "pending"
	StateSuccess   State = "success"
	StateFailed    State = "failed"
	StateAbandoned State = "abandoned"
)

// Finished reports whether the session can no longer change on its own.
func (s State) Finished() bool {
	return s == StateSuccess || s == StateAbandoned
}

// BusinessStore is the slice of the business store a session needs.
type BusinessStore interface {
	Get(id int64) (models.Business, error)
	MarkPaid(id int64) (models.Business, error)
}

type SessionView struct {
	ID           uuid.UUID       `json:"id"`
	BusinessID   int64           `json:"business_id,string"`
	BusinessName string          `json:"business_name"`
	Package      string          `json:"subscription_package"`
	Amount       decimal.Decimal `json:"amount"`
	State        State           `json:"state"`
	Method       string          `json:"method,omitempty"`
	Receipt      *Receipt        `json:"receipt,omitempty"`
	Failure      string          `json:"failure,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Session walks none -> pending -> success|failed, with failed -> none on
// retry. The business is only written on a confirmed success.
type Session struct {
	id           uuid.UUID
	businessID   int64
	businessName string
	pkg          string
	amount       decimal.Decimal

	gateway   Gateway
	store     BusinessStore
	publisher events.Publisher
	now       func() time.Time
	logger    *logrus.Logger

	mu        sync.Mutex
	state     State
	method    string
	receipt   *Receipt
	failure   string
	createdAt time.Time
	updatedAt time.Time
	cancel    context.CancelFunc
	done      chan struct{}
}

func (s *Session) ID() uuid.UUID { return s.id }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Initiate starts a charge in the background. Only allowed from none.
func (s *Session) Initiate(method string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateNone {
		return errors.Wrapf(models.ErrInvalidTransition, "initiate from %s", s.state)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.state = StatePending
	s.method = method
	s.failure = ""
	s.cancel = cancel
	s.done = done
	s.updatedAt = s.now()

	go s.run(ctx, done, ChargeRequest{BusinessID: s.businessID, Amount: s.amount, Method: method})
	return nil
}

func (s *Session) run(ctx context.Context, done chan struct{}, req ChargeRequest) {
	defer close(done)

	receipt, err := s.gateway.Charge(ctx, req)

	s.mu.Lock()
	if s.state != StatePending {
		s.mu.Unlock()
		return
	}
	if err == nil {
		_, err = s.store.MarkPaid(s.businessID)
		if err != nil {
			err = errors.Wrap(err, "mark business paid")
		}
	}

	var ev events.Event
	if err != nil {
		s.state = StateFailed
		s.failure = failureReason(err)
		ev = events.PaymentFailed{
			SessionID:    s.id,
			BusinessID:   s.businessID,
			BusinessName: s.businessName,
			Amount:       s.amount,
			Reason:       s.failure,
		}
		s.logger.WithFields(logrus.Fields{"session_id": s.id, "business_id": s.businessID}).WithError(err).Warn("payment failed")
	} else {
		s.state = StateSuccess
		s.receipt = &receipt
		ev = events.PaymentSucceeded{
			SessionID:    s.id,
			BusinessID:   s.businessID,
			BusinessName: s.businessName,
			Amount:       s.amount,
			Method:       receipt.Method,
			ReceiptID:    receipt.ID,
			PaidAt:       receipt.PaidAt,
		}
		s.logger.WithFields(logrus.Fields{"session_id": s.id, "business_id": s.businessID, "receipt_id": receipt.ID}).Info("payment succeeded")
	}
	s.updatedAt = s.now()
	s.cancel()
	s.mu.Unlock()

	events.Emit(s.publisher, ev)
}

// Retry resets a failed session so it can be initiated again.
func (s *Session) Retry() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateFailed {
		return errors.Wrapf(models.ErrInvalidTransition, "retry from %s", s.state)
	}
	s.state = StateNone
	s.failure = ""
	s.updatedAt = s.now()
	return nil
}

// Abandon drops the session. A pending charge is cancelled and its outcome
// discarded; the business is never touched. Success is terminal and kept.
func (s *Session) Abandon() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateAbandoned || s.state == StateSuccess {
		return
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.state = StateAbandoned
	s.updatedAt = s.now()
}

// Done is closed when the current attempt resolves.
func (s *Session) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

func (s *Session) Snapshot() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := SessionView{
		ID:           s.id,
		BusinessID:   s.businessID,
		BusinessName: s.businessName,
		Package:      s.pkg,
		Amount:       s.amount,
		State:        s.state,
		Method:       s.method,
		Failure:      s.failure,
		CreatedAt:    s.createdAt,
		UpdatedAt:    s.updatedAt,
	}
	if s.receipt != nil {
		r := *s.receipt
		v.Receipt = &r
	}
	return v
}

func failureReason(err error) string {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr.Message
	}
	if errors.Is(err, models.ErrBusinessNotFound) {
		return "Entreprise introuvable."
	}
	return "Le paiement n'a pas pu être traité."
}
