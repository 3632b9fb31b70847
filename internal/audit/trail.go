// Package audit keeps the history of what happened to each business.
package audit

import (
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"

	"qrmenu-backend/internal/events"
	"qrmenu-backend/internal/models"
)

const (
	EntityBusiness = "business"
	EntityPayment  = "payment"

	DefaultCapacity = 1000
)

type Filter struct {
	EntityID int64
	Action   models.AuditAction
	Limit    int
}

// Trail is a bounded in-memory audit log, most recent first. The oldest
// entries are dropped once capacity is reached.
type Trail struct {
	mu       sync.RWMutex
	entries  []models.AuditLog
	capacity int

	node *snowflake.Node
	now  func() time.Time
}

func NewTrail(node *snowflake.Node, now func() time.Time, capacity int) *Trail {
	if now == nil {
		now = time.Now
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Trail{node: node, now: now, capacity: capacity}
}

func (t *Trail) Record(entityType string, entityID int64, action models.AuditAction, description string) models.AuditLog {
	entry := models.AuditLog{
		ID:          t.node.Generate().Int64(),
		CreatedAt:   t.now(),
		EntityType:  entityType,
		EntityID:    entityID,
		Action:      action,
		Description: description,
	}

	t.mu.Lock()
	t.entries = append([]models.AuditLog{entry}, t.entries...)
	if len(t.entries) > t.capacity {
		t.entries = t.entries[:t.capacity]
	}
	t.mu.Unlock()
	return entry
}

func (t *Trail) List(f Filter) []models.AuditLog {
	t.mu.RLock()
	defer t.mu.RUnlock()

	res := make([]models.AuditLog, 0)
	for _, e := range t.entries {
		if f.EntityID != 0 && e.EntityID != f.EntityID {
			continue
		}
		if f.Action != "" && e.Action != f.Action {
			continue
		}
		res = append(res, e)
		if f.Limit > 0 && len(res) == f.Limit {
			break
		}
	}
	return res
}

// Subscribe records every business and payment event.
func (t *Trail) Subscribe(bus *events.Bus) error {
	handlers := map[string]interface{}{
		events.TopicBusinessCreated: func(e events.BusinessCreated) {
			t.Record(EntityBusiness, e.BusinessID, models.AuditActionCreate, fmt.Sprintf("%s créée", e.Name))
		},
		events.TopicBusinessUpdated: func(e events.BusinessUpdated) {
			t.Record(EntityBusiness, e.BusinessID, models.AuditActionUpdate, fmt.Sprintf("%s modifiée", e.Name))
		},
		events.TopicBusinessStatusChanged: func(e events.BusinessStatusChanged) {
			t.Record(EntityBusiness, e.BusinessID, models.AuditActionStatus, fmt.Sprintf("%s : %s/%s → %s/%s",
				e.Name, e.OldStatus, e.OldPaymentStatus, e.NewStatus, e.NewPaymentStatus))
		},
		events.TopicBusinessDeleted: func(e events.BusinessDeleted) {
			t.Record(EntityBusiness, e.BusinessID, models.AuditActionDelete, fmt.Sprintf("%s mise à la corbeille", e.Name))
		},
		events.TopicBusinessRestored: func(e events.BusinessRestored) {
			t.Record(EntityBusiness, e.BusinessID, models.AuditActionRestore, fmt.Sprintf("%s restaurée", e.Name))
		},
		events.TopicBusinessPurged: func(e events.BusinessPurged) {
			t.Record(EntityBusiness, e.BusinessID, models.AuditActionPurge, fmt.Sprintf("%s supprimée définitivement", e.Name))
		},
		events.TopicPaymentSucceeded: func(e events.PaymentSucceeded) {
			t.Record(EntityPayment, e.BusinessID, models.AuditActionPayment, fmt.Sprintf("paiement %s FCFA reçu (reçu %s)", e.Amount.StringFixed(0), e.ReceiptID))
		},
		events.TopicPaymentFailed: func(e events.PaymentFailed) {
			t.Record(EntityPayment, e.BusinessID, models.AuditActionPayment, fmt.Sprintf("paiement refusé : %s", e.Reason))
		},
	}
	for topic, fn := range handlers {
		if err := bus.Subscribe(topic, fn); err != nil {
			return err
		}
	}
	return nil
}
