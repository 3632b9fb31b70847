// Package menu manages the dishes of each business and the monthly quota of
// changes a client may make on its own menu.
package menu

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"qrmenu-backend/internal/models"
)

type Actor int

const (
	ActorAdmin Actor = iota
	ActorClient
)

// BusinessCounter is the part of the business store the menu keeps in sync.
type BusinessCounter interface {
	Get(id int64) (models.Business, error)
	SetMenuItemCount(id int64, n int) (models.Business, error)
}

type Quota struct {
	Limit     int  `json:"limit"`
	Used      int  `json:"used"`
	Remaining int  `json:"remaining"`
	Unlimited bool `json:"unlimited"`
}

type Service struct {
	mu    sync.RWMutex
	items map[int64][]models.MenuItem
	edits map[int64]int

	businesses BusinessCounter
	limit      int
	now        func() time.Time
	logger     *logrus.Logger
}

// NewService builds the menu service. limit <= 0 disables the client quota.
func NewService(businesses BusinessCounter, limit int, now func() time.Time, logger *logrus.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		items:      make(map[int64][]models.MenuItem),
		edits:      make(map[int64]int),
		businesses: businesses,
		limit:      limit,
		now:        now,
		logger:     logger,
	}
}

func (s *Service) List(businessID int64) ([]models.MenuItem, error) {
	if _, err := s.businesses.Get(businessID); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.MenuItem(nil), s.items[businessID]...), nil
}

// AvailableItems is what the public menu page shows.
func (s *Service) AvailableItems(businessID int64) []models.MenuItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.MenuItem
	for _, it := range s.items[businessID] {
		if it.Available {
			out = append(out, it)
		}
	}
	return out
}

// Add appends a dish and writes the new count to the business. The count is
// written under the service lock so concurrent writes land in order; if the
// write fails the dish and the quota charge are rolled back.
func (s *Service) Add(actor Actor, businessID int64, in models.MenuItemInput) (models.MenuItem, error) {
	if _, err := s.businesses.Get(businessID); err != nil {
		return models.MenuItem{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.consumeLocked(actor, businessID); err != nil {
		return models.MenuItem{}, err
	}
	now := s.now()
	item := models.MenuItem{
		ID:          uuid.New(),
		BusinessID:  businessID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Category:    strings.TrimSpace(in.Category),
		Price:       in.Price,
		Available:   true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.Available != nil {
		item.Available = *in.Available
	}
	prev := s.items[businessID]
	s.items[businessID] = append(prev[:len(prev):len(prev)], item)

	if err := s.syncCountLocked(businessID); err != nil {
		s.items[businessID] = prev
		s.refundLocked(actor, businessID)
		return models.MenuItem{}, err
	}
	return item, nil
}

func (s *Service) Update(actor Actor, businessID int64, itemID uuid.UUID, in models.MenuItemInput) (models.MenuItem, error) {
	if _, err := s.businesses.Get(businessID); err != nil {
		return models.MenuItem{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(businessID, itemID)
	if idx < 0 {
		return models.MenuItem{}, models.ErrMenuItemNotFound
	}
	if err := s.consumeLocked(actor, businessID); err != nil {
		return models.MenuItem{}, err
	}

	item := &s.items[businessID][idx]
	item.Name = strings.TrimSpace(in.Name)
	item.Description = in.Description
	item.Category = strings.TrimSpace(in.Category)
	item.Price = in.Price
	if in.Available != nil {
		item.Available = *in.Available
	}
	item.UpdatedAt = s.now()
	return *item, nil
}

func (s *Service) Delete(actor Actor, businessID int64, itemID uuid.UUID) error {
	if _, err := s.businesses.Get(businessID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(businessID, itemID)
	if idx < 0 {
		return models.ErrMenuItemNotFound
	}
	if err := s.consumeLocked(actor, businessID); err != nil {
		return err
	}
	prev := s.items[businessID]
	next := make([]models.MenuItem, 0, len(prev)-1)
	next = append(next, prev[:idx]...)
	s.items[businessID] = append(next, prev[idx+1:]...)

	if err := s.syncCountLocked(businessID); err != nil {
		s.items[businessID] = prev
		s.refundLocked(actor, businessID)
		return err
	}
	return nil
}

// Remaining reports the client's quota for the current month.
func (s *Service) Remaining(businessID int64) Quota {
	s.mu.RLock()
	defer s.mu.RUnlock()
	used := s.edits[businessID]
	if s.limit <= 0 {
		return Quota{Used: used, Unlimited: true}
	}
	remaining := s.limit - used
	if remaining < 0 {
		remaining = 0
	}
	return Quota{Limit: s.limit, Used: used, Remaining: remaining}
}

// ResetMonthlyCounters gives every client a fresh quota.
func (s *Service) ResetMonthlyCounters() {
	s.mu.Lock()
	n := len(s.edits)
	s.edits = make(map[int64]int)
	s.mu.Unlock()
	s.logger.WithField("businesses", n).Info("menu modification counters reset")
}

// Forget drops every item of a purged business.
func (s *Service) Forget(businessID int64) {
	s.mu.Lock()
	delete(s.items, businessID)
	delete(s.edits, businessID)
	s.mu.Unlock()
}

func (s *Service) consumeLocked(actor Actor, businessID int64) error {
	if actor != ActorClient || s.limit <= 0 {
		return nil
	}
	if s.edits[businessID] >= s.limit {
		return models.ErrModificationLimitReached
	}
	s.edits[businessID]++
	return nil
}

func (s *Service) refundLocked(actor Actor, businessID int64) {
	if actor != ActorClient || s.limit <= 0 {
		return
	}
	if s.edits[businessID] > 0 {
		s.edits[businessID]--
	}
}

func (s *Service) indexLocked(businessID int64, itemID uuid.UUID) int {
	for i, it := range s.items[businessID] {
		if it.ID == itemID {
			return i
		}
	}
	return -1
}

// syncCountLocked writes the current dish count to the business. Callers
// hold s.mu; the store never calls back into the menu while locked.
func (s *Service) syncCountLocked(businessID int64) error {
	if _, err := s.businesses.SetMenuItemCount(businessID, len(s.items[businessID])); err != nil {
		s.logger.WithField("business_id", businessID).WithError(err).Warn("menu item count not synced")
		return err
	}
	return nil
}
