// Package business owns the client establishments: the active collection, the
// trash, and every status/payment transition applied to them.
package business

import (
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sirupsen/logrus"

	"qrmenu-backend/internal/catalog"
	"qrmenu-backend/internal/events"
	"qrmenu-backend/internal/models"
	"qrmenu-backend/internal/qrcode"
)

type StoreOptions struct {
	Node      *snowflake.Node
	Types     *catalog.BusinessTypeRegistry
	Packages  *catalog.SubscriptionCatalog
	QR        *qrcode.Builder
	Publisher events.Publisher
	Now       func() time.Time
	Logger    *logrus.Logger
}

// Store holds the active and trashed businesses. A record lives in exactly
// one of the two slices; moving it between them keeps the same pointer.
// All mutations go through a single mutex, and every field change goes
// through applyLocked so lastUpdate is always stamped.
type Store struct {
	mu     sync.RWMutex
	active []*models.Business
	trash  []*models.Business

	node      *snowflake.Node
	types     *catalog.BusinessTypeRegistry
	packages  *catalog.SubscriptionCatalog
	qr        *qrcode.Builder
	publisher events.Publisher
	now       func() time.Time
	logger    *logrus.Logger
}

func NewStore(opts StoreOptions) (*Store, error) {
	s := &Store{
		node:      opts.Node,
		types:     opts.Types,
		packages:  opts.Packages,
		qr:        opts.QR,
		publisher: opts.Publisher,
		now:       opts.Now,
		logger:    opts.Logger,
	}
	if s.node == nil {
		node, err := snowflake.NewNode(1)
		if err != nil {
			return nil, err
		}
		s.node = node
	}
	if s.types == nil {
		s.types = catalog.NewBusinessTypeRegistry()
	}
	if s.packages == nil {
		s.packages = catalog.NewSubscriptionCatalog()
	}
	if s.qr == nil {
		s.qr = qrcode.NewBuilder("https://api.qrserver.com/v1/create-qr-code/", "http://localhost:5173", qrcode.DefaultSize)
	}
	if s.publisher == nil {
		s.publisher = events.Nop{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = logrus.StandardLogger()
	}
	return s, nil
}

// ----------------------------------------
// CRÉATION / MISE À JOUR
// ----------------------------------------

// Add creates a business with a fresh id, zeroed counters and a pending
// payment. It never fails.
func (s *Store) Add(in models.NewBusiness) models.Business {
	now := s.now()

	b := &models.Business{
		ID:                  s.node.Generate().Int64(),
		Name:                strings.TrimSpace(in.Name),
		Address:             in.Address,
		Phone:               strings.TrimSpace(in.Phone),
		Email:               strings.ToLower(strings.TrimSpace(in.Email)),
		Owner:               in.Owner,
		Description:         in.Description,
		BusinessType:        strings.ToLower(strings.TrimSpace(in.BusinessType)),
		SubscriptionPackage: in.SubscriptionPackage,
		Status:              in.Status,
		PaymentStatus:       models.PaymentPending,
		MenuItems:           0,
		TotalScans:          0,
		LastUpdate:          now,
		CreatedAt:           now,
	}
	if b.BusinessType == "" {
		b.BusinessType = models.DefaultBusinessType
	}
	if !s.packages.IsValid(b.SubscriptionPackage) {
		b.SubscriptionPackage = models.DefaultSubscriptionPackage
	}
	if !b.Status.IsValid() {
		b.Status = models.StatusActive
	}

	s.mu.Lock()
	s.active = append(s.active, b)
	out := b.Clone()
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{"business_id": out.ID, "name": out.Name}).Info("business created")
	events.Emit(s.publisher, events.BusinessCreated{BusinessID: out.ID, Name: out.Name})
	return out
}

// Update merges the non-nil fields of p into the active business id and
// stamps lastUpdate. Unknown ids leave the store untouched and return
// ErrBusinessNotFound.
func (s *Store) Update(id int64, p models.BusinessPatch) (models.Business, error) {
	s.mu.Lock()
	out, evs, err := s.applyLocked(id, p)
	s.mu.Unlock()

	s.emit(evs)
	return out, err
}

// UpdateDetails is the operator edit path. It refuses any patch that would
// enter or leave Suspendu, or change the payment status of a suspended
// business: those go through SuspendForNonPayment and ReactivateAfterPayment.
func (s *Store) UpdateDetails(id int64, p models.BusinessPatch) (models.Business, error) {
	s.mu.Lock()
	_, b := findByID(s.active, id)
	if b == nil {
		s.mu.Unlock()
		return models.Business{}, models.ErrBusinessNotFound
	}
	if touchesSuspension(b, p) {
		out := b.Clone()
		s.mu.Unlock()
		return out, models.ErrSuspensionChange
	}
	out, evs, err := s.applyLocked(id, p)
	s.mu.Unlock()

	s.emit(evs)
	return out, err
}

func touchesSuspension(b *models.Business, p models.BusinessPatch) bool {
	if b.Status != models.StatusSuspended {
		return p.Status != nil && *p.Status == models.StatusSuspended
	}
	if p.Status != nil && *p.Status != models.StatusSuspended {
		return true
	}
	return p.PaymentStatus != nil && *p.PaymentStatus != b.PaymentStatus
}

func (s *Store) applyLocked(id int64, p models.BusinessPatch) (models.Business, []events.Event, error) {
	_, b := findByID(s.active, id)
	if b == nil {
		return models.Business{}, nil, models.ErrBusinessNotFound
	}

	oldStatus, oldPayment := b.Status, b.PaymentStatus
	b.Apply(p)
	b.LastUpdate = s.now()

	var evs []events.Event
	if !p.CountersOnly() {
		evs = append(evs, events.BusinessUpdated{BusinessID: b.ID, Name: b.Name})
	}
	if b.Status != oldStatus || b.PaymentStatus != oldPayment {
		evs = append(evs, events.BusinessStatusChanged{
			BusinessID:       b.ID,
			Name:             b.Name,
			OldStatus:        oldStatus,
			NewStatus:        b.Status,
			OldPaymentStatus: oldPayment,
			NewPaymentStatus: b.PaymentStatus,
		})
	}
	return b.Clone(), evs, nil
}

// ----------------------------------------
// CORBEILLE
// ----------------------------------------

// Delete moves the business to the trash.
func (s *Store) Delete(id int64) error {
	s.mu.Lock()
	idx, b := findByID(s.active, id)
	if b == nil {
		s.mu.Unlock()
		return models.ErrBusinessNotFound
	}
	s.active = removeAt(s.active, idx)
	s.trash = append(s.trash, b)
	name := b.Name
	s.mu.Unlock()

	s.logger.WithField("business_id", id).Info("business moved to trash")
	events.Emit(s.publisher, events.BusinessDeleted{BusinessID: id, Name: name})
	return nil
}

// Restore moves a trashed business back to the active collection.
func (s *Store) Restore(id int64) error {
	s.mu.Lock()
	idx, b := findByID(s.trash, id)
	if b == nil {
		s.mu.Unlock()
		return models.ErrBusinessNotFound
	}
	s.trash = removeAt(s.trash, idx)
	s.active = append(s.active, b)
	name := b.Name
	s.mu.Unlock()

	s.logger.WithField("business_id", id).Info("business restored from trash")
	events.Emit(s.publisher, events.BusinessRestored{BusinessID: id, Name: name})
	return nil
}

// PermanentlyDelete drops a trashed business. There is no way back.
func (s *Store) PermanentlyDelete(id int64) error {
	s.mu.Lock()
	idx, b := findByID(s.trash, id)
	if b == nil {
		s.mu.Unlock()
		return models.ErrBusinessNotFound
	}
	s.trash = removeAt(s.trash, idx)
	name := b.Name
	s.mu.Unlock()

	s.logger.WithField("business_id", id).Warn("business permanently deleted")
	events.Emit(s.publisher, events.BusinessPurged{BusinessID: id, Name: name})
	return nil
}

// EmptyTrash drops every trashed business and returns how many were purged.
func (s *Store) EmptyTrash() int {
	s.mu.Lock()
	purged := s.trash
	s.trash = nil
	s.mu.Unlock()

	for _, b := range purged {
		events.Emit(s.publisher, events.BusinessPurged{BusinessID: b.ID, Name: b.Name})
	}
	if len(purged) > 0 {
		s.logger.WithField("count", len(purged)).Warn("trash emptied")
	}
	return len(purged)
}

// ----------------------------------------
// STATUT / PAIEMENT
// ----------------------------------------

// ToggleStatus flips Actif and Inactif. A suspended business is refused:
// it can only come back through a payment.
func (s *Store) ToggleStatus(id int64) (models.Business, error) {
	s.mu.Lock()
	_, b := findByID(s.active, id)
	if b == nil {
		s.mu.Unlock()
		return models.Business{}, models.ErrBusinessNotFound
	}
	if b.Status == models.StatusSuspended {
		out := b.Clone()
		s.mu.Unlock()
		return out, models.ErrBusinessSuspended
	}

	next := models.StatusActive
	if b.Status == models.StatusActive {
		next = models.StatusInactive
	}
	out, evs, err := s.applyLocked(id, models.BusinessPatch{Status: &next})
	s.mu.Unlock()

	s.emit(evs)
	return out, err
}

// SuspendForNonPayment marks the business Suspendu with a pending payment.
func (s *Store) SuspendForNonPayment(id int64, confirmed bool) (models.Business, error) {
	if !confirmed {
		return models.Business{}, models.ErrConfirmationRequired
	}
	status, payment := models.StatusSuspended, models.PaymentPending
	return s.Update(id, models.BusinessPatch{Status: &status, PaymentStatus: &payment})
}

// ReactivateAfterPayment records a payment received out of band.
func (s *Store) ReactivateAfterPayment(id int64, confirmed bool) (models.Business, error) {
	if !confirmed {
		return models.Business{}, models.ErrConfirmationRequired
	}
	return s.MarkPaid(id)
}

// MarkPaid is the transition applied on a successful payment:
// Actif, paid, lastPayment = now.
func (s *Store) MarkPaid(id int64) (models.Business, error) {
	status, payment, now := models.StatusActive, models.PaymentPaid, s.now()
	return s.Update(id, models.BusinessPatch{Status: &status, PaymentStatus: &payment, LastPayment: &now})
}

// ----------------------------------------
// QR CODES / COMPTEURS
// ----------------------------------------

func (s *Store) GenerateQRCode(id int64) (models.Business, error) {
	u := s.qr.MenuQR(id)
	return s.Update(id, models.BusinessPatch{QRCodeURL: &u})
}

func (s *Store) GeneratePaymentQRCode(id int64) (models.Business, error) {
	u := s.qr.PaymentQR(id)
	return s.Update(id, models.BusinessPatch{PaymentQRCodeURL: &u})
}

// RecordScan counts one public menu view.
func (s *Store) RecordScan(id int64) (models.Business, error) {
	s.mu.Lock()
	_, b := findByID(s.active, id)
	if b == nil {
		s.mu.Unlock()
		return models.Business{}, models.ErrBusinessNotFound
	}
	scans := b.TotalScans + 1
	out, evs, err := s.applyLocked(id, models.BusinessPatch{TotalScans: &scans})
	s.mu.Unlock()

	s.emit(evs)
	return out, err
}

func (s *Store) SetMenuItemCount(id int64, n int) (models.Business, error) {
	return s.Update(id, models.BusinessPatch{MenuItems: &n})
}

// ----------------------------------------
// LECTURE
// ----------------------------------------

func (s *Store) Get(id int64) (models.Business, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, b := findByID(s.active, id)
	if b == nil {
		return models.Business{}, models.ErrBusinessNotFound
	}
	return b.Clone(), nil
}

func (s *Store) GetFromTrash(id int64) (models.Business, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, b := findByID(s.trash, id)
	if b == nil {
		return models.Business{}, models.ErrBusinessNotFound
	}
	return b.Clone(), nil
}

func (s *Store) List() []models.Business {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.active)
}

func (s *Store) Trash() []models.Business {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.trash)
}

func (s *Store) Stats() models.BusinessStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := models.BusinessStats{Total: len(s.active), InTrash: len(s.trash)}
	for _, b := range s.active {
		switch b.Status {
		case models.StatusActive:
			stats.Active++
		case models.StatusInactive:
			stats.Inactive++
		case models.StatusSuspended:
			stats.Suspended++
		}
		if b.PaymentStatus == models.PaymentPending {
			stats.PendingPayment++
		}
		stats.TotalMenuItems += b.MenuItems
		stats.TotalScans += b.TotalScans
	}
	return stats
}

func (s *Store) TypeOf(b models.Business) models.BusinessType {
	return s.types.Get(b.BusinessType)
}

func (s *Store) emit(evs []events.Event) {
	for _, e := range evs {
		events.Emit(s.publisher, e)
	}
}

func findByID(list []*models.Business, id int64) (int, *models.Business) {
	for i, b := range list {
		if b.ID == id {
			return i, b
		}
	}
	return -1, nil
}

func removeAt(list []*models.Business, idx int) []*models.Business {
	copy(list[idx:], list[idx+1:])
	list[len(list)-1] = nil
	return list[:len(list)-1]
}

func cloneAll(list []*models.Business) []models.Business {
	res := make([]models.Business, 0, len(list))
	for _, b := range list {
		res = append(res, b.Clone())
	}
	return res
}
