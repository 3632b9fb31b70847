package payment

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"qrmenu-backend/internal/catalog"
	"qrmenu-backend/internal/events"
	"qrmenu-backend/internal/models"
)

type ManagerOptions struct {
	Gateway   Gateway
	Store     BusinessStore
	Packages  *catalog.SubscriptionCatalog
	Publisher events.Publisher
	Now       func() time.Time
	Logger    *logrus.Logger
}

// Manager keeps the open payment sessions by id.
type Manager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session

	gateway   Gateway
	store     BusinessStore
	packages  *catalog.SubscriptionCatalog
	publisher events.Publisher
	now       func() time.Time
	logger    *logrus.Logger
}

func NewManager(opts ManagerOptions) *Manager {
	m := &Manager{
		sessions:  make(map[uuid.UUID]*Session),
		gateway:   opts.Gateway,
		store:     opts.Store,
		packages:  opts.Packages,
		publisher: opts.Publisher,
		now:       opts.Now,
		logger:    opts.Logger,
	}
	if m.packages == nil {
		m.packages = catalog.NewSubscriptionCatalog()
	}
	if m.publisher == nil {
		m.publisher = events.Nop{}
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.logger == nil {
		m.logger = logrus.StandardLogger()
	}
	return m
}

// Open binds a new session to an active business. The amount due is the
// package's monthly price, plus its setup fee on the first payment.
func (m *Manager) Open(businessID int64) (*Session, error) {
	b, err := m.store.Get(businessID)
	if err != nil {
		return nil, err
	}

	pkg := b.SubscriptionPackage
	if !m.packages.IsValid(pkg) {
		pkg = models.DefaultSubscriptionPackage
	}
	now := m.now()
	closed := make(chan struct{})
	close(closed)

	s := &Session{
		id:           uuid.New(),
		businessID:   b.ID,
		businessName: b.Name,
		pkg:          pkg,
		amount:       m.packages.AmountDue(pkg, b.LastPayment == nil),
		gateway:      m.gateway,
		store:        m.store,
		publisher:    m.publisher,
		now:          m.now,
		logger:       m.logger,
		state:        StateNone,
		createdAt:    now,
		updatedAt:    now,
		done:         closed,
	}

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()
	return s, nil
}

func (m *Manager) Get(id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, models.ErrSessionNotFound
	}
	return s, nil
}

// Close abandons the session and forgets it.
func (m *Manager) Close(id uuid.UUID) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return models.ErrSessionNotFound
	}
	s.Abandon()
	return nil
}

// Sweep drops sessions idle for longer than maxAge, abandoning pending ones.
func (m *Manager) Sweep(maxAge time.Duration) int {
	cutoff := m.now().Add(-maxAge)
	var stale []*Session

	m.mu.Lock()
	for id, s := range m.sessions {
		v := s.Snapshot()
		if v.UpdatedAt.Before(cutoff) {
			stale = append(stale, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range stale {
		s.Abandon()
	}
	return len(stale)
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CloseAll abandons every open session.
func (m *Manager) CloseAll() int {
	m.mu.Lock()
	open := m.sessions
	m.sessions = make(map[uuid.UUID]*Session)
	m.mu.Unlock()

	for _, s := range open {
		s.Abandon()
	}
	return len(open)
}
