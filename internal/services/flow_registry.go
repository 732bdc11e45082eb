package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"bookingflow/internal/booking"
	"bookingflow/internal/domain"
	"bookingflow/internal/domain/models"
	"bookingflow/internal/utils"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const maxBufferedNotices = 50

// NoticeBuffer collects a flow's notices until the next response drains them.
type NoticeBuffer struct {
	mu      sync.Mutex
	notices []booking.Notice
}

func (b *NoticeBuffer) Notify(n booking.Notice) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notices = append(b.notices, n)
	if len(b.notices) > maxBufferedNotices {
		b.notices = b.notices[len(b.notices)-maxBufferedNotices:]
	}
}

func (b *NoticeBuffer) Drain() []booking.Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.notices
	b.notices = nil
	if out == nil {
		out = []booking.Notice{}
	}
	return out
}

// FlowSession is one browser's booking flow held by the gateway.
type FlowSession struct {
	ID      string
	Owner   string
	Flow    *booking.Flow
	Notices *NoticeBuffer

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *FlowSession) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *FlowSession) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// FlowBuilder wires a new flow for owner. The notifier must be passed to
// the flow's Deps.
type FlowBuilder func(owner string, notifier booking.Notifier) *booking.Flow

// SessionPurger deletes persisted sessions older than cutoff.
type SessionPurger interface {
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// FlowRegistry owns the live flows of the gateway and closes idle ones.
type FlowRegistry struct {
	build   FlowBuilder
	idleTTL time.Duration
	log     logrus.FieldLogger
	now     func() time.Time

	purger    SessionPurger
	retention time.Duration

	mu       sync.Mutex
	sessions map[string]*FlowSession
	cron     *cron.Cron
}

func NewFlowRegistry(build FlowBuilder, idleTTL time.Duration, log logrus.FieldLogger) *FlowRegistry {
	if idleTTL <= 0 {
		idleTTL = 30 * time.Minute
	}
	if log == nil {
		log = utils.Logger()
	}
	return &FlowRegistry{
		build:    build,
		idleTTL:  idleTTL,
		log:      log.WithField("module", "FLOW_REGISTRY"),
		now:      utils.NowUTC,
		sessions: map[string]*FlowSession{},
	}
}

// WithPurger makes the sweeper also drop persisted sessions older than
// retention.
func (r *FlowRegistry) WithPurger(p SessionPurger, retention time.Duration) *FlowRegistry {
	r.purger = p
	r.retention = retention
	return r
}

// Create starts a flow for owner. An empty owner gets a fresh key. With no
// category the flow tries to resume the owner's stored session.
func (r *FlowRegistry) Create(ctx context.Context, owner string, category models.Category) (*FlowSession, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		owner = uuid.NewString()
	}
	if category != "" && !category.Valid() {
		return nil, domain.ValidationError{Field: "category", Msg: "Kategori layanan tidak dikenal"}
	}

	notices := &NoticeBuffer{}
	flow := r.build(owner, notices)
	if err := flow.Start(ctx, category); err != nil {
		flow.Close()
		return nil, err
	}

	s := &FlowSession{
		ID:       uuid.NewString(),
		Owner:    owner,
		Flow:     flow,
		Notices:  notices,
		lastSeen: r.now(),
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	n := len(r.sessions)
	r.mu.Unlock()

	r.log.WithFields(logrus.Fields{"session_id": s.ID, "active": n}).Info("flow dibuat")
	return s, nil
}

// Get returns a live session and marks it as used.
func (r *FlowRegistry) Get(id string) (*FlowSession, error) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return nil, domain.NotFoundError{Resource: "sesi pemesanan"}
	}
	s.touch(r.now())
	return s, nil
}

// Remove abandons a session: its flow is closed and the stored session
// cleared.
func (r *FlowRegistry) Remove(ctx context.Context, id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return domain.NotFoundError{Resource: "sesi pemesanan"}
	}
	return s.Flow.Discard(ctx)
}

func (r *FlowRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep closes flows idle longer than the TTL. Their stored sessions are
// kept so the owner can still resume.
func (r *FlowRegistry) Sweep() int {
	cutoff := r.now().Add(-r.idleTTL)

	var idle []*FlowSession
	r.mu.Lock()
	for id, s := range r.sessions {
		if s.LastSeen().Before(cutoff) {
			idle = append(idle, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range idle {
		s.Flow.Close()
	}
	if len(idle) > 0 {
		r.log.WithField("closed", len(idle)).Info("flow idle ditutup")
	}
	return len(idle)
}

func (r *FlowRegistry) purge() {
	if r.purger == nil || r.retention <= 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	n, err := r.purger.PurgeBefore(ctx, r.now().Add(-r.retention))
	if err != nil {
		r.log.WithError(err).Warn("gagal membersihkan sesi tersimpan")
		return
	}
	if n > 0 {
		r.log.WithField("deleted", n).Info("sesi tersimpan lama dihapus")
	}
}

// StartSweeper schedules Sweep (and the purge, when configured) on spec,
// e.g. "@every 1m".
func (r *FlowRegistry) StartSweeper(spec string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cron != nil {
		return nil
	}
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { r.Sweep() }); err != nil {
		return fmt.Errorf("gagal menjadwalkan sweeper: %w", err)
	}
	if _, err := c.AddFunc("@hourly", r.purge); err != nil {
		return fmt.Errorf("gagal menjadwalkan purge sesi: %w", err)
	}
	c.Start()
	r.cron = c
	r.log.WithField("spec", spec).Info("sweeper flow aktif")
	return nil
}

// Shutdown stops the sweeper and closes every live flow.
func (r *FlowRegistry) Shutdown() {
	r.mu.Lock()
	c := r.cron
	r.cron = nil
	sessions := r.sessions
	r.sessions = map[string]*FlowSession{}
	r.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
	for _, s := range sessions {
		s.Flow.Close()
	}
}

// MemorySessions keeps one in-process session store per owner; it backs
// the gateway when no database is configured.
type MemorySessions struct {
	mu     sync.Mutex
	stores map[string]*booking.MemoryStore
}

func (m *MemorySessions) ForOwner(owner string) *booking.MemoryStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stores == nil {
		m.stores = map[string]*booking.MemoryStore{}
	}
	s, ok := m.stores[owner]
	if !ok {
		s = &booking.MemoryStore{}
		m.stores[owner] = s
	}
	return s
}
