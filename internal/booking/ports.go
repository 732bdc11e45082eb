// Package booking is the booking state machine: route/date/time/seat
// selection, server-side availability and quotes, passenger binding,
// submission, payment-status synchronization and the wizard orchestrator.
package booking

import (
	"context"
	"sync"

	"bookingflow/internal/apiclient"
	"bookingflow/internal/domain/models"

	"github.com/sirupsen/logrus"
)

// Backend is the subset of the travel API the flow drives directly.
// *apiclient.Client satisfies it.
type Backend interface {
	Stops(ctx context.Context) ([]models.Stop, error)
	BookedSeats(ctx context.Context, route models.Route, sched models.Schedule) ([]string, error)
	Quote(ctx context.Context, req apiclient.QuoteRequest) (models.Quote, error)
	CreateBooking(ctx context.Context, req apiclient.BookingRequest) (apiclient.BookingResult, error)
	SubmitPaymentProof(ctx context.Context, bookingID int64, proof models.PaymentProof) (models.PaymentState, error)
	ConfirmCash(ctx context.Context, bookingID int64) (models.PaymentState, error)
	Manifest(ctx context.Context, bookingID int64) (apiclient.Manifest, error)
}

// SessionStore persists the resumable part of a flow so an in-progress
// payment survives a reload. It is never the source of truth once a fresher
// server response exists.
type SessionStore interface {
	Load(ctx context.Context) (models.ResumableSession, bool, error)
	Save(ctx context.Context, s models.ResumableSession) error
	Clear(ctx context.Context) error
}

// InvoiceRevealer is told once per booking when payment is confirmed.
type InvoiceRevealer interface {
	RevealInvoice(bookingID int64, draft models.BookingDraft)
}

type InvoiceRevealerFunc func(bookingID int64, draft models.BookingDraft)

func (f InvoiceRevealerFunc) RevealInvoice(bookingID int64, draft models.BookingDraft) {
	f(bookingID, draft)
}

type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is a user-visible message (the toast of a browser client).
type Notice struct {
	Level   Level  `json:"level"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Notifier receives notices. Implementations must not call back into the
// Flow that produced the notice.
type Notifier interface {
	Notify(n Notice)
}

type NotifierFunc func(n Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

type logNotifier struct {
	log logrus.FieldLogger
}

func (l logNotifier) Notify(n Notice) {
	entry := l.log.WithFields(logrus.Fields{"code": n.Code})
	switch n.Level {
	case LevelError:
		entry.Error(n.Message)
	case LevelWarning:
		entry.Warn(n.Message)
	default:
		entry.Info(n.Message)
	}
}

// MemoryStore keeps one session in process memory. It backs standalone use
// and tests.
type MemoryStore struct {
	mu      sync.Mutex
	session *models.ResumableSession
}

func (m *MemoryStore) Load(_ context.Context) (models.ResumableSession, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return models.ResumableSession{}, false, nil
	}
	s := *m.session
	s.Draft = s.Draft.Clone()
	return s, true, nil
}

func (m *MemoryStore) Save(_ context.Context, s models.ResumableSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.Draft = s.Draft.Clone()
	m.session = &s
	return nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	return nil
}
