package booking

import (
	"context"
	"strings"
	"sync"
	"time"

	"bookingflow/internal/domain"
	"bookingflow/internal/domain/models"

	"github.com/sirupsen/logrus"
)

type PollState string

const (
	NotPolling PollState = "not_polling"
	Polling    PollState = "polling"
	Terminal   PollState = "terminal"
)

// PaymentPoller re-reads the payment status of one booking while it awaits
// validation: once immediately, then every interval. At most one loop runs;
// starting for the same booking is a no-op, for another booking replaces it.
type PaymentPoller struct {
	provider StatusProvider
	interval time.Duration
	apply    func(models.PaymentState)
	log      logrus.FieldLogger

	mu        sync.Mutex
	bookingID int64
	run       uint64
	cancel    context.CancelFunc
	state     PollState
}

// NewPaymentPoller builds a poller. apply receives every successfully read
// state; it runs on the poll goroutine.
func NewPaymentPoller(provider StatusProvider, interval time.Duration, apply func(models.PaymentState), log logrus.FieldLogger) *PaymentPoller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &PaymentPoller{
		provider: provider,
		interval: interval,
		apply:    apply,
		log:      log.WithField("module", "PAYMENT_POLL"),
		state:    NotPolling,
	}
}

// Start begins polling bookingID. It reports whether a new loop was started.
func (p *PaymentPoller) Start(parent context.Context, bookingID int64) bool {
	if bookingID <= 0 {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == Polling && p.bookingID == bookingID {
		return false
	}
	if p.cancel != nil {
		p.cancel()
	}

	ctx, cancel := context.WithCancel(parent)
	p.run++
	p.bookingID = bookingID
	p.cancel = cancel
	p.state = Polling

	go p.loop(ctx, p.run, bookingID)
	return true
}

// Stop tears the loop down. It never waits for the loop, so it is safe to
// call while the caller holds locks that apply needs.
func (p *PaymentPoller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.run++
	p.bookingID = 0
	p.state = NotPolling
}

// Finish marks polling of bookingID as done once its status has left
// awaiting validation through another path.
func (p *PaymentPoller) Finish(bookingID int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != Polling || p.bookingID != bookingID {
		return
	}
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.state = Terminal
}

func (p *PaymentPoller) State() PollState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *PaymentPoller) BookingID() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bookingID
}

func (p *PaymentPoller) loop(ctx context.Context, run uint64, bookingID int64) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.log.WithField("booking_id", bookingID).Debug("polling started")

	if p.tick(ctx, run, bookingID) {
		return
	}
	for {
		select {
		case <-ctx.Done():
			p.log.WithField("booking_id", bookingID).Debug("polling stopped")
			return
		case <-ticker.C:
			if p.tick(ctx, run, bookingID) {
				return
			}
		}
	}
}

// tick fetches once and reports whether polling is over.
func (p *PaymentPoller) tick(ctx context.Context, run uint64, bookingID int64) bool {
	st, err := p.provider.PaymentStatus(ctx, bookingID)
	if ctx.Err() != nil {
		return true
	}
	if err != nil {
		// status stays as it was; next tick retries
		p.log.WithField("booking_id", bookingID).WithError(err).Warn("status pembayaran gagal dibaca")
		return false
	}
	st.BookingID = bookingID
	if strings.TrimSpace(st.PaymentStatus) == "" {
		p.log.WithField("booking_id", bookingID).Warn("status pembayaran kosong, polling dilanjutkan")
		return false
	}
	p.apply(st)

	if domain.IsAwaitingValidation(st.PaymentStatus) {
		return false
	}

	p.mu.Lock()
	if p.run == run {
		p.state = Terminal
		if p.cancel != nil {
			p.cancel()
			p.cancel = nil
		}
	}
	p.mu.Unlock()
	p.log.WithFields(logrus.Fields{"booking_id": bookingID, "status": st.PaymentStatus}).Info("polling selesai")
	return true
}
