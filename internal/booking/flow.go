package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	"bookingflow/internal/domain"
	"bookingflow/internal/domain/models"
	"bookingflow/internal/utils"

	"github.com/sirupsen/logrus"
)

// Config carries the advisory business constants. The backend is
// authoritative for all of them.
type Config struct {
	MaxSeats     int
	PollInterval time.Duration
	Paid         PaidPredicate
	AdminFees    map[string]int64
}

func DefaultConfig() Config {
	return Config{
		MaxSeats:     6,
		PollInterval: 5 * time.Second,
		Paid:         NewPaidPredicate([]string{"lunas", "paid", "sukses", "success", "settlement", "pembayaran sukses", "approved"}, true),
		AdminFees: map[string]int64{
			domain.MethodTransfer: 2500,
			domain.MethodQRIS:     1500,
		},
	}
}

// Deps are the flow's collaborators. Backend is required; the rest default
// to no-op or logging implementations.
type Deps struct {
	Backend  Backend
	Status   StatusProvider
	Store    SessionStore
	Notifier Notifier
	Revealer InvoiceRevealer
	Logger   logrus.FieldLogger
}

type revealArgs struct {
	bookingID int64
	draft     models.BookingDraft
}

// Flow owns one booking draft and the wizard around it. All exported methods
// are safe for concurrent use; the draft has a single writer (the flow lock).
type Flow struct {
	backend  Backend
	status   StatusProvider
	store    SessionStore
	notifier Notifier
	revealer InvoiceRevealer
	cfg      Config
	log      logrus.FieldLogger

	baseCtx    context.Context
	baseCancel context.CancelFunc
	poller     *PaymentPoller

	mu          sync.Mutex
	settled     *sync.Cond
	inflight    int
	step        Step
	draft       models.BookingDraft
	stops       []models.Stop
	booked      map[string]bool
	submitting  bool
	editVersion uint64
	revealedFor int64
	closed      bool
	seatGuard   fetchGuard
	quoteGuard  fetchGuard

	// side effects queued under the lock, run by unlock
	outbox        []Notice
	pendingSave   *models.ResumableSession
	pendingClear  bool
	pendingReveal *revealArgs
}

func NewFlow(deps Deps, cfg Config) *Flow {
	def := DefaultConfig()
	if cfg.MaxSeats <= 0 {
		cfg.MaxSeats = def.MaxSeats
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.Paid.tokens == nil {
		cfg.Paid = def.Paid
	}
	if cfg.AdminFees == nil {
		cfg.AdminFees = def.AdminFees
	}

	log := deps.Logger
	if log == nil {
		log = utils.Logger()
	}
	log = log.WithField("module", "BOOKING_FLOW")

	f := &Flow{
		backend:  deps.Backend,
		status:   deps.Status,
		store:    deps.Store,
		notifier: deps.Notifier,
		revealer: deps.Revealer,
		cfg:      cfg,
		log:      log,
		step:     StepCategory,
		booked:   map[string]bool{},
		draft:    models.BookingDraft{BookingFor: models.BookingForSelf},
	}
	if f.status == nil {
		if src, ok := deps.Backend.(StatusSource); ok {
			f.status = NewStatusChain(src)
		} else {
			f.status = FallbackProvider{}
		}
	}
	if f.store == nil {
		f.store = &MemoryStore{}
	}
	if f.notifier == nil {
		f.notifier = logNotifier{log: log}
	}
	if f.revealer == nil {
		f.revealer = InvoiceRevealerFunc(func(int64, models.BookingDraft) {})
	}
	f.settled = sync.NewCond(&f.mu)
	f.baseCtx, f.baseCancel = context.WithCancel(context.Background())
	f.poller = NewPaymentPoller(f.status, cfg.PollInterval, f.applyPayment, log)
	return f
}

// Start enters the wizard. Without a requested category, a stored session
// holding a booking id is rehydrated straight into the review step so a
// reload does not lose an in-flight payment.
func (f *Flow) Start(ctx context.Context, requested models.Category) error {
	resumed := false
	if requested == "" {
		sess, ok, err := f.store.Load(ctx)
		switch {
		case err != nil:
			f.log.WithError(err).Warn("gagal membaca sesi tersimpan")
		case ok && sess.BookingID > 0:
			f.mu.Lock()
			f.resumeLocked(sess)
			f.unlock()
			resumed = true
		}
	}

	f.LoadStops(ctx)

	if !resumed && requested != "" {
		return f.ChooseCategory(requested)
	}
	return nil
}

func (f *Flow) resumeLocked(sess models.ResumableSession) {
	f.draft = sess.Draft.Clone()
	f.draft.BookingID = sess.BookingID
	f.step = StepReview
	f.editVersion++
	f.log.WithField("booking_id", sess.BookingID).Info("sesi pemesanan dilanjutkan")
	f.afterPaymentChangeLocked()
}

// Wait blocks until in-flight seat and quote refreshes have settled.
func (f *Flow) Wait() {
	f.mu.Lock()
	for f.inflight > 0 {
		f.settled.Wait()
	}
	f.mu.Unlock()
}

// Close tears down background work (fetches, payment polling).
func (f *Flow) Close() {
	f.mu.Lock()
	defer f.unlock()
	if f.closed {
		return
	}
	f.closed = true
	f.seatGuard.stop()
	f.quoteGuard.stop()
	f.poller.Stop()
	f.baseCancel()
}

// Discard ends the flow (completed or abandoned) and forgets the stored
// session.
func (f *Flow) Discard(ctx context.Context) error {
	f.Close()
	return f.store.Clear(ctx)
}

// State is a read-only view of the flow for rendering.
type State struct {
	Step              Step                `json:"step"`
	StepName          string              `json:"stepName"`
	Draft             models.BookingDraft `json:"draft"`
	Stops             []models.Stop       `json:"stops"`
	BookedSeats       []string            `json:"bookedSeats"`
	MaxSeats          int                 `json:"maxSeats"`
	ShowPassengerList bool                `json:"showPassengerList"`
	PassengersValid   bool                `json:"passengersValid"`
	NeedsNegotiation  bool                `json:"needsNegotiation"`
	CanSubmit         bool                `json:"canSubmit"`
	Submitting        bool                `json:"submitting"`
	Polling           PollState           `json:"polling"`
	InvoiceReady      bool                `json:"invoiceReady"`
	AdminFees         map[string]int64    `json:"adminFees"`
}

func (f *Flow) Snapshot() State {
	f.mu.Lock()
	defer f.mu.Unlock()

	booked := make([]string, 0, len(f.booked))
	for s := range f.booked {
		booked = append(booked, s)
	}
	sort.Strings(booked)

	fees := make(map[string]int64, len(f.cfg.AdminFees))
	for k, v := range f.cfg.AdminFees {
		fees[k] = v
	}

	return State{
		Step:              f.step,
		StepName:          f.step.String(),
		Draft:             f.draft.Clone(),
		Stops:             append([]models.Stop{}, f.stops...),
		BookedSeats:       booked,
		MaxSeats:          f.cfg.MaxSeats,
		ShowPassengerList: ShowPassengerList(f.draft),
		PassengersValid:   PassengersValid(f.draft),
		NeedsNegotiation:  NeedsNegotiation(f.draft.Category, f.draft.Route),
		CanSubmit:         !f.submitting && f.draft.BookingID == 0 && f.checkReadyLocked() == nil,
		Submitting:        f.submitting,
		Polling:           f.poller.State(),
		InvoiceReady:      f.draft.BookingID > 0 && f.revealedFor == f.draft.BookingID,
		AdminFees:         fees,
	}
}

// Draft returns a copy of the current draft.
func (f *Flow) Draft() models.BookingDraft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft.Clone()
}

func (f *Flow) emit(level Level, code, msg string) {
	f.outbox = append(f.outbox, Notice{Level: level, Code: code, Message: msg})
}

// unlock releases the flow lock and then runs the side effects queued while
// it was held, so notifier/store/revealer never run under the lock.
func (f *Flow) unlock() {
	out := f.outbox
	save := f.pendingSave
	clear := f.pendingClear
	reveal := f.pendingReveal
	f.outbox, f.pendingSave, f.pendingClear, f.pendingReveal = nil, nil, false, nil
	f.mu.Unlock()

	if clear || save != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if clear {
			if err := f.store.Clear(ctx); err != nil {
				f.log.WithError(err).Warn("gagal menghapus sesi tersimpan")
			}
		}
		if save != nil {
			if err := f.store.Save(ctx, *save); err != nil {
				f.log.WithError(err).WithField("booking_id", save.BookingID).Warn("gagal menyimpan sesi")
			}
		}
		cancel()
	}
	for _, n := range out {
		f.notifier.Notify(n)
	}
	if reveal != nil {
		f.revealer.RevealInvoice(reveal.bookingID, reveal.draft)
	}
}

// spawn runs fn on a goroutine counted by Wait. Callers hold the lock.
func (f *Flow) spawn(fn func()) {
	f.inflight++
	go func() {
		defer func() {
			f.mu.Lock()
			f.inflight--
			if f.inflight == 0 {
				f.settled.Broadcast()
			}
			f.mu.Unlock()
		}()
		fn()
	}()
}

func (f *Flow) queueSaveLocked() {
	if f.draft.BookingID <= 0 {
		return
	}
	f.pendingSave = &models.ResumableSession{
		BookingID: f.draft.BookingID,
		Draft:     f.draft.Clone(),
		SavedAt:   utils.NowUTC(),
	}
	f.pendingClear = false
}

func (f *Flow) checkOpenLocked() error {
	if f.closed {
		return domain.ValidationError{Field: "flow", Msg: "Sesi pemesanan sudah berakhir", Err: ErrClosed}
	}
	return nil
}
