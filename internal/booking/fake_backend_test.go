package booking

import (
	"context"
	"sync"

	"bookingflow/internal/apiclient"
	"bookingflow/internal/domain/models"
)

// fakeBackend is an in-memory Backend. Hooks override the canned answers.
type fakeBackend struct {
	mu sync.Mutex

	stops    []models.Stop
	stopsErr error
	booked   []string
	quote    models.Quote

	quoteFn  func(ctx context.Context, req apiclient.QuoteRequest) (models.Quote, error)
	seatsFn  func(ctx context.Context, route models.Route, sched models.Schedule) ([]string, error)
	createFn func(ctx context.Context, req apiclient.BookingRequest) (apiclient.BookingResult, error)
	proofFn  func(ctx context.Context, id int64, proof models.PaymentProof) (models.PaymentState, error)

	quoteCalls  []apiclient.QuoteRequest
	seatCalls   int
	createCalls []apiclient.BookingRequest
}

func defaultStops() []models.Stop {
	return []models.Stop{
		{Key: "pekanbaru", Display: "Pekanbaru"},
		{Key: "pasirpengaraian", Display: "Pasir Pengaraian"},
		{Key: "bangkinang", Display: "Bangkinang"},
		{Key: "duri", Display: "Duri"},
	}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		stops: defaultStops(),
		quote: models.Quote{PricePerSeat: 150000, Total: 150000, RouteLabel: "Pasir Pengaraian -> Pekanbaru"},
	}
}

func (b *fakeBackend) Stops(ctx context.Context) ([]models.Stop, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopsErr != nil {
		return nil, b.stopsErr
	}
	return append([]models.Stop(nil), b.stops...), nil
}

func (b *fakeBackend) BookedSeats(ctx context.Context, route models.Route, sched models.Schedule) ([]string, error) {
	b.mu.Lock()
	b.seatCalls++
	fn := b.seatsFn
	booked := append([]string(nil), b.booked...)
	b.mu.Unlock()
	if fn != nil {
		return fn(ctx, route, sched)
	}
	return booked, nil
}

func (b *fakeBackend) Quote(ctx context.Context, req apiclient.QuoteRequest) (models.Quote, error) {
	b.mu.Lock()
	b.quoteCalls = append(b.quoteCalls, req)
	fn := b.quoteFn
	q := b.quote
	b.mu.Unlock()
	if fn != nil {
		return fn(ctx, req)
	}
	if req.PassengerCount > 0 {
		q.Total = q.PricePerSeat * int64(req.PassengerCount)
	}
	return q, nil
}

func (b *fakeBackend) CreateBooking(ctx context.Context, req apiclient.BookingRequest) (apiclient.BookingResult, error) {
	b.mu.Lock()
	b.createCalls = append(b.createCalls, req)
	fn := b.createFn
	b.mu.Unlock()
	if fn != nil {
		return fn(ctx, req)
	}
	return apiclient.BookingResult{
		BookingID:      123,
		Total:          req.TotalAmount,
		PricePerSeat:   req.TotalAmount,
		Route:          req.From + " -> " + req.To,
		PassengerCount: req.PassengerCount,
	}, nil
}

func (b *fakeBackend) SubmitPaymentProof(ctx context.Context, id int64, proof models.PaymentProof) (models.PaymentState, error) {
	b.mu.Lock()
	fn := b.proofFn
	b.mu.Unlock()
	if fn != nil {
		return fn(ctx, id, proof)
	}
	return models.PaymentState{BookingID: id, PaymentStatus: "Menunggu Validasi", PaymentMethod: proof.PaymentMethod}, nil
}

func (b *fakeBackend) ConfirmCash(ctx context.Context, id int64) (models.PaymentState, error) {
	return models.PaymentState{BookingID: id, PaymentStatus: "Lunas", PaymentMethod: "cash"}, nil
}

func (b *fakeBackend) Manifest(ctx context.Context, id int64) (apiclient.Manifest, error) {
	return apiclient.Manifest{BookingID: id, RouteFrom: "Pasir Pengaraian", RouteTo: "Pekanbaru"}, nil
}

func (b *fakeBackend) quoteCallCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.quoteCalls)
}

func (b *fakeBackend) createCallCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.createCalls)
}

// noticeRecorder collects notices for assertions.
type noticeRecorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *noticeRecorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *noticeRecorder) codes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.notices))
	for _, n := range r.notices {
		out = append(out, n.Code)
	}
	return out
}
