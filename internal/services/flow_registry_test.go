package services

import (
	"context"
	"testing"
	"time"

	"bookingflow/internal/apiclient"
	"bookingflow/internal/booking"
	"bookingflow/internal/domain"
	"bookingflow/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBackend struct{}

func (stubBackend) Stops(context.Context) ([]models.Stop, error) {
	return []models.Stop{{Key: "pekanbaru", Display: "Pekanbaru"}, {Key: "duri", Display: "Duri"}}, nil
}

func (stubBackend) BookedSeats(context.Context, models.Route, models.Schedule) ([]string, error) {
	return nil, nil
}

func (stubBackend) Quote(context.Context, apiclient.QuoteRequest) (models.Quote, error) {
	return models.Quote{PricePerSeat: 100000, Total: 100000}, nil
}

func (stubBackend) CreateBooking(context.Context, apiclient.BookingRequest) (apiclient.BookingResult, error) {
	return apiclient.BookingResult{BookingID: 1}, nil
}

func (stubBackend) SubmitPaymentProof(_ context.Context, id int64, _ models.PaymentProof) (models.PaymentState, error) {
	return models.PaymentState{BookingID: id}, nil
}

func (stubBackend) ConfirmCash(_ context.Context, id int64) (models.PaymentState, error) {
	return models.PaymentState{BookingID: id}, nil
}

func (stubBackend) Manifest(_ context.Context, id int64) (apiclient.Manifest, error) {
	return apiclient.Manifest{BookingID: id}, nil
}

func newTestRegistry(mem *MemorySessions) *FlowRegistry {
	return NewFlowRegistry(func(owner string, n booking.Notifier) *booking.Flow {
		return booking.NewFlow(booking.Deps{
			Backend:  stubBackend{},
			Store:    mem.ForOwner(owner),
			Notifier: n,
		}, booking.DefaultConfig())
	}, time.Minute, nil)
}

func TestRegistryCreateAndGet(t *testing.T) {
	reg := newTestRegistry(&MemorySessions{})
	defer reg.Shutdown()

	s, err := reg.Create(context.Background(), "", models.CategoryReguler)
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.NotEmpty(t, s.Owner)
	assert.Equal(t, booking.StepDetails, s.Flow.Step())

	got, err := reg.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	_, err = reg.Get("missing")
	assert.True(t, domain.IsNotFound(err))
}

func TestRegistryRejectsUnknownCategory(t *testing.T) {
	reg := newTestRegistry(&MemorySessions{})
	_, err := reg.Create(context.Background(), "o", models.Category("Kapal"))
	assert.True(t, domain.IsValidation(err))
	assert.Zero(t, reg.Len())
}

func TestRegistrySweepClosesIdle(t *testing.T) {
	reg := newTestRegistry(&MemorySessions{})
	now := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return now }

	idle, err := reg.Create(context.Background(), "a", models.CategoryReguler)
	require.NoError(t, err)
	now = now.Add(50 * time.Second)
	fresh, err := reg.Create(context.Background(), "b", models.CategoryReguler)
	require.NoError(t, err)

	now = now.Add(20 * time.Second)
	assert.Equal(t, 1, reg.Sweep())

	_, err = reg.Get(idle.ID)
	assert.True(t, domain.IsNotFound(err))
	_, err = reg.Get(fresh.ID)
	assert.NoError(t, err)

	err = idle.Flow.SetBooker("x", "1")
	assert.ErrorIs(t, err, booking.ErrClosed)
}

func TestRegistryRemove(t *testing.T) {
	reg := newTestRegistry(&MemorySessions{})
	s, err := reg.Create(context.Background(), "a", models.CategoryReguler)
	require.NoError(t, err)

	require.NoError(t, reg.Remove(context.Background(), s.ID))
	assert.Zero(t, reg.Len())
	assert.True(t, domain.IsNotFound(reg.Remove(context.Background(), s.ID)))
}

func TestRegistryResumeByOwner(t *testing.T) {
	mem := &MemorySessions{}
	require.NoError(t, mem.ForOwner("device-1").Save(context.Background(), models.ResumableSession{
		BookingID: 77,
		Draft:     models.BookingDraft{Category: models.CategoryReguler, PaymentStatus: "Belum Bayar"},
	}))
	reg := newTestRegistry(mem)
	defer reg.Shutdown()

	s, err := reg.Create(context.Background(), "device-1", "")
	require.NoError(t, err)
	assert.Equal(t, booking.StepReview, s.Flow.Step())
	assert.Equal(t, int64(77), s.Flow.Draft().BookingID)
}

func TestNoticeBufferDrain(t *testing.T) {
	b := &NoticeBuffer{}
	for i := 0; i < maxBufferedNotices+5; i++ {
		b.Notify(booking.Notice{Code: "x"})
	}
	assert.Len(t, b.Drain(), maxBufferedNotices)
	assert.Empty(t, b.Drain())
}

func TestSweeperSchedules(t *testing.T) {
	reg := newTestRegistry(&MemorySessions{})
	require.NoError(t, reg.StartSweeper("@every 1m"))
	require.NoError(t, reg.StartSweeper("@every 1m"))
	reg.Shutdown()
}
