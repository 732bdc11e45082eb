package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bookingflow/internal/domain"
	"bookingflow/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL, 2*time.Second, nil)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestStopsDedupesPlainList(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, []string{"Pekanbaru", "Pasir Pengaraian", "Pekanbaru"})
	})

	stops, err := c.Stops(context.Background())
	require.NoError(t, err)
	require.Len(t, stops, 2)
	assert.Equal(t, "Pasir Pengaraian", stops[1].Display)
	assert.NotEmpty(t, stops[1].Key)
}

func TestBookedSeatsSendsTuple(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/api/reguler/seats", r.URL.Path)
		assert.Equal(t, "Pekanbaru", q.Get("from"))
		assert.Equal(t, "Duri", q.Get("to"))
		assert.Equal(t, "2025-01-10", q.Get("date"))
		assert.Equal(t, "08:00", q.Get("time"))
		writeJSON(w, 200, map[string]any{"bookedSeats": []string{"1a", "2B", "1A"}})
	})

	seats, err := c.BookedSeats(context.Background(),
		models.Route{From: "Pekanbaru", To: "Duri"},
		models.Schedule{Date: "2025-01-10", Time: "08:00"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1A", "2B"}, seats)
}

func TestBookedSeatsSplitsSeatLists(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, []any{"1A, 1B", map[string]any{"seat_code": "2a;2B"}})
	})

	seats, err := c.BookedSeats(context.Background(),
		models.Route{From: "Pekanbaru", To: "Duri"},
		models.Schedule{Date: "2025-01-10", Time: "08:00"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1A", "1B", "2A", "2B"}, seats)
}

func TestQuoteZeroFareIsValidationError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, map[string]any{"pricePerSeat": 0, "total": 0})
	})

	_, err := c.Quote(context.Background(), QuoteRequest{From: "A", To: "B"})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestCreateBookingConflict(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "Seat 1A already booked"})
	})

	_, err := c.CreateBooking(context.Background(), BookingRequest{})
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))
	assert.Equal(t, "Seat 1A already booked", domain.UserMessage(err, ""))
}

func TestCreateBookingDecodesSnakeCase(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req BookingRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"1A"}, req.SelectedSeats)
		writeJSON(w, 201, map[string]any{
			"booking_id":     "123",
			"total_amount":   150000,
			"price_per_seat": 150000,
			"payment_status": "Belum Bayar",
		})
	})

	res, err := c.CreateBooking(context.Background(), BookingRequest{SelectedSeats: []string{"1A"}})
	require.NoError(t, err)
	assert.Equal(t, int64(123), res.BookingID)
	assert.Equal(t, int64(150000), res.Total)
	assert.Equal(t, "Belum Bayar", res.PaymentStatus)
}

func TestServerErrorIsUnavailable(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 502, map[string]string{"message": "upstream down"})
	})

	_, err := c.BookingDetail(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, domain.IsUnavailable(err))
}

func TestNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.Manifest(context.Background(), 1)
	assert.True(t, domain.IsNotFound(err))
}

func TestValidationsByBooking(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "9", r.URL.Query().Get("bookingId"))
		writeJSON(w, 200, map[string]any{"data": []map[string]any{
			{"id": 3, "booking_id": 9, "status": "approved"},
		}})
	})

	list, err := c.PaymentValidationsByBooking(context.Background(), 9)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(9), list[0].BookingID)
	assert.Equal(t, "approved", list[0].Status)
}

func TestRequestIDForwarded(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "req-1", r.Header.Get("X-Request-ID"))
		writeJSON(w, 200, []string{})
	})

	_, err := c.Stops(WithRequestID(context.Background(), "req-1"))
	require.NoError(t, err)
}

func TestSubmitPaymentProofDefaultsToAwaiting(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/reguler/bookings/4/submit-payment", r.URL.Path)
		writeJSON(w, 200, map[string]any{"ok": true})
	})

	st, err := c.SubmitPaymentProof(context.Background(), 4, models.PaymentProof{PaymentMethod: "qris", ProofFile: "x"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAwaitingValidation, st.PaymentStatus)
	assert.Equal(t, "qris", st.PaymentMethod)
}
