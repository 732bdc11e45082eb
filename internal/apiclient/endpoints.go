package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"bookingflow/internal/domain"
	"bookingflow/internal/domain/models"
)

// Stops fetches the route directory.
func (c *Client) Stops(ctx context.Context) ([]models.Stop, error) {
	var raw json.RawMessage
	if err := c.do(ctx, "stops", http.MethodGet, "/api/reguler/stops", nil, nil, &raw); err != nil {
		return nil, err
	}
	return decodeStops(raw)
}

// BookedSeats fetches seats held by other bookings for the exact
// (from, to, date, time) tuple.
func (c *Client) BookedSeats(ctx context.Context, route models.Route, sched models.Schedule) ([]string, error) {
	q := url.Values{}
	q.Set("from", route.From)
	q.Set("to", route.To)
	q.Set("date", sched.Date)
	q.Set("time", sched.Time)

	var raw json.RawMessage
	if err := c.do(ctx, "seats", http.MethodGet, "/api/reguler/seats", q, nil, &raw); err != nil {
		return nil, err
	}
	return decodeSeats(raw)
}

// Quote asks the backend for the authoritative price.
func (c *Client) Quote(ctx context.Context, req QuoteRequest) (models.Quote, error) {
	var m map[string]any
	if err := c.do(ctx, "quote", http.MethodPost, "/api/reguler/quote", nil, req, &m); err != nil {
		return models.Quote{}, err
	}
	q := decodeQuote(m)
	if q.Total <= 0 || q.PricePerSeat <= 0 {
		return models.Quote{}, domain.ValidationError{Field: "quote", Msg: "Tarif rute ini belum tersedia. Pilih rute lain."}
	}
	return q, nil
}

// CreateBooking posts a booking. A concurrent seat claim surfaces as
// domain.ConflictError.
func (c *Client) CreateBooking(ctx context.Context, req BookingRequest) (BookingResult, error) {
	var m map[string]any
	if err := c.do(ctx, "create_booking", http.MethodPost, "/api/reguler/bookings", nil, req, &m); err != nil {
		return BookingResult{}, err
	}
	res := decodeBookingResult(m)
	if res.BookingID <= 0 {
		return BookingResult{}, domain.UnavailableError{Op: "create_booking", Msg: "server tidak mengembalikan id booking"}
	}
	return res, nil
}

// BookingDetail reads the payment view of a booking.
func (c *Client) BookingDetail(ctx context.Context, bookingID int64) (models.PaymentState, error) {
	var m map[string]any
	path := "/api/reguler/bookings/" + strconv.FormatInt(bookingID, 10)
	if err := c.do(ctx, "booking_detail", http.MethodGet, path, nil, nil, &m); err != nil {
		return models.PaymentState{}, err
	}
	st := decodePaymentState(m)
	st.BookingID = bookingID
	return st, nil
}

// Manifest reads the surat jalan of a booking.
func (c *Client) Manifest(ctx context.Context, bookingID int64) (Manifest, error) {
	var m map[string]any
	path := "/api/reguler/bookings/" + strconv.FormatInt(bookingID, 10) + "/surat-jalan"
	if err := c.do(ctx, "surat_jalan", http.MethodGet, path, nil, nil, &m); err != nil {
		return Manifest{}, err
	}
	return decodeManifest(m), nil
}

// PaymentValidationsByBooking queries the validation queue filtered by booking.
func (c *Client) PaymentValidationsByBooking(ctx context.Context, bookingID int64) ([]PaymentValidation, error) {
	q := url.Values{}
	q.Set("bookingId", strconv.FormatInt(bookingID, 10))

	var raw json.RawMessage
	if err := c.do(ctx, "payment_validation", http.MethodGet, "/api/payment-validations", q, nil, &raw); err != nil {
		return nil, err
	}
	return decodeValidations(raw)
}

// PaymentValidations lists the whole validation queue.
func (c *Client) PaymentValidations(ctx context.Context) ([]PaymentValidation, error) {
	var raw json.RawMessage
	if err := c.do(ctx, "payment_validations", http.MethodGet, "/api/payment-validations", nil, nil, &raw); err != nil {
		return nil, err
	}
	return decodeValidations(raw)
}

// SubmitPaymentProof uploads transfer/QRIS evidence; the booking moves to
// awaiting validation.
func (c *Client) SubmitPaymentProof(ctx context.Context, bookingID int64, proof models.PaymentProof) (models.PaymentState, error) {
	var m map[string]any
	path := "/api/reguler/bookings/" + strconv.FormatInt(bookingID, 10) + "/submit-payment"
	if err := c.do(ctx, "submit_payment", http.MethodPost, path, nil, proof, &m); err != nil {
		return models.PaymentState{}, err
	}
	st := decodePaymentState(m)
	st.BookingID = bookingID
	if st.PaymentStatus == "" {
		st.PaymentStatus = domain.StatusAwaitingValidation
	}
	if st.PaymentMethod == "" {
		st.PaymentMethod = proof.PaymentMethod
	}
	return st, nil
}

// ConfirmCash marks a booking as paid in cash.
func (c *Client) ConfirmCash(ctx context.Context, bookingID int64) (models.PaymentState, error) {
	var m map[string]any
	path := "/api/reguler/bookings/" + strconv.FormatInt(bookingID, 10) + "/confirm-cash"
	body := map[string]string{"paymentMethod": domain.MethodCash}
	if err := c.do(ctx, "confirm_cash", http.MethodPost, path, nil, body, &m); err != nil {
		return models.PaymentState{}, err
	}
	st := decodePaymentState(m)
	st.BookingID = bookingID
	if st.PaymentStatus == "" {
		st.PaymentStatus = domain.StatusPaid
	}
	st.PaymentMethod = domain.MethodCash
	return st, nil
}
