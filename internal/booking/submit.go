package booking

import (
	"context"
	"strings"

	"bookingflow/internal/apiclient"
	"bookingflow/internal/domain"
)

// checkReadyLocked returns the first unmet precondition of Submit.
func (f *Flow) checkReadyLocked() error {
	d := f.draft
	if f.step != StepDetails && f.step != StepNegotiation {
		return invalid("step", "Pemesanan dikirim dari langkah detail", ErrStep)
	}
	required := []struct {
		field, value, msg string
	}{
		{"category", string(d.Category), "Pilih kategori layanan"},
		{"from", d.Route.From, "Pilih kota asal"},
		{"to", d.Route.To, "Pilih kota tujuan"},
		{"date", d.Schedule.Date, "Pilih tanggal keberangkatan"},
		{"time", d.Schedule.Time, "Pilih jam keberangkatan"},
		{"passengerName", d.Booker.Name, "Nama pemesan wajib diisi"},
		{"passengerPhone", d.Booker.Phone, "Nomor HP wajib diisi"},
		{"pickupLocation", d.PickupLocation, "Lokasi jemput wajib diisi"},
		{"dropoffLocation", d.DropoffLocation, "Lokasi antar wajib diisi"},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return invalid(r.field, r.msg, ErrIncomplete)
		}
	}
	if d.Route.From == d.Route.To {
		return invalid("route", "Asal dan tujuan tidak boleh sama", ErrIncomplete)
	}
	if d.Category.UsesSeats() {
		if len(d.SelectedSeats) == 0 {
			return invalid("selectedSeats", "Pilih minimal 1 kursi", ErrIncomplete)
		}
		if len(d.SelectedSeats) > f.cfg.MaxSeats {
			return seatLimit(f.cfg.MaxSeats)
		}
		if !PassengersValid(d) {
			return invalid("passengers", "Lengkapi nama penumpang untuk setiap kursi", ErrIncomplete)
		}
	}
	if NeedsNegotiation(d.Category, d.Route) && !d.IsNegotiated {
		return invalid("agreedPrice", "Harga perlu disepakati terlebih dahulu", ErrNegotiationState)
	}
	if d.Quote.IsZero() || d.Quote.Total <= 0 {
		return invalid("quote", msgQuoteFailed, ErrIncomplete)
	}
	return nil
}

func (f *Flow) bookingRequestLocked() apiclient.BookingRequest {
	d := f.draft
	req := apiclient.BookingRequest{
		Category:        string(d.Category),
		From:            d.Route.From,
		To:              d.Route.To,
		Date:            d.Schedule.Date,
		Time:            d.Schedule.Time,
		SelectedSeats:   append([]string{}, d.SelectedSeats...),
		BookingFor:      string(d.BookingFor),
		PassengerName:   strings.TrimSpace(d.Booker.Name),
		PassengerPhone:  strings.TrimSpace(d.Booker.Phone),
		PickupLocation:  d.PickupLocation,
		DropoffLocation: d.DropoffLocation,
		TotalAmount:     d.Quote.Total,
		IsNegotiated:    d.IsNegotiated,
	}
	if d.Category.UsesSeats() {
		req.PassengerCount = len(d.SelectedSeats)
		req.Passengers = passengersPayload(d)
	} else {
		req.PassengerCount = 1
	}
	return req
}

// Submit creates the booking. At most one submission is in flight per flow.
// On success the server response is merged into the draft, the session is
// persisted, then runs (if non-nil), and the wizard advances to contact.
// A result for a draft that was edited meanwhile is discarded.
func (f *Flow) Submit(ctx context.Context, then func(apiclient.BookingResult)) (apiclient.BookingResult, error) {
	// let pending quote/seat refreshes land first
	f.Wait()

	f.mu.Lock()
	if err := f.checkOpenLocked(); err != nil {
		f.unlock()
		return apiclient.BookingResult{}, err
	}
	if f.submitting {
		f.unlock()
		return apiclient.BookingResult{}, invalid("submit", "Pemesanan sedang diproses", ErrSubmitInFlight)
	}
	if f.draft.BookingID != 0 {
		f.unlock()
		return apiclient.BookingResult{}, invalid("submit", "Pemesanan sudah dibuat", ErrStep)
	}
	if err := f.checkReadyLocked(); err != nil {
		f.emit(LevelWarning, "incomplete", domain.UserMessage(err, "Data pemesanan belum lengkap"))
		f.unlock()
		return apiclient.BookingResult{}, err
	}
	req := f.bookingRequestLocked()
	version := f.editVersion
	f.submitting = true
	f.unlock()

	res, err := f.backend.CreateBooking(ctx, req)

	f.mu.Lock()
	f.submitting = false
	if err != nil {
		if domain.IsConflict(err) {
			msg := domain.UserMessage(err, msgSeatTaken)
			f.emit(LevelError, "seat_taken", msg)
			if version == f.editVersion {
				f.refreshSeatsLocked()
			}
			f.unlock()
			return apiclient.BookingResult{}, domain.ConflictError{Resource: "seat", Msg: msg, Err: err}
		}
		f.log.WithError(err).Error("gagal membuat pemesanan")
		f.emit(LevelError, "submit_failed", domain.UserMessage(err, msgSubmitFailed))
		f.unlock()
		return apiclient.BookingResult{}, err
	}
	if version != f.editVersion || f.closed {
		f.log.WithField("booking_id", res.BookingID).Warn("hasil pemesanan diabaikan, draft sudah berubah")
		f.emit(LevelWarning, "stale_submission", msgStaleSubmission)
		f.unlock()
		return apiclient.BookingResult{}, invalid("draft", msgStaleSubmission, ErrStaleSubmission)
	}
	f.applyBookingResultLocked(res)
	f.unlock()

	if then != nil {
		then(res)
	}
	return res, nil
}

func (f *Flow) applyBookingResultLocked(res apiclient.BookingResult) {
	d := &f.draft
	d.BookingID = res.BookingID
	if res.Total > 0 {
		d.Quote.Total = res.Total
	}
	if res.PricePerSeat > 0 {
		d.Quote.PricePerSeat = res.PricePerSeat
	}
	if res.Route != "" {
		d.Quote.RouteLabel = res.Route
	}
	d.PaymentStatus = strings.TrimSpace(res.PaymentStatus)
	if d.PaymentStatus == "" {
		d.PaymentStatus = domain.StatusUnpaid
	}
	d.PaymentMethod = strings.TrimSpace(res.PaymentMethod)

	f.step = StepContact
	f.log.WithField("booking_id", res.BookingID).Info("pemesanan dibuat")
	f.queueSaveLocked()
	f.afterPaymentChangeLocked()
}
