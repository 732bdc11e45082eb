package booking

import (
	"context"
	"errors"
	"strings"

	"bookingflow/internal/domain"
	"bookingflow/internal/domain/models"
	"bookingflow/internal/utils"
)

// LoadStops fetches the route directory and re-derives the default route.
// A failed fetch leaves an empty directory and a warning notice; it never
// aborts the flow.
func (f *Flow) LoadStops(ctx context.Context) {
	stops, err := f.backend.Stops(ctx)

	f.mu.Lock()
	defer f.unlock()
	if f.closed {
		return
	}
	if err != nil {
		f.log.WithError(err).Warn("gagal memuat daftar rute")
		f.emit(LevelWarning, "stops_unavailable", msgStopsFailed)
		stops = nil
	}
	f.stops = stops

	// a submitted draft keeps its route even if the directory changed
	if f.draft.BookingID != 0 || f.draft.Category == "" {
		return
	}
	f.applyRouteLocked(DefaultRoute(f.stops, f.draft.Route))
}

// ChooseCategory starts a fresh draft for c and moves to the details step.
func (f *Flow) ChooseCategory(c models.Category) error {
	f.mu.Lock()
	defer f.unlock()
	if err := f.checkOpenLocked(); err != nil {
		return err
	}
	if !c.Valid() {
		return invalid("category", "Kategori layanan tidak dikenal", ErrStep)
	}

	f.poller.Stop()
	if f.draft.BookingID != 0 {
		f.pendingClear = true
	}
	f.draft = models.BookingDraft{
		Category:      c,
		BookingFor:    models.BookingForSelf,
		Route:         DefaultRoute(f.stops, models.Route{}),
		SelectedSeats: []string{},
		Passengers:    []models.Passenger{},
	}
	f.booked = map[string]bool{}
	f.step = StepDetails
	f.editVersion++
	f.refreshSeatsLocked()
	f.refreshQuoteLocked()
	return nil
}

// SetRoute changes origin and destination. Both must be distinct members of
// the loaded directory.
func (f *Flow) SetRoute(from, to string) error {
	from, to = utils.NormalizeSpace(from), utils.NormalizeSpace(to)

	f.mu.Lock()
	defer f.unlock()
	if err := f.checkOpenLocked(); err != nil {
		return err
	}
	if from == "" || to == "" {
		return invalid("route", "Asal dan tujuan wajib dipilih", ErrIncomplete)
	}
	if strings.EqualFold(from, to) {
		return invalid("route", "Asal dan tujuan tidak boleh sama", ErrIncomplete)
	}
	if len(f.stops) > 0 && (stopIndex(f.stops, from) < 0 || stopIndex(f.stops, to) < 0) {
		return invalid("route", "Rute tidak tersedia, pilih dari daftar", ErrIncomplete)
	}
	f.applyRouteLocked(models.Route{From: from, To: to})
	return nil
}

// SetSchedule changes the travel date (YYYY-MM-DD) and departure time. The
// time is normalized to zero-padded HH:MM.
func (f *Flow) SetSchedule(date, timeOfDay string) error {
	date = strings.TrimSpace(date)
	if date != "" {
		if _, err := utils.ParseDate(date); err != nil {
			return invalid("date", "Format tanggal tidak valid (YYYY-MM-DD)", err)
		}
	}
	tm := ""
	if strings.TrimSpace(timeOfDay) != "" {
		norm, err := utils.NormalizeTime(timeOfDay)
		if err != nil {
			return invalid("time", "Format jam tidak valid (HH:MM)", err)
		}
		tm = norm
	}

	f.mu.Lock()
	defer f.unlock()
	if err := f.checkOpenLocked(); err != nil {
		return err
	}
	next := models.Schedule{Date: date, Time: tm}
	if next == f.draft.Schedule {
		return nil
	}
	f.draft.Schedule = next
	f.pricingChangedLocked(true)
	return nil
}

func (f *Flow) SetBookingFor(bf models.BookingFor) error {
	if bf != models.BookingForSelf && bf != models.BookingForOther {
		return invalid("bookingFor", "Pilihan pemesan tidak valid", ErrIncomplete)
	}
	f.mu.Lock()
	defer f.unlock()
	if err := f.checkOpenLocked(); err != nil {
		return err
	}
	if f.draft.BookingFor == bf {
		return nil
	}
	f.draft.BookingFor = bf
	f.reconcileLocked()
	f.touchLocked()
	return nil
}

func (f *Flow) SetBooker(name, phone string) error {
	name = utils.NormalizeSpace(name)
	phone = strings.TrimSpace(phone)

	f.mu.Lock()
	defer f.unlock()
	if err := f.checkOpenLocked(); err != nil {
		return err
	}
	next := models.Booker{Name: name, Phone: phone}
	if next == f.draft.Booker {
		return nil
	}
	f.draft.Booker = next
	f.reconcileLocked()
	f.touchLocked()
	return nil
}

func (f *Flow) SetLocations(pickup, dropoff string) error {
	pickup, dropoff = strings.TrimSpace(pickup), strings.TrimSpace(dropoff)

	f.mu.Lock()
	defer f.unlock()
	if err := f.checkOpenLocked(); err != nil {
		return err
	}
	if pickup == f.draft.PickupLocation && dropoff == f.draft.DropoffLocation {
		return nil
	}
	f.draft.PickupLocation = pickup
	f.draft.DropoffLocation = dropoff
	f.touchLocked()
	return nil
}

// SetPassengerName names the passenger bound to seat.
func (f *Flow) SetPassengerName(seat, name string) error {
	seat = utils.NormalizeSeat(seat)
	name = utils.NormalizeSpace(name)

	f.mu.Lock()
	defer f.unlock()
	if err := f.checkOpenLocked(); err != nil {
		return err
	}
	for i, p := range f.draft.Passengers {
		if p.Seat != seat {
			continue
		}
		if p.Name == name {
			return nil
		}
		next := append([]models.Passenger(nil), f.draft.Passengers...)
		next[i].Name = name
		f.draft.Passengers = next
		f.touchLocked()
		return nil
	}
	return invalid("seat", "Kursi "+seat+" belum dipilih", ErrSeatInvalid)
}

// ToggleSeat selects or deselects seat. Rejections carry a warning notice.
func (f *Flow) ToggleSeat(seat string) error {
	f.mu.Lock()
	defer f.unlock()
	if err := f.checkOpenLocked(); err != nil {
		return err
	}
	if !f.draft.Category.UsesSeats() {
		return invalid("seat", "Kategori ini tidak memakai pemilihan kursi", ErrSeatsNotUsed)
	}
	if err := toggleSeat(&f.draft, f.booked, seat, f.cfg.MaxSeats); err != nil {
		code := "seat_invalid"
		switch {
		case errors.Is(err, ErrSeatUnavailable):
			code = "seat_unavailable"
		case errors.Is(err, ErrSeatLimit):
			code = "seat_limit"
		}
		f.emit(LevelWarning, code, domain.UserMessage(err, "Kursi tidak dapat dipilih"))
		return err
	}
	f.pricingChangedLocked(false)
	return nil
}

// AgreePrice records the manually agreed price for categories that are
// negotiated instead of quoted.
func (f *Flow) AgreePrice(amount int64) error {
	f.mu.Lock()
	defer f.unlock()
	if err := f.checkOpenLocked(); err != nil {
		return err
	}
	if !NeedsNegotiation(f.draft.Category, f.draft.Route) {
		return invalid("agreedPrice", "Rute ini memakai tarif tetap", ErrNegotiationState)
	}
	if amount <= 0 {
		return invalid("agreedPrice", "Harga kesepakatan harus lebih dari 0", ErrNegotiationState)
	}
	if f.draft.IsNegotiated && f.draft.AgreedPrice == amount {
		return nil
	}
	f.draft.IsNegotiated = true
	f.draft.AgreedPrice = amount
	f.pricingChangedLocked(false)
	if f.step == StepNegotiation {
		f.step = StepDetails
	}
	return nil
}

func (f *Flow) applyRouteLocked(route models.Route) {
	if route == f.draft.Route {
		return
	}
	f.draft.Route = route
	// an agreed price belongs to the route it was agreed for
	if f.draft.IsNegotiated {
		f.draft.IsNegotiated = false
		f.draft.AgreedPrice = 0
	}
	f.pricingChangedLocked(true)
}

// touchLocked records a non-pricing edit. A submitted booking no longer
// matches the draft, so the booking id is dropped.
func (f *Flow) touchLocked() {
	f.editVersion++
	f.dropBookingLocked()
}

// pricingChangedLocked runs after any edit to a pricing-relevant field.
// tupleChanged is set when the seat availability key changed too.
func (f *Flow) pricingChangedLocked(tupleChanged bool) {
	f.draft.Quote = models.Quote{}
	f.touchLocked()
	f.reconcileLocked()
	if tupleChanged {
		f.refreshSeatsLocked()
	}
	f.refreshQuoteLocked()
}

func (f *Flow) dropBookingLocked() {
	if f.draft.BookingID == 0 {
		return
	}
	f.log.WithField("booking_id", f.draft.BookingID).Info("draft berubah, booking id dilepas")
	f.draft.BookingID = 0
	f.draft.PaymentStatus = ""
	f.draft.PaymentMethod = ""
	f.poller.Stop()
	f.pendingClear = true
	f.pendingSave = nil
	if f.step == StepContact || f.step == StepReview {
		f.step = StepDetails
	}
}

func (f *Flow) reconcileLocked() {
	next, changed := ReconcilePassengers(f.draft.SelectedSeats, f.draft.Passengers, f.draft.BookingFor, f.draft.Booker.Name)
	if changed {
		f.draft.Passengers = next
	}
}

// refreshSeatsLocked refetches the booked-seat snapshot for the current
// tuple. Until it lands the snapshot is empty; the server re-checks on
// submit anyway.
func (f *Flow) refreshSeatsLocked() {
	ctx, gen := f.seatGuard.begin(f.baseCtx)
	f.booked = map[string]bool{}

	d := f.draft
	if !d.Category.UsesSeats() || !routeComplete(d) || !scheduleComplete(d) {
		f.seatGuard.finish(gen)
		return
	}
	route, sched := d.Route, d.Schedule

	f.spawn(func() {
		seats, err := f.backend.BookedSeats(ctx, route, sched)

		f.mu.Lock()
		defer f.unlock()
		if !f.seatGuard.current(gen) {
			return
		}
		f.seatGuard.finish(gen)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			f.log.WithError(err).Warn("gagal memuat kursi terisi")
			f.emit(LevelWarning, "seats_unavailable", msgSeatsFailed)
			return
		}
		f.booked = seatSet(seats)
	})
}

// refreshQuoteLocked recomputes the quote. Only the latest request may
// write it; a superseded response is dropped.
func (f *Flow) refreshQuoteLocked() {
	ctx, gen := f.quoteGuard.begin(f.baseCtx)
	d := f.draft

	switch {
	case d.Category == "":
		f.draft.Quote = models.Quote{}
		f.quoteGuard.finish(gen)
		return
	case d.IsNegotiated:
		f.draft.Quote = negotiatedQuote(d)
		f.quoteGuard.finish(gen)
		return
	case NeedsNegotiation(d.Category, d.Route):
		f.draft.Quote = models.Quote{}
		f.quoteGuard.finish(gen)
		return
	}

	req, ok := quoteRequest(d)
	f.draft.Quote = models.Quote{}
	if !ok {
		f.quoteGuard.finish(gen)
		return
	}

	f.spawn(func() {
		q, err := f.backend.Quote(ctx, req)

		f.mu.Lock()
		defer f.unlock()
		if !f.quoteGuard.current(gen) {
			return
		}
		f.quoteGuard.finish(gen)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			f.draft.Quote = models.Quote{}
			f.log.WithError(err).Warn("gagal menghitung tarif")
			f.emit(LevelWarning, "quote_unavailable", domain.UserMessage(err, msgQuoteFailed))
			return
		}
		f.draft.Quote = q
	})
}
