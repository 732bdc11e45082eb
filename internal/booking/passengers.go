package booking

import (
	"strings"

	"bookingflow/internal/domain/models"
	"bookingflow/internal/utils"
)

// ReconcilePassengers derives the passenger list from the selected seats:
// one entry per seat in selection order, reusing names of seats that were
// already bound. A self booking pre-fills the first seat with the booker's
// name while that seat is still unnamed. changed is false when the result
// equals prev, so callers can skip the write.
func ReconcilePassengers(seats []string, prev []models.Passenger, bookingFor models.BookingFor, bookerName string) ([]models.Passenger, bool) {
	seats = utils.NormalizeSeats(seats)

	names := make(map[string]string, len(prev))
	for _, p := range prev {
		names[utils.NormalizeSeat(p.Seat)] = p.Name
	}

	next := make([]models.Passenger, 0, len(seats))
	for _, s := range seats {
		next = append(next, models.Passenger{Seat: s, Name: names[s]})
	}

	if bookingFor == models.BookingForSelf && len(next) >= 1 && next[0].Name == "" {
		next[0].Name = bookerName
	}

	return next, !passengersEqual(prev, next)
}

func passengersEqual(a, b []models.Passenger) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ShowPassengerList tells whether per-seat name fields are shown. A lone
// self booking reuses the booker's name instead.
func ShowPassengerList(d models.BookingDraft) bool {
	n := len(d.SelectedSeats)
	if d.BookingFor == models.BookingForSelf {
		return n > 1
	}
	return n > 0
}

func isSelfSingleSeat(d models.BookingDraft) bool {
	return d.BookingFor == models.BookingForSelf && len(d.SelectedSeats) == 1
}

// PassengersValid reports whether every selected seat has a non-blank name.
// For the single self-seat shortcut only the booker's name counts.
func PassengersValid(d models.BookingDraft) bool {
	if isSelfSingleSeat(d) {
		return strings.TrimSpace(d.Booker.Name) != ""
	}
	if len(d.Passengers) != len(d.SelectedSeats) {
		return false
	}
	named := make(map[string]bool, len(d.Passengers))
	for _, p := range d.Passengers {
		if strings.TrimSpace(p.Name) != "" {
			named[p.Seat] = true
		}
	}
	for _, s := range d.SelectedSeats {
		if !named[s] {
			return false
		}
	}
	return true
}

// passengersPayload is what gets submitted: the self+single-seat case is
// synthesized from the booker, otherwise the reconciled list is sent as is.
func passengersPayload(d models.BookingDraft) []models.Passenger {
	if isSelfSingleSeat(d) {
		return []models.Passenger{{Seat: d.SelectedSeats[0], Name: strings.TrimSpace(d.Booker.Name)}}
	}
	out := make([]models.Passenger, 0, len(d.Passengers))
	for _, p := range d.Passengers {
		out = append(out, models.Passenger{Seat: p.Seat, Name: strings.TrimSpace(p.Name)})
	}
	return out
}
