package booking

import (
	"bookingflow/internal/domain/models"
	"bookingflow/internal/utils"
)

// toggleSeat applies the seat selection rules to d. booked is the snapshot
// of seats held by other bookings for the draft's current tuple. On error d
// is left unchanged.
func toggleSeat(d *models.BookingDraft, booked map[string]bool, seatID string, maxSeats int) error {
	seat := utils.NormalizeSeat(seatID)
	if seat == "" {
		return invalid("seat", "Kode kursi tidak valid", ErrSeatInvalid)
	}
	// Deselecting is always allowed, so a seat lost to a concurrent booking
	// can still be released.
	if d.HasSeat(seat) {
		next := make([]string, 0, len(d.SelectedSeats))
		for _, s := range d.SelectedSeats {
			if s != seat {
				next = append(next, s)
			}
		}
		d.SelectedSeats = next
		return nil
	}

	if booked[seat] {
		return seatUnavailable(seat)
	}
	if len(d.SelectedSeats) >= maxSeats {
		return seatLimit(maxSeats)
	}
	d.SelectedSeats = append(append([]string(nil), d.SelectedSeats...), seat)
	return nil
}

func seatSet(seats []string) map[string]bool {
	out := make(map[string]bool, len(seats))
	for _, s := range utils.NormalizeSeats(seats) {
		out[s] = true
	}
	return out
}
