package booking

import (
	"errors"
	"testing"

	"bookingflow/internal/domain/models"
)

func TestToggleSeatSelectAndDeselect(t *testing.T) {
	d := models.BookingDraft{}
	if err := toggleSeat(&d, nil, " 1a ", 6); err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(d.SelectedSeats) != 1 || d.SelectedSeats[0] != "1A" {
		t.Fatalf("unexpected seats %v", d.SelectedSeats)
	}
	if err := toggleSeat(&d, nil, "1A", 6); err != nil {
		t.Fatalf("deselect: %v", err)
	}
	if len(d.SelectedSeats) != 0 {
		t.Fatalf("seat should be removed, got %v", d.SelectedSeats)
	}
}

func TestToggleSeatRejectsBooked(t *testing.T) {
	d := models.BookingDraft{}
	err := toggleSeat(&d, map[string]bool{"2B": true}, "2B", 6)
	if !errors.Is(err, ErrSeatUnavailable) {
		t.Fatalf("expected ErrSeatUnavailable, got %v", err)
	}
	if len(d.SelectedSeats) != 0 {
		t.Fatalf("draft must be unchanged")
	}
}

func TestToggleSeatDeselectsSeatBookedLater(t *testing.T) {
	d := models.BookingDraft{SelectedSeats: []string{"2B"}}
	if err := toggleSeat(&d, map[string]bool{"2B": true}, "2B", 6); err != nil {
		t.Fatalf("deselect of a now-booked seat must succeed: %v", err)
	}
	if len(d.SelectedSeats) != 0 {
		t.Fatalf("seat not removed")
	}
}

func TestToggleSeatLimit(t *testing.T) {
	d := models.BookingDraft{SelectedSeats: []string{"1A", "1B"}}
	err := toggleSeat(&d, nil, "1C", 2)
	if !errors.Is(err, ErrSeatLimit) {
		t.Fatalf("expected ErrSeatLimit, got %v", err)
	}
	if len(d.SelectedSeats) != 2 {
		t.Fatalf("draft must be unchanged, got %v", d.SelectedSeats)
	}
}

func TestToggleSeatEmpty(t *testing.T) {
	d := models.BookingDraft{}
	if err := toggleSeat(&d, nil, "  ", 6); !errors.Is(err, ErrSeatInvalid) {
		t.Fatalf("expected ErrSeatInvalid, got %v", err)
	}
}
