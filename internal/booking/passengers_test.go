package booking

import (
	"testing"

	"bookingflow/internal/domain/models"
)

func TestReconcilePassengersKeepsNamesBySeat(t *testing.T) {
	prev := []models.Passenger{{Seat: "1A", Name: "Andi"}, {Seat: "2A", Name: "Budi"}}

	got, changed := ReconcilePassengers([]string{"2A", "3B"}, prev, models.BookingForOther, "")
	if !changed {
		t.Fatalf("expected change")
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 passengers, got %d", len(got))
	}
	if got[0].Seat != "2A" || got[0].Name != "Budi" {
		t.Fatalf("seat 2A should keep its name, got %+v", got[0])
	}
	if got[1].Seat != "3B" || got[1].Name != "" {
		t.Fatalf("new seat should be unnamed, got %+v", got[1])
	}
}

func TestReconcilePassengersSelfPrefill(t *testing.T) {
	got, _ := ReconcilePassengers([]string{"1A", "1B"}, nil, models.BookingForSelf, "Rina")
	if got[0].Name != "Rina" {
		t.Fatalf("first seat should carry booker name, got %q", got[0].Name)
	}
	if got[1].Name != "" {
		t.Fatalf("second seat should stay empty, got %q", got[1].Name)
	}

	// an explicit name is not overwritten
	prev := []models.Passenger{{Seat: "1A", Name: "Sari"}}
	got, _ = ReconcilePassengers([]string{"1A"}, prev, models.BookingForSelf, "Rina")
	if got[0].Name != "Sari" {
		t.Fatalf("explicit name overwritten: %q", got[0].Name)
	}
}

func TestReconcilePassengersNoChange(t *testing.T) {
	prev := []models.Passenger{{Seat: "1A", Name: "Andi"}}
	_, changed := ReconcilePassengers([]string{"1a"}, prev, models.BookingForOther, "")
	if changed {
		t.Fatalf("same seats and names should report no change")
	}
}

func TestPassengersValid(t *testing.T) {
	cases := []struct {
		name  string
		draft models.BookingDraft
		want  bool
	}{
		{
			name: "self single seat uses booker",
			draft: models.BookingDraft{
				BookingFor:    models.BookingForSelf,
				Booker:        models.Booker{Name: "Rina"},
				SelectedSeats: []string{"1A"},
			},
			want: true,
		},
		{
			name: "self single seat without booker",
			draft: models.BookingDraft{
				BookingFor:    models.BookingForSelf,
				SelectedSeats: []string{"1A"},
				Passengers:    []models.Passenger{{Seat: "1A", Name: "X"}},
			},
			want: false,
		},
		{
			name: "blank name",
			draft: models.BookingDraft{
				BookingFor:    models.BookingForOther,
				SelectedSeats: []string{"1A", "1B"},
				Passengers:    []models.Passenger{{Seat: "1A", Name: "A"}, {Seat: "1B", Name: "  "}},
			},
			want: false,
		},
		{
			name: "all named",
			draft: models.BookingDraft{
				BookingFor:    models.BookingForOther,
				SelectedSeats: []string{"1A", "1B"},
				Passengers:    []models.Passenger{{Seat: "1A", Name: "A"}, {Seat: "1B", Name: "B"}},
			},
			want: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PassengersValid(tc.draft); got != tc.want {
				t.Fatalf("PassengersValid = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestShowPassengerList(t *testing.T) {
	d := models.BookingDraft{BookingFor: models.BookingForSelf, SelectedSeats: []string{"1A"}}
	if ShowPassengerList(d) {
		t.Fatalf("single self seat should hide the list")
	}
	d.SelectedSeats = append(d.SelectedSeats, "1B")
	if !ShowPassengerList(d) {
		t.Fatalf("two seats should show the list")
	}
	d = models.BookingDraft{BookingFor: models.BookingForOther, SelectedSeats: []string{"1A"}}
	if !ShowPassengerList(d) {
		t.Fatalf("booking for others should show the list")
	}
}
