package models

import "time"

// Category is the travel product chosen on the first wizard step.
type Category string

const (
	CategoryReguler         Category = "Reguler"
	CategoryDropping        Category = "Dropping"
	CategoryRental          Category = "Rental"
	CategoryPaketBarang     Category = "Paket Barang"
	CategoryHotel           Category = "Hotel"
	CategoryAirportTransfer Category = "Antar Jemput Bandara"
	CategoryPPOB            Category = "PPOB"
)

var categories = []Category{
	CategoryReguler,
	CategoryDropping,
	CategoryRental,
	CategoryPaketBarang,
	CategoryHotel,
	CategoryAirportTransfer,
	CategoryPPOB,
}

// Categories lists every supported category in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

// UsesSeats reports whether the category books individual seats.
func (c Category) UsesSeats() bool {
	return c == CategoryReguler
}

// BookingFor tells whether the booker travels or books for somebody else.
type BookingFor string

const (
	BookingForSelf  BookingFor = "self"
	BookingForOther BookingFor = "other"
)

// Stop is one entry of the route directory.
type Stop struct {
	Key     string `json:"key"`
	Display string `json:"display"`
}

type Route struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type Schedule struct {
	Date string `json:"date"` // YYYY-MM-DD
	Time string `json:"time"` // HH:MM
}

type Booker struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Passenger binds one selected seat to a traveller name.
type Passenger struct {
	Seat string `json:"seat"`
	Name string `json:"name"`
}

// Quote is always server-derived (or manually agreed when negotiated).
type Quote struct {
	PricePerSeat int64  `json:"pricePerSeat"`
	Total        int64  `json:"total"`
	RouteLabel   string `json:"route"`
}

func (q Quote) IsZero() bool {
	return q.PricePerSeat == 0 && q.Total == 0 && q.RouteLabel == ""
}

// BookingDraft is the not-yet-final booking held by one flow.
// BookingID 0 means no booking has been created for the current inputs.
type BookingDraft struct {
	Category        Category    `json:"category"`
	Route           Route       `json:"route"`
	Schedule        Schedule    `json:"schedule"`
	BookingFor      BookingFor  `json:"bookingFor"`
	Booker          Booker      `json:"booker"`
	PickupLocation  string      `json:"pickupLocation"`
	DropoffLocation string      `json:"dropoffLocation"`
	SelectedSeats   []string    `json:"selectedSeats"`
	Passengers      []Passenger `json:"passengers"`
	Quote           Quote       `json:"quote"`
	IsNegotiated    bool        `json:"isNegotiated"`
	AgreedPrice     int64       `json:"agreedPrice,omitempty"`
	BookingID       int64       `json:"bookingId,omitempty"`
	PaymentStatus   string      `json:"paymentStatus"`
	PaymentMethod   string      `json:"paymentMethod"`
}

// Clone returns a deep copy safe to hand out of the owning flow.
func (d BookingDraft) Clone() BookingDraft {
	out := d
	out.SelectedSeats = append([]string(nil), d.SelectedSeats...)
	out.Passengers = append([]Passenger(nil), d.Passengers...)
	if out.SelectedSeats == nil {
		out.SelectedSeats = []string{}
	}
	if out.Passengers == nil {
		out.Passengers = []Passenger{}
	}
	return out
}

// HasSeat reports whether seat is currently selected.
func (d BookingDraft) HasSeat(seat string) bool {
	for _, s := range d.SelectedSeats {
		if s == seat {
			return true
		}
	}
	return false
}

// ResumableSession is what survives a page reload: enough to rehydrate the
// review/payment step of an in-progress booking.
type ResumableSession struct {
	BookingID int64        `json:"bookingId"`
	Draft     BookingDraft `json:"draft"`
	SavedAt   time.Time    `json:"savedAt"`
}
