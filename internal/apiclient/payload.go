package apiclient

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"bookingflow/internal/domain"
	"bookingflow/internal/domain/models"
	"bookingflow/internal/utils"
)

// QuoteRequest mirrors the backend quote contract.
type QuoteRequest struct {
	Category       string   `json:"category"`
	From           string   `json:"from"`
	To             string   `json:"to"`
	Date           string   `json:"date"`
	Time           string   `json:"time"`
	SelectedSeats  []string `json:"selectedSeats"`
	PassengerCount int      `json:"passengerCount"`
}

// BookingRequest is the create-booking payload.
type BookingRequest struct {
	Category        string             `json:"category"`
	From            string             `json:"from"`
	To              string             `json:"to"`
	Date            string             `json:"date"`
	Time            string             `json:"time"`
	SelectedSeats   []string           `json:"selectedSeats"`
	BookingFor      string             `json:"bookingFor,omitempty"`
	PassengerCount  int                `json:"passengerCount,omitempty"`
	Passengers      []models.Passenger `json:"passengers,omitempty"`
	PassengerName   string             `json:"passengerName"`
	PassengerPhone  string             `json:"passengerPhone"`
	PickupLocation  string             `json:"pickupLocation"`
	DropoffLocation string             `json:"dropoffLocation"`
	TotalAmount     int64              `json:"totalAmount,omitempty"`
	IsNegotiated    bool               `json:"isNegotiated,omitempty"`
}

// BookingResult is the canonical create-booking response.
type BookingResult struct {
	BookingID      int64  `json:"bookingId"`
	Total          int64  `json:"total"`
	PricePerSeat   int64  `json:"pricePerSeat"`
	Route          string `json:"route"`
	PassengerCount int    `json:"passengerCount"`
	PaymentStatus  string `json:"paymentStatus"`
	PaymentMethod  string `json:"paymentMethod"`
}

// PaymentValidation is one record of the admin payment-validation queue.
type PaymentValidation struct {
	ID            int64  `json:"id"`
	BookingID     int64  `json:"bookingId"`
	Status        string `json:"status"`
	PaymentMethod string `json:"paymentMethod"`
}

// Manifest is the surat jalan (passenger manifest) of a booking.
type Manifest struct {
	BookingID       int64              `json:"bookingId"`
	RouteFrom       string             `json:"routeFrom"`
	RouteTo         string             `json:"routeTo"`
	TripDate        string             `json:"tripDate"`
	TripTime        string             `json:"tripTime"`
	PickupLocation  string             `json:"pickupLocation"`
	DropoffLocation string             `json:"dropoffLocation"`
	PricePerSeat    int64              `json:"pricePerSeat"`
	Total           int64              `json:"total"`
	PassengerPhone  string             `json:"passengerPhone"`
	Passengers      []models.Passenger `json:"passengers"`
}

// decodeStops accepts {"stops":[...]}, [...] of {key,display} or [...] of strings.
func decodeStops(raw json.RawMessage) ([]models.Stop, error) {
	items, err := unwrapList(raw, "stops", "data")
	if err != nil {
		return nil, err
	}
	out := make([]models.Stop, 0, len(items))
	seen := map[string]bool{}
	for _, it := range items {
		var st models.Stop
		switch v := it.(type) {
		case string:
			st = models.Stop{Key: utils.StopKey(v), Display: strings.TrimSpace(v)}
		case map[string]any:
			st.Display = pickString(v, "display", "name", "label")
			st.Key = pickString(v, "key", "value")
			if st.Display == "" {
				st.Display = st.Key
			}
			if st.Key == "" {
				st.Key = utils.StopKey(st.Display)
			}
		default:
			continue
		}
		if st.Display == "" || seen[st.Display] {
			continue
		}
		seen[st.Display] = true
		out = append(out, st)
	}
	return out, nil
}

// decodeSeats accepts {"bookedSeats":[...]}, {"seats":[...]} or a bare array.
// Entries may themselves be comma separated ("1A, 1B").
func decodeSeats(raw json.RawMessage) ([]string, error) {
	items, err := unwrapList(raw, "bookedSeats", "booked_seats", "seats", "data")
	if err != nil {
		return nil, err
	}
	seats := make([]string, 0, len(items))
	for _, it := range items {
		switch v := it.(type) {
		case string:
			seats = append(seats, utils.SplitSeatList(v)...)
		case map[string]any:
			seats = append(seats, utils.SplitSeatList(pickString(v, "seat", "seatCode", "seat_code", "seats"))...)
		}
	}
	return utils.NormalizeSeats(seats), nil
}

func decodeQuote(m map[string]any) models.Quote {
	return models.Quote{
		PricePerSeat: pickInt(m, "pricePerSeat", "price_per_seat"),
		Total:        pickInt(m, "total", "totalAmount", "total_amount"),
		RouteLabel:   pickString(m, "route", "routeLabel", "route_label"),
	}
}

func decodeBookingResult(m map[string]any) BookingResult {
	return BookingResult{
		BookingID:      pickInt(m, "bookingId", "booking_id", "id"),
		Total:          pickInt(m, "total", "totalAmount", "total_amount"),
		PricePerSeat:   pickInt(m, "pricePerSeat", "price_per_seat"),
		Route:          pickString(m, "route", "routeLabel"),
		PassengerCount: int(pickInt(m, "passengerCount", "passenger_count")),
		PaymentStatus:  pickString(m, "paymentStatus", "payment_status"),
		PaymentMethod:  pickString(m, "paymentMethod", "payment_method"),
	}
}

func decodePaymentState(m map[string]any) models.PaymentState {
	return models.PaymentState{
		BookingID:     pickInt(m, "bookingId", "booking_id", "id"),
		PaymentStatus: pickString(m, "paymentStatus", "payment_status", "status"),
		PaymentMethod: pickString(m, "paymentMethod", "payment_method"),
		TotalAmount:   pickInt(m, "totalAmount", "total_amount", "total"),
	}
}

func decodeValidation(m map[string]any) PaymentValidation {
	return PaymentValidation{
		ID:            pickInt(m, "id"),
		BookingID:     pickInt(m, "bookingId", "booking_id", "reguler_booking_id"),
		Status:        pickString(m, "status", "paymentStatus", "payment_status"),
		PaymentMethod: pickString(m, "paymentMethod", "payment_method"),
	}
}

func decodeValidations(raw json.RawMessage) ([]PaymentValidation, error) {
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err == nil {
		if _, wrapped := firstPresent(obj, "data", "items", "validations"); !wrapped {
			return []PaymentValidation{decodeValidation(obj)}, nil
		}
	}
	items, err := unwrapList(raw, "data", "items", "validations")
	if err != nil {
		return nil, err
	}
	out := make([]PaymentValidation, 0, len(items))
	for _, it := range items {
		if m, ok := it.(map[string]any); ok {
			out = append(out, decodeValidation(m))
		}
	}
	return out, nil
}

func decodeManifest(m map[string]any) Manifest {
	out := Manifest{
		BookingID:       pickInt(m, "bookingId", "booking_id", "id"),
		RouteFrom:       pickString(m, "routeFrom", "route_from", "from"),
		RouteTo:         pickString(m, "routeTo", "route_to", "to"),
		TripDate:        pickString(m, "tripDate", "trip_date", "date"),
		TripTime:        pickString(m, "tripTime", "trip_time", "time"),
		PickupLocation:  pickString(m, "pickupLocation", "pickup_location"),
		DropoffLocation: pickString(m, "dropoffLocation", "dropoff_location"),
		PricePerSeat:    pickInt(m, "pricePerSeat", "price_per_seat"),
		Total:           pickInt(m, "total", "totalAmount", "total_amount"),
		PassengerPhone:  pickString(m, "passengerPhone", "passenger_phone"),
		Passengers:      []models.Passenger{},
	}
	if list, ok := firstPresent(m, "passengers"); ok {
		if arr, ok := list.([]any); ok {
			for _, it := range arr {
				p, ok := it.(map[string]any)
				if !ok {
					continue
				}
				out.Passengers = append(out.Passengers, models.Passenger{
					Seat: utils.NormalizeSeat(pickString(p, "seat", "seatCode", "seat_code")),
					Name: pickString(p, "name", "passengerName", "passenger_name"),
				})
			}
		}
	}
	return out
}

func unwrapList(raw json.RawMessage, keys ...string) ([]any, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, domain.UnavailableError{Msg: "respon server tidak valid", Err: err}
	}
	switch x := v.(type) {
	case []any:
		return x, nil
	case map[string]any:
		if inner, ok := firstPresent(x, keys...); ok {
			if arr, ok := inner.([]any); ok {
				return arr, nil
			}
		}
		return []any{}, nil
	case nil:
		return []any{}, nil
	}
	return nil, domain.UnavailableError{Msg: "respon server tidak valid"}
}

func firstPresent(m map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func pickString(m map[string]any, keys ...string) string {
	v, ok := firstPresent(m, keys...)
	if !ok {
		return ""
	}
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	}
	return ""
}

func pickInt(m map[string]any, keys ...string) int64 {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		switch x := v.(type) {
		case float64:
			return int64(math.Round(x))
		case string:
			if n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64); err == nil {
				return n
			}
			if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
				return int64(math.Round(f))
			}
		}
	}
	return 0
}
