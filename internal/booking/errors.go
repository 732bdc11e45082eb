package booking

import (
	"errors"
	"fmt"

	"bookingflow/internal/domain"
)

var (
	ErrSeatInvalid      = errors.New("seat invalid")
	ErrSeatUnavailable  = errors.New("seat unavailable")
	ErrSeatLimit        = errors.New("seat limit reached")
	ErrSeatsNotUsed     = errors.New("category does not use seats")
	ErrSubmitInFlight   = errors.New("submission already in progress")
	ErrIncomplete       = errors.New("booking incomplete")
	ErrStaleSubmission  = errors.New("draft changed during submission")
	ErrNoBooking        = errors.New("no booking yet")
	ErrNegotiationState = errors.New("negotiation not applicable")
	ErrStep             = errors.New("invalid step transition")
	ErrClosed           = errors.New("flow closed")
	ErrNotPaid          = errors.New("booking not paid")
)

// Messages shown to the user; each says what to do next.
const (
	msgSeatTaken       = "Kursi sudah dibooking orang lain, silakan pilih kursi lain"
	msgSubmitFailed    = "Gagal membuat pemesanan, silakan coba lagi"
	msgQuoteFailed     = "Tarif belum tersedia untuk rute ini"
	msgStopsFailed     = "Gagal memuat daftar rute, coba muat ulang"
	msgSeatsFailed     = "Gagal memuat ketersediaan kursi, kursi akan dicek ulang saat pemesanan"
	msgStatusFailed    = "Gagal memperbarui status pembayaran"
	msgStaleSubmission = "Data pemesanan berubah saat dikirim, silakan kirim ulang"
	msgInvoiceReady    = "Pembayaran lunas, invoice dan e-ticket siap ditampilkan"
)

func invalid(field, msg string, cause error) error {
	return domain.ValidationError{Field: field, Msg: msg, Err: cause}
}

func seatUnavailable(seat string) error {
	return invalid("seat", fmt.Sprintf("Kursi %s sudah dibooking, pilih kursi lain", seat), ErrSeatUnavailable)
}

func seatLimit(max int) error {
	return invalid("seat", fmt.Sprintf("Maksimal %d kursi per pemesanan", max), ErrSeatLimit)
}
