package domain

// Payment status vocabulary shared with the travel backend.
const (
	StatusUnpaid             = "Belum Bayar"
	StatusAwaitingValidation = "Menunggu Validasi"
	StatusPaid               = "Lunas"
	StatusRejected           = "Ditolak"
)

// Payment methods accepted by the backend.
const (
	MethodCash     = "cash"
	MethodTransfer = "transfer"
	MethodQRIS     = "qris"
)

// IsAwaitingValidation reports whether status is the payment-submitted,
// not-yet-approved state.
func IsAwaitingValidation(status string) bool {
	return status == StatusAwaitingValidation
}
