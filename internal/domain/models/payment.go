package models

// PaymentState is the canonical payment view of a booking, whatever endpoint
// it was read from.
type PaymentState struct {
	BookingID     int64  `json:"bookingId"`
	PaymentStatus string `json:"paymentStatus"`
	PaymentMethod string `json:"paymentMethod"`
	TotalAmount   int64  `json:"totalAmount"`
}

// PaymentProof is the transfer/QRIS evidence uploaded from the review step.
type PaymentProof struct {
	PaymentMethod string `json:"paymentMethod"`
	ProofFile     string `json:"proofFile"`
	ProofFileName string `json:"proofFileName"`
}
