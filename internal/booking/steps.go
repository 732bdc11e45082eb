package booking

import (
	"strings"
)

// Step is a wizard step. Negotiation sits outside the linear order and is
// entered from details when the price must be agreed manually.
type Step int

const (
	StepCategory Step = iota + 1
	StepDetails
	StepContact
	StepReview
	StepNegotiation
)

func (s Step) String() string {
	switch s {
	case StepCategory:
		return "category"
	case StepDetails:
		return "details"
	case StepContact:
		return "contact"
	case StepReview:
		return "review"
	case StepNegotiation:
		return "negotiation"
	}
	return "unknown"
}

func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// Next advances one step. Leaving details requires a submitted booking;
// Submit itself advances, so Next there only routes to negotiation or
// re-enters contact after a Back.
func (f *Flow) Next() error {
	f.mu.Lock()
	defer f.unlock()
	if err := f.checkOpenLocked(); err != nil {
		return err
	}

	switch f.step {
	case StepCategory:
		if !f.draft.Category.Valid() {
			return invalid("category", "Pilih kategori layanan terlebih dahulu", ErrStep)
		}
		f.step = StepDetails
	case StepDetails:
		if NeedsNegotiation(f.draft.Category, f.draft.Route) && !f.draft.IsNegotiated {
			f.step = StepNegotiation
			return nil
		}
		if f.draft.BookingID == 0 {
			return invalid("step", "Kirim pemesanan terlebih dahulu", ErrNoBooking)
		}
		f.step = StepContact
	case StepNegotiation:
		if !f.draft.IsNegotiated {
			return invalid("agreedPrice", "Harga perlu disepakati terlebih dahulu", ErrNegotiationState)
		}
		f.step = StepDetails
	case StepContact:
		return f.confirmContactLocked()
	default:
		return invalid("step", "Tidak ada langkah berikutnya", ErrStep)
	}
	return nil
}

// Back returns to the previous step without touching the draft.
func (f *Flow) Back() error {
	f.mu.Lock()
	defer f.unlock()
	if err := f.checkOpenLocked(); err != nil {
		return err
	}

	switch f.step {
	case StepDetails:
		f.step = StepCategory
	case StepNegotiation, StepContact:
		f.step = StepDetails
	case StepReview:
		f.step = StepContact
	default:
		return invalid("step", "Tidak ada langkah sebelumnya", ErrStep)
	}
	return nil
}

// ConfirmContact confirms the booker's contact and moves to review, where
// payment happens.
func (f *Flow) ConfirmContact() error {
	f.mu.Lock()
	defer f.unlock()
	if err := f.checkOpenLocked(); err != nil {
		return err
	}
	return f.confirmContactLocked()
}

func (f *Flow) confirmContactLocked() error {
	if f.step != StepContact {
		return invalid("step", "Konfirmasi kontak hanya pada langkah kontak", ErrStep)
	}
	if f.draft.BookingID == 0 {
		return invalid("step", "Kirim pemesanan terlebih dahulu", ErrNoBooking)
	}
	if strings.TrimSpace(f.draft.Booker.Name) == "" {
		return invalid("passengerName", "Nama pemesan wajib diisi", ErrIncomplete)
	}
	if strings.TrimSpace(f.draft.Booker.Phone) == "" {
		return invalid("passengerPhone", "Nomor HP wajib diisi", ErrIncomplete)
	}
	f.step = StepReview
	f.afterPaymentChangeLocked()
	return nil
}
