package booking

import (
	"context"
	"strings"

	"bookingflow/internal/apiclient"
	"bookingflow/internal/domain"
	"bookingflow/internal/domain/models"

	"github.com/sirupsen/logrus"
)

func (f *Flow) bookingID() (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkOpenLocked(); err != nil {
		return 0, err
	}
	if f.draft.BookingID == 0 {
		return 0, invalid("bookingId", "Belum ada pemesanan", ErrNoBooking)
	}
	return f.draft.BookingID, nil
}

func (f *Flow) reviewBookingID() (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkOpenLocked(); err != nil {
		return 0, err
	}
	if f.draft.BookingID == 0 {
		return 0, invalid("bookingId", "Belum ada pemesanan", ErrNoBooking)
	}
	if f.step != StepReview {
		return 0, invalid("step", "Pembayaran dilakukan pada langkah review", ErrStep)
	}
	return f.draft.BookingID, nil
}

// SubmitPaymentProof uploads transfer/QRIS evidence. The booking then awaits
// validation and the status poller starts.
func (f *Flow) SubmitPaymentProof(ctx context.Context, proof models.PaymentProof) (models.PaymentState, error) {
	proof.PaymentMethod = strings.ToLower(strings.TrimSpace(proof.PaymentMethod))
	if proof.PaymentMethod != domain.MethodTransfer && proof.PaymentMethod != domain.MethodQRIS {
		return models.PaymentState{}, invalid("paymentMethod", "Metode pembayaran harus transfer atau qris", ErrIncomplete)
	}
	if strings.TrimSpace(proof.ProofFile) == "" {
		return models.PaymentState{}, invalid("proofFile", "Bukti pembayaran wajib diunggah", ErrIncomplete)
	}

	id, err := f.reviewBookingID()
	if err != nil {
		return models.PaymentState{}, err
	}

	st, err := f.backend.SubmitPaymentProof(ctx, id, proof)
	if err != nil {
		f.log.WithError(err).WithField("booking_id", id).Error("gagal mengirim bukti pembayaran")
		f.notifier.Notify(Notice{Level: LevelError, Code: "payment_failed", Message: domain.UserMessage(err, "Gagal mengirim bukti pembayaran")})
		return models.PaymentState{}, err
	}
	st.BookingID = id
	if st.PaymentStatus == "" {
		st.PaymentStatus = domain.StatusAwaitingValidation
	}
	if st.PaymentMethod == "" {
		st.PaymentMethod = proof.PaymentMethod
	}
	f.applyPayment(st)
	return st, nil
}

// ConfirmCash records a cash payment.
func (f *Flow) ConfirmCash(ctx context.Context) (models.PaymentState, error) {
	id, err := f.reviewBookingID()
	if err != nil {
		return models.PaymentState{}, err
	}
	st, err := f.backend.ConfirmCash(ctx, id)
	if err != nil {
		f.log.WithError(err).WithField("booking_id", id).Error("gagal konfirmasi pembayaran tunai")
		f.notifier.Notify(Notice{Level: LevelError, Code: "payment_failed", Message: domain.UserMessage(err, "Gagal konfirmasi pembayaran tunai")})
		return models.PaymentState{}, err
	}
	st.BookingID = id
	if st.PaymentMethod == "" {
		st.PaymentMethod = domain.MethodCash
	}
	f.applyPayment(st)
	return st, nil
}

// RefreshPayment reads the status once through the fallback chain. When
// every source fails the status is left as it was.
func (f *Flow) RefreshPayment(ctx context.Context) (models.PaymentState, error) {
	id, err := f.bookingID()
	if err != nil {
		return models.PaymentState{}, err
	}
	st, err := f.status.PaymentStatus(ctx, id)
	if err != nil {
		f.log.WithError(err).WithField("booking_id", id).Warn("status pembayaran gagal dibaca")
		f.notifier.Notify(Notice{Level: LevelWarning, Code: "status_unavailable", Message: domain.UserMessage(err, msgStatusFailed)})
		return models.PaymentState{}, err
	}
	st.BookingID = id
	f.applyPayment(st)
	return st, nil
}

// Manifest fetches the surat jalan of the submitted booking.
func (f *Flow) Manifest(ctx context.Context) (apiclient.Manifest, error) {
	id, err := f.bookingID()
	if err != nil {
		return apiclient.Manifest{}, err
	}
	return f.backend.Manifest(ctx, id)
}

// Complete finishes a paid booking: the flow is closed and the stored
// session forgotten so a reload starts a new booking.
func (f *Flow) Complete(ctx context.Context) error {
	f.mu.Lock()
	err := f.checkOpenLocked()
	if err == nil && (f.draft.BookingID <= 0 || f.revealedFor != f.draft.BookingID) {
		err = invalid("paymentStatus", "Pembayaran belum lunas", ErrNotPaid)
	}
	f.mu.Unlock()
	if err != nil {
		return err
	}
	f.log.WithField("booking_id", f.Draft().BookingID).Info("pemesanan selesai")
	return f.Discard(ctx)
}

// applyPayment merges a payment state read for the current booking. States
// for any other booking id are dropped.
func (f *Flow) applyPayment(st models.PaymentState) {
	f.mu.Lock()
	defer f.unlock()
	if f.closed || f.draft.BookingID == 0 || st.BookingID != f.draft.BookingID {
		return
	}

	d := &f.draft
	changed := false
	if s := strings.TrimSpace(st.PaymentStatus); s != "" && s != d.PaymentStatus {
		d.PaymentStatus = s
		changed = true
		if strings.EqualFold(s, domain.StatusRejected) {
			f.emit(LevelWarning, "payment_rejected", "Pembayaran ditolak, silakan unggah ulang bukti pembayaran")
		}
	}
	if m := strings.TrimSpace(st.PaymentMethod); m != "" && m != d.PaymentMethod {
		d.PaymentMethod = m
		changed = true
	}
	if st.TotalAmount > 0 && st.TotalAmount != d.Quote.Total {
		d.Quote.Total = st.TotalAmount
		changed = true
	}
	if changed {
		f.queueSaveLocked()
	}
	f.afterPaymentChangeLocked()
}

// afterPaymentChangeLocked drives polling and the one-time invoice reveal
// from the current payment status.
func (f *Flow) afterPaymentChangeLocked() {
	d := f.draft
	if d.BookingID == 0 {
		return
	}
	if !f.cfg.Paid.Known(d.PaymentStatus) {
		f.log.WithFields(logrus.Fields{"booking_id": d.BookingID, "status": d.PaymentStatus}).Warn("status pembayaran tidak dikenal, dianggap belum lunas")
	}
	if domain.IsAwaitingValidation(d.PaymentStatus) {
		f.poller.Start(f.baseCtx, d.BookingID)
		return
	}
	f.poller.Finish(d.BookingID)

	if f.cfg.Paid.IsPaid(d.PaymentStatus, d.PaymentMethod) && f.revealedFor != d.BookingID {
		f.revealedFor = d.BookingID
		f.pendingReveal = &revealArgs{bookingID: d.BookingID, draft: d.Clone()}
		f.emit(LevelInfo, "invoice_ready", msgInvoiceReady)
	}
}
