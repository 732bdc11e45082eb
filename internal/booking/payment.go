package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bookingflow/internal/apiclient"
	"bookingflow/internal/domain"
	"bookingflow/internal/domain/models"
)

// StatusProvider reads the current payment state of a booking.
type StatusProvider interface {
	PaymentStatus(ctx context.Context, bookingID int64) (models.PaymentState, error)
}

type StatusProviderFunc func(ctx context.Context, bookingID int64) (models.PaymentState, error)

func (f StatusProviderFunc) PaymentStatus(ctx context.Context, bookingID int64) (models.PaymentState, error) {
	return f(ctx, bookingID)
}

// ErrNoValidation is returned when no validation record matches the booking.
var ErrNoValidation = errors.New("no payment validation for booking")

// ErrNoStatus is returned when a source answers without a payment status.
var ErrNoStatus = errors.New("payment status missing")

type BookingDetailSource interface {
	BookingDetail(ctx context.Context, bookingID int64) (models.PaymentState, error)
}

type ValidationByBookingSource interface {
	PaymentValidationsByBooking(ctx context.Context, bookingID int64) ([]apiclient.PaymentValidation, error)
}

type ValidationListSource interface {
	PaymentValidations(ctx context.Context) ([]apiclient.PaymentValidation, error)
}

// BookingDetailProvider reads status straight from the booking record.
type BookingDetailProvider struct {
	Source BookingDetailSource
}

func (p BookingDetailProvider) PaymentStatus(ctx context.Context, bookingID int64) (models.PaymentState, error) {
	st, err := p.Source.BookingDetail(ctx, bookingID)
	if err != nil {
		return models.PaymentState{}, err
	}
	st.BookingID = bookingID
	st.PaymentStatus = strings.TrimSpace(st.PaymentStatus)
	if st.PaymentStatus == "" {
		return models.PaymentState{}, domain.NotFoundError{Resource: "payment status", Err: ErrNoStatus}
	}
	return st, nil
}

// ValidationByBookingProvider asks the validation queue filtered by booking
// id. Records without a booking id are trusted to match the server filter.
type ValidationByBookingProvider struct {
	Source ValidationByBookingSource
}

func (p ValidationByBookingProvider) PaymentStatus(ctx context.Context, bookingID int64) (models.PaymentState, error) {
	list, err := p.Source.PaymentValidationsByBooking(ctx, bookingID)
	if err != nil {
		return models.PaymentState{}, err
	}
	return pickValidation(list, bookingID, true)
}

// ValidationListProvider scans the whole validation queue client-side.
type ValidationListProvider struct {
	Source ValidationListSource
}

func (p ValidationListProvider) PaymentStatus(ctx context.Context, bookingID int64) (models.PaymentState, error) {
	list, err := p.Source.PaymentValidations(ctx)
	if err != nil {
		return models.PaymentState{}, err
	}
	return pickValidation(list, bookingID, false)
}

// pickValidation takes the newest record for bookingID (highest id).
func pickValidation(list []apiclient.PaymentValidation, bookingID int64, acceptUnlinked bool) (models.PaymentState, error) {
	var (
		best  apiclient.PaymentValidation
		found bool
	)
	for _, v := range list {
		match := v.BookingID == bookingID || (acceptUnlinked && v.BookingID == 0)
		if !match || strings.TrimSpace(v.Status) == "" {
			continue
		}
		if !found || v.ID > best.ID {
			best, found = v, true
		}
	}
	if !found {
		return models.PaymentState{}, domain.NotFoundError{Resource: "payment validation", Err: ErrNoValidation}
	}
	status := MapValidationStatus(best.Status)
	if status == "" {
		return models.PaymentState{}, domain.NotFoundError{Resource: "payment status", Err: ErrNoStatus}
	}
	return models.PaymentState{
		BookingID:     bookingID,
		PaymentStatus: status,
		PaymentMethod: best.PaymentMethod,
	}, nil
}

// MapValidationStatus translates the validation queue vocabulary into
// booking payment statuses; unknown values pass through.
func MapValidationStatus(s string) string {
	raw := strings.TrimSpace(s)
	switch strings.ToLower(raw) {
	case "approved":
		return domain.StatusPaid
	case "rejected":
		return domain.StatusRejected
	}
	return raw
}

// FallbackProvider tries each provider in order; the first success wins.
type FallbackProvider []StatusProvider

func (f FallbackProvider) PaymentStatus(ctx context.Context, bookingID int64) (models.PaymentState, error) {
	var errs []error
	for i, p := range f {
		st, err := p.PaymentStatus(ctx, bookingID)
		if err == nil {
			return st, nil
		}
		if ctx.Err() != nil {
			return models.PaymentState{}, ctx.Err()
		}
		errs = append(errs, fmt.Errorf("provider %d: %w", i+1, err))
	}
	if len(errs) == 0 {
		return models.PaymentState{}, domain.UnavailableError{Op: "payment_status", Msg: "tidak ada sumber status pembayaran"}
	}
	return models.PaymentState{}, domain.UnavailableError{Op: "payment_status", Msg: msgStatusFailed, Err: errors.Join(errs...)}
}

// StatusSource is everything the default fallback chain reads from.
type StatusSource interface {
	BookingDetailSource
	ValidationByBookingSource
	ValidationListSource
}

// NewStatusChain builds the default chain: booking detail, then validation
// by booking id, then the full validation list.
func NewStatusChain(src StatusSource) FallbackProvider {
	return FallbackProvider{
		BookingDetailProvider{Source: src},
		ValidationByBookingProvider{Source: src},
		ValidationListProvider{Source: src},
	}
}

// PaidPredicate decides whether a status means fully paid. Tokens are
// gateway specific, so they come from configuration.
type PaidPredicate struct {
	tokens          map[string]bool
	cashImpliesPaid bool
}

func NewPaidPredicate(tokens []string, cashImpliesPaid bool) PaidPredicate {
	p := PaidPredicate{tokens: map[string]bool{}, cashImpliesPaid: cashImpliesPaid}
	for _, t := range tokens {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			p.tokens[t] = true
		}
	}
	p.tokens[strings.ToLower(domain.StatusPaid)] = true
	return p
}

func (p PaidPredicate) IsPaid(status, method string) bool {
	if p.cashImpliesPaid && strings.EqualFold(strings.TrimSpace(method), domain.MethodCash) {
		return true
	}
	return p.tokens[strings.ToLower(strings.TrimSpace(status))]
}

// Known reports whether status belongs to the recognized vocabulary. Unknown
// statuses are treated as unpaid but should be flagged.
func (p PaidPredicate) Known(status string) bool {
	s := strings.ToLower(strings.TrimSpace(status))
	switch s {
	case "", strings.ToLower(domain.StatusUnpaid), strings.ToLower(domain.StatusAwaitingValidation), strings.ToLower(domain.StatusRejected):
		return true
	}
	return p.tokens[s]
}
