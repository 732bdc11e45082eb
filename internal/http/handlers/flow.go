package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bookingflow/internal/apiclient"
	"bookingflow/internal/booking"
	"bookingflow/internal/domain"
	"bookingflow/internal/domain/models"
	"bookingflow/internal/http/middleware"
	"bookingflow/internal/services"
	"bookingflow/internal/utils"

	"github.com/gin-gonic/gin"
)

// Sessions is the registry surface the flow handlers need.
type Sessions interface {
	Create(ctx context.Context, owner string, category models.Category) (*services.FlowSession, error)
	Get(id string) (*services.FlowSession, error)
	Remove(ctx context.Context, id string) error
	Len() int
}

// FlowHandler serves /api/flow/sessions.
type FlowHandler struct {
	Sessions Sessions
	Secret   []byte
	TokenTTL time.Duration
	OwnerTTL time.Duration
}

type flowResponse struct {
	SessionID string           `json:"sessionId"`
	State     booking.State    `json:"state"`
	Notices   []booking.Notice `json:"notices"`
}

func requestCtx(c *gin.Context) context.Context {
	return apiclient.WithRequestID(c.Request.Context(), middleware.GetRequestID(c))
}

func stateOf(s *services.FlowSession) flowResponse {
	return flowResponse{SessionID: s.ID, State: s.Flow.Snapshot(), Notices: s.Notices.Drain()}
}

func (h FlowHandler) session(c *gin.Context) (*services.FlowSession, bool) {
	s, err := h.Sessions.Get(c.Param("id"))
	if err != nil {
		RespondDomainError(c, err, nil)
		return nil, false
	}
	return s, true
}

// reply settles background refreshes and renders the state, or the error
// with the state attached.
func (h FlowHandler) reply(c *gin.Context, s *services.FlowSession, status int, err error) {
	s.Flow.Wait()
	if err != nil {
		RespondDomainError(c, err, stateOf(s))
		return
	}
	c.JSON(status, stateOf(s))
}

type createSessionRequest struct {
	OwnerToken string `json:"ownerToken"`
	Category   string `json:"category"`
}

// CreateSession starts a flow. Owner keys are never taken from the client:
// a returning browser proves its key with the ownerToken issued earlier.
func (h FlowHandler) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	owner := ""
	if strings.TrimSpace(req.OwnerToken) != "" {
		o, err := middleware.ParseOwnerToken(h.Secret, req.OwnerToken)
		if err != nil {
			RespondError(c, http.StatusUnauthorized, "token pemilik tidak valid", nil)
			return
		}
		owner = o
	}
	s, err := h.Sessions.Create(requestCtx(c), owner, models.Category(strings.TrimSpace(req.Category)))
	if err != nil {
		RespondDomainError(c, err, nil)
		return
	}
	token, err := middleware.IssueFlowToken(h.Secret, s.ID, s.Owner, h.TokenTTL)
	var ownerToken string
	if err == nil {
		ownerToken, err = middleware.IssueOwnerToken(h.Secret, s.Owner, h.OwnerTTL)
	}
	if err != nil {
		_ = h.Sessions.Remove(c.Request.Context(), s.ID)
		RespondError(c, http.StatusInternalServerError, "gagal membuat token sesi", err)
		return
	}
	utils.LogEvent(middleware.GetRequestID(c), "flow", "create_session", "session="+s.ID)

	s.Flow.Wait()
	c.JSON(http.StatusCreated, gin.H{
		"sessionId":  s.ID,
		"token":      token,
		"ownerToken": ownerToken,
		"state":      s.Flow.Snapshot(),
		"notices":    s.Notices.Drain(),
	})
}

func (h FlowHandler) GetSession(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	h.reply(c, s, http.StatusOK, nil)
}

func (h FlowHandler) DeleteSession(c *gin.Context) {
	if err := h.Sessions.Remove(requestCtx(c), c.Param("id")); err != nil {
		RespondDomainError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "sesi pemesanan dihapus"})
}

type categoryRequest struct {
	Category string `json:"category" binding:"required"`
}

func (h FlowHandler) ChooseCategory(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req categoryRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	err := s.Flow.ChooseCategory(models.Category(strings.TrimSpace(req.Category)))
	h.reply(c, s, http.StatusOK, err)
}

// draftPatch carries only the fields being edited.
type draftPatch struct {
	From            *string `json:"from"`
	To              *string `json:"to"`
	Date            *string `json:"date"`
	Time            *string `json:"time"`
	BookingFor      *string `json:"bookingFor"`
	PassengerName   *string `json:"passengerName"`
	PassengerPhone  *string `json:"passengerPhone"`
	PickupLocation  *string `json:"pickupLocation"`
	DropoffLocation *string `json:"dropoffLocation"`
}

func pick(v *string, current string) string {
	if v == nil {
		return current
	}
	return *v
}

func (h FlowHandler) PatchDraft(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var p draftPatch
	if !BindJSONOrError(c, &p) {
		return
	}
	h.reply(c, s, http.StatusOK, applyDraftPatch(s.Flow, p))
}

func applyDraftPatch(f *booking.Flow, p draftPatch) error {
	d := f.Draft()
	if p.From != nil || p.To != nil {
		if err := f.SetRoute(pick(p.From, d.Route.From), pick(p.To, d.Route.To)); err != nil {
			return err
		}
	}
	if p.Date != nil || p.Time != nil {
		if err := f.SetSchedule(pick(p.Date, d.Schedule.Date), pick(p.Time, d.Schedule.Time)); err != nil {
			return err
		}
	}
	if p.BookingFor != nil {
		if err := f.SetBookingFor(models.BookingFor(strings.ToLower(strings.TrimSpace(*p.BookingFor)))); err != nil {
			return err
		}
	}
	if p.PassengerName != nil || p.PassengerPhone != nil {
		if err := f.SetBooker(pick(p.PassengerName, d.Booker.Name), pick(p.PassengerPhone, d.Booker.Phone)); err != nil {
			return err
		}
	}
	if p.PickupLocation != nil || p.DropoffLocation != nil {
		if err := f.SetLocations(pick(p.PickupLocation, d.PickupLocation), pick(p.DropoffLocation, d.DropoffLocation)); err != nil {
			return err
		}
	}
	return nil
}

func (h FlowHandler) ToggleSeat(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	// seats selected moments ago must be known before toggling
	s.Flow.Wait()
	h.reply(c, s, http.StatusOK, s.Flow.ToggleSeat(c.Param("seat")))
}

type passengerRequest struct {
	Name string `json:"name"`
}

func (h FlowHandler) SetPassenger(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req passengerRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	h.reply(c, s, http.StatusOK, s.Flow.SetPassengerName(c.Param("seat"), req.Name))
}

func (h FlowHandler) Next(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	h.reply(c, s, http.StatusOK, s.Flow.Next())
}

func (h FlowHandler) Back(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	h.reply(c, s, http.StatusOK, s.Flow.Back())
}

type negotiationRequest struct {
	AgreedPrice json.RawMessage `json:"agreedPrice"`
}

// parseAmount accepts 800000 or rupiah text such as "Rp 800.000,-".
func parseAmount(raw json.RawMessage) (int64, error) {
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, domain.ValidationError{Field: "agreedPrice", Msg: "Harga kesepakatan tidak valid", Err: err}
	}
	v, err := utils.ParseRupiahToInt(s)
	if err != nil {
		return 0, domain.ValidationError{Field: "agreedPrice", Msg: "Harga kesepakatan tidak valid", Err: err}
	}
	return v, nil
}

func (h FlowHandler) AgreePrice(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req negotiationRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	amount, err := parseAmount(req.AgreedPrice)
	if err == nil {
		err = s.Flow.AgreePrice(amount)
	}
	h.reply(c, s, http.StatusOK, err)
}

func (h FlowHandler) Submit(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	reqID := middleware.GetRequestID(c)
	res, err := s.Flow.Submit(requestCtx(c), func(r apiclient.BookingResult) {
		utils.LogEvent(reqID, "flow", "submit", "booking dibuat id="+strconv.FormatInt(r.BookingID, 10))
	})
	if err != nil {
		h.reply(c, s, 0, err)
		return
	}
	s.Flow.Wait()
	c.JSON(http.StatusCreated, gin.H{
		"sessionId": s.ID,
		"booking":   res,
		"state":     s.Flow.Snapshot(),
		"notices":   s.Notices.Drain(),
	})
}

func (h FlowHandler) ConfirmContact(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	h.reply(c, s, http.StatusOK, s.Flow.ConfirmContact())
}

func (h FlowHandler) SubmitPaymentProof(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var proof models.PaymentProof
	if !BindJSONOrError(c, &proof) {
		return
	}
	_, err := s.Flow.SubmitPaymentProof(requestCtx(c), proof)
	if err == nil {
		utils.LogEvent(middleware.GetRequestID(c), "flow", "payment_proof", "metode="+proof.PaymentMethod)
	}
	h.reply(c, s, http.StatusOK, err)
}

func (h FlowHandler) ConfirmCash(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	_, err := s.Flow.ConfirmCash(requestCtx(c))
	h.reply(c, s, http.StatusOK, err)
}

func (h FlowHandler) RefreshPayment(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	_, err := s.Flow.RefreshPayment(requestCtx(c))
	h.reply(c, s, http.StatusOK, err)
}

// Complete closes a paid flow and drops it from the registry.
func (h FlowHandler) Complete(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.Flow.Complete(requestCtx(c)); err != nil {
		h.reply(c, s, 0, err)
		return
	}
	if err := h.Sessions.Remove(requestCtx(c), s.ID); err != nil && !domain.IsNotFound(err) {
		RespondDomainError(c, err, nil)
		return
	}
	utils.LogEvent(middleware.GetRequestID(c), "flow", "complete", "session="+s.ID)
	c.JSON(http.StatusOK, gin.H{"message": "pemesanan selesai", "notices": s.Notices.Drain()})
}

func (h FlowHandler) Manifest(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	m, err := s.Flow.Manifest(requestCtx(c))
	if err != nil {
		RespondDomainError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"manifest":          m,
		"totalLabel":        utils.FormatRupiah(m.Total),
		"pricePerSeatLabel": utils.FormatRupiah(m.PricePerSeat),
	})
}

// Categories lists the products offered on the first step.
func Categories(c *gin.Context) {
	out := make([]gin.H, 0, len(models.Categories()))
	for _, cat := range models.Categories() {
		out = append(out, gin.H{"category": cat, "usesSeats": cat.UsesSeats()})
	}
	c.JSON(http.StatusOK, gin.H{"categories": out})
}
