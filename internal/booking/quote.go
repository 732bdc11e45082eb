package booking

import (
	"context"

	"bookingflow/internal/apiclient"
	"bookingflow/internal/domain/models"
	"bookingflow/internal/utils"
)

// fetchGuard tracks the one relevant request of a keyed fetch. begin cancels
// the previous request and hands out a new generation; a response is applied
// only while its generation is still current. Callers hold the flow lock.
type fetchGuard struct {
	gen    uint64
	cancel context.CancelFunc
}

func (g *fetchGuard) begin(parent context.Context) (context.Context, uint64) {
	if g.cancel != nil {
		g.cancel()
	}
	g.gen++
	ctx, cancel := context.WithCancel(parent)
	g.cancel = cancel
	return ctx, g.gen
}

func (g *fetchGuard) current(gen uint64) bool {
	return gen == g.gen
}

func (g *fetchGuard) finish(gen uint64) {
	if gen == g.gen && g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
}

func (g *fetchGuard) stop() {
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
	g.gen++
}

// NeedsNegotiation reports whether the price of category on route is agreed
// manually instead of quoted: rental always, dropping off the trunk routes.
func NeedsNegotiation(c models.Category, route models.Route) bool {
	switch c {
	case models.CategoryRental:
		return true
	case models.CategoryDropping:
		return !utils.IsTrunkRoute(route.From, route.To)
	}
	return false
}

func routeComplete(d models.BookingDraft) bool {
	return d.Route.From != "" && d.Route.To != "" && d.Route.From != d.Route.To
}

func scheduleComplete(d models.BookingDraft) bool {
	return d.Schedule.Date != "" && d.Schedule.Time != ""
}

// quoteRequest builds the quote call for d. ok is false when inputs are
// incomplete, in which case the quote must be zero and no call is made.
func quoteRequest(d models.BookingDraft) (apiclient.QuoteRequest, bool) {
	if !routeComplete(d) || !scheduleComplete(d) {
		return apiclient.QuoteRequest{}, false
	}
	req := apiclient.QuoteRequest{
		Category: string(d.Category),
		From:     d.Route.From,
		To:       d.Route.To,
		Date:     d.Schedule.Date,
		Time:     d.Schedule.Time,
	}
	if d.Category.UsesSeats() {
		if len(d.SelectedSeats) == 0 {
			return apiclient.QuoteRequest{}, false
		}
		req.SelectedSeats = append([]string(nil), d.SelectedSeats...)
		req.PassengerCount = len(d.SelectedSeats)
		return req, true
	}
	req.SelectedSeats = []string{}
	req.PassengerCount = 1
	return req, true
}

func negotiatedQuote(d models.BookingDraft) models.Quote {
	if d.AgreedPrice <= 0 {
		return models.Quote{}
	}
	return models.Quote{
		PricePerSeat: d.AgreedPrice,
		Total:        d.AgreedPrice,
		RouteLabel:   d.Route.From + " -> " + d.Route.To,
	}
}
