package booking

import (
	"bookingflow/internal/domain/models"
)

// Preferred default origins, tried in order.
var preferredOrigins = []string{"Pasir Pengaraian", "Pekanbaru"}

func stopIndex(stops []models.Stop, display string) int {
	for i, s := range stops {
		if s.Display == display {
			return i
		}
	}
	return -1
}

// DefaultRoute keeps from/to when both are members of stops and distinct;
// otherwise it resets them: from to the first preferred origin present (else
// the first stop), to to the first stop different from from.
// An empty directory leaves the route untouched.
func DefaultRoute(stops []models.Stop, current models.Route) models.Route {
	if len(stops) == 0 {
		return current
	}
	out := current
	if stopIndex(stops, out.From) < 0 {
		out.From = stops[0].Display
		for _, p := range preferredOrigins {
			if stopIndex(stops, p) >= 0 {
				out.From = p
				break
			}
		}
	}
	if stopIndex(stops, out.To) < 0 || out.To == out.From {
		out.To = ""
		for _, s := range stops {
			if s.Display != out.From {
				out.To = s.Display
				break
			}
		}
	}
	return out
}
