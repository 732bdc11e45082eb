package utils

import (
	"strings"
)

// NormalizeSpace collapses repeated whitespace into a single space.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeSeat trims and uppercases a seat identifier ("a1 " -> "A1").
func NormalizeSeat(seat string) string {
	return strings.ToUpper(strings.TrimSpace(seat))
}

// NormalizeSeats normalizes every seat, dropping empties and duplicates while
// keeping first-seen order.
func NormalizeSeats(seats []string) []string {
	out := make([]string, 0, len(seats))
	seen := make(map[string]bool, len(seats))
	for _, s := range seats {
		x := NormalizeSeat(s)
		if x == "" || seen[x] {
			continue
		}
		seen[x] = true
		out = append(out, x)
	}
	return out
}

// SplitSeatList splits comma/semicolon separated seat strings into cleaned slices.
func SplitSeatList(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n'
	})
	return NormalizeSeats(parts)
}
