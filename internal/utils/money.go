package utils

import (
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidRupiah is returned for amounts that are not whole rupiah.
var ErrInvalidRupiah = errors.New("nominal rupiah tidak valid")

// FormatRupiah renders amount as "Rp1.500.000" (dot thousands, no decimals).
func FormatRupiah(amount int64) string {
	var b strings.Builder
	if amount < 0 {
		b.WriteByte('-')
		amount = -amount
	}
	b.WriteString("Rp")
	digits := strconv.FormatInt(amount, 10)
	for i := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteByte(digits[i])
	}
	return b.String()
}

// ParseRupiahToInt reads amounts typed the way agents write them:
// "800000", "Rp 800.000", "Rp800.000,-", "IDR 800,000", "Rp 800.000,00".
// A trailing two-digit ",00" / ".00" is treated as zero sen.
func ParseRupiahToInt(s string) (int64, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for _, prefix := range []string{"rp.", "rp", "idr"} {
		if strings.HasPrefix(v, prefix) {
			v = v[len(prefix):]
			break
		}
	}
	v = strings.TrimSuffix(strings.TrimSpace(v), ",-")
	if n := len(v); n > 3 && (v[n-3] == ',' || v[n-3] == '.') && v[n-2:] == "00" {
		// "800.000,00" keeps its thousands; "800.000" (three digits) does not match
		v = v[:n-3]
	}
	v = strings.NewReplacer(".", "", ",", "", " ", "").Replace(v)
	if v == "" {
		return 0, ErrInvalidRupiah
	}
	for _, r := range v {
		if r < '0' || r > '9' {
			return 0, ErrInvalidRupiah
		}
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, ErrInvalidRupiah
	}
	return n, nil
}
