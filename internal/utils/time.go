package utils

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

const (
	layoutDate = "2006-01-02"
	layoutTime = "15:04"
)

var hhmmPattern = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)

// ErrInvalidTime is returned when no HH:MM clock value can be found.
var ErrInvalidTime = errors.New("format jam tidak valid (contoh: 08:00 atau 08:00 WIB)")

// NormalizeTime extracts a zero-padded 24h "HH:MM" from values such as
// "08:00 WIB" or "8:00".
func NormalizeTime(t string) (string, error) {
	m := hhmmPattern.FindStringSubmatch(strings.TrimSpace(t))
	if len(m) < 3 {
		return "", ErrInvalidTime
	}
	hh := m[1]
	if len(hh) == 1 {
		hh = "0" + hh
	}
	hhmm := hh + ":" + m[2]
	if _, err := time.Parse(layoutTime, hhmm); err != nil {
		return "", ErrInvalidTime
	}
	return hhmm, nil
}

// ParseDate parses YYYY-MM-DD in local timezone.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(layoutDate, strings.TrimSpace(s), time.Local)
}

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}
