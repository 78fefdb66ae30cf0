// Package isotime parses and formats the ISO-8601 date-times used by the
// data files and the consumption RPC contract.
package isotime

import (
	"fmt"
	"strings"
	"time"
)

// layouts are tried in order. Fractional seconds are accepted after the
// seconds field even though no layout spells them out.
var layouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02T15",
	"2006-01-02",
}

// Parse parses an ISO-8601 date-time. A single space may separate the date
// and time parts. Values without an offset are taken as UTC.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date-time")
	}
	if len(s) > 10 && s[10] == ' ' {
		s = s[:10] + "T" + s[11:]
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date-time %q (use ISO 8601, e.g. 2024-01-01T00:00:00)", s)
}

// Format renders t in UTC as RFC 3339
func Format(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
