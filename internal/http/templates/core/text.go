package core

import (
	"fmt"
	"strings"
	"time"
)

// dateTimeLayout is used for absolute timestamps in tables and tooltips.
const dateTimeLayout = "Jan 2, 2006 3:04 PM"

// ago describes how long before now t was. Anything older than a week, and
// any future time, is shown as an absolute or "just now" value instead.
func ago(t time.Time, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d/time.Minute), "minute")
	case d < 24*time.Hour:
		return plural(int(d/time.Hour), "hour")
	case d < 7*24*time.Hour:
		return plural(int(d/(24*time.Hour)), "day")
	default:
		return absolute(t)
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit + " ago"
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

func absolute(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(dateTimeLayout)
}

// ellipsize cuts s to at most limit runes, the last being an ellipsis.
func ellipsize(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	if limit <= 1 {
		return "…"
	}
	return strings.TrimSpace(string(r[:limit-1])) + "…"
}
