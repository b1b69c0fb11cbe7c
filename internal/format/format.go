// Package format renders durations, sizes and timestamps for display in the
// library listing.
package format

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Duration formats seconds as MM:SS, or H:MM:SS when at least an hour long.
// Zero, negative and NaN inputs render as "00:00".
func Duration(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 {
		return "00:00"
	}

	total := int64(math.Floor(seconds))
	hrs := total / 3600
	mins := (total % 3600) / 60
	secs := total % 60

	if hrs > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hrs, mins, secs)
	}
	return fmt.Sprintf("%02d:%02d", mins, secs)
}

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FileSize formats a byte count using 1024-based units with at most two
// decimals, e.g. 1536 -> "1.5 KB".
func FileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 B"
	}

	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if i >= len(sizeUnits) {
		i = len(sizeUnits) - 1
	}

	value := float64(bytes) / math.Pow(1024, float64(i))
	value = math.Round(value*100) / 100
	return strconv.FormatFloat(value, 'f', -1, 64) + " " + sizeUnits[i]
}

// Date formats an epoch-millisecond timestamp relative to now: "Today 15:04",
// "Yesterday", "Jan 2" within the current year, or "Jan 2, 2006".
func Date(millis int64, now time.Time) string {
	date := time.UnixMilli(millis).In(now.Location())

	if sameDay(date, now) {
		return "Today " + date.Format("15:04")
	}
	if sameDay(date, now.AddDate(0, 0, -1)) {
		return "Yesterday"
	}
	if date.Year() != now.Year() {
		return date.Format("Jan 2, 2006")
	}
	return date.Format("Jan 2")
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
