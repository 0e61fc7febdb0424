// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package calendar

import (
	"fmt"
	"math"
	"time"
)

// HumanizeDuration renders the magnitude of d the way reminders are phrased
// in the calendar UI: "a few seconds", "15 minutes", "an hour", "2 days".
// The sign of d is ignored.
func HumanizeDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}

	seconds := math.Round(d.Seconds())
	minutes := math.Round(d.Minutes())
	hours := math.Round(d.Hours())
	days := math.Round(d.Hours() / 24)
	months := math.Round(d.Hours() / 24 / 30.4375)
	years := math.Round(d.Hours() / 24 / 365.25)

	switch {
	case seconds < 45:
		return "a few seconds"
	case seconds < 90:
		return "a minute"
	case minutes < 45:
		return fmt.Sprintf("%d minutes", int(minutes))
	case minutes < 90:
		return "an hour"
	case hours < 22:
		return fmt.Sprintf("%d hours", int(hours))
	case hours < 36:
		return "a day"
	case days < 26:
		return fmt.Sprintf("%d days", int(days))
	case days < 46:
		return "a month"
	case days < 320:
		return fmt.Sprintf("%d months", int(months))
	case days < 548:
		return "a year"
	default:
		return fmt.Sprintf("%d years", int(years))
	}
}
