package format

import (
	"fmt"
	"time"
)

// TimeAgo formats the age of an event as a relative label.
// Counts are floored and never special-cased for one: 90 seconds reads
// "1 minutes ago", not "a minute ago", and there are no singular
// "an hour ago" or "a day ago" tiers either. Weeks are the largest unit,
// so a two-year-old event reads "104 weeks ago".
func TimeAgo(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	seconds := int(d / time.Second)
	switch {
	case seconds < 10:
		return "now"
	case seconds < 60:
		return fmt.Sprintf("%d seconds ago", seconds)
	}

	minutes := seconds / 60
	if minutes < 60 {
		return fmt.Sprintf("%d minutes ago", minutes)
	}
	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("%d hours ago", hours)
	}
	days := hours / 24
	if days < 7 {
		return fmt.Sprintf("%d days ago", days)
	}
	return fmt.Sprintf("%d weeks ago", days/7)
}

// TimeAgoSince formats the age of t relative to now.
func TimeAgoSince(t, now time.Time) string {
	return TimeAgo(now.Sub(t))
}
