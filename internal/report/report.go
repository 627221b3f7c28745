// Package report computes metric deltas between the current and previous
// statistics snapshots and renders the daily summary text.
package report

import (
	"fmt"
	"strings"
	"time"

	"bskystats/internal/stats"
)

// Delta holds per-metric differences between the current snapshot and a
// reference prior snapshot. A nil component means no previous snapshot was
// available; the report then omits that annotation rather than showing zero.
type Delta struct {
	Users      *int64
	Posts      *int64
	Likes      *int64
	GrowthRate *float64
}

// Compute derives deltas from current against previous. A nil previous
// yields all-absent components.
func Compute(current, previous *stats.Snapshot) Delta {
	if previous == nil {
		return Delta{}
	}
	du := current.TotalUsers - previous.TotalUsers
	dp := current.TotalPosts - previous.TotalPosts
	dl := current.TotalLikes - previous.TotalLikes
	dr := current.GrowthRate - previous.GrowthRate
	return Delta{Users: &du, Posts: &dp, Likes: &dl, GrowthRate: &dr}
}

// Compose renders the fixed-order summary: a header with the UTC date and
// time to minute precision, one line per metric with the current value and
// an optional delta annotation, the growth-rate line, and a source
// attribution when sourceURL is set.
func Compose(now time.Time, current *stats.Snapshot, d Delta, sourceURL string) string {
	now = now.UTC()

	parts := []string{
		fmt.Sprintf("Bluesky Daily Stats — %s UTC", now.Format("2006-01-02 15:04")),
		metricLine("Users", current.TotalUsers, d.Users),
		metricLine("Posts", current.TotalPosts, d.Posts),
		metricLine("Likes", current.TotalLikes, d.Likes),
	}

	growth := "Growth rate: " + FormatRate(current.GrowthRate) + "/s"
	if d.GrowthRate != nil {
		growth += fmt.Sprintf(" (Δ%s/s)", FormatRate(*d.GrowthRate))
	}
	parts = append(parts, growth)

	if sourceURL != "" {
		parts = append(parts, "Source: "+sourceURL)
	}
	return strings.Join(parts, "\n")
}

func metricLine(label string, value int64, delta *int64) string {
	line := fmt.Sprintf("%s: %s", label, FormatInt(value))
	if delta != nil {
		line += fmt.Sprintf(" (↑%s)", FormatInt(*delta))
	}
	return line
}
