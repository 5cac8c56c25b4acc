package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/Fullex26/linenotify/internal/dispatch"
	"github.com/Fullex26/linenotify/pkg/models"
)

func printDelivery(d models.Delivery) {
	fmt.Printf("Status: %d (%s)\n", d.StatusCode, d.Outcome)
	if q := quota(d); q != "" {
		fmt.Printf("Quota:  %s\n", q)
	}
	if d.Response != "" {
		fmt.Printf("Body:   %s\n", d.Response)
	}
}

// quota describes the remaining rate limit, or "" when the API sent none.
func quota(d models.Delivery) string {
	var parts []string
	if d.RateRemaining >= 0 {
		parts = append(parts, fmt.Sprintf("%s messages", humanize.Comma(int64(d.RateRemaining))))
	}
	if d.ImageRemaining >= 0 {
		parts = append(parts, fmt.Sprintf("%s images", humanize.Comma(int64(d.ImageRemaining))))
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, ", ") + " left this hour"
}

func lastDelivered(s dispatch.Stats) string {
	if s.LastDelivered.IsZero() {
		return "never"
	}
	return humanize.Time(s.LastDelivered)
}

func historyLine(d models.Delivery) string {
	status := "---"
	if d.StatusCode > 0 {
		status = fmt.Sprintf("%d", d.StatusCode)
	}

	summary := d.Payload.Message
	if summary == "" && d.Payload.HasImage() {
		summary = "(image)"
	} else if d.Payload.HasImage() {
		summary += " 🖼"
	}
	summary = truncate(summary, 60)

	line := fmt.Sprintf("%s %s %s  %s", d.Outcome.Emoji(), status, humanize.Time(d.Timestamp), summary)
	if d.Outcome == models.OutcomeFailed && d.Error != "" {
		line += "  ← " + truncate(d.Error, 80)
	}
	return line
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
