// Package main is the entry point for the revise application.
// This file holds the small output and argument helpers shared by the
// subcommands.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"revise/internal/storage"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

const dateLayout = "2006-01-02"

// printStatus prints a status line with color
func printStatus(symbol, message string, colorAttr color.Attribute) {
	c := color.New(colorAttr)
	fmt.Printf("%s %s\n", c.Sprint(symbol), message)
}

func printError(err error) {
	fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("Error:"), err)
}

// statusText colors a topic status the way the dashboard does.
func statusText(s storage.Status) string {
	text := fmt.Sprintf("%-7s", string(s))
	switch s {
	case storage.StatusPending:
		return color.YellowString(text)
	case storage.StatusStill:
		return color.RedString(text)
	default:
		return color.GreenString(text)
	}
}

// reviewMark renders a review's completion as a colored box.
func reviewMark(done bool) string {
	if done {
		return color.GreenString("[✓]")
	}
	return color.RedString("[ ]")
}

// parseDay accepts YYYY-MM-DD, "today", "tomorrow" and "yesterday".
func parseDay(s string, now time.Time) (time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return now, nil
	case "tomorrow":
		return now.AddDate(0, 0, 1), nil
	case "yesterday":
		return now.AddDate(0, 0, -1), nil
	}
	t, err := time.ParseInLocation(dateLayout, s, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD", s)
	}
	return t, nil
}

// parseReview turns a 1-based review number into an index.
func parseReview(s string) (int, error) {
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil || n < 1 {
		return 0, fmt.Errorf("invalid review number %q: use 1 to 9", s)
	}
	return n - 1, nil
}

func truncate(s string, width int) string {
	return runewidth.Truncate(s, width, "…")
}

func padRight(s string, width int) string {
	return runewidth.FillRight(truncate(s, width), width)
}

// formatAge returns a human-readable age string.
func formatAge(t time.Time) string {
	d := time.Since(t)

	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d.Minutes()), "minute") + " ago"
	case d < 24*time.Hour:
		return plural(int(d.Hours()), "hour") + " ago"
	case d < 7*24*time.Hour:
		return plural(int(d.Hours()/24), "day") + " ago"
	default:
		return plural(int(d.Hours()/24/7), "week") + " ago"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
