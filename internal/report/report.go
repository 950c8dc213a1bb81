// Package report renders the end-of-run summary shown on the console.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lepinkainen/coverfetch/internal/store"
)

type styles struct {
	box     lipgloss.Style
	heading lipgloss.Style
	label   lipgloss.Style
	good    lipgloss.Style
	bad     lipgloss.Style
	faint   lipgloss.Style
}

func newStyles() styles {
	asciiBorder := lipgloss.Border{
		Top:         "-",
		Bottom:      "-",
		Left:        "|",
		Right:       "|",
		TopLeft:     "+",
		TopRight:    "+",
		BottomLeft:  "+",
		BottomRight: "+",
	}

	return styles{
		box: lipgloss.NewStyle().
			Border(asciiBorder).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1),
		heading: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("110")),
		label: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),
		good: lipgloss.NewStyle().
			Foreground(lipgloss.Color("114")),
		bad: lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")),
		faint: lipgloss.NewStyle().
			Foreground(lipgloss.Color("247")).
			Faint(true),
	}
}

// OrderSources lists the tags of counts with priority first, in that order,
// followed by any other tags alphabetically. Priority tags without a count
// are included with zero.
func OrderSources(counts map[string]int, priority []string) []string {
	ordered := make([]string, 0, len(counts)+len(priority))
	seen := make(map[string]bool, len(priority))
	for _, tag := range priority {
		if seen[tag] {
			continue
		}
		seen[tag] = true
		ordered = append(ordered, tag)
	}

	var rest []string
	for tag := range counts {
		if !seen[tag] {
			rest = append(rest, tag)
		}
	}
	sort.Strings(rest)
	return append(ordered, rest...)
}

// Render returns the summary box of one run.
func Render(family string, stats store.Stats, priority []string) string {
	st := newStyles()

	lines := []string{
		st.heading.Render(fmt.Sprintf("%s: done", family)),
		st.label.Render(fmt.Sprintf("Total:          %d", stats.Total)),
		st.good.Render(fmt.Sprintf("With media:     %d (%d%%)", stats.WithMedia, stats.Percentage)),
		st.bad.Render(fmt.Sprintf("Without media:  %d", stats.WithoutMedia)),
		st.label.Render(fmt.Sprintf("Newly fetched:  %d", stats.NewlyFetched)),
		st.label.Render(fmt.Sprintf("Already cached: %d", stats.AlreadyCached)),
		st.label.Render(fmt.Sprintf("Failed:         %d", stats.Failed)),
	}

	tags := OrderSources(stats.Sources, priority)
	if len(tags) > 0 {
		lines = append(lines, st.heading.Render("Sources"))
		for _, tag := range tags {
			lines = append(lines, st.faint.Render(fmt.Sprintf("  %-12s %d", tag, stats.Sources[tag])))
		}
	}

	return st.box.Render(strings.Join(lines, "\n"))
}

// Print writes the summary followed by a newline.
func Print(w io.Writer, family string, stats store.Stats, priority []string) error {
	_, err := fmt.Fprintln(w, Render(family, stats, priority))
	return err
}
