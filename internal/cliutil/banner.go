package cliutil

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	greenStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	cyanStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	yellowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	boldStyle   = lipgloss.NewStyle().Bold(true)
)

// BannerRow is one status line in a startup banner. Disabled rows render
// dimmed with Value shown as-is.
type BannerRow struct {
	Label    string
	Value    string
	Disabled bool
}

// BannerSection groups rows under a heading.
type BannerSection struct {
	Title string
	Rows  []BannerRow
}

// Banner describes a startup banner.
type Banner struct {
	Name     string
	Version  string
	Sections []BannerSection
	Footer   string
}

// Render returns the styled banner text.
func (b Banner) Render() string {
	check := greenStyle.Render("●")
	dot := dimStyle.Render("●")
	separator := dimStyle.Render("    ─────────────────────────────────")

	lines := []string{
		"",
		"    " + cyanStyle.Bold(true).Render(b.Name) + "  " + dimStyle.Render("v"+b.Version),
		"",
		separator,
		"",
	}

	for _, sec := range b.Sections {
		lines = append(lines, boldStyle.Render("    "+sec.Title), "")
		for _, row := range sec.Rows {
			if row.Disabled {
				lines = append(lines, fmt.Sprintf("    %s  %-14s %s", dot, row.Label, dimStyle.Render(row.Value)))
				continue
			}
			lines = append(lines, fmt.Sprintf("    %s  %-14s %s", check, row.Label, cyanStyle.Render(row.Value)))
		}
		lines = append(lines, "")
	}

	lines = append(lines, separator, "")
	footer := b.Footer
	if footer == "" {
		footer = dimStyle.Render("Press ") + yellowStyle.Render("Ctrl+C") + dimStyle.Render(" to stop")
	}
	lines = append(lines, "    "+footer, "")
	return strings.Join(lines, "\n")
}

// EnabledRow returns a row that shows value when enabled and "disabled" otherwise.
func EnabledRow(label string, enabled bool, value string) BannerRow {
	if !enabled {
		return BannerRow{Label: label, Value: "disabled", Disabled: true}
	}
	return BannerRow{Label: label, Value: value}
}

// HeadingStyle renders report headings.
func HeadingStyle(s string) string {
	return boldStyle.Render(s)
}

// ShortenPath replaces the home directory prefix with ~.
func ShortenPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if strings.HasPrefix(path, home) {
		return "~" + path[len(home):]
	}
	return path
}
