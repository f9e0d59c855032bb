package stats

import (
	"fmt"
	"strings"

	"github.com/tinytelemetry/logrelay/internal/model"
)

// ReportHeader and ReportFooter frame a console report.
const (
	ReportHeader = "--- Log statistics ---"
	ReportFooter = "------------------------"
)

// FormatReport renders a snapshot as the console report body (without the header
// and footer lines).
func FormatReport(s Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total Messages: %d\n", s.Total)
	for _, l := range model.Levels {
		fmt.Fprintf(&b, "%s: %d\n", l, s.Levels[l])
	}
	fmt.Fprintf(&b, "Recent messages: %d\n", s.Recent)
	if s.HasLengths {
		fmt.Fprintf(&b, "Largest length: %d\n", s.MaxLen)
		fmt.Fprintf(&b, "Smallest length: %d\n", s.MinLen)
	} else {
		b.WriteString("Largest length: N/A\n")
		b.WriteString("Smallest length: N/A\n")
	}
	if avg, ok := s.Average(); ok {
		fmt.Fprintf(&b, "Average length: %d\n", avg)
	} else {
		b.WriteString("Average length: N/A\n")
	}
	return b.String()
}
