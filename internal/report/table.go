package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/hamed0406/urlstatus/internal/domain"
)

const na = "N/A"

// PrintTable writes a fixed-width table. The detailed variant adds size
// and content type columns.
func PrintTable(w io.Writer, results []domain.ProbeResult, detailed bool) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No results to display.")
		return
	}
	if detailed {
		fmt.Fprintf(w, "%-50s | %-15s | %-5s | %-8s | %-10s | %-20s\n", "URL", "Status", "Code", "Time(ms)", "Size", "Type")
		fmt.Fprintln(w, strings.Repeat("-", 120))
		for _, r := range results {
			fmt.Fprintf(w, "%-50s | %-15s | %-5s | %-8s | %-10s | %-20s\n",
				truncate(r.OriginalInput, 50), r.Status, codeText(r), timeText(r),
				orNA(optInt64(r.ContentLength)), truncate(orNA(optString(r.ContentType)), 20))
		}
		return
	}
	fmt.Fprintf(w, "%-60s | %-15s | %-5s | %-8s\n", "URL", "Status", "Code", "Time(ms)")
	fmt.Fprintln(w, strings.Repeat("-", 95))
	for _, r := range results {
		fmt.Fprintf(w, "%-60s | %-15s | %-5s | %-8s\n",
			truncate(r.OriginalInput, 60), r.Status, codeText(r), timeText(r))
	}
}

// PrintSummary writes totals, mean latency and a per-status breakdown
// sorted by status name.
func PrintSummary(w io.Writer, s domain.Summary) {
	if s.Total == 0 {
		fmt.Fprintln(w, "No results to display.")
		return
	}
	fmt.Fprintln(w, "\n=== SUMMARY ===")
	fmt.Fprintf(w, "Total URLs checked: %d\n", s.Total)
	if s.MeanResponseTimeMS != nil {
		fmt.Fprintf(w, "Average response time: %.2fms\n", *s.MeanResponseTimeMS)
	} else {
		fmt.Fprintln(w, "Average response time: N/A")
	}
	fmt.Fprintln(w, "\nStatus breakdown:")

	statuses := make([]string, 0, len(s.StatusCounts))
	for st := range s.StatusCounts {
		statuses = append(statuses, string(st))
	}
	sort.Strings(statuses)
	for _, st := range statuses {
		n := s.StatusCounts[domain.Status(st)]
		fmt.Fprintf(w, "  %s: %d (%.1f%%)\n", st, n, float64(n)/float64(s.Total)*100)
	}
}

// truncate shortens s to width runes; fmt pads by runes too.
func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}

func codeText(r domain.ProbeResult) string {
	if r.HTTPStatusCode == nil {
		return na
	}
	return strconv.Itoa(*r.HTTPStatusCode)
}

func timeText(r domain.ProbeResult) string {
	return orNA(optFloat(r.ResponseTimeMillis))
}

func orNA(s string) string {
	if s == "" {
		return na
	}
	return s
}
