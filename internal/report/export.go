// Package report renders and exports batch results.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	"go.uber.org/multierr"

	"github.com/hamed0406/urlstatus/internal/domain"
)

// Save formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatXLSX = "xlsx"
)

// Columns is the fixed export column order.
var Columns = []string{
	"original_url", "final_url", "status", "status_code", "response_time",
	"content_length", "content_type", "server", "redirect_count", "error", "timestamp",
}

// WriteJSON writes results as an indented JSON array. Absent optional
// fields are null.
func WriteJSON(w io.Writer, results []domain.ProbeResult) error {
	if results == nil {
		results = []domain.ProbeResult{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

// WriteCSV writes a header row and one row per result. Absent optional
// fields are empty cells.
func WriteCSV(w io.Writer, results []domain.ProbeResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, r := range results {
		if err := cw.Write(row(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveFile writes results to path in format.
func SaveFile(path, format string, results []domain.ProbeResult) (err error) {
	var write func(io.Writer, []domain.ProbeResult) error
	switch format {
	case FormatCSV:
		write = WriteCSV
	case FormatJSON:
		write = WriteJSON
	case FormatXLSX:
		write = WriteXLSX
	default:
		return fmt.Errorf("unknown save format %q", format)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %q: %w", path, err)
	}
	defer func() { err = multierr.Append(err, f.Close()) }()

	if err := write(f, results); err != nil {
		return fmt.Errorf("write %s to %q: %w", format, path, err)
	}
	return nil
}

// SortByInput orders results by the position of their OriginalInput in
// inputs. Unknown inputs go last, in their current order.
func SortByInput(results []domain.ProbeResult, inputs []string) {
	pos := make(map[string]int, len(inputs))
	for i, in := range inputs {
		if _, ok := pos[in]; !ok {
			pos[in] = i
		}
	}
	rank := func(r domain.ProbeResult) int {
		if p, ok := pos[r.OriginalInput]; ok {
			return p
		}
		return len(inputs)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return rank(results[i]) < rank(results[j])
	})
}

func row(r domain.ProbeResult) []string {
	return []string{
		r.OriginalInput,
		r.FinalURL,
		string(r.Status),
		optInt(r.HTTPStatusCode),
		optFloat(r.ResponseTimeMillis),
		optInt64(r.ContentLength),
		optString(r.ContentType),
		optString(r.Server),
		strconv.Itoa(r.RedirectCount),
		optString(r.ErrorMessage),
		r.Timestamp.Format(time.RFC3339Nano),
	}
}

func optInt(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func optInt64(p *int64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatInt(*p, 10)
}

func optFloat(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

func optString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
