package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/hamed0406/urlstatus/internal/domain"
)

func intp(i int) *int           { return &i }
func floatp(f float64) *float64 { return &f }
func strp(s string) *string     { return &s }
func int64p(i int64) *int64     { return &i }

var ts = time.Date(2025, 8, 18, 12, 0, 0, 0, time.UTC)

func sample() []domain.ProbeResult {
	return []domain.ProbeResult{
		{
			OriginalInput:      "example.com",
			FinalURL:           "https://example.com/",
			Status:             domain.StatusUp,
			HTTPStatusCode:     intp(200),
			ResponseTimeMillis: floatp(123.45),
			ContentLength:      int64p(1256),
			ContentType:        strp("text/html"),
			Server:             strp("ECS"),
			RedirectCount:      1,
			Timestamp:          ts,
		},
		{
			OriginalInput:      "down.test",
			FinalURL:           "http://down.test",
			Status:             domain.StatusConnectionError,
			ResponseTimeMillis: floatp(3.2),
			ErrorMessage:       strp("dial tcp: lookup down.test: no such host"),
			Timestamp:          ts,
		},
	}
}

func TestWriteJSON_FieldsByName(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sample()); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	var got []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not a JSON array: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 entries, got %d", len(got))
	}
	for _, c := range Columns {
		if _, ok := got[0][c]; !ok {
			t.Fatalf("field %q missing", c)
		}
	}
	if got[1]["status_code"] != nil {
		t.Fatalf("absent code should be null, got %v", got[1]["status_code"])
	}
}

func TestWriteJSON_EmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, nil); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Fatalf("want [], got %q", buf.String())
	}
}

func TestWriteCSV_ColumnOrder(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sample()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	want := "original_url,final_url,status,status_code,response_time,content_length,content_type,server,redirect_count,error,timestamp"
	if strings.Join(rows[0], ",") != want {
		t.Fatalf("header = %v", rows[0])
	}
	if len(rows) != 3 {
		t.Fatalf("want header + 2 rows, got %d", len(rows))
	}
	up := rows[1]
	if up[0] != "example.com" || up[2] != "UP" || up[3] != "200" || up[4] != "123.45" || up[5] != "1256" || up[8] != "1" {
		t.Fatalf("UP row wrong: %v", up)
	}
	if up[10] != "2025-08-18T12:00:00Z" {
		t.Fatalf("timestamp wrong: %s", up[10])
	}
	down := rows[2]
	if down[3] != "" || down[5] != "" || down[9] == "" {
		t.Fatalf("absent fields should be empty, error present: %v", down)
	}
}

func TestSaveFile_Formats(t *testing.T) {
	dir := t.TempDir()
	for _, format := range []string{FormatCSV, FormatJSON, FormatXLSX} {
		p := filepath.Join(dir, "out."+format)
		if err := SaveFile(p, format, sample()); err != nil {
			t.Fatalf("SaveFile(%s): %v", format, err)
		}
		if fi, err := os.Stat(p); err != nil || fi.Size() == 0 {
			t.Fatalf("%s file missing or empty: %v", format, err)
		}
	}
	if err := SaveFile(filepath.Join(dir, "out.txt"), "txt", sample()); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestWriteXLSX_Readable(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, sample()); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("want 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "original_url" || rows[1][2] != "UP" || rows[1][3] != "200" {
		t.Fatalf("unexpected content: %v", rows[:2])
	}
}

func TestSortByInput(t *testing.T) {
	results := []domain.ProbeResult{
		{OriginalInput: "c"}, {OriginalInput: "stray"}, {OriginalInput: "a"}, {OriginalInput: "b"},
	}
	SortByInput(results, []string{"a", "b", "c"})
	var got []string
	for _, r := range results {
		got = append(got, r.OriginalInput)
	}
	if strings.Join(got, ",") != "a,b,c,stray" {
		t.Fatalf("got %v", got)
	}
}

func TestPrintTable_Simple(t *testing.T) {
	var buf bytes.Buffer
	PrintTable(&buf, sample(), false)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("want header, rule and 2 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "URL") || len(lines[1]) != 95 {
		t.Fatalf("header wrong: %q / %d", lines[0], len(lines[1]))
	}
	if !strings.Contains(lines[3], "CONNECTION_ERROR") || !strings.Contains(lines[3], "N/A") {
		t.Fatalf("failure row should show N/A code: %q", lines[3])
	}
}

func TestPrintTable_DetailedTruncates(t *testing.T) {
	long := "https://example.com/" + strings.Repeat("x", 80)
	r := sample()[0]
	r.OriginalInput = long
	r.ContentType = strp("application/vnd.openxmlformats-officedocument")

	var buf bytes.Buffer
	PrintTable(&buf, []domain.ProbeResult{r}, true)
	out := buf.String()
	if strings.Contains(out, long) {
		t.Fatal("long URL should be truncated")
	}
	if !strings.Contains(out, long[:47]+"...") {
		t.Fatalf("truncated URL missing: %s", out)
	}
	if !strings.Contains(out, "application/vnd.o...") || !strings.Contains(out, "1256") {
		t.Fatalf("detail columns wrong: %s", out)
	}
}

func TestPrintTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	PrintTable(&buf, nil, false)
	if !strings.Contains(buf.String(), "No results") {
		t.Fatalf("got %q", buf.String())
	}
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, domain.Summarize(sample()))
	out := buf.String()
	for _, want := range []string{
		"=== SUMMARY ===",
		"Total URLs checked: 2",
		"Average response time: 63.3",
		"  CONNECTION_ERROR: 1 (50.0%)",
		"  UP: 1 (50.0%)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Index(out, "CONNECTION_ERROR") > strings.Index(out, "  UP") {
		t.Fatal("statuses should be sorted by name")
	}
}

func TestTruncate_RuneBoundary(t *testing.T) {
	long := "https://例え.テスト/" + strings.Repeat("パス", 40)
	got := truncate(long, 50)
	if !utf8.ValidString(got) {
		t.Fatalf("truncation split a character: %q", got)
	}
	if n := utf8.RuneCountInString(got); n != 50 {
		t.Fatalf("want 50 runes, got %d", n)
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("missing ellipsis: %q", got)
	}
	if truncate("例え", 50) != "例え" {
		t.Fatal("short strings must be unchanged")
	}
}
