package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/hamed0406/urlstatus/internal/config"
)

func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LOG_DIR", t.TempDir())
	t.Setenv("SLACK_WEBHOOK_URL", "")
}

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(s.Close)
	return s
}

func runCLI(t *testing.T, ctx context.Context, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := run(ctx, args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRun_NoURLs(t *testing.T) {
	setupEnv(t)
	code, _, stderr := runCLI(t, context.Background())
	if code != 1 || !strings.Contains(stderr, "no URLs provided") {
		t.Fatalf("code=%d stderr=%q", code, stderr)
	}
}

func TestRun_MissingFile(t *testing.T) {
	setupEnv(t)
	code, _, stderr := runCLI(t, context.Background(), "-f", filepath.Join(t.TempDir(), "nope.txt"))
	if code != 1 || !strings.Contains(stderr, "not found") {
		t.Fatalf("code=%d stderr=%q", code, stderr)
	}
}

func TestRun_BadFlags(t *testing.T) {
	setupEnv(t)
	for _, args := range [][]string{
		{"--format", "xml", "example.com"},
		{"--save-format", "txt", "example.com"},
		{"--workers", "0", "example.com"},
		{"--timeout", "0", "example.com"},
		{"--bogus"},
	} {
		if code, _, _ := runCLI(t, context.Background(), args...); code != 1 {
			t.Fatalf("%v: want exit 1, got %d", args, code)
		}
	}
}

func TestRun_JSONInInputOrderAndSave(t *testing.T) {
	setupEnv(t)
	s := testServer(t)
	out := filepath.Join(t.TempDir(), "results.csv")

	code, stdout, stderr := runCLI(t, context.Background(),
		"--quiet", "--format", "json", "--output", out,
		"-u", s.URL+"/missing "+s.URL, s.URL+"/missing")
	if code != 0 {
		t.Fatalf("code=%d stderr=%q", code, stderr)
	}
	if strings.Contains(stderr, "Progress:") {
		t.Fatal("--quiet should suppress progress")
	}

	var results []map[string]any
	if err := json.Unmarshal([]byte(stdout), &results); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, stdout)
	}
	if len(results) != 2 {
		t.Fatalf("duplicates should be dropped, got %d results", len(results))
	}
	if results[0]["original_url"] != s.URL+"/missing" || results[0]["status"] != "CLIENT_ERROR" {
		t.Fatalf("first result wrong: %v", results[0])
	}
	if results[1]["original_url"] != s.URL || results[1]["status"] != "UP" {
		t.Fatalf("second result wrong: %v", results[1])
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("saved file: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil || len(rows) != 3 {
		t.Fatalf("want header + 2 rows, got %d rows, err=%v", len(rows), err)
	}
}

func TestRun_FileAndSummary(t *testing.T) {
	setupEnv(t)
	s := testServer(t)
	list := filepath.Join(t.TempDir(), "urls.txt")
	content := "# comment\n\n" + s.URL + "\n" + s.URL + "/missing\n"
	if err := os.WriteFile(list, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	code, stdout, stderr := runCLI(t, context.Background(), "-f", list, "--format", "summary")
	if code != 0 {
		t.Fatalf("code=%d stderr=%q", code, stderr)
	}
	for _, want := range []string{"Total URLs checked: 2", "UP: 1 (50.0%)", "CLIENT_ERROR: 1 (50.0%)"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("missing %q in:\n%s", want, stdout)
		}
	}
	if !strings.Contains(stderr, "Progress: 2/2 (100.0%)") || !strings.Contains(stderr, "Completed in") {
		t.Fatalf("progress output missing: %q", stderr)
	}
}

func TestRun_Interrupted(t *testing.T) {
	setupEnv(t)
	s := testServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	code, _, stderr := runCLI(t, ctx, "--quiet", s.URL)
	if code != 1 || !strings.Contains(stderr, "cancelled") {
		t.Fatalf("code=%d stderr=%q", code, stderr)
	}
}

func TestRun_SlackSummary(t *testing.T) {
	setupEnv(t)
	s := testServer(t)

	var mu sync.Mutex
	var text string
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p map[string]string
		_ = json.NewDecoder(r.Body).Decode(&p)
		mu.Lock()
		text = p["text"]
		mu.Unlock()
	}))
	defer hook.Close()
	t.Setenv("SLACK_WEBHOOK_URL", hook.URL)

	if code, _, stderr := runCLI(t, context.Background(), "--quiet", s.URL); code != 0 {
		t.Fatalf("code=%d stderr=%q", code, stderr)
	}
	mu.Lock()
	defer mu.Unlock()
	if !strings.Contains(text, "Checked 1 URLs") || !strings.Contains(text, "UP: 1") {
		t.Fatalf("unexpected slack text %q", text)
	}
}

func TestProgressPrinter_Monotonic(t *testing.T) {
	var buf bytes.Buffer
	p := progressPrinter(&buf)
	p(1, 4)
	p(3, 4)
	p(2, 4)
	p(4, 4)
	if strings.Contains(buf.String(), "2/4") {
		t.Fatalf("stale count printed: %q", buf.String())
	}
	if !strings.HasSuffix(buf.String(), "\rProgress: 4/4 (100.0%)") {
		t.Fatalf("got %q", buf.String())
	}
}

func TestRun_FlagsAfterURLList(t *testing.T) {
	setupEnv(t)
	s := testServer(t)

	code, stdout, stderr := runCLI(t, context.Background(),
		"-u", s.URL, s.URL+"/missing", "--quiet", "--format", "json")
	if code != 0 {
		t.Fatalf("code=%d stderr=%q", code, stderr)
	}
	if strings.Contains(stderr, "Progress:") {
		t.Fatal("--quiet after the URL list was ignored")
	}
	var results []map[string]any
	if err := json.Unmarshal([]byte(stdout), &results); err != nil {
		t.Fatalf("--format json after the URL list was ignored: %v\n%s", err, stdout)
	}
	if len(results) != 2 {
		t.Fatalf("want exactly 2 results, got %d: %v", len(results), results)
	}
	if results[0]["original_url"] != s.URL || results[1]["original_url"] != s.URL+"/missing" {
		t.Fatalf("unexpected inputs: %v", results)
	}
}

func TestParseFlags_Interspersed(t *testing.T) {
	setupEnv(t)
	cases := []struct {
		args  []string
		urls  string
		quiet bool
	}{
		{[]string{"-u", "a.com", "b.com", "--quiet"}, "a.com b.com", true},
		{[]string{"a.com", "--quiet", "b.com"}, "a.com b.com", true},
		{[]string{"--quiet", "--", "a.com", "-b.com"}, "a.com -b.com", true},
		{[]string{"-u", "a.com", "-"}, "a.com -", false},
	}
	for _, c := range cases {
		o, _, err := parseFlags(c.args, config.FromEnv(), io.Discard)
		if err != nil {
			t.Fatalf("%v: %v", c.args, err)
		}
		if got := o.urls.String(); got != c.urls || o.quiet != c.quiet {
			t.Fatalf("%v: urls=%q quiet=%v", c.args, got, o.quiet)
		}
	}
}
