// Command urlstatus checks a batch of URLs concurrently and reports their
// reachability.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/urlstatus/internal/config"
	"github.com/hamed0406/urlstatus/internal/domain"
	"github.com/hamed0406/urlstatus/internal/input"
	"github.com/hamed0406/urlstatus/internal/logging"
	"github.com/hamed0406/urlstatus/internal/notify"
	"github.com/hamed0406/urlstatus/internal/report"
	"github.com/hamed0406/urlstatus/internal/scheduler"
)

// Output formats.
const (
	formatTable   = "table"
	formatSummary = "summary"
	formatJSON    = "json"
)

// urlList collects repeated -u values.
type urlList []string

func (l *urlList) String() string { return strings.Join(*l, " ") }

func (l *urlList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

type options struct {
	urls        urlList
	file        string
	timeout     float64
	workers     int
	userAgent   string
	noRedirects bool
	format      string
	showDetails bool
	quiet       bool
	output      string
	saveFormat  string
	dnsDiagnose bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func parseFlags(args []string, cfg config.Config, stderr io.Writer) (*options, *flag.FlagSet, error) {
	fs := flag.NewFlagSet("urlstatus", flag.ContinueOnError)
	fs.SetOutput(stderr)

	o := &options{}
	fs.Var(&o.urls, "u", "URLs to check (repeatable, space separated)")
	fs.Var(&o.urls, "urls", "same as -u")
	fs.StringVar(&o.file, "f", "", "file containing URLs, one per line")
	fs.StringVar(&o.file, "file", "", "same as -f")
	fs.Float64Var(&o.timeout, "timeout", cfg.Timeout.Seconds(), "request timeout in seconds")
	fs.IntVar(&o.workers, "workers", cfg.MaxWorkers, "number of concurrent workers")
	fs.StringVar(&o.userAgent, "user-agent", cfg.UserAgent, "User-Agent header")
	fs.BoolVar(&o.noRedirects, "no-redirects", !cfg.FollowRedirects, "don't follow redirects")
	fs.StringVar(&o.format, "format", formatTable, "output format: table, summary or json")
	fs.BoolVar(&o.showDetails, "show-details", false, "show size and content type in table format")
	fs.BoolVar(&o.quiet, "quiet", false, "suppress progress output")
	fs.StringVar(&o.output, "output", "", "save results to file")
	fs.StringVar(&o.saveFormat, "save-format", report.FormatCSV, "save format: csv, json or xlsx")
	fs.BoolVar(&o.dnsDiagnose, "dns-diagnose", cfg.DNSDiagnose, "add a DNS diagnosis to connection errors")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: urlstatus [options] [URL...]\n\n")
		fs.PrintDefaults()
		fmt.Fprint(stderr, `
Examples:
  urlstatus -u https://example.com
  urlstatus -u "example.com google.com github.com"
  urlstatus -f urls.txt --timeout 30 --workers 20
  urlstatus -f urls.txt --show-details --output results.xlsx --save-format xlsx
`)
	}

	if err := parseInterspersed(fs, args, &o.urls); err != nil {
		return nil, fs, err
	}
	switch o.format {
	case formatTable, formatSummary, formatJSON:
	default:
		return nil, fs, fmt.Errorf("unknown format %q", o.format)
	}
	switch o.saveFormat {
	case report.FormatCSV, report.FormatJSON, report.FormatXLSX:
	default:
		return nil, fs, fmt.Errorf("unknown save format %q", o.saveFormat)
	}
	return o, fs, nil
}

// parseInterspersed lets flags follow URLs, so "-u a.com b.com --quiet"
// works. Positional arguments are appended to urls; everything after a
// literal "--" is taken as a URL.
func parseInterspersed(fs *flag.FlagSet, args []string, urls *urlList) error {
	for {
		if err := fs.Parse(args); err != nil {
			return err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return nil
		}
		if consumed := args[:len(args)-len(rest)]; len(consumed) > 0 && consumed[len(consumed)-1] == "--" {
			*urls = append(*urls, rest...)
			return nil
		}
		for len(rest) > 0 && (rest[0] == "-" || !strings.HasPrefix(rest[0], "-")) {
			*urls = append(*urls, rest[0])
			rest = rest[1:]
		}
		args = rest
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg := config.FromEnv()
	o, fs, err := parseFlags(args, cfg, stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(stderr, "Error:", err)
		}
		return 1
	}

	cfg.Timeout = time.Duration(o.timeout * float64(time.Second))
	cfg.MaxWorkers = o.workers
	cfg.UserAgent = o.userAgent
	cfg.FollowRedirects = !o.noRedirects
	cfg.DNSDiagnose = o.dnsDiagnose
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, "Error: invalid configuration:", err)
		return 1
	}

	urls, err := input.Collect(o.file, o.urls)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		if errors.Is(err, input.ErrNoURLs) {
			fs.Usage()
		}
		return 1
	}

	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	var progress scheduler.ProgressFunc
	if !o.quiet {
		progress = progressPrinter(stderr)
	}
	batch, err := scheduler.FromConfig(cfg, logger, progress)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}

	start := time.Now()
	results, err := batch.Run(ctx, urls, cfg.FollowRedirects)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	if ctx.Err() != nil {
		logger.Warn("batch_interrupted", zap.Int("results", len(results)))
		fmt.Fprintln(stderr, "\nOperation cancelled by user")
		return 1
	}
	if !o.quiet {
		fmt.Fprintf(stderr, "\nCompleted in %.2fs\n", time.Since(start).Seconds())
	}

	report.SortByInput(results, urls)
	summary := domain.Summarize(results)

	code := 0
	switch o.format {
	case formatTable:
		report.PrintTable(stdout, results, o.showDetails)
	case formatSummary:
		report.PrintSummary(stdout, summary)
	case formatJSON:
		if err := report.WriteJSON(stdout, results); err != nil {
			fmt.Fprintln(stderr, "Error:", err)
			code = 1
		}
	}

	if o.output != "" {
		if err := report.SaveFile(o.output, o.saveFormat, results); err != nil {
			fmt.Fprintln(stderr, "Error saving results:", err)
			code = 1
		} else {
			fmt.Fprintf(stderr, "Results saved to %s\n", o.output)
		}
	}

	if slack := notify.NewSlack(cfg.SlackWebhook); slack != nil {
		if err := slack.Send(ctx, "URL status", notify.SummaryText(summary)); err != nil {
			logger.Warn("notify_failed", zap.Error(err))
			fmt.Fprintln(stderr, "Error sending notification:", err)
			code = 1
		}
	}
	return code
}

// progressPrinter rewrites a single progress line. Workers call it
// concurrently, so the highest count seen wins.
func progressPrinter(w io.Writer) scheduler.ProgressFunc {
	var mu sync.Mutex
	shown := 0
	return func(completed, total int) {
		mu.Lock()
		defer mu.Unlock()
		if completed <= shown {
			return
		}
		shown = completed
		fmt.Fprintf(w, "\rProgress: %d/%d (%.1f%%)", completed, total, float64(completed)/float64(total)*100)
	}
}
