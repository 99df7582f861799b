// cmd/preflight/main.go
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/multierr"

	"github.com/hamed0406/urlstatus/internal/config"
)

func main() {
	os.Exit(run(config.FromEnv(), os.Stdout, os.Stderr))
}

func run(cfg config.Config, stdout, stderr io.Writer) int {
	warn := func(msg string) { fmt.Fprintln(stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Fprintln(stdout, "✔", msg) }

	if err := cfg.Validate(); err != nil {
		for _, e := range multierr.Errors(err) {
			fmt.Fprintln(stderr, "✖", e)
		}
		return 1
	}

	ok(fmt.Sprintf("checker: timeout=%v workers=%d follow_redirects=%v dns_diagnose=%v",
		cfg.Timeout, cfg.MaxWorkers, cfg.FollowRedirects, cfg.DNSDiagnose))

	if len(cfg.AdminAPIKeys) == 0 {
		warn("ADMIN_API_KEYS is empty; admin routes are open.")
	}
	if len(cfg.PublicAPIKeys) == 0 {
		warn("PUBLIC_API_KEYS is empty; /api/check is open unless admin keys are set.")
	}
	for _, k := range append(append([]string(nil), cfg.PublicAPIKeys...), cfg.AdminAPIKeys...) {
		if strings.ContainsAny(k, " \t") {
			warn("an API key contains whitespace; use comma-separated keys, e.g. key1,key2")
			break
		}
	}

	ok("API_ADDR=" + cfg.Addr)
	if len(cfg.AllowedOrigins) == 0 {
		warn("ALLOWED_ORIGINS empty; browsers will be blocked by CORS for cross-origin requests.")
	} else {
		ok("ALLOWED_ORIGINS=" + strings.Join(cfg.AllowedOrigins, ","))
	}
	if cfg.PublicRPM == 0 {
		warn("PUBLIC_RPM=0; rate limiting is disabled.")
	}
	if cfg.SlackWebhook == "" {
		warn("SLACK_WEBHOOK_URL empty; summaries will not be posted.")
	} else {
		ok("SLACK_WEBHOOK_URL present")
	}

	ok("preflight passed")
	return 0
}
