package probe

import (
	"context"
	"strings"

	"github.com/hamed0406/urlstatus/internal/domain"
)

// Prober performs a single HTTP(S) probe against a fully-qualified URL.
// Failures are reported through the returned result, never as a Go error.
type Prober interface {
	Probe(ctx context.Context, target string, followRedirects bool, method string) domain.ProbeResult
}

// Resolver turns one raw, possibly scheme-less, input into exactly one result.
type Resolver interface {
	Resolve(ctx context.Context, raw string, followRedirects bool) domain.ProbeResult
}

// Candidates returns the scheme-qualified URLs to try for raw, in order.
// HTTPS is always tried before HTTP.
func Candidates(raw string) []string {
	if hasScheme(raw) {
		return []string{raw}
	}
	return []string{"https://" + raw, "http://" + raw}
}

func hasScheme(raw string) bool {
	return strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://")
}
