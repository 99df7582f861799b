package probe

import (
	"context"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/hamed0406/urlstatus/internal/domain"
)

// Fallback resolves a raw input by probing its candidates in order until
// one yields a meaningful outcome.
type Fallback struct {
	Prober Prober
	Logger *zap.Logger
	// DNS, when set, annotates connection failures with a DNS diagnosis.
	DNS *DNSChecker
}

func NewFallback(p Prober, logger *zap.Logger, dns *DNSChecker) *Fallback {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fallback{Prober: p, Logger: logger, DNS: dns}
}

// Resolve always returns exactly one result. When no candidate reaches the
// server, the last candidate's result is returned and earlier failures are
// dropped.
func (f *Fallback) Resolve(ctx context.Context, raw string, followRedirects bool) domain.ProbeResult {
	candidates := Candidates(raw)

	var res domain.ProbeResult
	for i, c := range candidates {
		res = f.Prober.Probe(ctx, c, followRedirects, http.MethodHead)
		if res.Status.Meaningful() {
			break
		}
		if i < len(candidates)-1 {
			f.Logger.Debug("fallback_next_candidate",
				zap.String("input", raw),
				zap.String("failed", c),
				zap.String("status", string(res.Status)),
				zap.String("next", candidates[i+1]),
			)
		}
	}
	res.OriginalInput = raw

	if f.DNS != nil && res.Status == domain.StatusConnectionError {
		if host := hostOf(res.FinalURL); host != "" {
			dns := f.DNS.Check(ctx, host)
			res.DNSClass = dns.Class
			f.Logger.Info("dns_check",
				zap.String("domain", dns.Domain),
				zap.String("class", dns.Class),
				zap.Bool("has_a_or_aaaa", dns.HasAOrAAAA),
				zap.Strings("nameservers", dns.Nameservers),
				zap.String("resolver_error", dns.ResolverError),
			)
		}
	}
	return res
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
