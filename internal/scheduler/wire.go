package scheduler

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/hamed0406/urlstatus/internal/config"
	"github.com/hamed0406/urlstatus/internal/probe"
)

// FromConfig builds the checker, the fallback resolver and the batch
// described by cfg.
func FromConfig(cfg config.Config, logger *zap.Logger, progress ProgressFunc) (*Batch, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	chk, err := probe.NewHTTPChecker(
		probe.WithTimeout(cfg.Timeout),
		probe.WithUserAgent(cfg.UserAgent),
		probe.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("scheduler: checker: %w", err)
	}

	var dns *probe.DNSChecker
	if cfg.DNSDiagnose {
		dns, err = probe.NewDNSChecker(cfg.DNSServer, probe.DefaultDNSTimeout)
		if err != nil {
			return nil, fmt.Errorf("scheduler: %w", err)
		}
	}
	return NewBatch(logger, probe.NewFallback(chk, logger, dns), cfg.MaxWorkers, progress), nil
}
