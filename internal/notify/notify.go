// Package notify delivers batch summaries to chat webhooks.
package notify

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/multierr"

	"github.com/hamed0406/urlstatus/internal/domain"
)

type Notifier interface {
	Send(ctx context.Context, title, text string) error
}

// Multi fans out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Send(ctx context.Context, title, text string) error {
	var err error
	for _, n := range m {
		if n == nil {
			continue
		}
		err = multierr.Append(err, n.Send(ctx, title, text))
	}
	return err
}

// SummaryText renders s as a short plain-text message.
func SummaryText(s domain.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Checked %d URLs", s.Total)
	if s.MeanResponseTimeMS != nil {
		fmt.Fprintf(&b, ", mean response %.2fms", *s.MeanResponseTimeMS)
	}
	statuses := make([]string, 0, len(s.StatusCounts))
	for st := range s.StatusCounts {
		statuses = append(statuses, string(st))
	}
	sort.Strings(statuses)
	for _, st := range statuses {
		fmt.Fprintf(&b, "\n%s: %d", st, s.StatusCounts[domain.Status(st)])
	}
	return b.String()
}
