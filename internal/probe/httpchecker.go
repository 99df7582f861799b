package probe

import (
	"context"
	"fmt"
	"math"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/urlstatus/internal/domain"
)

const (
	// DefaultTimeout bounds a single request, headers included.
	DefaultTimeout = 10 * time.Second

	// DefaultUserAgent is sent when no User-Agent is configured.
	DefaultUserAgent = "Mozilla/5.0 (URL Status Checker/1.0)"

	msgInvalidURL = "Invalid URL format"
)

// HTTPChecker is the single-target prober. It is safe for concurrent use:
// every probe builds its own client, request and response.
type HTTPChecker struct {
	timeout   time.Duration
	userAgent string
	transport http.RoundTripper
	logger    *zap.Logger
}

// Option is a functional option for configuring an HTTPChecker.
type Option func(*HTTPChecker) error

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(h *HTTPChecker) error {
		if d <= 0 {
			return fmt.Errorf("timeout must be positive, got %v", d)
		}
		h.timeout = d
		return nil
	}
}

// WithUserAgent sets the User-Agent header. Empty keeps the default.
func WithUserAgent(ua string) Option {
	return func(h *HTTPChecker) error {
		if ua != "" {
			h.userAgent = ua
		}
		return nil
	}
}

// WithTransport replaces the round tripper. Certificate verification is
// whatever the transport does; the default transport always verifies.
func WithTransport(rt http.RoundTripper) Option {
	return func(h *HTTPChecker) error {
		if rt == nil {
			return fmt.Errorf("transport must not be nil")
		}
		h.transport = rt
		return nil
	}
}

// WithLogger sets the logger used for per-probe debug events.
func WithLogger(l *zap.Logger) Option {
	return func(h *HTTPChecker) error {
		if l != nil {
			h.logger = l
		}
		return nil
	}
}

func NewHTTPChecker(opts ...Option) (*HTTPChecker, error) {
	h := &HTTPChecker{
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		if err := opt(h); err != nil {
			return nil, fmt.Errorf("probe: %w", err)
		}
	}
	if h.transport == nil {
		h.transport = http.DefaultTransport.(*http.Transport).Clone()
	}
	return h, nil
}

// Timeout returns the configured per-request timeout.
func (h *HTTPChecker) Timeout() time.Duration { return h.timeout }

// Probe issues method against target and classifies the outcome. A HEAD
// answered with 405 is retried once with GET on the same URL, and the GET
// result is returned in its place.
func (h *HTTPChecker) Probe(ctx context.Context, target string, followRedirects bool, method string) (res domain.ProbeResult) {
	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprint(r)
			res.OriginalInput, res.FinalURL = target, target
			res.Status = domain.StatusUnknownError
			res.HTTPStatusCode = nil
			res.ErrorMessage = &msg
			res.Timestamp = time.Now()
			h.logger.Error("probe_panic", zap.String("url", target), zap.String("panic", msg))
		}
	}()

	if u, err := url.Parse(target); err != nil || u.Scheme == "" {
		return invalidURL(target)
	}

	method = strings.ToUpper(method)
	if method == "" {
		method = http.MethodHead
	}
	res = h.do(ctx, target, followRedirects, method)
	if method == http.MethodHead && res.HTTPStatusCode != nil && *res.HTTPStatusCode == http.StatusMethodNotAllowed {
		h.logger.Debug("probe_head_not_allowed", zap.String("url", target))
		res = h.do(ctx, target, followRedirects, http.MethodGet)
	}
	return res
}

func (h *HTTPChecker) do(ctx context.Context, target string, followRedirects bool, method string) domain.ProbeResult {
	res := domain.ProbeResult{OriginalInput: target, FinalURL: target}

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return invalidURL(target)
	}
	req.Header.Set("User-Agent", h.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	client := &http.Client{Transport: h.transport, Timeout: h.timeout}
	if !followRedirects {
		client.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	start := time.Now()
	resp, err := client.Do(req)
	elapsed := time.Since(start)
	res.Timestamp = time.Now()

	if err != nil {
		res.Status = Classify(err)
		msg := err.Error()
		// only the client's own timeout is reported as the configured
		// duration; a caller deadline keeps its real error and timing
		if res.Status == domain.StatusTimeout && ctx.Err() == nil {
			msg = fmt.Sprintf("Request timed out after %gs", h.timeout.Seconds())
			elapsed = h.timeout
		}
		res.ErrorMessage = &msg
		res.ResponseTimeMillis = millis(elapsed)
		h.logger.Debug("probe_failed",
			zap.String("url", target),
			zap.String("method", method),
			zap.String("status", string(res.Status)),
			zap.Error(err),
		)
		return res
	}
	// Only headers are needed; closing now releases the connection
	// without downloading the body.
	resp.Body.Close()

	code := resp.StatusCode
	res.HTTPStatusCode = &code
	res.Status = domain.StatusForCode(code)
	res.ResponseTimeMillis = millis(elapsed)
	res.FinalURL = resp.Request.URL.String()
	res.RedirectCount = redirectCount(resp)
	res.ContentLength = contentLength(resp)
	res.ContentType = mediaType(resp.Header.Get("Content-Type"))
	if s := resp.Header.Get("Server"); s != "" {
		res.Server = &s
	}

	h.logger.Debug("probe_done",
		zap.String("url", target),
		zap.String("method", method),
		zap.Int("status_code", code),
		zap.Int("redirects", res.RedirectCount),
		zap.Float64("latency_ms", *res.ResponseTimeMillis),
	)
	return res
}

func invalidURL(target string) domain.ProbeResult {
	msg := msgInvalidURL
	return domain.ProbeResult{
		OriginalInput: target,
		FinalURL:      target,
		Status:        domain.StatusError,
		ErrorMessage:  &msg,
		Timestamp:     time.Now(),
	}
}

// redirectCount walks back from the final request through the responses
// that caused each redirect.
func redirectCount(resp *http.Response) int {
	n := 0
	for r := resp.Request; r != nil && r.Response != nil; r = r.Response.Request {
		n++
	}
	return n
}

func contentLength(resp *http.Response) *int64 {
	if v := resp.Header.Get("Content-Length"); v != "" {
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil && n >= 0 {
			return &n
		}
		return nil
	}
	if resp.ContentLength >= 0 {
		n := resp.ContentLength
		return &n
	}
	return nil
}

func mediaType(header string) *string {
	if header == "" {
		return nil
	}
	mt, _, err := mime.ParseMediaType(header)
	if err != nil {
		mt = strings.TrimSpace(strings.SplitN(header, ";", 2)[0])
	}
	if mt == "" {
		return nil
	}
	return &mt
}

func millis(d time.Duration) *float64 {
	ms := math.Round(float64(d)/float64(time.Millisecond)*100) / 100
	return &ms
}
