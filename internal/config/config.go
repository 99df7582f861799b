package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
)

const (
	DefaultTimeout    = 10 * time.Second
	DefaultMaxWorkers = 10
	DefaultUserAgent  = "Mozilla/5.0 (URL Status Checker/1.0)"
)

type Config struct {
	// checker
	Timeout         time.Duration // per-probe timeout, must be > 0
	MaxWorkers      int           // concurrent resolutions, must be >= 1
	UserAgent       string
	FollowRedirects bool
	DNSDiagnose     bool   // annotate connection errors with a DNS diagnosis
	DNSServer       string // host:port; empty means /etc/resolv.conf

	// logging
	LogDir   string // logs directory
	LogLevel string // debug, info, warn, error

	// API
	Addr           string // API bind address, e.g., "127.0.0.1:8080" (Windows) or ":8080" (Docker)
	PublicAPIKeys  []string
	AdminAPIKeys   []string
	AllowedOrigins []string
	PublicRPM      int // requests per minute per client IP, 0 disables
	PublicBurst    int
	APIMaxURLs     int // largest batch a single API call may submit

	// notifications
	SlackWebhook string
}

func FromEnv() Config {
	return Config{
		Timeout:         time.Duration(getEnvFloat("URLSTATUS_TIMEOUT", DefaultTimeout.Seconds()) * float64(time.Second)),
		MaxWorkers:      getEnvInt("URLSTATUS_WORKERS", DefaultMaxWorkers),
		UserAgent:       getEnv("URLSTATUS_USER_AGENT", DefaultUserAgent),
		FollowRedirects: getEnvBool("URLSTATUS_FOLLOW_REDIRECTS", true),
		DNSDiagnose:     getEnvBool("URLSTATUS_DNS_DIAGNOSE", false),
		DNSServer:       getEnv("URLSTATUS_DNS_SERVER", ""),

		LogDir:   getEnv("LOG_DIR", "logs"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// Bind address (Windows-friendly default)
		Addr:           getEnv("API_ADDR", "127.0.0.1:8080"),
		PublicAPIKeys:  getEnvList("PUBLIC_API_KEYS"),
		AdminAPIKeys:   getEnvList("ADMIN_API_KEYS"),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS"),
		PublicRPM:      getEnvInt("PUBLIC_RPM", 120),
		PublicBurst:    getEnvInt("PUBLIC_BURST", 60),
		APIMaxURLs:     getEnvInt("API_MAX_URLS", 500),

		SlackWebhook: getEnv("SLACK_WEBHOOK_URL", ""),
	}
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var err error
	if c.Timeout <= 0 {
		err = multierr.Append(err, fmt.Errorf("timeout must be > 0, got %v", c.Timeout))
	}
	if c.MaxWorkers < 1 {
		err = multierr.Append(err, fmt.Errorf("max workers must be >= 1, got %d", c.MaxWorkers))
	}
	if _, lerr := zapcore.ParseLevel(c.LogLevel); lerr != nil {
		err = multierr.Append(err, fmt.Errorf("log level: %w", lerr))
	}
	if c.APIMaxURLs < 1 {
		err = multierr.Append(err, fmt.Errorf("api max urls must be >= 1, got %d", c.APIMaxURLs))
	}
	if c.PublicRPM < 0 || c.PublicBurst < 0 {
		err = multierr.Append(err, fmt.Errorf("rate limits must not be negative (rpm=%d burst=%d)", c.PublicRPM, c.PublicBurst))
	}
	return err
}

// Helper function to get an environment variable or return a default value.
func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(v)
	}
	return fallback
}

// Unparsable values keep the fallback; range checks belong to Validate.
func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvList(key string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
