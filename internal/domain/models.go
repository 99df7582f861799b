package domain

import "time"

// Status is the outcome class of a single probe.
type Status string

const (
	StatusUp              Status = "UP"
	StatusClientError     Status = "CLIENT_ERROR"
	StatusServerError     Status = "SERVER_ERROR"
	StatusTimeout         Status = "TIMEOUT"
	StatusConnectionError Status = "CONNECTION_ERROR"
	StatusSSLError        Status = "SSL_ERROR"
	StatusError           Status = "ERROR"
	StatusUnknownError    Status = "UNKNOWN_ERROR"
)

// Meaningful reports whether the server was reached and answered with an
// HTTP status code, whatever its class.
func (s Status) Meaningful() bool {
	switch s {
	case StatusUp, StatusClientError, StatusServerError:
		return true
	}
	return false
}

// StatusForCode maps a final HTTP status code to its Status.
func StatusForCode(code int) Status {
	switch {
	case code < 400:
		return StatusUp
	case code < 500:
		return StatusClientError
	default:
		return StatusServerError
	}
}

// ProbeResult is the outcome of one probe. Optional fields are pointers so
// that "absent" survives JSON and CSV export.
type ProbeResult struct {
	OriginalInput      string    `json:"original_url"`
	FinalURL           string    `json:"final_url"`
	Status             Status    `json:"status"`
	HTTPStatusCode     *int      `json:"status_code"`
	ResponseTimeMillis *float64  `json:"response_time"`
	ContentLength      *int64    `json:"content_length"`
	ContentType        *string   `json:"content_type"`
	Server             *string   `json:"server"`
	RedirectCount      int       `json:"redirect_count"`
	ErrorMessage       *string   `json:"error"`
	Timestamp          time.Time `json:"timestamp"`

	// DNSClass is set only when DNS diagnostics ran for a connection failure.
	DNSClass string `json:"dns_class,omitempty"`
}
