package probe

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/hamed0406/urlstatus/internal/domain"
)

// Classify maps a transport error from http.Client.Do to a connectivity
// status. The checks run from most to least specific: TLS, timeout,
// connection, then any other transport error. Errors that did not come
// from the HTTP client at all are UNKNOWN_ERROR.
func Classify(err error) domain.Status {
	var ue *url.Error
	if !errors.As(err, &ue) {
		return domain.StatusUnknownError
	}
	switch {
	case isTLSError(err):
		return domain.StatusSSLError
	case isTimeout(err):
		return domain.StatusTimeout
	case isConnectError(err):
		return domain.StatusConnectionError
	default:
		return domain.StatusError
	}
}

func isTLSError(err error) bool {
	var (
		verr     *tls.CertificateVerificationError
		unknown  x509.UnknownAuthorityError
		hostname x509.HostnameError
		invalid  x509.CertificateInvalidError
		header   tls.RecordHeaderError
		alert    tls.AlertError
	)
	if errors.As(err, &verr) || errors.As(err, &unknown) || errors.As(err, &hostname) ||
		errors.As(err, &invalid) || errors.As(err, &header) || errors.As(err, &alert) {
		return true
	}
	// handshake alerts received over TCP are unexported types
	msg := err.Error()
	return strings.Contains(msg, "tls: ") || strings.Contains(msg, "x509: ")
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func isConnectError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.EHOSTUNREACH)
}
