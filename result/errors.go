package result

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"syscall"
)

// ErrorCategory represents the classification of a crawl error.
type ErrorCategory string

const (
	CategoryTimeout           ErrorCategory = "timeout"
	CategoryDNSFailure        ErrorCategory = "dns_failure"
	CategoryConnectionRefused ErrorCategory = "connection_refused"
	CategoryTLSFailure        ErrorCategory = "tls_failure"
	Category4xx               ErrorCategory = "4xx"
	Category5xx               ErrorCategory = "5xx"
	CategoryRedirectLoop      ErrorCategory = "redirect_loop"
	CategoryUnknown           ErrorCategory = "unknown"
)

// ClassifyError determines the error category based on the error, HTTP status code,
// and whether a redirect loop was detected.
func ClassifyError(err error, statusCode int, isRedirectLoop bool) ErrorCategory {
	// Check redirect loop first (highest priority)
	if isRedirectLoop {
		return CategoryRedirectLoop
	}

	// Check HTTP status codes
	if statusCode > 0 {
		if statusCode >= 400 && statusCode <= 499 {
			return Category4xx
		}
		if statusCode >= 500 {
			return Category5xx
		}
	}

	// If no error, return unknown
	if err == nil {
		return CategoryUnknown
	}

	// Check for timeout
	if errors.Is(err, context.DeadlineExceeded) {
		return CategoryTimeout
	}

	// Check for DNS failure
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return CategoryDNSFailure
	}

	// Check for certificate and handshake failures
	if isTLSError(err) {
		return CategoryTLSFailure
	}

	// Check for connection refused
	if errors.Is(err, syscall.ECONNREFUSED) {
		return CategoryConnectionRefused
	}

	// Check if it's a timeout reported by the network layer
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return CategoryTimeout
	}

	// Fallback to unknown
	return CategoryUnknown
}

func isTLSError(err error) bool {
	var (
		verifyErr    *tls.CertificateVerificationError
		recordErr    tls.RecordHeaderError
		authorityErr x509.UnknownAuthorityError
		hostnameErr  x509.HostnameError
		invalidErr   x509.CertificateInvalidError
	)
	return errors.As(err, &verifyErr) ||
		errors.As(err, &recordErr) ||
		errors.As(err, &authorityErr) ||
		errors.As(err, &hostnameErr) ||
		errors.As(err, &invalidErr)
}

// FormatCategory returns a human-readable label for an error category.
func FormatCategory(cat ErrorCategory) string {
	switch cat {
	case CategoryTimeout:
		return "Timeouts"
	case CategoryDNSFailure:
		return "DNS Failures"
	case CategoryConnectionRefused:
		return "Connection Refused"
	case CategoryTLSFailure:
		return "TLS Failures"
	case Category4xx:
		return "Client Errors (4xx)"
	case Category5xx:
		return "Server Errors (5xx)"
	case CategoryRedirectLoop:
		return "Redirect Loops"
	default:
		return "Other Errors"
	}
}

// FormatKind returns the section heading used for a resource kind.
func FormatKind(kind Kind) string {
	switch kind {
	case KindLink:
		return "Links"
	case KindImage:
		return "Images"
	case KindStylesheet:
		return "Stylesheets"
	case KindScript:
		return "Scripts"
	default:
		return "Other"
	}
}
