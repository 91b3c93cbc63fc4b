package resilience

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
)

// ErrRetriesExhausted is returned when the attempt loop ends without a
// recorded error, which only happens for a misconfigured policy.
var ErrRetriesExhausted = errors.New("resilience: retries exhausted")

// StatusError describes a response whose status code is retryable.
// It is passed to ShouldRetry and OnRetry, and returned when the attempt
// loop is exhausted after a retryable status.
type StatusError struct {
	StatusCode int
	Response   *http.Response
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	kind := "Request Error"
	if e.StatusCode >= 500 {
		kind = "Server Error"
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, kind)
}

// NetworkErrorCode names a class of transient transport failure.
type NetworkErrorCode string

const (
	// CodeConnRefused is a refused connection (ECONNREFUSED).
	CodeConnRefused NetworkErrorCode = "ECONNREFUSED"
	// CodeConnReset is a connection reset by the peer (ECONNRESET).
	CodeConnReset NetworkErrorCode = "ECONNRESET"
	// CodeDNSNotFound is a failed DNS lookup (ENOTFOUND).
	CodeDNSNotFound NetworkErrorCode = "ENOTFOUND"
	// CodeTimedOut is an operation that timed out (ETIMEDOUT).
	CodeTimedOut NetworkErrorCode = "ETIMEDOUT"
	// CodeBrokenPipe is a write to a closed connection (EPIPE).
	CodeBrokenPipe NetworkErrorCode = "EPIPE"
)

// ClassifyNetworkError reports which retryable network class err belongs to.
// Cancellation and a bare context deadline never classify. A transport
// timeout such as http.Client.Timeout classifies as CodeTimedOut even though
// it also matches context.DeadlineExceeded; whether the caller's own context
// has ended is decided by the caller.
func ClassifyNetworkError(err error) (NetworkErrorCode, bool) {
	if err == nil || errors.Is(err, context.Canceled) {
		return "", false
	}

	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return CodeConnRefused, true
	case errors.Is(err, syscall.ECONNRESET):
		return CodeConnReset, true
	case errors.Is(err, syscall.EPIPE):
		return CodeBrokenPipe, true
	case errors.Is(err, syscall.ETIMEDOUT):
		return CodeTimedOut, true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsNotFound {
			return CodeDNSNotFound, true
		}
		if dnsErr.IsTimeout {
			return CodeTimedOut, true
		}
		return "", false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() && error(netErr) != context.DeadlineExceeded {
		return CodeTimedOut, true
	}

	return "", false
}

// IsNetworkError reports whether err is a retryable network error.
func IsNetworkError(err error) bool {
	_, ok := ClassifyNetworkError(err)
	return ok
}
