// Package errors provides error types and classification for the
// traversal engine. Per-page fetch failures are data, not control flow:
// they are classified here and recorded on the page's result.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrorType categorizes errors for recording and metrics.
type ErrorType int

const (
	// Unknown is an uncategorized error.
	Unknown ErrorType = iota
	// Network represents network-level errors (DNS, connection refused).
	Network
	// Timeout represents timeout errors.
	Timeout
	// NotFound represents 404 responses.
	NotFound
	// ServerError represents 5xx responses.
	ServerError
	// ClientError represents other 4xx responses.
	ClientError
	// Parse represents content parsing errors.
	Parse
	// Cancelled represents context cancellation.
	Cancelled
	// Unavailable represents the fetch collaborator being wholly
	// unreachable. This is the only type that aborts a crawl.
	Unavailable
)

// String returns the string representation of ErrorType.
func (t ErrorType) String() string {
	switch t {
	case Network:
		return "network"
	case Timeout:
		return "timeout"
	case NotFound:
		return "not_found"
	case ServerError:
		return "server_error"
	case ClientError:
		return "client_error"
	case Parse:
		return "parse"
	case Cancelled:
		return "cancelled"
	case Unavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// PageError is a categorized per-page failure.
type PageError struct {
	Type       ErrorType
	URL        string
	Message    string
	Cause      error
	StatusCode int
}

// Error implements the error interface.
func (e *PageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s error on %s: %s (caused by: %v)",
			e.Type.String(), e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error on %s: %s", e.Type.String(), e.URL, e.Message)
}

// Unwrap returns the underlying error.
func (e *PageError) Unwrap() error {
	return e.Cause
}

// Is matches PageErrors by type.
func (e *PageError) Is(target error) bool {
	t, ok := target.(*PageError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// New creates a PageError.
func New(errType ErrorType, url, message string, cause error) *PageError {
	return &PageError{
		Type:    errType,
		URL:     url,
		Message: message,
		Cause:   cause,
	}
}

// FromStatusCode classifies an HTTP status code. Codes below 400 return nil.
func FromStatusCode(url string, statusCode int) *PageError {
	switch {
	case statusCode < 400:
		return nil
	case statusCode == 404:
		return &PageError{Type: NotFound, URL: url, Message: "page not found", StatusCode: statusCode}
	case statusCode >= 500:
		return &PageError{Type: ServerError, URL: url, Message: fmt.Sprintf("server returned %d", statusCode), StatusCode: statusCode}
	default:
		return &PageError{Type: ClientError, URL: url, Message: fmt.Sprintf("server returned %d", statusCode), StatusCode: statusCode}
	}
}

// Categorize determines the error type from a generic error.
func Categorize(err error, url string) *PageError {
	if err == nil {
		return nil
	}

	var pageErr *PageError
	if errors.As(err, &pageErr) {
		return pageErr
	}

	if errors.Is(err, context.Canceled) {
		return New(Cancelled, url, "request cancelled", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return New(Timeout, url, "request timed out", err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return New(Timeout, url, "request timed out", err)
		}
		return New(Network, url, "network failure", err)
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return New(Timeout, url, "request timed out", err)
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "no such host"),
		strings.Contains(msg, "network is unreachable"):
		return New(Network, url, "network failure", err)
	default:
		return New(Unknown, url, msg, err)
	}
}
