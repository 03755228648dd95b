package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
)

// =============================================================================
// ErrorType Tests
// =============================================================================

func TestErrorType_String(t *testing.T) {
	tests := []struct {
		errType ErrorType
		want    string
	}{
		{Unknown, "unknown"},
		{Network, "network"},
		{Timeout, "timeout"},
		{NotFound, "not_found"},
		{ServerError, "server_error"},
		{ClientError, "client_error"},
		{Parse, "parse"},
		{Cancelled, "cancelled"},
		{Unavailable, "unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.errType.String(); got != tt.want {
				t.Errorf("String() = %v, want %v", got, tt.want)
			}
		})
	}
}

// =============================================================================
// PageError Tests
// =============================================================================

func TestPageError_ErrorMessage(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := New(Network, "https://example.com", "network failure", cause)

	msg := err.Error()
	if msg == "" {
		t.Fatal("Error() returned empty string")
	}
	if !stderrors.Is(err, &PageError{Type: Network}) {
		t.Error("Is() should match on error type")
	}
	if stderrors.Unwrap(err) != cause {
		t.Error("Unwrap() should return the cause")
	}
}

func TestFromStatusCode(t *testing.T) {
	tests := []struct {
		statusCode int
		wantType   ErrorType
		wantNil    bool
	}{
		{200, Unknown, true},
		{301, Unknown, true},
		{399, Unknown, true},
		{404, NotFound, false},
		{403, ClientError, false},
		{429, ClientError, false},
		{500, ServerError, false},
		{503, ServerError, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.statusCode), func(t *testing.T) {
			err := FromStatusCode("https://example.com", tt.statusCode)
			if tt.wantNil {
				if err != nil {
					t.Errorf("FromStatusCode(%d) = %v, want nil", tt.statusCode, err)
				}
				return
			}
			if err == nil {
				t.Fatalf("FromStatusCode(%d) = nil, want error", tt.statusCode)
			}
			if err.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", err.Type, tt.wantType)
			}
			if err.StatusCode != tt.statusCode {
				t.Errorf("StatusCode = %v, want %v", err.StatusCode, tt.statusCode)
			}
		})
	}
}

// =============================================================================
// Categorize Tests
// =============================================================================

func TestCategorize(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType ErrorType
	}{
		{"nil error", nil, Unknown},
		{"context canceled", context.Canceled, Cancelled},
		{"deadline exceeded", context.DeadlineExceeded, Timeout},
		{"timeout string", stderrors.New("i/o timeout while reading"), Timeout},
		{"connection refused", stderrors.New("dial tcp: connection refused"), Network},
		{"no such host", stderrors.New("lookup x: no such host"), Network},
		{"generic", stderrors.New("something else"), Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Categorize(tt.err, "https://example.com")
			if tt.err == nil {
				if got != nil {
					t.Errorf("Categorize(nil) = %v, want nil", got)
				}
				return
			}
			if got.Type != tt.wantType {
				t.Errorf("Categorize() type = %v, want %v", got.Type, tt.wantType)
			}
		})
	}
}

func TestCategorize_PassesThroughPageError(t *testing.T) {
	orig := New(Parse, "https://example.com", "bad html", nil)
	got := Categorize(orig, "https://other.com")
	if got != orig {
		t.Error("Categorize() should return an existing PageError unchanged")
	}
}
