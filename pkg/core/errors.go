package core

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the category of an exchange error.
type ErrorType int

// Error type constants categorize errors for proper handling and retry logic.
const (
	// ErrorTypeUnknown indicates an unclassified error.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeNetwork indicates a network connectivity issue.
	ErrorTypeNetwork
	// ErrorTypeTimeout indicates the request exceeded its deadline.
	ErrorTypeTimeout
	// ErrorTypeRateLimit indicates rate limit was exceeded.
	ErrorTypeRateLimit
	// ErrorTypeAuthentication indicates invalid or expired credentials.
	ErrorTypeAuthentication
	// ErrorTypeBadRequest indicates invalid request parameters.
	ErrorTypeBadRequest
	// ErrorTypeNotFound indicates the requested resource does not exist.
	ErrorTypeNotFound
	// ErrorTypeServerError indicates a server-side error.
	ErrorTypeServerError
	// ErrorTypeInsufficientFunds indicates account lacks required balance.
	ErrorTypeInsufficientFunds
	// ErrorTypeInvalidOrder indicates the order violates exchange rules.
	ErrorTypeInvalidOrder
	// ErrorTypeRejected indicates the venue answered but reported failure in its envelope.
	ErrorTypeRejected
	// ErrorTypeUnresolved indicates a required account identifier could not be resolved.
	ErrorTypeUnresolved
)

var errorTypeNames = [...]string{
	"UNKNOWN",
	"NETWORK",
	"TIMEOUT",
	"RATE_LIMIT",
	"AUTHENTICATION",
	"BAD_REQUEST",
	"NOT_FOUND",
	"SERVER_ERROR",
	"INSUFFICIENT_FUNDS",
	"INVALID_ORDER",
	"REJECTED",
	"UNRESOLVED",
}

// String returns the string representation of the error type.
func (t ErrorType) String() string {
	if t < 0 || int(t) >= len(errorTypeNames) {
		return "UNKNOWN"
	}
	return errorTypeNames[t]
}

// Sentinel errors for common error conditions.
var (
	// ErrClientClosed is returned when attempting to use a closed client.
	ErrClientClosed = errors.New("client is closed")
	// ErrCircuitBreakerOpen is returned when circuit breaker is open.
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open")
	// ErrNoCredentials is returned when no API credentials are configured.
	ErrNoCredentials = errors.New("no credentials configured")
	// ErrInvalidParams is returned before any network call for invalid caller input.
	ErrInvalidParams = errors.New("invalid parameters")
	// ErrAccountNotResolved is returned when an operation needs an account id the venue did not provide.
	ErrAccountNotResolved = errors.New("account not resolved")
	// ErrEmptyResult marks a result that was failed without a cause.
	ErrEmptyResult = errors.New("empty result")
)

// ExchangeError represents a structured error returned from an exchange.
// It provides detailed context for debugging and error handling.
type ExchangeError struct {
	// Type categorizes the error for programmatic handling.
	Type ErrorType `json:"type"`
	// StatusCode is the HTTP status code from the response, zero if none was received.
	StatusCode int `json:"status_code"`
	// Code is the exchange-specific error code.
	Code string `json:"code"`
	// Message is the human-readable error description.
	Message string `json:"message"`
	// RawError contains the original error payload for diagnostics.
	RawError any `json:"raw_error,omitempty"`
	// Exchange identifies which exchange returned this error.
	Exchange string `json:"exchange"`
	// Timestamp is when the error occurred.
	Timestamp time.Time `json:"timestamp"`

	err error
}

// Error implements the error interface for ExchangeError.
// It returns a formatted string with exchange name, error type, status code, and message.
func (e *ExchangeError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("[%s] %s (%d/%s): %s",
			e.Exchange, e.Type, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s (%d): %s",
		e.Exchange, e.Type, e.StatusCode, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *ExchangeError) Unwrap() error {
	return e.err
}

// WithCode sets the error code and returns the error for chaining.
func (e *ExchangeError) WithCode(code ErrorCode) *ExchangeError {
	e.Code = string(code)
	return e
}

// WithRaw attaches the original payload and returns the error for chaining.
func (e *ExchangeError) WithRaw(raw any) *ExchangeError {
	e.RawError = raw
	return e
}

// WithCause records the underlying error and returns the error for chaining.
func (e *ExchangeError) WithCause(err error) *ExchangeError {
	e.err = err
	return e
}

// NewExchangeError creates a new ExchangeError with the specified details.
// The timestamp is automatically set to the current time.
func NewExchangeError(exchange string, errorType ErrorType, statusCode int, message string) *ExchangeError {
	return &ExchangeError{
		Type:       errorType,
		StatusCode: statusCode,
		Message:    message,
		Exchange:   exchange,
		Timestamp:  time.Now(),
	}
}

// NewExchangeErrorWithCode creates a new ExchangeError including an exchange-specific error code.
// The timestamp is automatically set to the current time.
func NewExchangeErrorWithCode(exchange string, errorType ErrorType, statusCode int, code, message string) *ExchangeError {
	e := NewExchangeError(exchange, errorType, statusCode, message)
	e.Code = code
	return e
}

// NewRejection builds the error for a venue that answered successfully at the
// HTTP level but reported failure in its envelope. The payload is kept whole.
func NewRejection(exchange string, statusCode int, code, message string, payload any) *ExchangeError {
	return NewExchangeErrorWithCode(exchange, ErrorTypeRejected, statusCode, code, message).WithRaw(payload)
}

// NewResolutionError builds the error returned when an account identifier is
// missing. cause is the lookup failure, or nil when the lookup found nothing.
func NewResolutionError(exchange string, cause error) *ExchangeError {
	e := NewExchangeError(exchange, ErrorTypeUnresolved, 0, ErrAccountNotResolved.Error())
	if cause != nil {
		e.Message += ": " + cause.Error()
		return e.WithCause(errors.Join(ErrAccountNotResolved, cause))
	}
	return e.WithCause(ErrAccountNotResolved)
}

func errorTypeOf(err error) (ErrorType, bool) {
	var e *ExchangeError
	if errors.As(err, &e) {
		return e.Type, true
	}
	return ErrorTypeUnknown, false
}

func hasType(err error, types ...ErrorType) bool {
	t, ok := errorTypeOf(err)
	if !ok {
		return false
	}
	for _, want := range types {
		if t == want {
			return true
		}
	}
	return false
}

// IsNetworkError returns true if the error is a network connectivity issue.
func IsNetworkError(err error) bool {
	return hasType(err, ErrorTypeNetwork)
}

// IsTimeoutError returns true if the error is a timeout.
func IsTimeoutError(err error) bool {
	return hasType(err, ErrorTypeTimeout)
}

// IsRateLimitError returns true if the error is a rate limit violation.
func IsRateLimitError(err error) bool {
	return hasType(err, ErrorTypeRateLimit)
}

// IsAuthenticationError returns true if the error is an authentication failure.
// Authentication errors require credential validation and are not retryable.
func IsAuthenticationError(err error) bool {
	return hasType(err, ErrorTypeAuthentication)
}

// IsRejected returns true if the venue reported failure in its response envelope.
func IsRejected(err error) bool {
	return hasType(err, ErrorTypeRejected)
}

// IsTerminalError returns true if the error indicates a terminal condition.
// Terminal errors should not be retried as they will not succeed.
func IsTerminalError(err error) bool {
	if errors.Is(err, ErrInvalidParams) || errors.Is(err, ErrAccountNotResolved) {
		return true
	}
	return hasType(err, ErrorTypeInsufficientFunds, ErrorTypeInvalidOrder, ErrorTypeNotFound)
}
