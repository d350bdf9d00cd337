package core

import "errors"

// ErrorCode represents a normalized error identifier.
// Venue-specific codes are kept verbatim in ExchangeError.Code; these
// constants are used where the core itself produces the error.
type ErrorCode string

const (
	ErrCodeNetwork       ErrorCode = "NETWORK_ERROR"
	ErrCodeTimeout       ErrorCode = "TIMEOUT"
	ErrCodeRateLimit     ErrorCode = "RATE_LIMIT"
	ErrCodeAuth          ErrorCode = "AUTH_ERROR"
	ErrCodeBadRequest    ErrorCode = "BAD_REQUEST"
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeServerError   ErrorCode = "SERVER_ERROR"
	ErrCodeClientClosed  ErrorCode = "CLIENT_CLOSED"
	ErrCodeNoCredentials ErrorCode = "NO_CREDENTIALS"

	// ErrCodeCircuitBreaker is set when the transport refuses to send because the breaker is open.
	ErrCodeCircuitBreaker ErrorCode = "CIRCUIT_BREAKER_OPEN"
	// ErrCodeBatchPartial is set when some, but not all, orders of a batch cancel failed.
	ErrCodeBatchPartial ErrorCode = "BATCH_PARTIAL"
)

// IsErrorCode checks if the error matches the specified error code.
// It extracts the exchange error and compares its code field against the provided ErrorCode.
func IsErrorCode(err error, code ErrorCode) bool {
	var exErr *ExchangeError
	if errors.As(err, &exErr) {
		return ErrorCode(exErr.Code) == code
	}
	return false
}
