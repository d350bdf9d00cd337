package core

import (
	"context"
	"time"
)

// RateLimitConfig defines rate limiting parameters for an exchange protocol.
type RateLimitConfig struct {
	// RequestsPerSecond is the maximum general requests per second.
	RequestsPerSecond int `json:"requests_per_second"`
	// OrdersPerSecond is the maximum order placement requests per second.
	OrdersPerSecond int `json:"orders_per_second"`
	// Burst allows temporary exceeding of rate limits.
	Burst int `json:"burst"`
}

// Fetcher performs a single HTTP call for a fully built request.
// It returns the HTTP status (zero when no response arrived), the decoded
// success payload, or an error. Exactly one of success and err is non-nil.
type Fetcher interface {
	Fetch(ctx context.Context, req *Request) (status int, success any, err error)
}

// Signer turns a built request into the exact bytes sent on the wire:
// it fills URL and Payload and, for requests that require auth, adds the
// venue's signature. Signing is pure: the same request, credentials and time
// always produce the same output.
type Signer interface {
	Sign(req *Request, creds Credentials, now time.Time)
}

// Protocol defines the interface for exchange-specific protocol implementations.
// Each venue implements request signing and response-envelope normalization.
type Protocol interface {
	Signer

	// Name returns the exchange identifier (e.g., "binance", "huobi").
	Name() string

	// DefaultHost returns the production REST host.
	DefaultHost() string

	// ParseResponse maps the transport outcome and the venue envelope onto a Result.
	ParseResponse(op Operation, status int, success any, err error) Result

	// RateLimits returns the rate limiting configuration for this exchange.
	RateLimits() RateLimitConfig
}
