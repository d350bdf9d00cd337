package exchange

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"tradegate/pkg/core"
)

var validate = validator.New()

// Option customizes a single operation call.
type Option func(*Options)

type Options struct {
	Limit int
}

// WithLimit sets the page size of list operations such as GetOpenOrders.
func WithLimit(limit int) Option {
	return func(o *Options) {
		o.Limit = limit
	}
}

func ApplyOptions(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ClientOption customizes adapter construction.
type ClientOption func(*ClientOptions)

type ClientOptions struct {
	Logger  zerolog.Logger
	Fetcher core.Fetcher
	Clock   func() time.Time
}

// WithLogger sets the adapter logger. The default discards everything.
func WithLogger(l zerolog.Logger) ClientOption {
	return func(o *ClientOptions) {
		o.Logger = l
	}
}

// WithFetcher replaces the HTTP transport. The adapter does not close an injected fetcher.
func WithFetcher(f core.Fetcher) ClientOption {
	return func(o *ClientOptions) {
		o.Fetcher = f
	}
}

// WithClock fixes the time source used for signing timestamps.
func WithClock(now func() time.Time) ClientOption {
	return func(o *ClientOptions) {
		o.Clock = now
	}
}

func ApplyClientOptions(opts ...ClientOption) *ClientOptions {
	o := &ClientOptions{
		Logger: zerolog.Nop(),
		Clock:  time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
