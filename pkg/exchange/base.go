package exchange

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"tradegate/internal/ratelimit"
	"tradegate/internal/transport"
	"tradegate/pkg/core"
)

// Base carries what every venue adapter shares: its credentials, transport,
// logger and clock, and the sign → fetch → normalize pipeline.
type Base struct {
	protocol core.Protocol
	creds    core.Credentials
	fetcher  core.Fetcher
	closer   io.Closer
	logger   zerolog.Logger
	now      func() time.Time
	timeout  time.Duration
	verify   bool
}

// NewBase validates config and wires protocol to a transport. An empty
// credential host falls back to the protocol's production host.
func NewBase(config *core.Config, protocol core.Protocol, opts ...ClientOption) (*Base, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: nil config", core.ErrInvalidParams)
	}
	if config.Credentials == nil {
		return nil, core.ErrNoCredentials
	}

	cfg := *config
	creds := *config.Credentials
	if creds.Host == "" {
		creds.Host = protocol.DefaultHost()
	}
	cfg.Credentials = &creds
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	options := ApplyClientOptions(opts...)
	logger := options.Logger.With().Str("exchange", protocol.Name()).Logger()

	b := &Base{
		protocol: protocol,
		creds:    creds,
		fetcher:  options.Fetcher,
		logger:   logger,
		now:      options.Clock,
		timeout:  cfg.Timeout,
		verify:   !cfg.InsecureSkipVerify,
	}
	if b.fetcher == nil {
		client := transport.NewClient(&cfg, logger)
		limits := protocol.RateLimits()
		client.SetBucketLimit(ratelimit.ClassTrade, limits.OrdersPerSecond, limits.Burst)
		client.SetBucketLimit(ratelimit.ClassQuery, limits.RequestsPerSecond, limits.Burst)
		b.fetcher = client
		b.closer = client
	}
	return b, nil
}

// Name returns the venue identifier.
func (b *Base) Name() string {
	return b.protocol.Name()
}

// Credentials returns a copy of the adapter's credentials.
func (b *Base) Credentials() core.Credentials {
	return b.creds
}

func (b *Base) Logger() *zerolog.Logger {
	return &b.logger
}

// Now returns the adapter clock's current time.
func (b *Base) Now() time.Time {
	return b.now()
}

// Millis returns the adapter clock as Unix milliseconds.
func (b *Base) Millis() string {
	return strconv.FormatInt(b.now().UnixMilli(), 10)
}

// Do signs req, sends it and normalizes the venue's answer.
func (b *Base) Do(ctx context.Context, req *core.Request) core.Result {
	if req.Timeout <= 0 {
		req.Timeout = b.timeout
	}
	req.VerifyTLS = req.VerifyTLS && b.verify

	b.protocol.Sign(req, b.creds, b.now())

	status, success, err := b.fetcher.Fetch(ctx, req)
	result := b.protocol.ParseResponse(req.Op, status, success, err)
	if result.Error != nil {
		b.logger.Debug().Err(result.Error).
			Str("op", req.Op.String()).
			Str("path", req.Path).
			Int("status", status).
			Msg("request failed")
	}
	return result
}

// Close releases the transport created by NewBase.
func (b *Base) Close() error {
	if b.closer != nil {
		return b.closer.Close()
	}
	return nil
}
