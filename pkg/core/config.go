package core

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config contains all configuration options for one venue adapter.
// It includes authentication, networking, rate limiting and circuit breaker settings.
type Config struct {
	Exchange    string       `json:"exchange" yaml:"exchange" validate:"required,oneof=binance huobi okex"`
	Credentials *Credentials `json:"credentials,omitempty" yaml:"credentials,omitempty"`

	// Timeout is the fixed deadline of every HTTP call. Calls are never retried.
	Timeout time.Duration `json:"timeout" yaml:"timeout" validate:"min=1ms"`
	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool `json:"insecure_skip_verify" yaml:"insecure_skip_verify"`

	RateLimitRequests int           `json:"rate_limit_requests" yaml:"rate_limit_requests" validate:"min=1"`
	RateLimitPeriod   time.Duration `json:"rate_limit_period" yaml:"rate_limit_period" validate:"min=1ms"`

	CircuitBreakerEnabled          bool          `json:"circuit_breaker_enabled" yaml:"circuit_breaker_enabled"`
	CircuitBreakerFailThreshold    int           `json:"circuit_breaker_fail_threshold" yaml:"circuit_breaker_fail_threshold"`
	CircuitBreakerSuccessThreshold int           `json:"circuit_breaker_success_threshold" yaml:"circuit_breaker_success_threshold"`
	CircuitBreakerTimeout          time.Duration `json:"circuit_breaker_timeout" yaml:"circuit_breaker_timeout"`

	LogLevel string `json:"log_level" yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// DefaultConfig returns a Config initialized with sensible defaults for the specified exchange.
// Default values: 10s timeout, TLS verification on, 1200 req/min rate limit,
// circuit breaker with 5 failures/2 successes/30s timeout.
func DefaultConfig(exchange string) *Config {
	return &Config{
		Exchange: exchange,
		Timeout:  10 * time.Second,

		RateLimitRequests: 1200,
		RateLimitPeriod:   time.Minute,

		CircuitBreakerEnabled:          true,
		CircuitBreakerFailThreshold:    5,
		CircuitBreakerSuccessThreshold: 2,
		CircuitBreakerTimeout:          30 * time.Second,

		LogLevel: "info",
	}
}

var validate = validator.New()

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.CircuitBreakerEnabled {
		if c.CircuitBreakerFailThreshold <= 0 {
			return errors.New("CircuitBreakerFailThreshold must be positive when enabled")
		}
		if c.CircuitBreakerSuccessThreshold <= 0 {
			return errors.New("CircuitBreakerSuccessThreshold must be positive when enabled")
		}
		if c.CircuitBreakerTimeout <= 0 {
			return errors.New("CircuitBreakerTimeout must be positive when enabled")
		}
	}
	return nil
}

// LoadConfig reads a YAML file over DefaultConfig and validates the result.
// The exchange named in the file selects the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var head struct {
		Exchange string `yaml:"exchange"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	config := DefaultConfig(head.Exchange)
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return config, nil
}

// WithCredentials sets the API credentials and returns the config for chaining.
func (c *Config) WithCredentials(creds *Credentials) *Config {
	c.Credentials = creds
	return c
}

// WithTimeout sets the request timeout and returns the config for chaining.
func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.Timeout = timeout
	return c
}

// WithRateLimit sets the rate limiting parameters and returns the config for chaining.
func (c *Config) WithRateLimit(requests int, period time.Duration) *Config {
	c.RateLimitRequests = requests
	c.RateLimitPeriod = period
	return c
}

// WithInsecureSkipVerify toggles TLS certificate verification and returns the config for chaining.
func (c *Config) WithInsecureSkipVerify(skip bool) *Config {
	c.InsecureSkipVerify = skip
	return c
}
