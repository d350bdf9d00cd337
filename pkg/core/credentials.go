package core

import (
	"fmt"
)

// Credentials holds the host and API keys for one venue. An adapter owns its
// Credentials exclusively and never modifies them after construction.
type Credentials struct {
	// Host is the REST base URL, e.g. https://api.binance.com.
	Host string `json:"host" yaml:"host" validate:"required,url"`
	// APIKey is the public API key identifier.
	APIKey string `json:"api_key" yaml:"api_key" validate:"required"`
	// SecretKey is the private API key used for signing requests.
	SecretKey string `json:"secret_key" yaml:"secret_key" validate:"required"`
	// Passphrase is an optional additional credential required by some exchanges.
	Passphrase string `json:"passphrase,omitempty" yaml:"passphrase,omitempty"`
}

// Validate checks that all required fields are present.
func (c Credentials) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrNoCredentials, err)
	}
	return nil
}

// String never prints the secret or passphrase, and masks the API key.
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{Host:%s, APIKey:%s}", c.Host, maskKey(c.APIKey))
}

// GoString keeps %#v from leaking secrets.
func (c Credentials) GoString() string {
	return c.String()
}

func maskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}
