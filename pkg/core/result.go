package core

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// Result is the outcome of every adapter operation. Exactly one of Success
// and Error is set; use Ok and Fail to build one.
type Result struct {
	// Success holds the decoded venue payload.
	Success any `json:"success,omitempty"`
	// Error holds the transport error, remote rejection or caller error.
	Error error `json:"-"`
}

// Ok wraps a successful payload. A nil payload becomes an empty object.
func Ok(v any) Result {
	if v == nil {
		v = map[string]any{}
	}
	return Result{Success: v}
}

// Fail wraps an error. A nil error becomes ErrEmptyResult.
func Fail(err error) Result {
	if err == nil {
		err = ErrEmptyResult
	}
	return Result{Error: err}
}

// IsOK reports whether the result holds a success payload.
func (r Result) IsOK() bool {
	return r.Error == nil
}

// Unpack returns the result as a conventional value/error pair.
func (r Result) Unpack() (any, error) {
	if r.Error != nil {
		return nil, r.Error
	}
	return r.Success, nil
}

// Decode copies the success payload into dst, which must be a pointer.
func (r Result) Decode(dst any) error {
	if r.Error != nil {
		return r.Error
	}
	data, err := sonic.Marshal(r.Success)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := sonic.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}
