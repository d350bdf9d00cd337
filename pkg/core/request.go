package core

import (
	"strings"
	"time"
)

// Request is a single venue call. Builders fill Method, Path, Query, Body and
// RequireAuth; the venue's Signer then fills URL, Payload and auth headers.
// A Request is built per call and never shared.
type Request struct {
	Op          Operation         `json:"op"`
	Method      string            `json:"method"`
	Path        string            `json:"path"`
	Query       Params            `json:"query,omitempty"`
	Body        Params            `json:"body,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	RequireAuth bool              `json:"require_auth"`

	// URL is the absolute URL including the final, exactly-signed query string.
	URL string `json:"url,omitempty"`
	// Payload is the exact body sent on the wire. It takes precedence over Body.
	Payload []byte `json:"-"`

	Timeout   time.Duration `json:"timeout"`
	VerifyTLS bool          `json:"verify_tls"`
}

// NewRequest creates a request for op with the given method and path.
func NewRequest(op Operation, method, path string) *Request {
	return &Request{
		Op:        op,
		Method:    method,
		Path:      path,
		Headers:   make(map[string]string),
		VerifyTLS: true,
	}
}

func (r *Request) SetQuery(key string, value any) *Request {
	r.Query.Set(key, value)
	return r
}

func (r *Request) SetBody(key string, value any) *Request {
	r.Body.Set(key, value)
	return r
}

func (r *Request) SetPayload(payload []byte) *Request {
	r.Payload = payload
	return r
}

func (r *Request) SetHeader(key, value string) *Request {
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}
	r.Headers[key] = value
	return r
}

func (r *Request) SetRequireAuth(require bool) *Request {
	r.RequireAuth = require
	return r
}

// JoinURL concatenates host, path and an already-encoded query.
func JoinURL(host, path, query string) string {
	u := strings.TrimRight(host, "/") + path
	if query != "" {
		u += "?" + query
	}
	return u
}
