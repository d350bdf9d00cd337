package okex

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"tradegate/pkg/core"
)

const (
	Name          = "okex"
	ProductionURL = "https://www.okex.com"
)

// Protocol signs OKEx v3 requests. Authentication lives entirely in headers;
// the signed string is timestamp + METHOD + path-with-query + body.
type Protocol struct{}

func (Protocol) Name() string {
	return Name
}

func (Protocol) DefaultHost() string {
	return ProductionURL
}

func (Protocol) RateLimits() core.RateLimitConfig {
	return core.RateLimitConfig{
		RequestsPerSecond: 10,
		OrdersPerSecond:   50,
		Burst:             20,
	}
}

// Sign appends the key-sorted query to the path and, for private requests,
// sets the OK-ACCESS-* headers. A pre-encoded Payload is sent as is;
// otherwise Body is encoded as JSON, or as nothing when empty.
func (Protocol) Sign(req *core.Request, creds core.Credentials, now time.Time) {
	pathWithQuery := PathWithQuery(req.Path, req.Query)
	req.URL = strings.TrimRight(creds.Host, "/") + pathWithQuery
	if req.Payload == nil {
		req.Payload = mustEncode(req.Body)
	}
	req.SetHeader("Content-Type", "application/json")

	if !req.RequireAuth {
		return
	}
	ts := Timestamp(now)
	req.SetHeader("OK-ACCESS-KEY", creds.APIKey)
	req.SetHeader("OK-ACCESS-SIGN", Signature(ts, req.Method, pathWithQuery, string(req.Payload), creds.SecretKey))
	req.SetHeader("OK-ACCESS-TIMESTAMP", ts)
	req.SetHeader("OK-ACCESS-PASSPHRASE", creds.Passphrase)
}

// PathWithQuery returns path followed by the raw, key-sorted query.
func PathWithQuery(path string, query core.Params) string {
	if len(query) == 0 {
		return path
	}
	return path + "?" + query.Sorted().Encode(nil)
}

// Timestamp renders t as Unix seconds with a millisecond fraction, e.g. 1700000000.123.
func Timestamp(t time.Time) string {
	ms := t.UnixMilli()
	return fmt.Sprintf("%d.%03d", ms/1000, ms%1000)
}

// Payload is the exact string OKEx signs.
func Payload(timestamp, method, pathWithQuery, body string) string {
	return timestamp + strings.ToUpper(method) + pathWithQuery + body
}

// Signature returns the lowercase hex HMAC-SHA256 of Payload.
func Signature(timestamp, method, pathWithQuery, body, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(Payload(timestamp, method, pathWithQuery, body)))
	return hex.EncodeToString(h.Sum(nil))
}

func mustEncode(body any) []byte {
	payload, err := core.EncodeBody(body)
	if err != nil {
		panic(fmt.Errorf("okex: encode request body: %w", err))
	}
	return payload
}

// ParseResponse treats a non-empty error_code other than "0", or a non-zero
// code, as a rejection keeping the whole payload. Transport errors whose
// body carries those fields get the venue code and message.
func (p Protocol) ParseResponse(_ core.Operation, status int, success any, err error) core.Result {
	if err != nil {
		var exErr *core.ExchangeError
		if errors.As(err, &exErr) {
			if code, msg, ok := venueError(exErr.RawError); ok {
				return core.Fail(core.NewExchangeErrorWithCode(p.Name(), exErr.Type, exErr.StatusCode, code, msg).
					WithRaw(exErr.RawError).
					WithCause(err))
			}
		}
		return core.Fail(err)
	}
	if code, msg, ok := venueError(success); ok {
		return core.Fail(core.NewRejection(p.Name(), status, code, msg, success))
	}
	return core.Ok(success)
}

func venueError(payload any) (string, string, bool) {
	body, ok := payload.(map[string]any)
	if !ok {
		return "", "", false
	}

	msg := firstString(body, "error_message", "message", "msg")
	if code := core.FormatValue(body["error_code"]); code != "" && code != "0" {
		return code, fallback(msg), true
	}
	switch c := body["code"].(type) {
	case json.Number:
		if n, err := c.Int64(); err != nil || n != 0 {
			return c.String(), fallback(msg), true
		}
	case string:
		if c != "" && c != "0" {
			return c, fallback(msg), true
		}
	}
	return "", "", false
}

func firstString(body map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := body[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func fallback(msg string) string {
	if msg == "" {
		return "request rejected"
	}
	return msg
}
