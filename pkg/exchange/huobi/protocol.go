package huobi

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tradegate/pkg/core"
)

const (
	Name          = "huobi"
	ProductionURL = "https://api.huobi.pro"

	timestampLayout = "2006-01-02T15:04:05"
)

// Protocol signs Huobi requests (signature version 2) and unwraps the
// {"status": ..., "data": ...} envelope.
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
		OrdersPerSecond:   10,
		Burst:             20,
	}
}

// Sign adds the access key, signature method and version and timestamp to
// the query, sorts it, and appends the base64 signature over
// METHOD\nhost\npath\nquery. The body is sent as JSON.
func (Protocol) Sign(req *core.Request, creds core.Credentials, now time.Time) {
	params := req.Query.Clone()
	if req.RequireAuth {
		params.Set("AccessKeyId", creds.APIKey).
			Set("SignatureMethod", "HmacSHA256").
			Set("SignatureVersion", "2").
			Set("Timestamp", now.UTC().Format(timestampLayout))
	}

	query := CanonicalQuery(params)
	if req.RequireAuth {
		signature := Signature(req.Method, hostname(creds.Host), req.Path, query, creds.SecretKey)
		query += "&Signature=" + Escape(signature)
	}
	req.URL = core.JoinURL(creds.Host, req.Path, query)
	req.Payload = mustEncode(req.Body)

	if req.Method == http.MethodGet {
		req.SetHeader("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req.SetHeader("Accept", "application/json")
		req.SetHeader("Content-Type", "application/json")
	}
}

// CanonicalQuery sorts params by key and percent-encodes their values.
func CanonicalQuery(params core.Params) string {
	return params.Sorted().Encode(Escape)
}

// Payload is the exact string Huobi signs.
func Payload(method, host, path, query string) string {
	return strings.Join([]string{strings.ToUpper(method), strings.ToLower(host), path, query}, "\n")
}

// Signature returns the standard base64 HMAC-SHA256 of Payload.
func Signature(method, host, path, query, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(Payload(method, host, path, query)))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// Escape percent-encodes every byte except letters, digits, '-', '.', '_',
// '~' and '/', using uppercase hex.
func Escape(s string) string {
	const hexDigits = "0123456789ABCDEF"

	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(hexDigits[c>>4])
		sb.WriteByte(hexDigits[c&0x0f])
	}
	return sb.String()
}

func isUnreserved(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '-', c == '.', c == '_', c == '~', c == '/':
		return true
	}
	return false
}

func hostname(host string) string {
	u, err := url.Parse(host)
	if err != nil || u.Hostname() == "" {
		panic(fmt.Errorf("huobi: cannot derive signing host from %q: %v", host, err))
	}
	return strings.ToLower(u.Hostname())
}

func mustEncode(body core.Params) []byte {
	payload, err := core.EncodeBody(body)
	if err != nil {
		panic(fmt.Errorf("huobi: encode request body: %w", err))
	}
	return payload
}

// ParseResponse maps the envelope onto a Result. "ok" yields data, or tick
// for market endpoints. Any other status is a rejection that keeps the
// whole payload, with err-code and err-msg lifted into the error.
func (p Protocol) ParseResponse(_ core.Operation, status int, success any, err error) core.Result {
	if err != nil {
		return core.Fail(err)
	}

	envelope, ok := success.(map[string]any)
	if !ok {
		return core.Fail(core.NewRejection(p.Name(), status, "", "unexpected response envelope", success))
	}
	if envelope["status"] != "ok" {
		code, _ := envelope["err-code"].(string)
		msg, _ := envelope["err-msg"].(string)
		if msg == "" {
			msg = "request rejected"
		}
		return core.Fail(core.NewRejection(p.Name(), status, code, msg, envelope))
	}
	if data, ok := envelope["data"]; ok {
		return core.Ok(data)
	}
	if tick, ok := envelope["tick"]; ok {
		return core.Ok(tick)
	}
	return core.Ok(nil)
}
