package binance

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"tradegate/pkg/core"
)

const (
	Name          = "binance"
	ProductionURL = "https://api.binance.com"
	SandboxURL    = "https://testnet.binance.vision"
)

// Protocol signs Binance requests and normalizes their responses.
//
// All parameters travel in the query string, in the order they were added.
// Signed requests carry a trailing signature parameter: the hex HMAC-SHA256
// of everything before it.
type Protocol struct{}

func (Protocol) Name() string {
	return Name
}

func (Protocol) DefaultHost() string {
	return ProductionURL
}

// RateLimits returns the rate limit configuration for Binance API.
func (Protocol) RateLimits() core.RateLimitConfig {
	return core.RateLimitConfig{
		RequestsPerSecond: 20,
		OrdersPerSecond:   10,
		Burst:             50,
	}
}

// Sign builds the final URL. Query and body parameters are merged, query first.
func (Protocol) Sign(req *core.Request, creds core.Credentials, _ time.Time) {
	query := SignedQuery(req.Query.Merge(req.Body), creds.SecretKey, req.RequireAuth)
	req.URL = core.JoinURL(creds.Host, req.Path, query)
	req.Payload = nil
	req.SetHeader("X-MBX-APIKEY", creds.APIKey)
}

// CanonicalQuery renders params as raw key=value pairs in insertion order.
func CanonicalQuery(params core.Params) string {
	return params.Encode(nil)
}

// SignedQuery returns the canonical query with a signature appended when
// auth is set. An empty parameter set is never signed.
func SignedQuery(params core.Params, secret string, auth bool) string {
	query := CanonicalQuery(params)
	if !auth || query == "" {
		return query
	}
	return query + "&signature=" + signHMAC(query, secret)
}

func signHMAC(message, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(message))
	return hex.EncodeToString(h.Sum(nil))
}

// ParseResponse passes successful payloads through unchanged. Error bodies of
// the form {"code":-1013,"msg":"..."} are classified by their venue code.
func (p Protocol) ParseResponse(_ core.Operation, _ int, success any, err error) core.Result {
	if err == nil {
		return core.Ok(success)
	}

	var exErr *core.ExchangeError
	if !errors.As(err, &exErr) {
		return core.Fail(err)
	}
	code, msg, ok := apiError(exErr.RawError)
	if !ok {
		return core.Fail(err)
	}
	return core.Fail(core.NewExchangeErrorWithCode(
		p.Name(),
		mapBinanceErrorCode(code),
		exErr.StatusCode,
		strconv.FormatInt(code, 10),
		msg,
	).WithRaw(exErr.RawError).WithCause(err))
}

func apiError(raw any) (int64, string, bool) {
	body, ok := raw.(map[string]any)
	if !ok {
		return 0, "", false
	}
	var code int64
	switch c := body["code"].(type) {
	case json.Number:
		n, err := c.Int64()
		if err != nil {
			return 0, "", false
		}
		code = n
	case float64:
		code = int64(c)
	default:
		return 0, "", false
	}
	msg, _ := body["msg"].(string)
	return code, msg, code != 0
}

func mapBinanceErrorCode(code int64) core.ErrorType {
	switch code {
	case -1003, -1015:
		return core.ErrorTypeRateLimit
	case -1021, -1022, -2014, -2015:
		return core.ErrorTypeAuthentication
	case -2010:
		return core.ErrorTypeInsufficientFunds
	case -2013:
		return core.ErrorTypeNotFound
	case -1100, -1101, -1102, -1103, -1104, -1105:
		return core.ErrorTypeBadRequest
	default:
		if code <= -1000 && code > -2000 {
			return core.ErrorTypeBadRequest
		}
		if code <= -2000 && code > -3000 {
			return core.ErrorTypeInvalidOrder
		}
		return core.ErrorTypeUnknown
	}
}
