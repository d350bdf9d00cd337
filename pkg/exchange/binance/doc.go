// Package binance implements the Binance spot REST adapter.
//
// Requests put every parameter in the query string in insertion order and
// sign it with a hex HMAC-SHA256 appended as the final signature parameter.
// The API key travels in the X-MBX-APIKEY header. Responses are flat JSON,
// so successful payloads are returned as decoded.
//
// Importing the package registers it with exchange.New under "binance":
//
//	import _ "tradegate/pkg/exchange/binance"
//
//	ex, err := exchange.New(config)
package binance
