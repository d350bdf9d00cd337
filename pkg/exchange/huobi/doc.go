// Package huobi implements the Huobi spot REST adapter.
//
// Signed requests carry AccessKeyId, SignatureMethod, SignatureVersion and
// Timestamp in a key-sorted, percent-encoded query, followed by a base64
// HMAC-SHA256 Signature. Bodies are JSON. Responses are unwrapped from the
// {"status", "data"} envelope; a status other than "ok" is an error even on
// HTTP 200.
package huobi
