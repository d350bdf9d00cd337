// Package okex implements the OKEx v3 spot REST adapter.
//
// Private requests are authenticated with the OK-ACCESS-KEY, -SIGN,
// -TIMESTAMP and -PASSPHRASE headers. The signature is the hex HMAC-SHA256 of
// timestamp + METHOD + path-with-query + body, where the timestamp is Unix
// seconds with a millisecond fraction and must match the header exactly.
package okex
