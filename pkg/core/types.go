package core

import (
	"fmt"
	"strings"
)

// OrderSide represents the direction of an order (buy or sell).
type OrderSide int

// Order side constants define the direction of a trade.
const (
	// SideBuy indicates an order to purchase an asset.
	SideBuy OrderSide = iota
	// SideSell indicates an order to sell an asset.
	SideSell
)

// String returns the string representation of the order side ("BUY" or "SELL").
func (s OrderSide) String() string {
	switch s {
	case SideBuy:
		return "BUY"
	case SideSell:
		return "SELL"
	default:
		return fmt.Sprintf("OrderSide(%d)", int(s))
	}
}

// MarshalJSON implements json.Marshaler for OrderSide.
func (s OrderSide) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for OrderSide.
// It accepts both uppercase and lowercase formats.
func (s *OrderSide) UnmarshalJSON(data []byte) error {
	side, err := ParseOrderSide(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*s = side
	return nil
}

// ParseOrderSide converts "buy"/"sell" in any case to an OrderSide.
func ParseOrderSide(s string) (OrderSide, error) {
	switch strings.ToUpper(s) {
	case "BUY":
		return SideBuy, nil
	case "SELL":
		return SideSell, nil
	default:
		return 0, fmt.Errorf("%w: unknown order side %q", ErrInvalidParams, s)
	}
}

// OrderType represents the kind of order to place on an exchange.
type OrderType int

// Order type constants define how an order is executed.
const (
	// TypeLimit executes at a specified price or better.
	TypeLimit OrderType = iota
	// TypeMarket executes immediately at the best available price.
	TypeMarket
)

// String returns the string representation of the order type.
func (t OrderType) String() string {
	switch t {
	case TypeLimit:
		return "LIMIT"
	case TypeMarket:
		return "MARKET"
	default:
		return fmt.Sprintf("OrderType(%d)", int(t))
	}
}

// Valid reports whether t is one of the supported order kinds.
func (t OrderType) Valid() bool {
	return t == TypeLimit || t == TypeMarket
}

// MarshalJSON implements json.Marshaler for OrderType.
func (t OrderType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for OrderType.
// It accepts both uppercase and lowercase formats.
func (t *OrderType) UnmarshalJSON(data []byte) error {
	kind, err := ParseOrderType(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*t = kind
	return nil
}

// ParseOrderType converts "limit"/"market" in any case to an OrderType.
// Unknown kinds are an error; they are never coerced to a default.
func ParseOrderType(s string) (OrderType, error) {
	switch strings.ToUpper(s) {
	case "LIMIT":
		return TypeLimit, nil
	case "MARKET":
		return TypeMarket, nil
	default:
		return 0, fmt.Errorf("%w: unsupported order type %q", ErrInvalidParams, s)
	}
}
