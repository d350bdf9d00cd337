package core

import (
	"bytes"
	"encoding/json"
	"slices"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/apd/v3"
)

// Param is a single key/value pair of a request.
type Param struct {
	Key   string
	Value any
}

// Params is an insertion-ordered parameter list. Order is significant for
// venues that sign parameters in the order they were added.
type Params []Param

// Set appends key or, when it already exists, replaces its value in place.
func (p *Params) Set(key string, value any) *Params {
	for i := range *p {
		if (*p)[i].Key == key {
			(*p)[i].Value = value
			return p
		}
	}
	*p = append(*p, Param{Key: key, Value: value})
	return p
}

// Get returns the value stored under key.
func (p Params) Get(key string) (any, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return nil, false
}

// Has reports whether key is present.
func (p Params) Has(key string) bool {
	_, ok := p.Get(key)
	return ok
}

// Del removes key, keeping the order of the remaining entries.
func (p *Params) Del(key string) {
	*p = slices.DeleteFunc(*p, func(kv Param) bool { return kv.Key == key })
}

// Len returns the number of entries.
func (p Params) Len() int {
	return len(p)
}

// Keys returns the keys in their current order.
func (p Params) Keys() []string {
	keys := make([]string, len(p))
	for i, kv := range p {
		keys[i] = kv.Key
	}
	return keys
}

// Clone returns a copy that can be modified independently.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	return slices.Clone(p)
}

// Merge returns the receiver's entries followed by other's. Keys present in
// both keep the receiver's position and take other's value.
func (p Params) Merge(other Params) Params {
	merged := make(Params, 0, len(p)+len(other))
	merged = append(merged, p...)
	for _, kv := range other {
		merged.Set(kv.Key, kv.Value)
	}
	return merged
}

// Sorted returns a copy ordered by key.
func (p Params) Sorted() Params {
	sorted := p.Clone()
	slices.SortStableFunc(sorted, func(a, b Param) int {
		return strings.Compare(a.Key, b.Key)
	})
	return sorted
}

// Encode renders the entries as k=v pairs joined by '&' in their current
// order. Values are formatted with FormatValue and passed through escape when
// it is non-nil.
func (p Params) Encode(escape func(string) string) string {
	var sb strings.Builder
	for i, kv := range p {
		if i > 0 {
			sb.WriteByte('&')
		}
		value := FormatValue(kv.Value)
		if escape != nil {
			value = escape(value)
		}
		sb.WriteString(kv.Key)
		sb.WriteByte('=')
		sb.WriteString(value)
	}
	return sb.String()
}

// MarshalJSON encodes the entries as a JSON object in insertion order.
// Decimal amounts are written as strings, floats as plain numbers.
func (p Params) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, kv := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := sonic.Marshal(kv.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		value, err := marshalValue(kv.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalValue(v any) ([]byte, error) {
	switch val := v.(type) {
	case apd.Decimal, *apd.Decimal:
		return sonic.Marshal(FormatValue(val))
	case float64, float32:
		return []byte(FormatValue(val)), nil
	case json.Number:
		return []byte(val.String()), nil
	default:
		return sonic.Marshal(val)
	}
}

// EncodeBody serializes a request body. Nil and empty bodies encode to an
// empty payload, never to "null" or "{}".
func EncodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case Params:
		if len(b) == 0 {
			return nil, nil
		}
		return b.MarshalJSON()
	case []Params:
		if len(b) == 0 {
			return nil, nil
		}
	case []byte:
		return b, nil
	case string:
		return []byte(b), nil
	}
	return sonic.Marshal(body)
}
