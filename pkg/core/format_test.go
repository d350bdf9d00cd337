package core

import (
	"encoding/json"
	"testing"

	"github.com/cockroachdb/apd/v3"
	"github.com/stretchr/testify/assert"
)

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "BTCUSDT", "BTCUSDT"},
		{"int", 42, "42"},
		{"int64", int64(1546300800000), "1546300800000"},
		{"float_small", 0.00000123, "0.00000123"},
		{"float_large", 1e21, "1000000000000000000000"},
		{"float_integer", 10000.0, "10000"},
		{"decimal_trailing_zeros", *apd.New(1000, -2), "10"},
		{"decimal_pointer", apd.New(1, -2), "0.01"},
		{"decimal_exponent", apd.New(1, 4), "10000"},
		{"decimal_zero", apd.New(0, -8), "0"},
		{"decimal_nil", (*apd.Decimal)(nil), ""},
		{"bool", true, "true"},
		{"json_number", json.Number("123456789012345678"), "123456789012345678"},
		{"strings", []string{"1", "2"}, "1,2"},
		{"stringer", SideSell, "SELL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatValue(tt.in))
		})
	}
}

func TestFormatValue_DecimalFromString(t *testing.T) {
	d, _, err := apd.NewFromString("0.50000")
	assert.NoError(t, err)
	assert.Equal(t, "0.5", FormatValue(d))

	d, _, err = apd.NewFromString("1.2E+3")
	assert.NoError(t, err)
	assert.Equal(t, "1200", FormatValue(d))
}
