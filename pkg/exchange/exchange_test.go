package exchange

import (
	"strings"
	"testing"

	"github.com/cockroachdb/apd/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradegate/pkg/core"
)

func decimal(t *testing.T, s string) *apd.Decimal {
	t.Helper()
	d, _, err := apd.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestOrderRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     func() *OrderRequest
		wantErr bool
	}{
		{
			name: "limit",
			req: func() *OrderRequest {
				return &OrderRequest{Symbol: "BTCUSDT", Side: core.SideBuy, Type: core.TypeLimit, Price: decimal(t, "10000"), Quantity: *decimal(t, "0.01")}
			},
		},
		{
			name: "market_without_price",
			req: func() *OrderRequest {
				return &OrderRequest{Symbol: "BTC-USDT", Side: core.SideSell, Type: core.TypeMarket, Quantity: *decimal(t, "0.5")}
			},
		},
		{
			name: "limit_without_price",
			req: func() *OrderRequest {
				return &OrderRequest{Symbol: "BTCUSDT", Side: core.SideBuy, Type: core.TypeLimit, Quantity: *decimal(t, "1")}
			},
			wantErr: true,
		},
		{
			name: "zero_quantity",
			req: func() *OrderRequest {
				return &OrderRequest{Symbol: "BTCUSDT", Side: core.SideBuy, Type: core.TypeMarket}
			},
			wantErr: true,
		},
		{
			name: "missing_symbol",
			req: func() *OrderRequest {
				return &OrderRequest{Side: core.SideBuy, Type: core.TypeMarket, Quantity: *decimal(t, "1")}
			},
			wantErr: true,
		},
		{
			name: "unsupported_type",
			req: func() *OrderRequest {
				return &OrderRequest{Symbol: "BTCUSDT", Side: core.SideBuy, Type: core.OrderType(7), Quantity: *decimal(t, "1")}
			},
			wantErr: true,
		},
		{
			name: "bad_client_order_id",
			req: func() *OrderRequest {
				return &OrderRequest{Symbol: "BTCUSDT", Side: core.SideBuy, Type: core.TypeMarket, Quantity: *decimal(t, "1"), ClientOrderID: "a-b"}
			},
			wantErr: true,
		},
		{
			name:    "nil",
			req:     func() *OrderRequest { return nil },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req().Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, core.ErrInvalidParams)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestLookupValidation(t *testing.T) {
	assert.NoError(t, (&CancelRequest{Symbol: "BTCUSDT", OrderID: "1"}).Validate())
	assert.NoError(t, (&OrderQuery{Symbol: "BTCUSDT", ClientOrderID: "c1"}).Validate())
	assert.ErrorIs(t, (&CancelRequest{Symbol: "BTCUSDT"}).Validate(), core.ErrInvalidParams)
	assert.ErrorIs(t, (&OrderQuery{OrderID: "1"}).Validate(), core.ErrInvalidParams)

	var nilCancel *CancelRequest
	assert.ErrorIs(t, nilCancel.Validate(), core.ErrInvalidParams)
}

func TestDepthLevel(t *testing.T) {
	levels := []int{5, 10, 20}
	tests := []struct {
		name    string
		depth   int
		levels  []int
		want    int
		wantErr bool
	}{
		{"exact", 10, levels, 10, false},
		{"rounds_up", 7, levels, 10, false},
		{"smallest", 1, levels, 5, false},
		{"max", 20, levels, 20, false},
		{"above_max", 21, levels, 0, true},
		{"zero", 0, levels, 0, true},
		{"negative", -5, levels, 0, true},
		{"free_range", 137, []int{200}, 137, false},
		{"free_range_above", 201, []int{200}, 0, true},
		{"no_levels", 1, nil, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DepthLevel(tt.depth, tt.levels)
			if tt.wantErr {
				assert.ErrorIs(t, err, core.ErrInvalidParams)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateBatch(t *testing.T) {
	ids := make([]string, 11)
	for i := range ids {
		ids[i] = strings.Repeat("1", i+1)
	}

	assert.NoError(t, ValidateBatch("BTCUSDT", ids[:10], 10))
	assert.ErrorIs(t, ValidateBatch("BTCUSDT", ids, 10), core.ErrInvalidParams)
	assert.ErrorIs(t, ValidateBatch("BTCUSDT", nil, 10), core.ErrInvalidParams)
	assert.ErrorIs(t, ValidateBatch("", ids[:1], 10), core.ErrInvalidParams)
	assert.ErrorIs(t, ValidateBatch("BTCUSDT", []string{"1", ""}, 10), core.ErrInvalidParams)
}

func TestApplyOptions(t *testing.T) {
	assert.Equal(t, 0, ApplyOptions().Limit)
	assert.Equal(t, 50, ApplyOptions(WithLimit(10), WithLimit(50)).Limit)
}
