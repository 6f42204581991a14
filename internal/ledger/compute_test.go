package ledger

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeDerivesTotals(t *testing.T) {
	tests := []struct {
		name                                  string
		purchase, ret, rate, vc, prev         string
		wantSell, wantNet, wantTotal, wantVC string
	}{
		{"basic", "10", "2", "5", "3", "7", "8", "40.00", "44.00", "3"},
		{"fractional rate", "10.5", "0.5", "1.25", "0", "0", "10", "12.50", "12.50", "0"},
		{"negative balance", "1", "0", "10", "25", "0", "1", "10.00", "-15.00", "25"},
		{"rounding", "3", "0", "0.333", "0", "0", "3", "1.00", "1.00", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e Entry
			Compute(dec(tt.purchase), dec(tt.ret), dec(tt.rate), dec(tt.vc), dec(tt.prev)).Apply(&e)
			assert.Equal(t, tt.wantSell, e.Sell)
			assert.Equal(t, tt.wantNet, e.NetValue)
			assert.Equal(t, tt.wantTotal, e.Total)
			assert.Equal(t, tt.wantVC, e.VC)
		})
	}
}

func TestNumberAcceptsNumbersAndStrings(t *testing.T) {
	var req struct {
		A Number `json:"a"`
		B Number `json:"b"`
		C Number `json:"c"`
		D Number `json:"d"`
		E Number `json:"e"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":12.50,"b":" 7 ","c":null,"d":true,"e":1e2}`), &req))

	assert.Equal(t, "12.5", req.A.Raw())
	assert.Equal(t, "7", req.B.Raw())
	assert.False(t, req.C.IsSet())
	assert.True(t, req.C.Decimal().IsZero())
	assert.Equal(t, "true", req.D.Raw())
	assert.Equal(t, "100", req.E.Raw())
}
