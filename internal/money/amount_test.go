package money

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const maxUint256 = "115792089237316195423570985008687907853269984665640564039457584007913129639935"

func TestSplitFee(t *testing.T) {
	cases := []struct {
		name  string
		gross string
		bps   uint64
		fee   string
		net   string
	}{
		{name: "zero amount", gross: "0", bps: 250, fee: "0", net: "0"},
		{name: "zero fee", gross: "1000", bps: 0, fee: "0", net: "1000"},
		{name: "standard fee", gross: "1000", bps: 250, fee: "25", net: "975"},
		{name: "rounds down", gross: "999", bps: 250, fee: "24", net: "975"},
		{name: "dust", gross: "39", bps: 250, fee: "0", net: "39"},
		{name: "full fee", gross: "500", bps: 10000, fee: "500", net: "0"},
		{name: "fee above cap clamps", gross: "500", bps: 20000, fee: "500", net: "0"},
		{name: "max amount", gross: maxUint256, bps: 250, fee: expectedFee(maxUint256, 250), net: expectedNet(maxUint256, 250)},
		{name: "max amount odd bps", gross: maxUint256, bps: 9999, fee: expectedFee(maxUint256, 9999), net: expectedNet(maxUint256, 9999)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fee, net := SplitFee(MustParse(tc.gross), tc.bps)
			assert.Equal(t, tc.fee, fee.String())
			assert.Equal(t, tc.net, net.String())

			sum, overflow := fee.Add(net)
			assert.False(t, overflow)
			assert.Equal(t, tc.gross, sum.String())
		})
	}
}

func TestSplitFeeNeverExceedsGross(t *testing.T) {
	gross := MustParse(maxUint256)
	for bps := uint64(0); bps <= BasisPointsDenominator; bps += 137 {
		fee, net := SplitFee(gross, bps)
		assert.False(t, fee.Gt(gross), "bps %d", bps)
		assert.False(t, net.Gt(gross), "bps %d", bps)
	}
}

func expectedFee(gross string, bps uint64) string {
	g, _ := new(big.Int).SetString(gross, 10)
	fee := new(big.Int).Mul(g, new(big.Int).SetUint64(bps))
	return fee.Div(fee, big.NewInt(BasisPointsDenominator)).String()
}

func expectedNet(gross string, bps uint64) string {
	g, _ := new(big.Int).SetString(gross, 10)
	f, _ := new(big.Int).SetString(expectedFee(gross, bps), 10)
	return g.Sub(g, f).String()
}

func TestAddOverflow(t *testing.T) {
	_, overflow := MustParse(maxUint256).Add(New(1))
	assert.True(t, overflow)

	sum, overflow := New(2).Add(New(3))
	assert.False(t, overflow)
	assert.True(t, sum.Eq(New(5)))
}

func TestSubUnderflow(t *testing.T) {
	_, underflow := New(1).Sub(New(2))
	assert.True(t, underflow)

	diff, underflow := New(10).Sub(New(4))
	assert.False(t, underflow)
	assert.Equal(t, "6", diff.String())
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse("12abc")
	assert.Error(t, err)

	_, err = Parse("-1")
	assert.Error(t, err)

	a, err := Parse("")
	require.NoError(t, err)
	assert.True(t, a.IsZero())
}

func TestScanAndValue(t *testing.T) {
	var a Amount
	require.NoError(t, a.Scan([]byte(maxUint256)))
	assert.Equal(t, maxUint256, a.String())

	v, err := a.Value()
	require.NoError(t, err)
	assert.Equal(t, maxUint256, v)

	require.NoError(t, a.Scan(int64(42)))
	assert.Equal(t, "42", a.String())

	assert.Error(t, a.Scan(int64(-1)))
	assert.Error(t, a.Scan(3.14))

	require.NoError(t, a.Scan(nil))
	assert.True(t, a.IsZero())
}

func TestJSONUsesDecimalString(t *testing.T) {
	raw, err := json.Marshal(struct {
		Amount Amount `json:"amount"`
	}{Amount: New(975)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"975"}`, string(raw))

	var out struct {
		Amount Amount `json:"amount"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"amount":"`+maxUint256+`"}`), &out))
	assert.Equal(t, maxUint256, out.Amount.String())
}

func TestLittleEndian32(t *testing.T) {
	le := New(0x0102).LittleEndian32()
	assert.Equal(t, byte(0x02), le[0])
	assert.Equal(t, byte(0x01), le[1])
	for _, b := range le[2:] {
		assert.Zero(t, b)
	}
}

func TestUint256ReturnsCopy(t *testing.T) {
	a := New(7)
	u := a.Uint256()
	u.Add(u, uint256.NewInt(1))
	assert.Equal(t, "7", a.String())
}
