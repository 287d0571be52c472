package money

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Amount
		wantErr bool
	}{
		{"300", 30000, false},
		{"300.5", 30050, false},
		{"300.05", 30005, false},
		{"0", 0, false},
		{"-12.30", -1230, false},
		{"", 0, true},
		{"1.234", 0, true},
		{"abc", 0, true},
		{"10.", 0, true},
		{".5", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestArithmeticHasNoDrift(t *testing.T) {
	// 0.1 + 0.2 style sums stay exact in minor units.
	a, _ := Parse("0.10")
	b, _ := Parse("0.20")
	assert.Equal(t, "0.30", a.Add(b).Decimal())

	assert.Equal(t, FromMajor(1100), FromMajor(300).Mul(2).Add(FromMajor(500)))
}

func TestOverflowIsReportedNotWrapped(t *testing.T) {
	price := FromMajor(5000)

	_, err := price.CheckedMul(1 << 45)
	assert.ErrorIs(t, err, ErrOverflow)
	assert.Equal(t, MaxAmount, price.Mul(1<<45))

	_, err = MaxAmount.CheckedAdd(1)
	assert.ErrorIs(t, err, ErrOverflow)
	assert.Equal(t, MaxAmount, MaxAmount.Add(FromMajor(300)))

	got, err := price.CheckedMul(10)
	require.NoError(t, err)
	assert.Equal(t, FromMajor(50000), got)

	got, err = FromMajor(300).CheckedAdd(FromMajor(-500))
	require.NoError(t, err)
	assert.Equal(t, FromMajor(-200), got)
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "1,100.00", FromMajor(1100).String())
	assert.Equal(t, "KES 1,100", FromMajor(1100).Format("KES"))
	assert.Equal(t, "KES 5,000,000", FromMajor(5000000).Format("KES"))
	assert.Equal(t, "KES 300.50", Amount(30050).Format("KES"))
	assert.Equal(t, "999", FromMajor(999).Format(""))
	assert.Equal(t, "-1,000.00", FromMajor(-1000).String())
}

func TestJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		Total Amount `json:"total"`
	}{Total: FromMajor(1100)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"total": 1100.00}`, string(data))

	var decoded struct {
		Price Amount `json:"price"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"price": 2000.5}`), &decoded))
	assert.Equal(t, Amount(200050), decoded.Price)

	require.NoError(t, json.Unmarshal([]byte(`{"price": "500"}`), &decoded))
	assert.Equal(t, FromMajor(500), decoded.Price)
}
