package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatVND(t *testing.T) {
	cases := []struct {
		in   decimal.Decimal
		want string
	}{
		{decimal.NewFromInt(0), "0 ₫"},
		{decimal.NewFromInt(950), "950 ₫"},
		{decimal.NewFromInt(100000), "100.000 ₫"},
		{decimal.NewFromInt(1250000), "1.250.000 ₫"},
		{decimal.RequireFromString("99999.6"), "100.000 ₫"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatVND(tc.in), "amount %s", tc.in)
	}
}

func TestFormatOptionalVND(t *testing.T) {
	assert.Equal(t, "—", FormatOptionalVND(nil))
	v := decimal.NewFromInt(2000)
	assert.Equal(t, "2.000 ₫", FormatOptionalVND(&v))
}
