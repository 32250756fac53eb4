package form

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVariantCoercesBlankSalePriceToAbsent(t *testing.T) {
	draft, errs := ParseVariant(VariantInput{ColorID: "2", SizeID: "3", Price: "100000", SalePrice: ""})
	require.Nil(t, errs)

	assert.Equal(t, int64(2), draft.ColorID)
	assert.Equal(t, int64(3), draft.SizeID)
	assert.True(t, draft.Price.Equal(decimal.NewFromInt(100000)))
	assert.Nil(t, draft.SalePrice)
}

func TestParseVariantKeepsSalePrice(t *testing.T) {
	draft, errs := ParseVariant(VariantInput{ColorID: "1", SizeID: "1", Price: " 200000 ", SalePrice: "150000.5"})
	require.Nil(t, errs)
	require.NotNil(t, draft.SalePrice)
	assert.Equal(t, "150000.5", draft.SalePrice.String())
}

func TestParseVariantReportsFieldMessages(t *testing.T) {
	cases := []struct {
		name  string
		in    VariantInput
		field string
		want  string
	}{
		{"missing color", VariantInput{SizeID: "1", Price: "1"}, "color_id", "Color is required"},
		{"missing size", VariantInput{ColorID: "1", Price: "1"}, "size_id", "Size is required"},
		{"bad color", VariantInput{ColorID: "x", SizeID: "1", Price: "1"}, "color_id", "Color is invalid"},
		{"missing price", VariantInput{ColorID: "1", SizeID: "1"}, "price", "Price is required"},
		{"non numeric price", VariantInput{ColorID: "1", SizeID: "1", Price: "abc"}, "price", "Price must be a number"},
		{"negative price", VariantInput{ColorID: "1", SizeID: "1", Price: "-1"}, "price", "Price must be 0 or greater"},
		{"non numeric sale", VariantInput{ColorID: "1", SizeID: "1", Price: "1", SalePrice: "?"}, "sale_price", "Sale price must be a number"},
		{"negative sale", VariantInput{ColorID: "1", SizeID: "1", Price: "1", SalePrice: "-5"}, "sale_price", "Sale price must be 0 or greater"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, errs := ParseVariant(tc.in)
			require.NotNil(t, errs)
			assert.Equal(t, tc.want, errs[tc.field])
		})
	}
}

func TestParseVariantAllowsZeroPrice(t *testing.T) {
	draft, errs := ParseVariant(VariantInput{ColorID: "1", SizeID: "2", Price: "0", SalePrice: "0"})
	require.Nil(t, errs)
	require.NotNil(t, draft.SalePrice)
	assert.True(t, draft.SalePrice.IsZero())
}
