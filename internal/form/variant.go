package form

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kingrea/backoffice/internal/catalog"
)

// VariantInput is the raw state of the variant dialog. Every value is the
// text the user entered or the value of a selector.
type VariantInput struct {
	ColorID   string
	SizeID    string
	Price     string
	SalePrice string
}

// ParseVariant coerces the dialog inputs into a draft and validates it.
// A blank sale price becomes an absent value, never zero.
func ParseVariant(in VariantInput) (catalog.VariantDraft, Errors) {
	var draft catalog.VariantDraft
	errs := Errors{}

	draft.ColorID = parseID(in.ColorID, "color_id", errs)
	draft.SizeID = parseID(in.SizeID, "size_id", errs)

	price := strings.TrimSpace(in.Price)
	if price == "" {
		errs.add("price", "Price is required")
	} else if d, err := decimal.NewFromString(price); err != nil {
		errs.add("price", "Price must be a number")
	} else {
		draft.Price = d
	}

	if sale := strings.TrimSpace(in.SalePrice); sale != "" {
		if d, err := decimal.NewFromString(sale); err != nil {
			errs.add("sale_price", "Sale price must be a number")
		} else {
			draft.SalePrice = &d
		}
	}

	for field, msg := range Validate(draft) {
		errs.add(field, msg)
	}
	if len(errs) == 0 {
		return draft, nil
	}
	return draft, errs
}

func parseID(raw, field string, errs Errors) int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		errs.add(field, fieldLabel(field)+" is invalid")
		return 0
	}
	return id
}
