package catalog

import (
	"github.com/go-faster/errors"
	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// Variant is a purchasable combination of a product, a color and a size.
// The (ColorID, SizeID) pair is fixed once the variant exists.
type Variant struct {
	ID        int64
	ProductID int64
	ColorID   int64
	SizeID    int64
	Price     decimal.Decimal
	SalePrice *decimal.Decimal

	// Denormalized for display; may be nil when the server omits them.
	Color *Color
	Size  *Size
}

// RecordID returns the server-assigned identifier.
func (v Variant) RecordID() int64 { return v.ID }

// Label returns a short "Color / Size" description.
func (v Variant) Label() string {
	return v.ColorName() + " / " + v.SizeName()
}

// ColorName returns the embedded color name or a placeholder.
func (v Variant) ColorName() string {
	if v.Color != nil && v.Color.Name != "" {
		return v.Color.Name
	}
	return "—"
}

// SizeName returns the embedded size name or a placeholder.
func (v Variant) SizeName() string {
	if v.Size != nil && v.Size.Name != "" {
		return v.Size.Name
	}
	return "—"
}

// Draft returns the update body that keeps this variant's identity pair.
func (v Variant) Draft() VariantDraft {
	d := VariantDraft{ColorID: v.ColorID, SizeID: v.SizeID, Price: v.Price}
	if v.SalePrice != nil {
		sale := *v.SalePrice
		d.SalePrice = &sale
	}
	return d
}

type variantWire struct {
	ID        int64        `json:"id"`
	ProductID int64        `json:"product_id"`
	ColorID   int64        `json:"color_id"`
	SizeID    int64        `json:"size_id"`
	Price     json.Number  `json:"price"`
	SalePrice *json.Number `json:"sale_price"`
	Color     *Color       `json:"color,omitempty"`
	Size      *Size        `json:"size,omitempty"`
}

// MarshalJSON writes prices as plain JSON numbers.
func (v Variant) MarshalJSON() ([]byte, error) {
	return json.Marshal(variantWire{
		ID:        v.ID,
		ProductID: v.ProductID,
		ColorID:   v.ColorID,
		SizeID:    v.SizeID,
		Price:     number(v.Price),
		SalePrice: optionalNumber(v.SalePrice),
		Color:     v.Color,
		Size:      v.Size,
	})
}

// UnmarshalJSON accepts prices encoded either as numbers or numeric strings.
func (v *Variant) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        int64            `json:"id"`
		ProductID int64            `json:"product_id"`
		ColorID   int64            `json:"color_id"`
		SizeID    int64            `json:"size_id"`
		Price     decimal.Decimal  `json:"price"`
		SalePrice *decimal.Decimal `json:"sale_price"`
		Color     *Color           `json:"color"`
		Size      *Size            `json:"size"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "decode variant")
	}
	*v = Variant{
		ID:        raw.ID,
		ProductID: raw.ProductID,
		ColorID:   raw.ColorID,
		SizeID:    raw.SizeID,
		Price:     raw.Price,
		SalePrice: raw.SalePrice,
		Color:     raw.Color,
		Size:      raw.Size,
	}
	return nil
}

// VariantDraft is the body of a variant create or update request.
// SalePrice is nil when the sale price is absent; it is sent as null, never 0.
type VariantDraft struct {
	ColorID   int64            `json:"color_id" validate:"required,gt=0"`
	SizeID    int64            `json:"size_id" validate:"required,gt=0"`
	Price     decimal.Decimal  `json:"price" validate:"gte=0"`
	SalePrice *decimal.Decimal `json:"sale_price" validate:"omitempty,gte=0"`
}

type variantDraftWire struct {
	ColorID   int64        `json:"color_id"`
	SizeID    int64        `json:"size_id"`
	Price     json.Number  `json:"price"`
	SalePrice *json.Number `json:"sale_price"`
}

// MarshalJSON writes prices as plain JSON numbers and an absent sale price as null.
func (d VariantDraft) MarshalJSON() ([]byte, error) {
	return json.Marshal(variantDraftWire{
		ColorID:   d.ColorID,
		SizeID:    d.SizeID,
		Price:     number(d.Price),
		SalePrice: optionalNumber(d.SalePrice),
	})
}

// UnmarshalJSON accepts prices encoded either as numbers or numeric strings.
func (d *VariantDraft) UnmarshalJSON(data []byte) error {
	var raw struct {
		ColorID   int64            `json:"color_id"`
		SizeID    int64            `json:"size_id"`
		Price     decimal.Decimal  `json:"price"`
		SalePrice *decimal.Decimal `json:"sale_price"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "decode variant draft")
	}
	*d = VariantDraft(raw)
	return nil
}

// VariantPage is one page of a product's variants. Pages are 1-based.
type VariantPage struct {
	Items       []Variant
	CurrentPage int
	LastPage    int
}

// HasNext reports whether a page follows this one.
func (p VariantPage) HasNext() bool { return p.CurrentPage < p.LastPage }

// HasPrev reports whether a page precedes this one.
func (p VariantPage) HasPrev() bool { return p.CurrentPage > 1 }

func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func optionalNumber(d *decimal.Decimal) *json.Number {
	if d == nil {
		return nil
	}
	n := number(*d)
	return &n
}
