// Package form validates drafts before they are submitted. Each draft type
// carries its constraint table as `validate` struct tags; violations come back
// as one human-readable message per field.
package form

import (
	"reflect"
	"sort"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Errors maps a field name (its JSON name) to the message shown beside it.
type Errors map[string]string

// Error joins the messages in field order.
func (e Errors) Error() string {
	if len(e) == 0 {
		return "form: no errors"
	}
	fields := e.Fields()
	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, e[f])
	}
	return strings.Join(msgs, "; ")
}

// Fields returns the failing field names sorted.
func (e Errors) Fields() []string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Has reports whether the field failed.
func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

func (e Errors) add(field, msg string) {
	if _, ok := e[field]; ok {
		return
	}
	e[field] = msg
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// Validate checks draft against its constraint table. It returns nil when the
// draft is valid.
func Validate(draft any) Errors {
	err := validate.Struct(draft)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Errors{"": err.Error()}
	}
	out := Errors{}
	for _, fe := range verrs {
		out.add(fe.Field(), message(fe))
	}
	return out
}

func message(fe validator.FieldError) string {
	label := fieldLabel(fe.Field())
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "min":
		if fe.Kind() == reflect.String {
			return label + " must be at least " + fe.Param() + " characters"
		}
		return label + " must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return label + " must be at most " + fe.Param() + " characters"
		}
		return label + " must be at most " + fe.Param()
	case "gt":
		return label + " must be greater than " + fe.Param()
	case "gte":
		return label + " must be " + fe.Param() + " or greater"
	default:
		return label + " is invalid"
	}
}

var labels = map[string]string{
	"name":       "Name",
	"color_id":   "Color",
	"size_id":    "Size",
	"price":      "Price",
	"sale_price": "Sale price",
}

func fieldLabel(field string) string {
	if l, ok := labels[field]; ok {
		return l
	}
	if field == "" {
		return "Value"
	}
	return strings.ToUpper(field[:1]) + strings.ReplaceAll(field[1:], "_", " ")
}
