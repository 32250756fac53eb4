package catalog

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	textnumber "golang.org/x/text/number"
)

var vndPrinter = message.NewPrinter(language.Vietnamese)

// FormatVND renders an amount as Vietnamese Dong for display, e.g. "100.000 ₫".
// Dong has no minor unit, so the amount is rounded to a whole number.
func FormatVND(amount decimal.Decimal) string {
	whole := amount.Round(0).IntPart()
	return vndPrinter.Sprintf("%v ₫", textnumber.Decimal(whole))
}

// FormatOptionalVND renders a possibly absent amount; absent renders as "—".
func FormatOptionalVND(amount *decimal.Decimal) string {
	if amount == nil {
		return "—"
	}
	return FormatVND(*amount)
}
