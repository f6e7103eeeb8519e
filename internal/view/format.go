// Package view holds the UI state that is not tied to any terminal or page:
// which dialog is open and for which entity, how form text becomes model
// values, and pure renderers that turn a collection into display rows.
package view

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultCurrencySuffix is appended to every money amount.
const DefaultCurrencySuffix = " so'm"

// Formatter renders numbers the way the stock sheet shows them: German
// grouping ("7.000", "1.234,5") with at most three fraction digits.
type Formatter struct {
	printer *message.Printer
	Suffix  string
}

func NewFormatter(suffix string) Formatter {
	return Formatter{
		printer: message.NewPrinter(language.German),
		Suffix:  suffix,
	}
}

// DefaultFormatter uses DefaultCurrencySuffix.
func DefaultFormatter() Formatter { return NewFormatter(DefaultCurrencySuffix) }

// Number formats d with German separators.
func (f Formatter) Number(d decimal.Decimal) string {
	if f.printer == nil {
		f.printer = message.NewPrinter(language.German)
	}
	return f.printer.Sprint(number.Decimal(d.InexactFloat64(), number.MaxFractionDigits(3)))
}

// Money formats d as a currency amount.
func (f Formatter) Money(d decimal.Decimal) string {
	return f.Number(d) + f.Suffix
}

// Plain prints d as typed, without grouping ("0.15", "7").
func Plain(d decimal.Decimal) string {
	return d.String()
}
