package shared

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var brPrinter = message.NewPrinter(language.BrazilianPortuguese)

// FormatBRL renders a monetary amount with Brazilian locale separators,
// e.g. 1234.5 -> "R$ 1.234,50".
func FormatBRL(v float64) string {
	return brPrinter.Sprintf("R$ %.2f", v)
}

// FormatBRDate renders a date as dd/mm/yyyy.
func FormatBRDate(t time.Time) string {
	return t.Format("02/01/2006")
}
