package tools

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var eurPrinter = message.NewPrinter(language.EuropeanPortuguese)

// FormatEUR formata um preço em euros sem casas decimais, com o
// agrupamento de milhares do locale pt-PT (ex: 250 000 €).
func FormatEUR(price float64) string {
	return eurPrinter.Sprintf("%v €", number.Decimal(price, number.MaxFractionDigits(0)))
}
