// Package display formats prediction values for people: thousands grouped with
// a space and a decimal comma, e.g. 1234567.8 -> "1 234 567,80".
package display

import (
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const unavailable = "-"

var (
	printer = message.NewPrinter(language.English)
	// single pass, so "," and "." never see each other's output
	localeSwap = strings.NewReplacer(",", " ", ".", ",")
)

// FormatIncome renders v with two decimals under the local number rule.
func FormatIncome(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return unavailable
	}
	return localeSwap.Replace(printer.Sprintf("%.2f", v))
}

// FormatAmount appends the currency code to FormatIncome.
func FormatAmount(v float64, currency string) string {
	formatted := FormatIncome(v)
	if currency == "" || formatted == unavailable {
		return formatted
	}
	return formatted + " " + currency
}

func FormatProbability(p float64) string {
	return FormatIncome(p)
}

func FormatPercent(p float64) string {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return unavailable
	}
	return localeSwap.Replace(printer.Sprintf("%.0f", p*100)) + "%"
}
