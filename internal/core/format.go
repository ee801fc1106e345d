// Package core provides the dashboard's data types and display formatting.
//
// This file contains the currency and date formatters used by the summary
// cards, the transaction table and chart axes.
package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	DefaultCurrency = "RWF"
	DefaultLocale   = "en-RW"

	displayDateLayout = "Jan 2, 2006"
)

// Accepted input layouts for transaction timestamps, most specific first.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006/1/2 15:04:05",
	"2006/1/2",
	"1/2/2006",
	time.RFC1123,
	time.RFC1123Z,
}

// Formatter renders amounts and dates for display. It never fails: bad input
// degrades to a plain but valid string.
type Formatter struct {
	code    string
	unit    currency.Unit
	unitErr error
	printer *message.Printer
}

// NewFormatter builds a formatter for an ISO 4217 currency code and a BCP 47 locale.
// An unknown locale falls back to English; an unknown currency makes every
// amount use the plain "<CODE> <integer>" form.
func NewFormatter(code, locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	unit, unitErr := currency.ParseISO(code)
	return &Formatter{
		code:    strings.ToUpper(strings.TrimSpace(code)),
		unit:    unit,
		unitErr: unitErr,
		printer: message.NewPrinter(tag),
	}
}

// Code returns the currency code the formatter was built with.
func (f *Formatter) Code() string {
	return f.code
}

// Currency formats amount with the locale's currency symbol and no decimals,
// e.g. "RF 12,500" or "-RF 300" for en-RW.
// NaN is treated as zero.
func (f *Formatter) Currency(amount float64) (out string) {
	if math.IsNaN(amount) {
		amount = 0
	}
	defer func() {
		if r := recover(); r != nil {
			out = f.fallback(amount)
		}
	}()

	formatted, err := f.localized(amount)
	if err != nil {
		return f.fallback(amount)
	}
	return formatted
}

// CurrencyOf formats an optional amount; nil renders as zero.
func (f *Formatter) CurrencyOf(amount *float64) string {
	if amount == nil {
		return f.Currency(0)
	}
	return f.Currency(*amount)
}

func (f *Formatter) localized(amount float64) (string, error) {
	if f.unitErr != nil {
		return "", fmt.Errorf("currency %q: %w", f.code, f.unitErr)
	}
	if math.IsInf(amount, 0) || math.Abs(amount) >= math.MaxInt64 {
		return "", fmt.Errorf("amount %v out of range", amount)
	}
	n := int64(math.Round(amount))
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	return sign + f.printer.Sprint(currency.Symbol(f.unit.Amount(n))), nil
}

func (f *Formatter) fallback(amount float64) string {
	if math.IsNaN(amount) {
		amount = 0
	}
	return f.code + " " + strconv.FormatFloat(amount, 'f', 0, 64)
}

// Date formats a timestamp as "Jan 2, 2006". Input that cannot be parsed is
// returned unchanged.
func (f *Formatter) Date(value string) string {
	t, err := ParseTimestamp(value)
	if err != nil {
		return value
	}
	return t.Format(displayDateLayout)
}

// ParseTimestamp accepts the ISO-like layouts the backend emits.
func ParseTimestamp(value string) (time.Time, error) {
	s := strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", value)
}
