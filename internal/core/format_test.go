package core

import (
	"math"
	"testing"
)

func TestFormatterCurrency(t *testing.T) {
	f := NewFormatter("RWF", "en")
	cases := []struct {
		in   float64
		want string
	}{
		{0, "RWF 0"},
		{12, "RWF 12"},
		{1234, "RWF 1,234"},
		{1234567.6, "RWF 1,234,568"},
		{-300, "-RWF 300"},
		{0.4, "RWF 0"},
		{math.NaN(), "RWF 0"},
	}
	for _, tc := range cases {
		if got := f.Currency(tc.in); got != tc.want {
			t.Errorf("Currency(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatterCurrencyLocalSymbol(t *testing.T) {
	f := NewFormatter("RWF", "en-RW")
	cases := []struct {
		in   float64
		want string
	}{
		{12500, "RF 12,500"},
		{-12500.6, "-RF 12,501"},
		{0, "RF 0"},
	}
	for _, tc := range cases {
		if got := f.Currency(tc.in); got != tc.want {
			t.Errorf("Currency(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
	if got := NewFormatter(DefaultCurrency, DefaultLocale).Currency(1500); got != "RF 1,500" {
		t.Fatalf("default formatter = %q", got)
	}
}

func TestFormatterCurrencyOfNil(t *testing.T) {
	f := NewFormatter(DefaultCurrency, DefaultLocale)
	if got, want := f.CurrencyOf(nil), f.Currency(0); got != want {
		t.Fatalf("CurrencyOf(nil) = %q, want %q", got, want)
	}
	v := 42.0
	if got, want := f.CurrencyOf(&v), f.Currency(42); got != want {
		t.Fatalf("CurrencyOf(&42) = %q, want %q", got, want)
	}
}

func TestFormatterCurrencyFallback(t *testing.T) {
	f := NewFormatter("XYZQ", "en")
	if got := f.Currency(1234.4); got != "XYZQ 1234" {
		t.Fatalf("fallback = %q", got)
	}
	if got := f.Currency(math.NaN()); got != "XYZQ 0" {
		t.Fatalf("fallback NaN = %q", got)
	}
	ok := NewFormatter("RWF", "en")
	if got := ok.Currency(math.Inf(1)); got != "RWF +Inf" {
		t.Fatalf("Inf = %q", got)
	}
}

func TestFormatterUnknownLocale(t *testing.T) {
	f := NewFormatter("RWF", "not a locale!!")
	if got := f.Currency(5); got != "RWF 5" {
		t.Fatalf("Currency with bad locale = %q", got)
	}
}

func TestFormatterDate(t *testing.T) {
	f := NewFormatter(DefaultCurrency, DefaultLocale)
	cases := []struct {
		in, want string
	}{
		{"2024-03-05T14:22:10", "Mar 5, 2024"},
		{"2024-03-05T14:22:10.123456", "Mar 5, 2024"},
		{"2024-03-05 14:22:10", "Mar 5, 2024"},
		{"2024-12-31", "Dec 31, 2024"},
		{"2024-01-09T08:00:00Z", "Jan 9, 2024"},
		{"Tue, 05 Mar 2024 14:22:10 GMT", "Mar 5, 2024"},
		{"2024/01/05", "Jan 5, 2024"},
		{"2024/1/5 09:30:00", "Jan 5, 2024"},
		{"01/05/2024", "Jan 5, 2024"},
		{"invalid", "invalid"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := f.Date(tc.in); got != tc.want {
			t.Errorf("Date(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
