package finbook

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Cents is a monetary value in currency minor units. All engine arithmetic is
// carried in integer cents so that repeated rounding cannot drift.
type Cents int64

// DefaultCurrency is the currency used for display formatting. The CLI
// overrides it from configuration at startup.
var DefaultCurrency = money.BRL

// SetCurrency changes the display currency. Unknown codes are ignored.
func SetCurrency(code string) {
	if money.GetCurrency(code) != nil {
		DefaultCurrency = code
	}
}

// CentsOf builds a Cents value from a major-unit decimal, rounding half away
// from zero to the nearest cent.
func CentsOf(d decimal.Decimal) Cents {
	return Cents(d.Shift(2).Round(0).IntPart())
}

// Decimal returns the value as a major-unit decimal.
func (c Cents) Decimal() decimal.Decimal { return decimal.New(int64(c), -2) }

// Abs returns the absolute value.
func (c Cents) Abs() Cents {
	if c < 0 {
		return -c
	}
	return c
}

// String formats the value with the default currency, e.g. "R$1.234,56".
func (c Cents) String() string { return money.New(int64(c), DefaultCurrency).Display() }

// SignedString is like String but prefixes positive values with "+".
func (c Cents) SignedString() string {
	if c > 0 {
		return "+" + c.String()
	}
	return c.String()
}

// ParseAmount parses a bank-statement amount string into unsigned Cents and a
// negative flag. It accepts both "1.234,56" (comma decimal) and "1,234.56"
// (dot decimal) conventions, an optional leading "-", and an optional leading
// currency symbol.
func ParseAmount(s string) (amount Cents, negative bool, err error) {
	t := strings.TrimSpace(s)
	t = strings.TrimPrefix(t, "R$")
	t = strings.TrimPrefix(t, "$")
	t = strings.TrimSpace(t)
	if strings.HasPrefix(t, "-") {
		negative = true
		t = strings.TrimSpace(t[1:])
	} else if strings.HasPrefix(t, "+") {
		t = strings.TrimSpace(t[1:])
	}
	if t == "" {
		return 0, false, fmt.Errorf("invalid amount %q: empty", s)
	}

	t = normalizeSeparators(t)
	d, derr := decimal.NewFromString(t)
	if derr != nil {
		return 0, false, fmt.Errorf("invalid amount %q: %w", s, derr)
	}
	if d.IsNegative() {
		// sign embedded after a symbol, e.g. "R$ -12.00"
		negative = true
		d = d.Neg()
	}
	return CentsOf(d), negative, nil
}

// normalizeSeparators rewrites an amount string to plain dot-decimal form.
// When both "." and "," appear, whichever comes last is the decimal mark.
// A lone separator is a decimal mark unless it is followed by exactly three
// digits and the integer part suggests grouping is impossible to tell apart,
// in which case a comma is read as decimal (the "89,90" case) and a dot as a
// decimal too only when not followed by exactly three digits.
func normalizeSeparators(t string) string {
	lastDot := strings.LastIndex(t, ".")
	lastComma := strings.LastIndex(t, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot { // 1.234,56
			t = strings.ReplaceAll(t, ".", "")
			t = strings.Replace(t, ",", ".", 1)
		} else { // 1,234.56
			t = strings.ReplaceAll(t, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(t, ",") > 1 {
			// 1,234,567 — grouping only
			t = strings.ReplaceAll(t, ",", "")
		} else {
			// a single comma is a decimal mark: "89,90", "1234,5"
			t = strings.Replace(t, ",", ".", 1)
		}
	case lastDot >= 0:
		if strings.Count(t, ".") > 1 {
			// 1.234.567 — grouping only
			t = strings.ReplaceAll(t, ".", "")
		} else if len(t)-lastDot-1 == 3 && lastDot > 0 && len(t) > 4 {
			// "1.234" reads as one thousand two hundred thirty four
			t = strings.ReplaceAll(t, ".", "")
		}
		// otherwise "89.90" or "0.5": already dot-decimal
	}
	return t
}
