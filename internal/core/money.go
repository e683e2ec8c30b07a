// Package core provides money parsing and formatting utilities.
//
// Money is kept as an integer number of centavos. Two textual encodings exist
// at the boundaries: the display form used by people ("1.234,56", optionally
// prefixed with "R$") and the canonical form used for transport ("1234.56").
package core

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// CurrencySymbol is the Brazilian Real symbol used in front of display values.
	CurrencySymbol = "R$"

	// MaxDigits bounds the digit buffer a mask interprets as centavos.
	// Digits typed past this limit are dropped.
	MaxDigits = 15

	currencySpace = "\u00a0"
)

// ZeroCurrency is what FormatCurrency yields for missing or non-numeric input.
var ZeroCurrency = CurrencySymbol + currencySpace + "0,00"

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrMissingAmount = errors.New("missing amount")
)

// Money is a non-negative amount of Brazilian Reais stored in centavos.
type Money struct {
	Cents int64
}

// FromCents builds a Money value, clamping negative input to zero.
func FromCents(cents int64) Money {
	if cents < 0 {
		cents = 0
	}
	return Money{Cents: cents}
}

// FromDigits interprets every digit in raw as a count of centavos.
// Non-digit characters are ignored and an empty buffer yields zero.
//
// Examples:
//
//	FromDigits("150")      -> 1,50
//	FromDigits("R$ 1.000") -> 10,00
func FromDigits(raw string) Money {
	digits := strings.TrimLeft(Digits(raw), "0")
	if len(digits) > MaxDigits {
		digits = digits[:MaxDigits]
	}
	if digits == "" {
		return Money{}
	}
	cents, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return Money{}
	}
	return Money{Cents: cents}
}

// Digits strips everything but ASCII digits from s.
func Digits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// IsZero reports whether the amount is R$ 0,00.
func (m Money) IsZero() bool {
	return m.Cents == 0
}

// Add returns the sum of two amounts.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// Sub returns m minus o. The result may be negative.
func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

// Times multiplies the amount by a quantity.
func (m Money) Times(qty int) Money {
	return Money{Cents: m.Cents * int64(qty)}
}

// Decimal returns the exact decimal value of the amount.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Display renders the amount with thousands grouping: "1.234,56".
func (m Money) Display() string {
	return formatCents(m.Cents, true)
}

// Plain renders the amount without grouping: "1234,56".
func (m Money) Plain() string {
	return formatCents(m.Cents, false)
}

// Canonical renders the transport form: "1234.56".
func (m Money) Canonical() string {
	return m.Decimal().StringFixed(2)
}

// Currency renders the amount with the currency symbol: "R$ 1.234,56".
func (m Money) Currency() string {
	return formatCurrencyCents(m.Cents)
}

func (m Money) String() string {
	return m.Currency()
}

// FormatCurrency renders any float as a pt-BR currency string.
// NaN, infinities and values too large to hold in centavos yield ZeroCurrency.
func FormatCurrency(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return ZeroCurrency
	}
	scaled := math.Round(value * 100)
	if math.Abs(scaled) >= math.MaxInt64/2 {
		return ZeroCurrency
	}
	return formatCurrencyCents(int64(scaled))
}

// FormatOptionalCurrency is FormatCurrency for values that may be absent.
func FormatOptionalCurrency(value *float64) string {
	if value == nil {
		return ZeroCurrency
	}
	return FormatCurrency(*value)
}

// ParseFormattedCurrency converts a display string such as "1.234,56" into a
// float. Thousands dots are removed and the first comma becomes the decimal
// point. Empty or unparseable input yields 0.
func ParseFormattedCurrency(display string) float64 {
	if display == "" {
		return 0
	}
	num := numericPrefix(normalizeDisplay(display))
	if num == "" {
		return 0
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil || math.IsNaN(f) {
		return 0
	}
	return f
}

// ParseFormattedCents is the exact counterpart of ParseFormattedCurrency.
// Fractions beyond two digits are rounded half-up; negative or unparseable
// input yields zero.
func ParseFormattedCents(display string) Money {
	num := numericPrefix(normalizeDisplay(display))
	if num == "" {
		return Money{}
	}
	d, err := decimal.NewFromString(num)
	if err != nil || d.IsNegative() || !fitsCents(d) {
		return Money{}
	}
	return moneyFromDecimal(d)
}

// ParseLeadingAmount reads the number at the start of s the way a browser's
// parseFloat does after the first comma becomes a dot: "12,5" -> 12,50,
// "12abc" -> 12,00, "1.234,56" -> 1,23. Thousands dots are not removed.
// ok is false when s holds no leading number or the number is negative.
func ParseLeadingAmount(s string) (m Money, ok bool) {
	num := numericPrefix(strings.Replace(s, ",", ".", 1))
	if num == "" {
		return Money{}, false
	}
	d, err := decimal.NewFromString(num)
	if err != nil || d.IsNegative() || !fitsCents(d) {
		return Money{}, false
	}
	return moneyFromDecimal(d), true
}

// ParseDecimalToCents converts a decimal string to cents with proper rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and performs
// half-up rounding on the third decimal place. Signs, grouping and any other
// characters are rejected. Zero is accepted; use Validate to require a
// positive amount.
//
// Examples:
//
//	ParseDecimalToCents("12.34")  -> 1234, nil
//	ParseDecimalToCents("12,34")  -> 1234, nil
//	ParseDecimalToCents("12.345") -> 1235, nil (rounds up)
//	ParseDecimalToCents("1.2.3")  -> 0, ErrInvalidAmount
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return 0, ErrInvalidAmount
	}
	for _, r := range s {
		if r != '.' && !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	if s == "." {
		return 0, ErrInvalidAmount
	}
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	s = strings.TrimSuffix(s, ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if !fitsCents(d) {
		return 0, ErrInvalidAmount
	}
	return moneyFromDecimal(d).Cents, nil
}

// fitsCents reports whether d scaled to centavos fits in an int64.
func fitsCents(d decimal.Decimal) bool {
	if d.Exponent() > 18 && !d.IsZero() {
		return false
	}
	return d.Abs().LessThan(decimal.New(math.MaxInt64/100, 0))
}

func moneyFromDecimal(d decimal.Decimal) Money {
	return Money{Cents: d.Shift(2).Round(0).IntPart()}
}

// normalizeDisplay drops thousands dots and turns the first comma into a dot.
func normalizeDisplay(s string) string {
	s = strings.ReplaceAll(s, ".", "")
	return strings.Replace(s, ",", ".", 1)
}

// numericPrefix returns the longest leading "[+-]ddd[.ddd][e[+-]ddd]" run of
// s after leading whitespace, mirroring how browsers read a float out of text.
func numericPrefix(s string) string {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := 0
	for end < len(s) && isDigit(s[end]) {
		end++
		digits++
	}
	if end < len(s) && s[end] == '.' {
		frac := end + 1
		for frac < len(s) && isDigit(s[frac]) {
			frac++
		}
		if frac > end+1 {
			digits += frac - end - 1
			end = frac
		}
	}
	if digits == 0 {
		return ""
	}
	if end < len(s) && (s[end] == 'e' || s[end] == 'E') {
		exp := end + 1
		if exp < len(s) && (s[exp] == '+' || s[exp] == '-') {
			exp++
		}
		start := exp
		for exp < len(s) && isDigit(s[exp]) {
			exp++
		}
		if exp > start {
			end = exp
		}
	}
	return s[:end]
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func formatCurrencyCents(cents int64) string {
	if cents < 0 {
		return "-" + CurrencySymbol + currencySpace + formatCents(-cents, true)
	}
	return CurrencySymbol + currencySpace + formatCents(cents, true)
}

func formatCents(cents int64, grouped bool) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	units := cents / 100
	rem := cents % 100
	var whole string
	if grouped {
		whole = groupThousands(units)
	} else {
		whole = strconv.FormatInt(units, 10)
	}
	s := whole + "," + fmt.Sprintf("%02d", rem)
	if neg {
		return "-" + s
	}
	return s
}

// groupThousands inserts pt-BR grouping separators: 1234567 -> "1.234.567".
func groupThousands(n int64) string {
	p := message.NewPrinter(language.BrazilianPortuguese)
	return p.Sprintf("%d", n)
}
