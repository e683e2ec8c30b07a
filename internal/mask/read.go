package mask

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"comanda/internal/core"
)

var ErrMissingPrice = errors.New("missing price")

// PriceValue carries both encodings of a masked price. The display text is
// what the visible field shows; the canonical text is what gets submitted.
type PriceValue struct {
	Amount core.Money
}

// NewPriceValue reads the digits typed so far as centavos.
func NewPriceValue(raw string) PriceValue {
	return PriceValue{Amount: core.FromDigits(raw)}
}

// ParsePriceValue reads a price the way the field holds it after a blur:
// the leading number, comma or dot as decimal separator.
func ParsePriceValue(s string) (PriceValue, bool) {
	m, ok := core.ParseLeadingAmount(s)
	return PriceValue{Amount: m}, ok
}

func (p PriceValue) Display() string   { return p.Amount.Plain() }
func (p PriceValue) Canonical() string { return p.Amount.Canonical() }

// ReadPrice extracts a price submitted by a masked form. It accepts, in order
// of preference, the canonical value under name (as produced by the hidden
// sibling or the submit rewrite), a display value under name, or a display
// value under name+DisplaySuffix when the canonical field is absent.
func ReadPrice(values url.Values, name string) (PriceValue, error) {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		raw = strings.TrimSpace(values.Get(name + DisplaySuffix))
	}
	if raw == "" {
		return PriceValue{}, ErrMissingPrice
	}
	cents, err := core.ParseDecimalToCents(stripGrouping(raw))
	if err != nil {
		return PriceValue{}, fmt.Errorf("read %s %q: %w", name, raw, err)
	}
	return PriceValue{Amount: core.FromCents(cents)}, nil
}

// ReadAmount extracts an optional amount typed into a money-mask or
// simple-money-mask field. An empty field is zero.
func ReadAmount(values url.Values, name string) (core.Money, error) {
	raw := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(values.Get(name)), core.CurrencySymbol))
	if raw == "" {
		return core.Money{}, nil
	}
	cents, err := core.ParseDecimalToCents(stripGrouping(raw))
	if err != nil {
		return core.Money{}, fmt.Errorf("read %s %q: %w", name, raw, err)
	}
	return core.FromCents(cents), nil
}

// stripGrouping removes thousands dots from a comma-decimal value.
// Canonical values have no comma and are returned untouched.
func stripGrouping(s string) string {
	if !strings.Contains(s, ",") {
		return s
	}
	return strings.ReplaceAll(s, ".", "")
}
