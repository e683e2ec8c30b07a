package mask

import (
	"strings"

	"comanda/internal/core"
)

const (
	// ClassMoney marks fields that get the full mask with thousands grouping.
	ClassMoney = "money-mask"
	// ClassSimpleMoney marks fields that only get digit/comma cleanup.
	ClassSimpleMoney = "simple-money-mask"
	// PriceFieldName selects the product price field.
	PriceFieldName = "price"
	// DisplaySuffix is appended to a price field's name once its canonical
	// value moves into a hidden sibling.
	DisplaySuffix = "_display"

	zeroDisplay = "0,00"
)

// Mask reformats a field on input and blur events.
type Mask interface {
	Input(f *Field)
	Blur(f *Field)
}

// OnInput re-derives the display text from every digit in raw, read as
// centavos: "150" -> "1,50", "100000" -> "1.000,00", "" -> "0,00".
func OnInput(raw string) string {
	return core.FromDigits(raw).Display()
}

// OnBlur clears a zero or empty field and normalizes anything else.
func OnBlur(display string) string {
	if display == "" || display == zeroDisplay {
		return ""
	}
	return core.FromDigits(display).Display()
}

// SimpleInput keeps digits and the first comma, with at most two decimals.
func SimpleInput(raw string) string {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == ',' {
			return r
		}
		return -1
	}, raw)
	whole, frac, found := strings.Cut(cleaned, ",")
	if !found {
		return cleaned
	}
	frac = strings.ReplaceAll(frac, ",", "")
	if len(frac) > 2 {
		frac = frac[:2]
	}
	return whole + "," + frac
}

// PriceInput is OnInput without grouping; an empty buffer stays empty.
func PriceInput(raw string) string {
	if core.Digits(raw) == "" {
		return ""
	}
	return NewPriceValue(raw).Display()
}

// PriceBlur reads the number at the start of display, with a comma or a dot
// as decimal separator and trailing text ignored ("12abc" -> 12,00). ok is
// false when the value is empty or holds no number, in which case the field
// must be left alone.
func PriceBlur(display string) (v PriceValue, ok bool) {
	if display == "" {
		return PriceValue{}, false
	}
	return ParsePriceValue(display)
}

// PriceSubmit rewrites a non-empty price to canonical form. Values holding
// no number are sent as "0.00".
func PriceSubmit(value string) string {
	if value == "" {
		return ""
	}
	v, _ := ParsePriceValue(value)
	return v.Canonical()
}

// MoneyMask is bound to fields marked with ClassMoney.
type MoneyMask struct{}

func (MoneyMask) Input(f *Field) { f.Value = OnInput(f.Value) }
func (MoneyMask) Blur(f *Field)  { f.Value = OnBlur(f.Value) }

// SimpleMoneyMask is bound to fields marked with ClassSimpleMoney.
type SimpleMoneyMask struct{}

func (SimpleMoneyMask) Input(f *Field) { f.Value = SimpleInput(f.Value) }
func (SimpleMoneyMask) Blur(*Field)    {}

// PriceMask is bound to the product price field. On blur it splits the field
// in two: the visible field keeps the display text under "<name>_display"
// and a hidden sibling carries the canonical value under the original name.
type PriceMask struct{}

func (PriceMask) Input(f *Field) { f.Value = PriceInput(f.Value) }

func (PriceMask) Blur(f *Field) {
	v, ok := PriceBlur(f.Value)
	if !ok {
		return
	}
	f.Value = v.Display()
	if f.form == nil {
		return
	}
	hidden := f.form.hiddenSibling(f)
	if hidden == nil {
		hidden = &Field{Name: f.Name, Type: TypeHidden}
		f.Name += DisplaySuffix
		f.form.insertAfter(f, hidden)
	}
	hidden.Value = v.Canonical()
}

// Submit converts the visible value in place right before the form is sent.
func (PriceMask) Submit(f *Field) {
	f.Value = PriceSubmit(f.Value)
}
