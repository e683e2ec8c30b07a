package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentCash   PaymentMethod = "dinheiro"
	PaymentDebit  PaymentMethod = "cartao_debito"
	PaymentCredit PaymentMethod = "cartao_credito"
	PaymentPix    PaymentMethod = "pix"
	PaymentVouch  PaymentMethod = "voucher"
)

const (
	// ServiceFeePercent is the customary table service charge.
	ServiceFeePercent = 10

	maxNoteLength = 500
)

// OpeningFloat is the change left in the till when the day starts.
var OpeningFloat = Money{Cents: 5000}

type (
	PaymentMethod string

	// Sangria is cash taken out of the till.
	Sangria struct {
		ID        int64
		Amount    Money
		Note      string
		CreatedAt time.Time
	}

	// Checkout settles a comanda: total = subtotal + service fee - discount.
	Checkout struct {
		ComandaNumber int
		Subtotal      Money
		ServiceFee    Money
		Discount      Money
		Method        PaymentMethod
		CustomerName  string
		ClosedAt      time.Time
	}

	// CashDrawer is the cash position of the till for one day.
	CashDrawer struct {
		Opening   Money
		Received  Money
		Withdrawn Money
	}
)

var (
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrDiscountTooHigh      = errors.New("discount exceeds subtotal plus service fee")
	ErrComandaClosed        = errors.New("comanda already closed")
	ErrNoteTooLong          = errors.New("note too long (max 500 characters)")
)

// PaymentMethods lists the accepted payment methods in display order.
func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{PaymentCash, PaymentDebit, PaymentCredit, PaymentPix, PaymentVouch}
}

func (p PaymentMethod) Label() string {
	switch p {
	case PaymentCash:
		return "Dinheiro"
	case PaymentDebit:
		return "Cartão de Débito"
	case PaymentCredit:
		return "Cartão de Crédito"
	case PaymentPix:
		return "PIX"
	case PaymentVouch:
		return "Voucher"
	}
	return string(p)
}

func (p PaymentMethod) Validate() error {
	for _, known := range PaymentMethods() {
		if p == known {
			return nil
		}
	}
	return ErrInvalidPaymentMethod
}

func (s Sangria) Validate() error {
	if err := s.Amount.Validate(); err != nil {
		return err
	}
	if len(s.Note) > maxNoteLength {
		return ErrNoteTooLong
	}
	return nil
}

// NewCheckout starts the settlement of c with the suggested service fee.
func NewCheckout(c Comanda) Checkout {
	subtotal := c.Total()
	return Checkout{
		ComandaNumber: c.Number,
		Subtotal:      subtotal,
		ServiceFee:    SuggestedServiceFee(subtotal),
		Method:        PaymentCash,
	}
}

// SuggestedServiceFee is ServiceFeePercent of subtotal, rounded half-up.
func SuggestedServiceFee(subtotal Money) Money {
	fee := subtotal.Decimal().Mul(decimal.NewFromInt(ServiceFeePercent)).Div(decimal.NewFromInt(100))
	return moneyFromDecimal(fee)
}

// Total is subtotal + service fee - discount.
func (c Checkout) Total() Money {
	return c.Subtotal.Add(c.ServiceFee).Sub(c.Discount)
}

func (c Checkout) Validate() error {
	if err := c.Method.Validate(); err != nil {
		return err
	}
	if c.ServiceFee.Cents < 0 || c.Discount.Cents < 0 {
		return ErrInvalidAmount
	}
	if c.Total().Cents < 0 {
		return fmt.Errorf("%w: %s > %s", ErrDiscountTooHigh, c.Discount, c.Subtotal.Add(c.ServiceFee))
	}
	if len(c.CustomerName) > 100 {
		return ErrNameTooLong
	}
	return nil
}

// Available is what can still be withdrawn from the till.
func (d CashDrawer) Available() Money {
	return d.Opening.Add(d.Received).Sub(d.Withdrawn)
}

// SummarizeDrawer builds the drawer for the calendar day of day: the opening
// float plus cash checkouts closed that day, minus that day's sangrias.
func SummarizeDrawer(day time.Time, checkouts []Checkout, sangrias []Sangria) CashDrawer {
	d := CashDrawer{Opening: OpeningFloat}
	for _, c := range checkouts {
		if c.Method == PaymentCash && sameDay(c.ClosedAt, day) {
			d.Received = d.Received.Add(c.Total())
		}
	}
	for _, s := range sangrias {
		if sameDay(s.CreatedAt, day) {
			d.Withdrawn = d.Withdrawn.Add(s.Amount)
		}
	}
	return d
}

// SangriaTotal sums the withdrawn amounts.
func SangriaTotal(sangrias []Sangria) Money {
	var total Money
	for _, s := range sangrias {
		total = total.Add(s.Amount)
	}
	return total
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}
