package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	Bebidas  Category = "bebidas"
	Salgados Category = "salgados"
	Doces    Category = "doces"
	Lanches  Category = "lanches"
	Outros   Category = "outros"
)

const (
	StatusPreparing ComandaStatus = "preparing"
	StatusReady     ComandaStatus = "ready"
	StatusClosed    ComandaStatus = "closed"
)

type (
	Category string

	ComandaStatus string

	Product struct {
		ID          int64
		Name        string
		Description string
		Category    Category
		Price       Money
		ShowInMenu  bool
	}

	ComboItem struct {
		Product    Product
		Quantity   int
		ComboPrice Money // price of one unit inside the combo
	}

	Combo struct {
		ID          int64
		Name        string
		Description string
		ShowInMenu  bool
		Items       []ComboItem
	}

	ComandaItem struct {
		Name      string
		Quantity  int
		UnitPrice Money
	}

	// Comanda is an open order tab for a table or customer.
	Comanda struct {
		Number  int
		Mesa    string
		Cliente string
		Status  ComandaStatus
		Items   []ComandaItem
	}
)

var (
	ErrEmptyName         = errors.New("empty name")
	ErrNameTooLong       = errors.New("name too long (max 100 characters)")
	ErrInvalidCategory   = errors.New("invalid category")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrEmptyCombo        = errors.New("combo needs at least one item")
	ErrComboPriceTooHigh = errors.New("combo price exceeds twice the product price")
)

// Categories lists the menu categories in display order.
func Categories() []Category {
	return []Category{Bebidas, Salgados, Doces, Lanches, Outros}
}

// Label returns the human readable category name.
func (c Category) Label() string {
	switch c {
	case Bebidas:
		return "Bebidas"
	case Salgados:
		return "Salgados"
	case Doces:
		return "Doces"
	case Lanches:
		return "Lanches"
	case Outros:
		return "Outros"
	}
	return string(c)
}

func (c Category) Validate() error {
	for _, known := range Categories() {
		if c == known {
			return nil
		}
	}
	return ErrInvalidCategory
}

func (s ComandaStatus) Validate() error {
	switch s {
	case StatusPreparing, StatusReady, StatusClosed:
		return nil
	}
	return ErrInvalidStatus
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	if len(name) > 100 {
		return ErrNameTooLong
	}
	return nil
}

func (p Product) Validate() error {
	if err := validateName(p.Name); err != nil {
		return err
	}
	if err := p.Category.Validate(); err != nil {
		return err
	}
	return p.Price.Validate()
}

func (ci ComboItem) Validate() error {
	if ci.Quantity < 1 {
		return ErrInvalidQuantity
	}
	if err := ci.ComboPrice.Validate(); err != nil {
		return err
	}
	if ci.ComboPrice.Cents > ci.Product.Price.Cents*2 {
		return fmt.Errorf("%w: %s > 2 x %s", ErrComboPriceTooHigh, ci.ComboPrice, ci.Product.Price)
	}
	return nil
}

// Total is the combo price multiplied by the quantity.
func (ci ComboItem) Total() Money {
	return ci.ComboPrice.Times(ci.Quantity)
}

// OriginalTotal is the regular product price multiplied by the quantity.
func (ci ComboItem) OriginalTotal() Money {
	return ci.Product.Price.Times(ci.Quantity)
}

func (c Combo) Validate() error {
	if err := validateName(c.Name); err != nil {
		return err
	}
	if len(c.Items) == 0 {
		return ErrEmptyCombo
	}
	for i, item := range c.Items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("item %d: %w", i+1, err)
		}
	}
	return nil
}

// TotalPrice sums the combo prices of every item.
func (c Combo) TotalPrice() Money {
	var total Money
	for _, item := range c.Items {
		total = total.Add(item.ComboPrice)
	}
	return total
}

// OriginalPrice sums the regular prices of every product in the combo.
func (c Combo) OriginalPrice() Money {
	var total Money
	for _, item := range c.Items {
		total = total.Add(item.Product.Price)
	}
	return total
}

// DiscountAmount is what the customer saves compared to buying separately.
func (c Combo) DiscountAmount() Money {
	return Money{Cents: c.OriginalPrice().Cents - c.TotalPrice().Cents}
}

// DiscountPercentage returns the discount rounded to two decimals.
func (c Combo) DiscountPercentage() decimal.Decimal {
	original := c.OriginalPrice()
	if original.Cents <= 0 {
		return decimal.Zero
	}
	return c.DiscountAmount().Decimal().
		Div(original.Decimal()).
		Mul(decimal.NewFromInt(100)).
		Round(2)
}

func (ci ComandaItem) Subtotal() Money {
	return ci.UnitPrice.Times(ci.Quantity)
}

func (c Comanda) Validate() error {
	if c.Number < 1 {
		return errors.New("comanda number must be positive")
	}
	if err := c.Status.Validate(); err != nil {
		return err
	}
	for i, item := range c.Items {
		if strings.TrimSpace(item.Name) == "" {
			return fmt.Errorf("item %d: %w", i+1, ErrEmptyName)
		}
		if item.Quantity < 1 {
			return fmt.Errorf("item %d: %w", i+1, ErrInvalidQuantity)
		}
	}
	return nil
}

// Total sums quantity x unit price over every item.
func (c Comanda) Total() Money {
	var total Money
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// ItemNames joins the item names with spaces.
func (c Comanda) ItemNames() string {
	names := make([]string, 0, len(c.Items))
	for _, item := range c.Items {
		names = append(names, item.Name)
	}
	return strings.Join(names, " ")
}

// Label is the "#12" style identifier shown on cards.
func (c Comanda) Label() string {
	return "#" + strconv.Itoa(c.Number)
}
