// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data.

package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"comanda/internal/core"
	"comanda/internal/mask"
	"comanda/internal/search"
)

// ParseSearchQuery reads the dashboard search box ("q") and status filter
// ("status") from query parameters.
func ParseSearchQuery(query url.Values) search.Query {
	return search.Query{
		Term:   sanitizeInput(query.Get("q")),
		Status: search.ParseStatus(query.Get("status")),
	}.Normalized()
}

// ProductInput is a submitted product form before validation.
type ProductInput struct {
	Name        string
	Description string
	Category    core.Category
	Price       core.Money
	// PriceText is the price as the user sees it, for re-rendering the form.
	PriceText  string
	ShowInMenu bool
}

// ParseProductForm extracts a product from form values. The price follows the
// masked-field convention read by mask.ReadPrice; a missing or malformed price
// is reported as core.ErrInvalidAmount.
func ParseProductForm(form url.Values) (ProductInput, error) {
	in := ProductInput{
		Name:        sanitizeInput(form.Get("name")),
		Description: sanitizeInput(form.Get("description")),
		Category:    core.Category(strings.ToLower(sanitizeInput(form.Get("category")))),
		ShowInMenu:  form.Get("show_in_menu") != "",
	}
	in.PriceText = sanitizeInput(form.Get(mask.PriceFieldName + mask.DisplaySuffix))
	if in.PriceText == "" {
		in.PriceText = sanitizeInput(form.Get(mask.PriceFieldName))
	}

	price, err := mask.ReadPrice(form, mask.PriceFieldName)
	if err != nil {
		if errors.Is(err, mask.ErrMissingPrice) {
			return in, fmt.Errorf("%w: %v", core.ErrInvalidAmount, err)
		}
		return in, err
	}
	in.Price = price.Amount
	return in, nil
}

// Product converts the input into a domain product.
func (in ProductInput) Product() core.Product {
	return core.Product{
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		Price:       in.Price,
		ShowInMenu:  in.ShowInMenu,
	}
}

// SangriaInput is a submitted withdrawal form before validation.
type SangriaInput struct {
	Amount core.Money
	// AmountText is the value as typed into the money-mask field.
	AmountText string
	Note       string
}

// ParseSangriaForm reads "valor" from a money-mask field: the currency
// symbol and thousands dots are dropped and the comma becomes the decimal
// point. An empty value is core.ErrMissingAmount; unparseable text reads as
// zero and is left for Validate to reject.
func ParseSangriaForm(form url.Values) (SangriaInput, error) {
	in := SangriaInput{
		AmountText: sanitizeInput(form.Get("valor")),
		Note:       sanitizeInput(form.Get("observacao")),
	}
	raw := strings.TrimSpace(strings.TrimPrefix(in.AmountText, core.CurrencySymbol))
	if raw == "" {
		return in, core.ErrMissingAmount
	}
	in.Amount = core.ParseFormattedCents(raw)
	return in, nil
}

func (in SangriaInput) Sangria() core.Sangria {
	return core.Sangria{Amount: in.Amount, Note: in.Note}
}

// CheckoutInput is a submitted checkout form. Service fee and discount come
// from simple-money-mask fields and default to zero when left empty.
type CheckoutInput struct {
	ServiceFee     core.Money
	ServiceFeeText string
	Discount       core.Money
	DiscountText   string
	Method         core.PaymentMethod
	CustomerName   string
}

func ParseCheckoutForm(form url.Values) (CheckoutInput, error) {
	in := CheckoutInput{
		ServiceFeeText: sanitizeInput(form.Get("taxa_servico")),
		DiscountText:   sanitizeInput(form.Get("desconto")),
		Method:         core.PaymentMethod(strings.ToLower(sanitizeInput(form.Get("payment_method")))),
		CustomerName:   sanitizeInput(form.Get("customer_name")),
	}
	var err error
	if in.ServiceFee, err = mask.ReadAmount(form, "taxa_servico"); err != nil {
		return in, err
	}
	if in.Discount, err = mask.ReadAmount(form, "desconto"); err != nil {
		return in, err
	}
	return in, nil
}

// Checkout applies the input to the comanda being settled.
func (in CheckoutInput) Checkout(c core.Comanda) core.Checkout {
	return core.Checkout{
		ComandaNumber: c.Number,
		Subtotal:      c.Total(),
		ServiceFee:    in.ServiceFee,
		Discount:      in.Discount,
		Method:        in.Method,
		CustomerName:  in.CustomerName,
	}
}

// RequireMethod returns a 405 response builder unless r uses one of methods.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// ParseFormOrFail parses the request form and returns an error response on failure.
func ParseFormOrFail(r *http.Request) *HTMXResponseBuilder {
	if err := r.ParseForm(); err != nil {
		return BadRequestError("Formato de requisição inválido")
	}
	return nil
}
