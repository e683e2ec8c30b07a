package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"comanda/internal/core"
	applog "comanda/internal/log"
	"comanda/internal/mask"
)

type productRow struct {
	ID          int64
	Name        string
	Description string
	Price       string
	ShowInMenu  bool
}

type categoryGroup struct {
	Category string
	Label    string
	Products []productRow
}

type categoryOption struct {
	Value    string
	Label    string
	Selected bool
}

type productFormView struct {
	Name        string
	Description string
	Categories  []categoryOption
	PriceFields []*mask.Field
	ShowInMenu  bool
	Error       string
}

type comboItemRow struct {
	Quantity   int
	Name       string
	ComboPrice string
	Regular    string
}

type comboRow struct {
	Name        string
	Description string
	Items       []comboItemRow
	Total       string
	Original    string
	Discount    string
	Percentage  string
}

// handleProducts lists the catalog on GET and creates a product on POST.
func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listProducts(w, r)
	case http.MethodPost:
		s.createProduct(w, r)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	products, err := s.store.ListProducts(ctx)
	if err != nil {
		s.slogger.LogError(r.Context(), "List products failed", err, applog.ComponentStorage, applog.OpList, nil)
		InternalServerError("Erro ao carregar os produtos").Write(w)
		return
	}
	s.render(w, r, "products_page", groupProducts(products))
}

// handleNewProduct renders the product form with a masked price field.
func (s *Server) handleNewProduct(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}
	s.render(w, r, "product_form_page", newProductFormView(ProductInput{Category: core.Outros, ShowInMenu: true}, ""))
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	in, err := ParseProductForm(r.PostForm)
	if err == nil {
		err = in.Product().Validate()
	}
	if err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Product rejected",
			applog.FieldError, err.Error(), applog.FieldOperation, applog.OpValidate)
		s.writeProductForm(w, r, http.StatusUnprocessableEntity, in, validationMessage(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	p, err := s.store.Create(ctx, in.Product())
	if err != nil {
		s.slogger.LogError(r.Context(), "Create product failed", err, applog.ComponentStorage, applog.OpCreate,
			applog.NewFields().WithProduct(in.Product()))
		InternalServerError("Erro ao salvar o produto").Write(w)
		return
	}
	s.slogger.LogProductCreated(r.Context(), p)

	NewHTMXResponse().
		TriggerProductCreated(p.ID, string(p.Category), p.Price.Canonical()).
		TriggerFormReset().
		TriggerSuccessNotification("Produto cadastrado").
		BodyHTML(fmt.Sprintf(`<div class="success">Produto #%d cadastrado: %s (%s) %s</div>`,
			p.ID, escape(p.Name), escape(p.Category.Label()), escape(p.Price.Currency()))).
		Write(w)
}

// writeProductForm answers with the form fragment, keeping what the user typed.
func (s *Server) writeProductForm(w http.ResponseWriter, r *http.Request, status int, in ProductInput, msg string) {
	s.writeFragment(w, r, status, "product_form", newProductFormView(in, msg), msg)
}

// writeFragment renders a named template as the whole response body. When
// templates are unavailable the message alone is sent.
func (s *Server) writeFragment(w http.ResponseWriter, r *http.Request, status int, name string, data any, msg string) {
	if s.templates == nil {
		ErrorResponse(status, msg).Write(w)
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.slogger.LogError(r.Context(), "Template execution failed", err, applog.ComponentHTTP, applog.OpRender, nil)
		ErrorResponse(status, msg).Write(w)
		return
	}
	NewHTMXResponse().Status(status).BodyHTML(buf.String()).Write(w)
}

// handleCombos lists combos with their totals and discounts.
func (s *Server) handleCombos(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	combos, err := s.store.ListCombos(ctx)
	if err != nil {
		s.slogger.LogError(r.Context(), "List combos failed", err, applog.ComponentStorage, applog.OpList, nil)
		InternalServerError("Erro ao carregar os combos").Write(w)
		return
	}
	rows := make([]comboRow, 0, len(combos))
	for _, c := range combos {
		rows = append(rows, newComboRow(c))
	}
	s.render(w, r, "combos_page", rows)
}

// newProductForm builds the price input the way the page ships it: a single
// text field named "price" with the price mask attached. A value typed
// earlier is normalized as a blur would leave it.
func newProductForm(priceText string) *mask.Form {
	form := mask.NewForm()
	price := form.Add("price-group", &mask.Field{Name: mask.PriceFieldName, Step: "0.01"})
	mask.Init(form)
	if priceText != "" {
		price.Value = priceText
		if v, ok := mask.PriceBlur(priceText); ok {
			price.Value = v.Display()
		}
	}
	return form
}

func newProductFormView(in ProductInput, msg string) productFormView {
	v := productFormView{
		Name:        in.Name,
		Description: in.Description,
		PriceFields: newProductForm(in.PriceText).Fields(),
		ShowInMenu:  in.ShowInMenu,
		Error:       msg,
	}
	for _, c := range core.Categories() {
		v.Categories = append(v.Categories, categoryOption{Value: string(c), Label: c.Label(), Selected: c == in.Category})
	}
	return v
}

func groupProducts(products []core.Product) []categoryGroup {
	var groups []categoryGroup
	for _, c := range core.Categories() {
		g := categoryGroup{Category: string(c), Label: c.Label()}
		for _, p := range products {
			if p.Category != c {
				continue
			}
			g.Products = append(g.Products, productRow{
				ID:          p.ID,
				Name:        p.Name,
				Description: p.Description,
				Price:       p.Price.Currency(),
				ShowInMenu:  p.ShowInMenu,
			})
		}
		if len(g.Products) > 0 {
			groups = append(groups, g)
		}
	}
	return groups
}

func newComboRow(c core.Combo) comboRow {
	row := comboRow{
		Name:        c.Name,
		Description: c.Description,
		Total:       c.TotalPrice().Currency(),
		Original:    c.OriginalPrice().Currency(),
		Discount:    c.DiscountAmount().Currency(),
		Percentage:  strings.Replace(c.DiscountPercentage().StringFixed(2), ".", ",", 1) + "%",
	}
	for _, item := range c.Items {
		row.Items = append(row.Items, comboItemRow{
			Quantity:   item.Quantity,
			Name:       item.Product.Name,
			ComboPrice: item.ComboPrice.Currency(),
			Regular:    item.Product.Price.Currency(),
		})
	}
	return row
}

// validationMessage maps domain errors to messages shown next to the form.
func validationMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidAmount):
		return "Preço inválido: informe um valor maior que zero"
	case errors.Is(err, core.ErrEmptyName):
		return "Informe o nome do produto"
	case errors.Is(err, core.ErrNameTooLong):
		return "Nome muito longo (máximo 100 caracteres)"
	case errors.Is(err, core.ErrInvalidCategory):
		return "Categoria inválida"
	}
	return "Dados inválidos"
}
