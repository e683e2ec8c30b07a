package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"comanda/internal/core"
	applog "comanda/internal/log"
	"comanda/internal/mask"
	"comanda/internal/store"
)

const (
	fieldSangriaAmount = "valor"
	fieldServiceFee    = "taxa_servico"
	fieldDiscount      = "desconto"
)

type sangriaRow struct {
	ID     int64
	Amount string
	Note   string
	When   string
}

type sangriaFormView struct {
	Amount *mask.Field
	Note   string
	Error  string
}

type sangriasView struct {
	Form      sangriaFormView
	Rows      []sangriaRow
	Total     string
	Opening   string
	Received  string
	Withdrawn string
	Available string
}

type checkoutItemRow struct {
	Quantity int
	Name     string
	Unit     string
	Subtotal string
}

type paymentOption struct {
	Value    string
	Label    string
	Selected bool
}

type checkoutView struct {
	Number       int
	Label        string
	Mesa         string
	Cliente      string
	Items        []checkoutItemRow
	Subtotal     string
	FeeHint      string
	ServiceFee   *mask.Field
	Discount     *mask.Field
	Methods      []paymentOption
	CustomerName string
	Total        string
	Error        string
}

// handleSangrias lists today's withdrawals on GET and records one on POST.
func (s *Server) handleSangrias(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listSangrias(w, r)
	case http.MethodPost:
		s.createSangria(w, r)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

func (s *Server) listSangrias(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sangrias, err := s.store.ListSangrias(ctx)
	if err != nil {
		s.slogger.LogError(r.Context(), "List sangrias failed", err, applog.ComponentStorage, applog.OpList, nil)
		InternalServerError("Erro ao carregar as sangrias").Write(w)
		return
	}
	checkouts, err := s.store.ListCheckouts(ctx)
	if err != nil {
		s.slogger.LogError(r.Context(), "List checkouts failed", err, applog.ComponentStorage, applog.OpList, nil)
		InternalServerError("Erro ao carregar o caixa").Write(w)
		return
	}

	today := time.Now()
	drawer := core.SummarizeDrawer(today, checkouts, sangrias)
	view := sangriasView{
		Form:      newSangriaFormView(SangriaInput{}, ""),
		Opening:   drawer.Opening.Currency(),
		Received:  drawer.Received.Currency(),
		Withdrawn: drawer.Withdrawn.Currency(),
		Available: drawer.Available().Currency(),
	}
	var listed []core.Sangria
	for _, sg := range sangrias {
		y, m, d := sg.CreatedAt.Date()
		if ty, tm, td := today.Date(); y != ty || m != tm || d != td {
			continue
		}
		listed = append(listed, sg)
		view.Rows = append(view.Rows, sangriaRow{
			ID:     sg.ID,
			Amount: sg.Amount.Currency(),
			Note:   sg.Note,
			When:   sg.CreatedAt.Format("02/01/2006 15:04"),
		})
	}
	view.Total = core.SangriaTotal(listed).Currency()
	s.render(w, r, "sangrias_page", view)
}

func (s *Server) createSangria(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	in, err := ParseSangriaForm(r.PostForm)
	if err == nil {
		err = in.Sangria().Validate()
	}
	if err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Sangria rejected",
			applog.FieldError, err.Error(), applog.FieldOperation, applog.OpValidate)
		msg := sangriaMessage(err)
		s.writeFragment(w, r, http.StatusUnprocessableEntity, "sangria_form", newSangriaFormView(in, msg), msg)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	sg, err := s.store.CreateSangria(ctx, in.Sangria())
	if err != nil {
		s.slogger.LogError(r.Context(), "Create sangria failed", err, applog.ComponentStorage, applog.OpCreate,
			applog.NewFields().WithSangria(in.Sangria()))
		InternalServerError("Erro ao registrar a sangria").Write(w)
		return
	}
	s.slogger.LogSangriaCreated(r.Context(), sg)

	NewHTMXResponse().
		TriggerSangriaCreated(sg.ID, sg.Amount.Canonical()).
		TriggerFormReset().
		TriggerSuccessNotification("Sangria registrada com sucesso").
		BodyHTML(fmt.Sprintf(`<div class="success">Sangria #%d registrada: %s</div>`, sg.ID, escape(sg.Amount.Currency()))).
		Write(w)
}

// handleCheckout shows the settlement form of a comanda on GET and closes
// the comanda on POST.
func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(r.PathValue("number"))
	if err != nil || number < 1 {
		NotFoundError("Comanda não encontrada").Write(w)
		return
	}
	switch r.Method {
	case http.MethodGet:
		s.showCheckout(w, r, number)
	case http.MethodPost:
		s.closeComanda(w, r, number)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

func (s *Server) showCheckout(w http.ResponseWriter, r *http.Request, number int) {
	c, ok := s.loadOpenComanda(w, r, number)
	if !ok {
		return
	}
	co := core.NewCheckout(c)
	in := CheckoutInput{ServiceFeeText: co.ServiceFee.Plain(), Method: co.Method}
	s.render(w, r, "checkout_page", newCheckoutView(c, in, co, ""))
}

func (s *Server) closeComanda(w http.ResponseWriter, r *http.Request, number int) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	c, ok := s.loadOpenComanda(w, r, number)
	if !ok {
		return
	}

	in, err := ParseCheckoutForm(r.PostForm)
	co := in.Checkout(c)
	if err == nil {
		err = co.Validate()
	}
	if err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Checkout rejected",
			applog.FieldError, err.Error(), applog.FieldComanda, number, applog.FieldOperation, applog.OpValidate)
		msg := checkoutMessage(err)
		s.writeFragment(w, r, http.StatusUnprocessableEntity, "checkout_form", newCheckoutView(c, in, co, msg), msg)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	closed, err := s.store.CloseComanda(ctx, co)
	switch {
	case errors.Is(err, store.ErrNotFound):
		NotFoundError("Comanda não encontrada").Write(w)
		return
	case errors.Is(err, core.ErrComandaClosed):
		ConflictError("Comanda já fechada").Write(w)
		return
	case err != nil:
		s.slogger.LogError(r.Context(), "Close comanda failed", err, applog.ComponentStorage, applog.OpClose,
			applog.NewFields().WithCheckout(co))
		InternalServerError("Erro ao fechar a comanda").Write(w)
		return
	}
	if s.searchCache != nil {
		s.searchCache.Purge()
	}
	s.slogger.LogComandaClosed(r.Context(), closed)

	NewHTMXResponse().
		TriggerComandaClosed(closed.ComandaNumber, closed.Total().Canonical()).
		TriggerSuccessNotification("Comanda fechada").
		BodyHTML(fmt.Sprintf(`<div class="success">Comanda #%d fechada: total %s (%s)</div>`,
			closed.ComandaNumber, escape(closed.Total().Currency()), escape(closed.Method.Label()))).
		Write(w)
}

// loadOpenComanda fetches a comanda that can still be settled, answering
// 404, 409 or 500 otherwise.
func (s *Server) loadOpenComanda(w http.ResponseWriter, r *http.Request, number int) (core.Comanda, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	c, err := s.store.GetComanda(ctx, number)
	switch {
	case errors.Is(err, store.ErrNotFound):
		NotFoundError("Comanda não encontrada").Write(w)
		return core.Comanda{}, false
	case err != nil:
		s.slogger.LogError(r.Context(), "Get comanda failed", err, applog.ComponentStorage, applog.OpRead, nil)
		InternalServerError("Erro ao carregar a comanda").Write(w)
		return core.Comanda{}, false
	case c.Status == core.StatusClosed:
		ConflictError("Comanda já fechada").Write(w)
		return core.Comanda{}, false
	}
	return c, true
}

// newSangriaFormView builds the amount field with the full money mask. A
// parsed amount is shown in display form; other typed text is run through
// the mask again.
func newSangriaFormView(in SangriaInput, msg string) sangriaFormView {
	form := mask.NewForm()
	amount := form.Add("sangria", &mask.Field{Name: fieldSangriaAmount, Classes: []string{mask.ClassMoney}})
	switch {
	case !in.Amount.IsZero():
		amount.Value = in.Amount.Display()
	case in.AmountText != "":
		mask.Init(form).For(fieldSangriaAmount).Input(in.AmountText)
	}
	return sangriaFormView{Amount: amount, Note: in.Note, Error: msg}
}

func newCheckoutView(c core.Comanda, in CheckoutInput, co core.Checkout, msg string) checkoutView {
	form := mask.NewForm()
	fee := form.Add("checkout", &mask.Field{Name: fieldServiceFee, Classes: []string{mask.ClassSimpleMoney}})
	discount := form.Add("checkout", &mask.Field{Name: fieldDiscount, Classes: []string{mask.ClassSimpleMoney}})
	bindings := mask.Init(form)
	bindings.For(fieldServiceFee).Input(in.ServiceFeeText)
	bindings.For(fieldDiscount).Input(in.DiscountText)

	v := checkoutView{
		Number:       c.Number,
		Label:        c.Label(),
		Mesa:         c.Mesa,
		Cliente:      c.Cliente,
		Subtotal:     co.Subtotal.Currency(),
		FeeHint:      fmt.Sprintf("%d%% = %s", core.ServiceFeePercent, core.SuggestedServiceFee(co.Subtotal).Currency()),
		ServiceFee:   fee,
		Discount:     discount,
		CustomerName: in.CustomerName,
		Total:        co.Total().Currency(),
		Error:        msg,
	}
	for _, item := range c.Items {
		v.Items = append(v.Items, checkoutItemRow{
			Quantity: item.Quantity,
			Name:     item.Name,
			Unit:     item.UnitPrice.Currency(),
			Subtotal: item.Subtotal().Currency(),
		})
	}
	for _, m := range core.PaymentMethods() {
		v.Methods = append(v.Methods, paymentOption{Value: string(m), Label: m.Label(), Selected: m == in.Method})
	}
	return v
}

func sangriaMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrMissingAmount):
		return "Valor é obrigatório"
	case errors.Is(err, core.ErrInvalidAmount):
		return "Valor deve ser maior que zero"
	case errors.Is(err, core.ErrNoteTooLong):
		return "Observação muito longa (máximo 500 caracteres)"
	}
	return "Valor inválido"
}

func checkoutMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidAmount):
		return "Valor inválido na taxa de serviço ou no desconto"
	case errors.Is(err, core.ErrDiscountTooHigh):
		return "Desconto maior que o total da comanda"
	case errors.Is(err, core.ErrInvalidPaymentMethod):
		return "Escolha a forma de pagamento"
	case errors.Is(err, core.ErrNameTooLong):
		return "Nome do cliente muito longo (máximo 100 caracteres)"
	}
	return "Dados inválidos"
}
