package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"comanda/internal/cache"
	"comanda/internal/core"
	applog "comanda/internal/log"
	"comanda/internal/mask"
	"comanda/internal/search"
	"comanda/internal/store/memory"
)

func testLogger() *applog.Logger {
	return applog.New(applog.Config{Output: io.Discard})
}

func testStore() *memory.Store {
	suco := core.Product{Name: "Suco", Category: core.Bebidas, Price: core.Money{Cents: 800}, ShowInMenu: true}
	coxinha := core.Product{Name: "Coxinha", Category: core.Salgados, Price: core.Money{Cents: 850}, ShowInMenu: true}
	combos := []core.Combo{{
		Name: "Lanche",
		Items: []core.ComboItem{
			{Product: suco, Quantity: 1, ComboPrice: core.Money{Cents: 600}},
			{Product: coxinha, Quantity: 1, ComboPrice: core.Money{Cents: 700}},
		},
	}}
	comandas := []core.Comanda{
		{Number: 12, Mesa: "4", Cliente: "Ana", Status: core.StatusPreparing,
			Items: []core.ComandaItem{{Name: "Suco", Quantity: 2, UnitPrice: core.Money{Cents: 800}}}},
		{Number: 15, Mesa: "7", Cliente: "Bruno", Status: core.StatusReady,
			Items: []core.ComandaItem{{Name: "Coxinha", Quantity: 1, UnitPrice: core.Money{Cents: 850}}}},
		{Number: 21, Mesa: "2", Cliente: "Diego", Status: core.StatusClosed,
			Items: []core.ComandaItem{{Name: "Suco", Quantity: 1, UnitPrice: core.Money{Cents: 800}}}},
	}
	return memory.New([]core.Product{suco, coxinha}, combos, comandas)
}

func newTestServer(t *testing.T) (*Server, *cache.LRUCache[search.Result]) {
	t.Helper()
	c := cache.NewLRUCache[search.Result](10, time.Minute)
	return NewServer(":0", testStore(), testLogger(), c), c
}

func get(t *testing.T, srv *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func postForm(t *testing.T, srv *Server, target string, values url.Values) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestPagesAndHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		path    string
		want    []string
		notWant []string
	}{
		{path: "/", want: []string{"#12", "Ana", "#15", "R$\u00a024,50", `href="/comandas/12/checkout"`}, notWant: []string{"#21"}},
		{path: "/?status=ready", want: []string{"#15"}, notWant: []string{"#12"}},
		{path: "/products", want: []string{"Bebidas", "Suco", "R$\u00a08,00", "R$\u00a08,50"}},
		{path: "/products/new", want: []string{`name="price"`, `inputmode="decimal"`}, notWant: []string{"step="}},
		{path: "/combos", want: []string{"Lanche", "R$\u00a013,00", "R$\u00a016,50", "21,21%"}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rr := get(t, srv, tt.path)
			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
			}
			if rr.Header().Get("X-Frame-Options") != "DENY" {
				t.Errorf("missing security headers")
			}
			body := rr.Body.String()
			for _, s := range tt.want {
				if !strings.Contains(body, s) {
					t.Errorf("body missing %q", s)
				}
			}
			for _, s := range tt.notWant {
				if strings.Contains(body, s) {
					t.Errorf("body unexpectedly contains %q", s)
				}
			}
		})
	}

	for _, path := range []string{"/healthz", "/readyz"} {
		if rr := get(t, srv, path); rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
	if rr := get(t, srv, "/nope"); rr.Code != http.StatusNotFound {
		t.Fatalf("unknown path status=%d", rr.Code)
	}
}

func TestComandasPartial(t *testing.T) {
	srv, c := newTestServer(t)

	tests := []struct {
		query   string
		want    []string
		notWant []string
		count   string
	}{
		{query: "q=ANA", want: []string{"#12"}, notWant: []string{"#15"}, count: `"count":1`},
		{query: "q=coxinha", want: []string{"#15"}, notWant: []string{"#12"}, count: `"count":1`},
		{query: "q=mesa+99", want: []string{"Nenhuma comanda encontrada"}, count: `"count":0`},
		{query: "status=preparing", want: []string{"#12"}, notWant: []string{"#15"}, count: `"count":1`},
		{query: "", want: []string{"#12", "#15"}, notWant: []string{"#21"}, count: `"count":2`},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rr := get(t, srv, "/ui/comandas?"+tt.query)
			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d", rr.Code)
			}
			trigger := rr.Header().Get("HX-Trigger")
			if !strings.Contains(trigger, `"comandas:filtered"`) || !strings.Contains(trigger, tt.count) {
				t.Errorf("HX-Trigger = %s, want %s", trigger, tt.count)
			}
			body := rr.Body.String()
			for _, s := range tt.want {
				if !strings.Contains(body, s) {
					t.Errorf("body missing %q", s)
				}
			}
			for _, s := range tt.notWant {
				if strings.Contains(body, s) {
					t.Errorf("body unexpectedly contains %q", s)
				}
			}
		})
	}

	if c.Size() != len(tests) {
		t.Errorf("cache size = %d, want %d", c.Size(), len(tests))
	}
	get(t, srv, "/ui/comandas?q=ana")
	if hits, _ := c.Stats(); hits != 1 {
		t.Errorf("cache hits = %d, want 1", hits)
	}
}

func TestCreateProductValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/products", nil))
	if rr.Code != http.StatusMethodNotAllowed || rr.Header().Get("Allow") != "GET, POST" {
		t.Fatalf("PUT: status=%d allow=%q", rr.Code, rr.Header().Get("Allow"))
	}

	tests := []struct {
		name   string
		values url.Values
		want   string
	}{
		{"garbage price", url.Values{"name": {"Pastel"}, "category": {"salgados"}, "price": {"abc"}}, "Preço inválido"},
		{"zero price", url.Values{"name": {"Pastel"}, "category": {"salgados"}, "price": {"0,00"}}, "Preço inválido"},
		{"missing price", url.Values{"name": {"Pastel"}, "category": {"salgados"}}, "Preço inválido"},
		{"missing name", url.Values{"category": {"salgados"}, "price": {"5,00"}}, "Informe o nome"},
		{"bad category", url.Values{"name": {"Pastel"}, "category": {"pizza"}, "price": {"5,00"}}, "Categoria inválida"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := postForm(t, srv, "/products", tt.values)
			if rr.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want 422", rr.Code)
			}
			body := rr.Body.String()
			if !strings.Contains(body, tt.want) || !strings.Contains(body, `id="product-form"`) {
				t.Errorf("body = %s", body)
			}
		})
	}

	// The form is re-rendered with the typed price normalized.
	rr = postForm(t, srv, "/products", url.Values{"category": {"salgados"}, "price": {"5,5"}})
	if !strings.Contains(rr.Body.String(), `value="5,50"`) {
		t.Errorf("re-rendered form lost the price: %s", rr.Body.String())
	}
}

func TestCreateProductFromMaskedForm(t *testing.T) {
	srv, _ := newTestServer(t)

	// What a browser sends after typing into the masked field and leaving it.
	form := mask.NewForm()
	form.Add("main", &mask.Field{Name: "name", Value: "Pastel"})
	form.Add("main", &mask.Field{Name: "category", Value: "salgados"})
	form.Add("price-group", &mask.Field{Name: mask.PriceFieldName, Step: "0.01"})
	price := mask.Init(form).For(mask.PriceFieldName)
	price.Type("123450")
	price.Blur()
	values := form.Submit()

	if values.Get("price") != "1234.50" || values.Get("price_display") != "1234.50" {
		t.Fatalf("submitted values = %v", values)
	}

	rr := postForm(t, srv, "/products", values)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	trigger := rr.Header().Get("HX-Trigger")
	for _, part := range []string{`"product:created"`, `"price":"1234.50"`, `"category":"salgados"`, `"form:reset"`} {
		if !strings.Contains(trigger, part) {
			t.Errorf("HX-Trigger missing %s: %s", part, trigger)
		}
	}
	if !strings.Contains(rr.Body.String(), "Pastel") {
		t.Errorf("success body = %s", rr.Body.String())
	}

	list := get(t, srv, "/products").Body.String()
	if !strings.Contains(list, "R$\u00a01.234,50") {
		t.Errorf("product list missing new price")
	}
}

func TestCreateProductFromDisplayOnlyField(t *testing.T) {
	srv, _ := newTestServer(t)
	rr := postForm(t, srv, "/products", url.Values{
		"name":          {"Pastel"},
		"category":      {"salgados"},
		"price_display": {"1.234,50"},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Header().Get("HX-Trigger"), `"price":"1234.50"`) {
		t.Errorf("HX-Trigger = %s", rr.Header().Get("HX-Trigger"))
	}
}

type failingStore struct{ *memory.Store }

var errDown = errors.New("store down")

func (failingStore) ListComandas(context.Context) ([]core.Comanda, error) { return nil, errDown }
func (failingStore) ListProducts(context.Context) ([]core.Product, error) { return nil, errDown }
func (failingStore) Create(context.Context, core.Product) (core.Product, error) {
	return core.Product{}, errDown
}
func (failingStore) ListSangrias(context.Context) ([]core.Sangria, error) { return nil, errDown }
func (failingStore) GetComanda(context.Context, int) (core.Comanda, error) {
	return core.Comanda{}, errDown
}

func TestStoreFailures(t *testing.T) {
	srv := NewServer(":0", failingStore{testStore()}, testLogger(), nil)

	for _, path := range []string{"/", "/ui/comandas", "/products", "/sangrias", "/comandas/12/checkout"} {
		if rr := get(t, srv, path); rr.Code != http.StatusInternalServerError {
			t.Errorf("%s status = %d, want 500", path, rr.Code)
		}
	}
	if rr := get(t, srv, "/readyz"); rr.Code != http.StatusServiceUnavailable {
		t.Errorf("readyz status = %d, want 503", rr.Code)
	}
	rr := postForm(t, srv, "/products", url.Values{"name": {"Pastel"}, "category": {"salgados"}, "price": {"5.00"}})
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("create status = %d, want 500", rr.Code)
	}
}

func TestMissingTemplates(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.templates = nil

	if rr := get(t, srv, "/"); rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for missing templates, got %d", rr.Code)
	}
	if rr := get(t, srv, "/readyz"); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 for missing templates, got %d", rr.Code)
	}
	// Validation errors still come back as a plain fragment.
	rr := postForm(t, srv, "/products", url.Values{"name": {"Pastel"}, "category": {"salgados"}, "price": {"x"}})
	if rr.Code != http.StatusUnprocessableEntity || !strings.Contains(rr.Body.String(), `class="error"`) {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
}

func TestCleanersIncludeSearchCache(t *testing.T) {
	srv, _ := newTestServer(t)
	if got := len(srv.Cleaners()); got != 2 {
		t.Fatalf("Cleaners() = %d, want 2", got)
	}
	bare := NewServer(":0", testStore(), testLogger(), nil)
	if got := len(bare.Cleaners()); got != 1 {
		t.Fatalf("Cleaners() without cache = %d, want 1", got)
	}
}

func TestSangrias(t *testing.T) {
	srv, _ := newTestServer(t)

	page := get(t, srv, "/sangrias")
	if page.Code != http.StatusOK {
		t.Fatalf("status = %d", page.Code)
	}
	for _, want := range []string{`name="valor"`, `class="money-mask"`, "R$\u00a050,00", "Nenhuma sangria registrada hoje"} {
		if !strings.Contains(page.Body.String(), want) {
			t.Errorf("page missing %q", want)
		}
	}

	rr := postForm(t, srv, "/sangrias", url.Values{"valor": {"R$\u00a01.234,56"}, "observacao": {"Depósito"}})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	trigger := rr.Header().Get("HX-Trigger")
	for _, part := range []string{`"sangria:created"`, `"amount":"1234.56"`, `"form:reset"`} {
		if !strings.Contains(trigger, part) {
			t.Errorf("HX-Trigger missing %s: %s", part, trigger)
		}
	}
	if !strings.Contains(rr.Body.String(), "R$\u00a01.234,56") {
		t.Errorf("success body = %s", rr.Body.String())
	}

	list := get(t, srv, "/sangrias").Body.String()
	for _, want := range []string{"Depósito", "R$\u00a01.234,56", "-R$\u00a01.184,56"} {
		if !strings.Contains(list, want) {
			t.Errorf("list missing %q", want)
		}
	}
}

func TestSangriaValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name   string
		values url.Values
		want   []string
	}{
		{"missing", url.Values{}, []string{"Valor é obrigatório"}},
		{"zero", url.Values{"valor": {"0,00"}}, []string{"Valor deve ser maior que zero", `value="0,00"`}},
		{"garbage", url.Values{"valor": {"abc"}}, []string{"Valor deve ser maior que zero"}},
		{"long note", url.Values{"valor": {"1234"}, "observacao": {strings.Repeat("x", 501)}}, []string{"Observação muito longa", `value="1.234,00"`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := postForm(t, srv, "/sangrias", tt.values)
			if rr.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want 422", rr.Code)
			}
			body := rr.Body.String()
			if !strings.Contains(body, `id="sangria-form"`) {
				t.Errorf("body is not the form fragment: %s", body)
			}
			for _, want := range tt.want {
				if !strings.Contains(body, want) {
					t.Errorf("body missing %q: %s", want, body)
				}
			}
		})
	}
}

func TestCheckout(t *testing.T) {
	srv, c := newTestServer(t)

	page := get(t, srv, "/comandas/12/checkout")
	if page.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", page.Code, page.Body.String())
	}
	for _, want := range []string{"Fechar comanda #12", "R$\u00a016,00", `name="taxa_servico" value="1,60"`, `class="simple-money-mask"`, "R$\u00a017,60"} {
		if !strings.Contains(page.Body.String(), want) {
			t.Errorf("page missing %q", want)
		}
	}

	for path, code := range map[string]int{
		"/comandas/99/checkout":  http.StatusNotFound,
		"/comandas/abc/checkout": http.StatusNotFound,
		"/comandas/21/checkout":  http.StatusConflict,
	} {
		if rr := get(t, srv, path); rr.Code != code {
			t.Errorf("%s status = %d, want %d", path, rr.Code, code)
		}
	}

	// Fill the search cache so closing has something to invalidate.
	get(t, srv, "/ui/comandas")
	if c.Size() == 0 {
		t.Fatal("search cache not populated")
	}

	rr := postForm(t, srv, "/comandas/12/checkout", url.Values{
		"taxa_servico":   {"1,60"},
		"desconto":       {"0,6"},
		"payment_method": {"dinheiro"},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	if trigger := rr.Header().Get("HX-Trigger"); !strings.Contains(trigger, `"comanda:closed":{"number":12,"total":"17.00"}`) {
		t.Errorf("HX-Trigger = %s", trigger)
	}
	if !strings.Contains(rr.Body.String(), "R$\u00a017,00 (Dinheiro)") {
		t.Errorf("success body = %s", rr.Body.String())
	}

	if c.Size() != 0 {
		t.Errorf("search cache not purged: size %d", c.Size())
	}
	if body := get(t, srv, "/ui/comandas").Body.String(); strings.Contains(body, "#12") {
		t.Errorf("closed comanda still listed")
	}
	till := get(t, srv, "/sangrias").Body.String()
	for _, want := range []string{"R$\u00a017,00", "R$\u00a067,00"} {
		if !strings.Contains(till, want) {
			t.Errorf("till missing %q", want)
		}
	}

	again := postForm(t, srv, "/comandas/12/checkout", url.Values{"payment_method": {"pix"}})
	if again.Code != http.StatusConflict {
		t.Errorf("second close status = %d, want 409", again.Code)
	}
}

func TestCheckoutValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name   string
		values url.Values
		want   []string
	}{
		{"discount too high", url.Values{"desconto": {"99"}, "payment_method": {"pix"}}, []string{"Desconto maior que o total", `value="99"`}},
		{"unknown method", url.Values{"payment_method": {"cheque"}}, []string{"Escolha a forma de pagamento"}},
		{"malformed fee", url.Values{"taxa_servico": {"1,2,3"}, "payment_method": {"pix"}}, []string{"Valor inválido na taxa", `value="1,23"`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := postForm(t, srv, "/comandas/15/checkout", tt.values)
			if rr.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want 422", rr.Code)
			}
			body := rr.Body.String()
			if !strings.Contains(body, `id="checkout-form"`) {
				t.Errorf("body is not the form fragment: %s", body)
			}
			for _, want := range tt.want {
				if !strings.Contains(body, want) {
					t.Errorf("body missing %q: %s", want, body)
				}
			}
		})
	}

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/comandas/15/checkout", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("DELETE status = %d", rr.Code)
	}
}
