package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"

	"comanda/internal/core"
	"comanda/internal/search"
)

func TestParseSearchQuery(t *testing.T) {
	tests := []struct {
		name  string
		query url.Values
		want  search.Query
	}{
		{"empty", url.Values{}, search.Query{Term: "", Status: search.All}},
		{"term trimmed and lowered", url.Values{"q": {"  ANA\x00 "}}, search.Query{Term: "ana", Status: search.All}},
		{"status", url.Values{"status": {"READY"}}, search.Query{Status: search.Ready}},
		{"unknown status", url.Values{"status": {"closed"}}, search.Query{Status: search.All}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ParseSearchQuery(tt.query)); diff != "" {
				t.Errorf("ParseSearchQuery mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseProductForm(t *testing.T) {
	tests := []struct {
		name    string
		form    url.Values
		want    ProductInput
		wantErr error
	}{
		{
			name: "canonical hidden value wins",
			form: url.Values{
				"name": {" Pastel "}, "category": {"Salgados"}, "description": {"Carne"},
				"price": {"1234.50"}, "price_display": {"1234,50"}, "show_in_menu": {"1"},
			},
			want: ProductInput{
				Name: "Pastel", Description: "Carne", Category: core.Salgados,
				Price: core.Money{Cents: 123450}, PriceText: "1234,50", ShowInMenu: true,
			},
		},
		{
			name: "display value in the price field",
			form: url.Values{"name": {"Suco"}, "category": {"bebidas"}, "price": {"8,5"}},
			want: ProductInput{Name: "Suco", Category: core.Bebidas, Price: core.Money{Cents: 850}, PriceText: "8,5"},
		},
		{
			name: "grouped display value only",
			form: url.Values{"name": {"Bolo"}, "category": {"doces"}, "price_display": {"1.200,00"}},
			want: ProductInput{Name: "Bolo", Category: core.Doces, Price: core.Money{Cents: 120000}, PriceText: "1.200,00"},
		},
		{
			name:    "missing price",
			form:    url.Values{"name": {"Bolo"}, "category": {"doces"}},
			want:    ProductInput{Name: "Bolo", Category: core.Doces},
			wantErr: core.ErrInvalidAmount,
		},
		{
			name:    "malformed price",
			form:    url.Values{"name": {"Bolo"}, "category": {"doces"}, "price": {"1,2,3"}},
			want:    ProductInput{Name: "Bolo", Category: core.Doces, PriceText: "1,2,3"},
			wantErr: core.ErrInvalidAmount,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseProductForm(tt.form)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseProductForm mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseSangriaForm(t *testing.T) {
	tests := []struct {
		name    string
		form    url.Values
		want    SangriaInput
		wantErr error
	}{
		{
			name: "money mask display",
			form: url.Values{"valor": {"1.234,56"}, "observacao": {" troco "}},
			want: SangriaInput{Amount: core.Money{Cents: 123456}, AmountText: "1.234,56", Note: "troco"},
		},
		{
			name: "currency symbol",
			form: url.Values{"valor": {"R$ 50,00"}},
			want: SangriaInput{Amount: core.Money{Cents: 5000}, AmountText: "R$ 50,00"},
		},
		{
			name: "garbage reads as zero",
			form: url.Values{"valor": {"abc"}},
			want: SangriaInput{AmountText: "abc"},
		},
		{
			name:    "missing",
			form:    url.Values{"valor": {" R$ "}},
			want:    SangriaInput{AmountText: "R$"},
			wantErr: core.ErrMissingAmount,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSangriaForm(tt.form)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseSangriaForm mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseCheckoutForm(t *testing.T) {
	got, err := ParseCheckoutForm(url.Values{
		"taxa_servico":   {"2,45"},
		"desconto":       {""},
		"payment_method": {"PIX"},
		"customer_name":  {"Ana"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := CheckoutInput{
		ServiceFee: core.Money{Cents: 245}, ServiceFeeText: "2,45",
		Method: core.PaymentPix, CustomerName: "Ana",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseCheckoutForm mismatch (-want +got):\n%s", diff)
	}

	c := core.Comanda{Number: 7, Items: []core.ComandaItem{{Name: "Suco", Quantity: 3, UnitPrice: core.Money{Cents: 800}}}}
	co := got.Checkout(c)
	if co.ComandaNumber != 7 || co.Subtotal.Cents != 2400 || co.Total().Cents != 2645 {
		t.Errorf("unexpected checkout: %+v", co)
	}

	if _, err := ParseCheckoutForm(url.Values{"desconto": {"dez"}}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestRequireMethod(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if RequireMethod(req, http.MethodGet) != nil {
		t.Fatal("GET should be allowed")
	}

	resp := RequireMethod(req, http.MethodPost, http.MethodPut)
	if resp == nil {
		t.Fatal("expected a 405 response")
	}
	rr := httptest.NewRecorder()
	resp.Write(rr)
	if rr.Code != http.StatusMethodNotAllowed || rr.Header().Get("Allow") != "POST, PUT" {
		t.Fatalf("status=%d allow=%q", rr.Code, rr.Header().Get("Allow"))
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  a\x01b\tc\n "); got != "ab\tc" {
		t.Fatalf("sanitizeInput = %q", got)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		remote string
		xff    string
		xri    string
		want   string
	}{
		{"direct peer", "203.0.113.9:5000", "", "", "203.0.113.9"},
		{"spoofed header from public peer", "203.0.113.9:5000", "198.51.100.1", "", "203.0.113.9"},
		{"forwarded by local proxy", "10.0.0.1:5000", "198.51.100.1, 10.0.0.1", "", "198.51.100.1"},
		{"real ip from local proxy", "127.0.0.1:5000", "", "198.51.100.2", "198.51.100.2"},
		{"garbage forwarded value", "10.0.0.1:5000", "nope", "", "10.0.0.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			if got := clientIP(req); got != tt.want {
				t.Errorf("clientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
