package main

import (
	"bytes"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"format", []string{"format", "1234.5"}, "R$\u00a01.234,50\n"},
		{"format comma", []string{"format", "0,5"}, "R$\u00a00,50\n"},
		{"format display", []string{"format", "1.234,56"}, "R$\u00a01.234,56\n"},
		{"format with symbol", []string{"format", "R$ 12,30"}, "R$\u00a012,30\n"},
		{"format garbage", []string{"format", "abc"}, "R$\u00a00,00\n"},
		{"format empty", []string{"format", ""}, "R$\u00a00,00\n"},
		{"format NaN", []string{"format", "NaN"}, "R$\u00a00,00\n"},
		{"parse grouped", []string{"parse", "R$ 1.234,56"}, "1234.56\n"},
		{"parse garbage", []string{"parse", "abc"}, "0.00\n"},
		{"money mask", []string{"mask", "100000"}, "amount=1.000,00\n"},
		{"money blur on zero", []string{"mask", "--blur", "0"}, "amount=\n"},
		{"simple mask", []string{"mask", "--variant", "simple", "12a,345"}, "amount=12,34\n"},
		{"price typing", []string{"mask", "--variant", "price", "1230"}, "price=12,30\n"},
		{"price blur", []string{"mask", "--variant", "price", "--blur", "1230"}, "price_display=12,30\nprice=12.30\n"},
		{"price submit", []string{"mask", "--variant", "price", "--blur", "--submit", "1230"}, "price_display=12.30\nprice=12.30\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := run(t, tt.args...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCommandErrors(t *testing.T) {
	if _, err := run(t, "format"); err == nil {
		t.Error("format without argument should fail")
	}
	if _, err := run(t, "mask", "--variant", "euro", "1"); err == nil || !strings.Contains(err.Error(), "unknown variant") {
		t.Errorf("mask error = %v", err)
	}
	if _, err := run(t, "parse"); err == nil {
		t.Error("parse without argument should fail")
	}
}
