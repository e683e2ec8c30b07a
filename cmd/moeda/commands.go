package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"comanda/internal/core"
	"comanda/internal/mask"
)

func formatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "format <value>",
		Short: "Format a number as R$ currency",
		Long: `Format a number, e.g. 1234.5, 0,5 or 1.234,56, as "R$ 1.234,50".
Text that holds no number is formatted as R$ 0,00.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), core.FormatCurrency(readNumber(args[0])))
			return nil
		},
	}
}

// readNumber accepts a plain number with a dot or a single comma as decimal
// separator and falls back to pt-BR display text ("R$ 1.234,56").
func readNumber(arg string) float64 {
	s := stripSymbol(arg)
	if v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64); err == nil {
		return v
	}
	return core.ParseFormattedCurrency(s)
}

func stripSymbol(s string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), core.CurrencySymbol))
}

func parseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <display>",
		Short: "Parse display text into a canonical amount",
		Long:  `Parse text such as "R$ 1.234,56" or "1.234,56" and print the canonical form "1234.56". Unparseable text yields 0.00.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := core.ParseFormattedCurrency(stripSymbol(args[0]))
			fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatFloat(v, 'f', 2, 64))
			return nil
		},
	}
}

func maskCmd() *cobra.Command {
	var (
		variant string
		blur    bool
		submit  bool
	)
	cmd := &cobra.Command{
		Use:   "mask <keystrokes>",
		Short: "Replay keystrokes through an input mask",
		Long: `Type the given characters one by one into a masked field and print the
resulting fields as name=value lines. Variants: money (grouped display),
simple (digits and comma) and price (product price with a hidden canonical field).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form, binding, err := maskedForm(variant)
			if err != nil {
				return err
			}
			binding.Type(args[0])
			if blur {
				binding.Blur()
			}
			if submit {
				form.Submit()
			}
			for _, f := range form.Fields() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", f.Name, f.Value)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&variant, "variant", "money", "mask variant (money, simple, price)")
	cmd.Flags().BoolVar(&blur, "blur", false, "fire a blur event after typing")
	cmd.Flags().BoolVar(&submit, "submit", false, "submit the form after typing")
	return cmd
}

// maskedForm builds a one-field form carrying the marker for variant.
func maskedForm(variant string) (*mask.Form, *mask.Binding, error) {
	form := mask.NewForm()
	switch variant {
	case "money":
		form.Add("form", &mask.Field{Name: "amount", Classes: []string{mask.ClassMoney}})
	case "simple":
		form.Add("form", &mask.Field{Name: "amount", Classes: []string{mask.ClassSimpleMoney}})
	case "price":
		form.Add("price-group", &mask.Field{Name: mask.PriceFieldName, Step: "0.01"})
	default:
		return nil, nil, fmt.Errorf("unknown variant %q: must be money, simple or price", variant)
	}
	bindings := mask.Init(form)
	return form, bindings[0], nil
}
