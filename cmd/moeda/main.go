// Command moeda formats, parses and masks Brazilian Real amounts from the
// command line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "moeda",
		Short:         "Brazilian Real currency helpers",
		Long:          `Format numbers as R$ amounts, parse display text back to canonical values and replay keystrokes through the input masks.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(formatCmd())
	root.AddCommand(parseCmd())
	root.AddCommand(maskCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
