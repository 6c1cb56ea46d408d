package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fab-uleuh/stripe-copy-prod-to-test/internal/cli"
	"github.com/fab-uleuh/stripe-copy-prod-to-test/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "stripecopy",
		Short:   "Copy Stripe resources from production to test",
		Version: version.String(),
		Long: `stripecopy synchronizes configuration-like Stripe resources (tax rates,
products, prices, coupons) from a read-only production account into a test
account, keeping a durable prod→test ID mapping across runs.`,
	}

	rootCmd.AddCommand(cli.CopyCmd())
	rootCmd.AddCommand(cli.MappingCmd())
	rootCmd.AddCommand(cli.DoctorCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
