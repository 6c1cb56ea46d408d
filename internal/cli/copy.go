package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/fab-uleuh/stripe-copy-prod-to-test/internal/config"
	"github.com/fab-uleuh/stripe-copy-prod-to-test/internal/models"
	"github.com/fab-uleuh/stripe-copy-prod-to-test/internal/ports/primary"
	"github.com/fab-uleuh/stripe-copy-prod-to-test/internal/wire"
)

var copyCmd = &cobra.Command{
	Use:   "copy",
	Short: "Copy tax rates, products, prices and coupons from production to test",
	Long: `Copy reads resources from the production Stripe account (read-only) and
creates or updates their counterparts in the test account, recording a
durable prod→test ID mapping so re-runs never create duplicates.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		entities, _ := cmd.Flags().GetString("entities")
		verbose, _ := cmd.Flags().GetBool("verbose")
		envFile, _ := cmd.Flags().GetString("env-file")
		yes, _ := cmd.Flags().GetBool("yes")
		skipUnchanged, _ := cmd.Flags().GetBool("skip-unchanged")

		printBanner()

		if err := wire.Init(envFile, verbose); err != nil {
			if errors.Is(err, config.ErrInvalid) {
				printConfigHint(err)
			}
			return err
		}
		defer wire.Close()

		kinds, err := parseKinds(entities)
		if err != nil {
			return err
		}
		fmt.Printf("Entities to copy: %s\n", joinKinds(kinds))

		if dryRun {
			color.New(color.FgYellow, color.Bold).Println("\nDRY-RUN MODE: no modifications will be made")
		} else {
			color.New(color.FgYellow).Println("\nThis operation will modify your TEST environment.")
			color.New(color.FgYellow).Println("PRODUCTION environment is used in read-only mode.")
			if !yes && !confirm("Do you want to continue?") {
				color.New(color.FgRed).Println("Operation cancelled")
				return nil
			}
		}

		report, err := wire.SyncService().Run(cmd.Context(), primary.RunRequest{
			Kinds:         kinds,
			DryRun:        dryRun,
			SkipUnchanged: skipUnchanged,
		})
		if err != nil {
			return fmt.Errorf("copy failed: %w", err)
		}

		printReport(report)

		if report.HasFailures() {
			return fmt.Errorf("completed with %d error(s)", report.Summary.Errors+len(report.KindFailures))
		}
		color.New(color.FgGreen, color.Bold).Println("\n✓ Copy completed successfully")
		return nil
	},
}

func printBanner() {
	color.New(color.FgBlue, color.Bold).Println("Stripe Copy: Production → Test Environment")
	fmt.Println()
}

// printConfigHint mirrors the env hint a first-time user needs.
func printConfigHint(err error) {
	fmt.Fprintln(os.Stderr, err)
	color.New(color.FgYellow).Fprintln(os.Stderr, "\nCheck that your .env file contains:")
	color.New(color.FgYellow).Fprintln(os.Stderr, "  STRIPE_SECRET_KEY=sk_live_...")
	color.New(color.FgYellow).Fprintln(os.Stderr, "  STRIPE_SECRET_KEY_TEST=sk_test_...")
}

// parseKinds splits the --entities list, warning about unknown names and
// keeping the known ones. All-unknown is an error.
func parseKinds(entities string) ([]models.Kind, error) {
	var kinds []models.Kind
	for _, name := range strings.Split(entities, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if !models.ValidKind(name) {
			color.New(color.FgYellow).Printf("Unknown entity ignored: %s\n", name)
			continue
		}
		kinds = append(kinds, models.Kind(name))
	}
	if len(kinds) == 0 {
		return nil, fmt.Errorf("no valid entities to copy")
	}
	return kinds, nil
}

func joinKinds(kinds []models.Kind) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

func confirm(prompt string) bool {
	fmt.Printf("\n%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func printReport(report *primary.RunReport) {
	fmt.Println()
	color.New(color.FgCyan, color.Bold).Println("Statistics by entity")

	for _, kind := range report.Kinds {
		if msg, skipped := report.KindFailures[kind]; skipped {
			fmt.Printf("  %-10s %s\n", kind, color.New(color.FgRed).Sprintf("skipped: %s", msg))
			continue
		}
		stats := report.Stats[kind]
		fmt.Printf("  %-10s ✓ %d created, ↻ %d updated, ✗ %d errors\n",
			kind, stats.Created, stats.Updated, stats.Errors)
	}

	summary := report.Summary
	fmt.Println()
	color.New(color.FgGreen, color.Bold).Printf("TOTAL: ")
	fmt.Printf("%d created, %d updated, %d errors\n", summary.Created, summary.Updated, summary.Errors)

	if report.SnapshotPath != "" {
		fmt.Printf("\nMapping saved: %s\n", report.SnapshotPath)
	}
	if report.PersistenceError != "" {
		color.New(color.FgYellow).Printf("\nWarning: mapping persistence incomplete: %s\n", report.PersistenceError)
		color.New(color.FgYellow).Println("Changes already applied to the test environment are kept.")
	}
}

// CopyCmd returns the copy command.
func CopyCmd() *cobra.Command {
	copyCmd.Flags().Bool("dry-run", false, "Simulate the operation without modifying data")
	copyCmd.Flags().String("entities", "tax_rates,products,prices,coupons",
		"Entities to copy (comma-separated): tax_rates, products, prices, coupons")
	copyCmd.Flags().BoolP("verbose", "v", false, "Enable detailed logs")
	copyCmd.Flags().String("env-file", "", "Path to .env file (optional)")
	copyCmd.Flags().BoolP("yes", "y", false, "Automatically accept confirmation (no interaction)")
	copyCmd.Flags().Bool("skip-unchanged", false, "Skip matched resources whose fields are already identical")
	return copyCmd
}
