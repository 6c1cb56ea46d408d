package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/fab-uleuh/stripe-copy-prod-to-test/internal/models"
	"github.com/fab-uleuh/stripe-copy-prod-to-test/internal/wire"
)

var mappingCmd = &cobra.Command{
	Use:   "mapping",
	Short: "Inspect stored prod→test ID mappings",
}

var mappingShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show stored mapping counts per entity",
	RunE: func(cmd *cobra.Command, args []string) error {
		envFile, _ := cmd.Flags().GetString("env-file")
		if err := wire.Init(envFile, false); err != nil {
			return err
		}
		defer wire.Close()

		counts, err := wire.MappingRepo().CountByKind(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to read mappings: %w", err)
		}

		total := 0
		for _, kind := range models.AllKinds() {
			fmt.Printf("%-10s %d mapping(s)\n", kind, counts[kind])
			total += counts[kind]
		}
		fmt.Printf("\nTotal: %d mapping(s)\n", total)
		return nil
	},
}

var mappingSnapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List saved mapping snapshot files",
	RunE: func(cmd *cobra.Command, args []string) error {
		envFile, _ := cmd.Flags().GetString("env-file")
		if err := wire.Init(envFile, false); err != nil {
			return err
		}
		defer wire.Close()

		paths, err := wire.Snapshots().List()
		if err != nil {
			return fmt.Errorf("failed to list snapshots: %w", err)
		}
		if len(paths) == 0 {
			fmt.Println("No snapshots found")
			return nil
		}

		for _, path := range paths {
			snapshot, err := wire.Snapshots().Load(path)
			if err != nil {
				color.New(color.FgYellow).Printf("%s (unreadable: %v)\n", path, err)
				continue
			}
			fmt.Printf("%s  %d created, %d updated, %d errors\n",
				path, snapshot.Summary.Created, snapshot.Summary.Updated, snapshot.Summary.Errors)
		}
		return nil
	},
}

// MappingCmd returns the mapping command with its subcommands.
func MappingCmd() *cobra.Command {
	mappingCmd.PersistentFlags().String("env-file", "", "Path to .env file (optional)")
	mappingCmd.AddCommand(mappingShowCmd)
	mappingCmd.AddCommand(mappingSnapshotsCmd)
	return mappingCmd
}
