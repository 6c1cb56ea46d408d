package cli

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/fab-uleuh/stripe-copy-prod-to-test/internal/config"
	"github.com/fab-uleuh/stripe-copy-prod-to-test/internal/db"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration and local storage",
	RunE: func(cmd *cobra.Command, args []string) error {
		envFile, _ := cmd.Flags().GetString("env-file")

		cfg, err := config.Load(envFile)
		if err != nil {
			color.New(color.FgRed).Printf("✗ configuration: %v\n", err)
			if errors.Is(err, config.ErrInvalid) {
				printConfigHint(err)
			}
			return fmt.Errorf("configuration check failed")
		}
		color.New(color.FgGreen).Println("✓ configuration valid")
		fmt.Printf("  production key: %s (read-only)\n", config.Redact(cfg.ProdKey))
		fmt.Printf("  test key:       %s\n", config.Redact(cfg.TestKey))
		fmt.Printf("  mappings dir:   %s\n", cfg.MappingsDir)

		dbPath := cfg.DBPath
		if dbPath == "" {
			dbPath, err = db.DefaultPath()
			if err != nil {
				return err
			}
		}
		database, err := db.Open(cfg.DBPath)
		if err != nil {
			color.New(color.FgRed).Printf("✗ database: %v\n", err)
			return fmt.Errorf("database check failed")
		}
		defer database.Close()
		color.New(color.FgGreen).Printf("✓ database reachable: %s\n", dbPath)

		return nil
	},
}

// DoctorCmd returns the doctor command.
func DoctorCmd() *cobra.Command {
	doctorCmd.Flags().String("env-file", "", "Path to .env file (optional)")
	return doctorCmd
}
