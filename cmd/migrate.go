package cmd

import (
	"fmt"

	"charityfund/config"
	"charityfund/database"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return database.MigrateUp(config.Get().DatabaseURL)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Roll back migrations, one step by default",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		steps := "1"
		if len(args) > 0 {
			steps = args[0]
		}
		return database.MigrateDown(config.Get().DatabaseURL, steps)
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current schema version",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		status, err := database.MigrateStatus(config.Get().DatabaseURL)
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(status)
		}

		if !status.Applied {
			fmt.Println(mutedStyle.Render("No migrations applied"))
			return nil
		}
		fmt.Printf("Version %d", status.Version)
		if status.Dirty {
			fmt.Print(errorStyle.Render(" (dirty)"))
		}
		fmt.Println()
		return nil
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)
	rootCmd.AddCommand(migrateCmd)
}
