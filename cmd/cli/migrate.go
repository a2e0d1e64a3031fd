package cli

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/averlane/shortener/cmd"
	"github.com/averlane/shortener/internal/database"
)

// MigrateCmd creates or updates the database schema.
var MigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Executes database migrations to create or update tables.",
	Long: `Connects to the configured SQLite database and runs GORM automatic
migrations for the links, visits and users tables.`,
	Run: func(_ *cobra.Command, _ []string) {
		db, err := database.Open(cmd.Cfg.Database.Name)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		if err := database.Migrate(db); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
		fmt.Println("Database migrations executed successfully.")
	},
}

func init() {
	cmd.RootCmd.AddCommand(MigrateCmd)
}
