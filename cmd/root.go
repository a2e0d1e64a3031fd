package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/averlane/shortener/internal/config"
)

// Cfg holds the loaded configuration, available to all subcommands once
// cobra has run initConfig.
var Cfg *config.Config

// RootCmd is the base command. Subcommands (run-server, create, stats,
// migrate, set-plan) attach themselves via their own init() functions to
// avoid import cycles.
var RootCmd = &cobra.Command{
	Use:   "shortener",
	Short: "A quota-accounted URL shortener",
	Long: `A URL shortener that maps short codes to destination URLs and
tallies visits against per-link quotas, with per-plan limits on how many
active links an account may hold.`,
}

// Execute runs the CLI. Called from main.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

// initConfig loads .env (if present) and the application configuration
// before any command runs.
func initConfig() {
	// .env is a local development convenience; absence is fine.
	_ = godotenv.Load()

	var err error
	Cfg, err = config.LoadConfig()
	if err != nil {
		log.Printf("Warning: problem loading configuration: %v. Using default values.", err)
	}
}
