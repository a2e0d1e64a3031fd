package cli

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/averlane/shortener/cmd"
	"github.com/averlane/shortener/internal/database"
	"github.com/averlane/shortener/internal/models"
	"github.com/averlane/shortener/internal/repository"
)

// SetPlanCmd changes an account's plan from the command line, for operators
// without an admin API token.
var SetPlanCmd = &cobra.Command{
	Use:   "set-plan [email] [plan]",
	Short: "Set a user's plan (free, premium or admin)",
	Args:  cobra.ExactArgs(2),
	Run: func(_ *cobra.Command, args []string) {
		email, plan := args[0], args[1]
		if !models.ValidPlan(plan) {
			fmt.Printf("Error: invalid plan %q. Must be free, premium or admin.\n", plan)
			os.Exit(1)
		}

		db, err := database.Open(cmd.Cfg.Database.Name)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}

		userRepo := repository.NewUserRepository(db)
		user, err := userRepo.GetUserByEmail(email)
		if err != nil {
			log.Fatalf("Failed to look up user %q: %v", email, err)
		}
		if user.Plan == plan {
			fmt.Printf("User %q already has plan %q. No changes made.\n", email, plan)
			return
		}

		updated, err := userRepo.UpdateUserPlan(email, plan)
		if err != nil {
			log.Fatalf("Failed to update plan: %v", err)
		}
		fmt.Printf("User %q plan changed from %q to %q.\n", email, user.Plan, updated.Plan)
	},
}

func init() {
	cmd.RootCmd.AddCommand(SetPlanCmd)
}
