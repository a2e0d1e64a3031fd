package cli

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/averlane/shortener/cmd"
	"github.com/averlane/shortener/internal/database"
	"github.com/averlane/shortener/internal/repository"
	"github.com/averlane/shortener/internal/services"
)

var (
	longURLFlag   string
	ownerFlag     string
	expiresInFlag time.Duration
)

// CreateCmd shortens a URL on behalf of an existing account.
var CreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Creates a short URL from a long URL.",
	Long: `Shortens the provided long URL for the given owner account and
prints the generated short code.

Example:
  shortener create --url="https://example.com/some/long/path" --owner=user@example.com`,
	Run: func(_ *cobra.Command, _ []string) {
		if _, err := url.ParseRequestURI(longURLFlag); err != nil {
			fmt.Printf("Error: invalid URL format: %v\n", err)
			os.Exit(1)
		}

		cfg := cmd.Cfg
		db, err := database.Open(cfg.Database.Name)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}

		linkRepo := repository.NewLinkRepository(db)
		visitRepo := repository.NewVisitRepository(db)
		userRepo := repository.NewUserRepository(db)
		linkService := services.NewLinkService(linkRepo, visitRepo, cfg.Links.DefaultVisitLimit)

		owner, err := userRepo.GetUserByEmail(ownerFlag)
		if err != nil {
			log.Fatalf("Failed to look up owner %q: %v", ownerFlag, err)
		}

		var expiresAt *time.Time
		if expiresInFlag > 0 {
			t := time.Now().Add(expiresInFlag)
			expiresAt = &t
		}

		link, err := linkService.CreateLink(longURLFlag, expiresAt, owner.ID, cfg.MaxActiveLinksForPlan(owner.Plan))
		if err != nil {
			log.Fatalf("Failed to create short link: %v", err)
		}

		fmt.Printf("Short URL created:\n")
		fmt.Printf("Code: %s\n", link.Code())
		fmt.Printf("Full URL: %s/%s\n", cfg.Server.BaseURL, link.Code())
		fmt.Printf("Visit limit: %d\n", link.VisitLimit)
	},
}

func init() {
	CreateCmd.Flags().StringVar(&longURLFlag, "url", "", "The long URL to shorten")
	CreateCmd.Flags().StringVar(&ownerFlag, "owner", "", "Email of the owning account")
	CreateCmd.Flags().DurationVar(&expiresInFlag, "expires-in", 0, "Optional lifetime (e.g. 72h); 0 means no expiry")
	CreateCmd.MarkFlagRequired("url")
	CreateCmd.MarkFlagRequired("owner")

	cmd.RootCmd.AddCommand(CreateCmd)
}
