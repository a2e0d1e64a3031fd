package cli

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/averlane/shortener/cmd"
	"github.com/averlane/shortener/internal/database"
	apperrors "github.com/averlane/shortener/internal/errors"
	"github.com/averlane/shortener/internal/repository"
	"github.com/averlane/shortener/internal/services"
)

// StatsCmd prints visit statistics for a short code.
var StatsCmd = &cobra.Command{
	Use:   "stats [short-code]",
	Short: "Get visit statistics for a short URL",
	Long:  `Prints the total visit count and per-day breakdown for a short code.`,
	Args:  cobra.ExactArgs(1),
	Run:   runStats,
}

func init() {
	cmd.RootCmd.AddCommand(StatsCmd)
}

func runStats(_ *cobra.Command, args []string) {
	shortCode := args[0]

	cfg := cmd.Cfg
	db, err := database.Open(cfg.Database.Name)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	linkRepo := repository.NewLinkRepository(db)
	visitRepo := repository.NewVisitRepository(db)
	linkService := services.NewLinkService(linkRepo, visitRepo, cfg.Links.DefaultVisitLimit)

	stats, err := linkService.GetLinkStats(shortCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrLinkNotFound) {
			fmt.Printf("Error: short code %q not found\n", shortCode)
		} else {
			fmt.Printf("Error retrieving statistics: %v\n", err)
		}
		os.Exit(1)
	}

	fmt.Printf("Statistics for short code: %s\n", shortCode)
	fmt.Printf("Destination: %s\n", stats.Link.LongURL)
	fmt.Printf("Active: %t\n", stats.Link.IsActive)
	fmt.Printf("Visits used: %d of %d\n", stats.Link.VisitCount, stats.Link.VisitLimit)
	fmt.Printf("Recorded visits: %d\n", stats.TotalVisits)
	fmt.Printf("Created: %s\n", stats.Link.CreatedAt.Format("2006-01-02 15:04:05"))
	if len(stats.VisitsByDay) > 0 {
		fmt.Println("Visits by day:")
		for _, day := range stats.VisitsByDay {
			fmt.Printf("  %s: %d\n", day.Day, day.Count)
		}
	}
}
