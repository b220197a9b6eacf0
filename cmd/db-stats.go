package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var dbStatsCmd = &cobra.Command{
	Use:   "db-stats",
	Short: "Show database statistics",
	Long:  `Display the number of users, sessions, meals, presets and food items.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, _, err := openDatabase()
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close() //nolint: errcheck

		counts, err := db.GetCounts(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get database stats: %w", err)
		}

		fmt.Println("Database Statistics:")
		fmt.Printf("Users: %s\n", humanize.Comma(counts.Users))
		fmt.Printf("Sessions: %s\n", humanize.Comma(counts.Sessions))
		fmt.Printf("Meals: %s\n", humanize.Comma(counts.Meals))
		fmt.Printf("Presets: %s\n", humanize.Comma(counts.Presets))
		fmt.Printf("Food Items: %s\n", humanize.Comma(counts.FoodItems))
		fmt.Printf("Users with Settings: %s\n", humanize.Comma(counts.Settings))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbStatsCmd)
}
