package cmd

import (
	"fmt"
	"time"

	"github.com/jon4hz/mealtrack/internal/stats"
	"github.com/jon4hz/mealtrack/internal/tracker"
	"github.com/spf13/cobra"
)

var userStatsFlags struct {
	Email string
}

var userStatsCmd = &cobra.Command{
	Use:   "user-stats",
	Short: "Show the calorie totals of a user",
	Long:  `Print the rolling daily, weekly and monthly calorie totals of a user.`,
	Example: `mealtrack user-stats --email alice@example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if userStatsFlags.Email == "" {
			return fmt.Errorf("--email is required")
		}

		db, _, err := openDatabase()
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close() //nolint: errcheck

		user, err := db.GetUserByEmail(cmd.Context(), tracker.NormalizeEmail(userStatsFlags.Email))
		if err != nil {
			return fmt.Errorf("failed to find user: %w", err)
		}

		meals, err := db.GetMealsByUser(cmd.Context(), user.ID)
		if err != nil {
			return fmt.Errorf("failed to get meals: %w", err)
		}
		summary := stats.Compute(meals, time.Now())

		fmt.Printf("Stats for %s <%s>:\n", user.Name, user.Email)
		fmt.Printf("Last 24 hours: %.0f kcal\n", summary.Daily)
		fmt.Printf("Last 7 days: %.0f kcal (avg %s per day)\n", summary.Weekly, summary.Avg7)
		fmt.Printf("Last 30 days: %.0f kcal (avg %s per day)\n", summary.Monthly, summary.Avg30)
		return nil
	},
}

func init() {
	userStatsCmd.Flags().StringVar(&userStatsFlags.Email, "email", "", "Email of the user")
	rootCmd.AddCommand(userStatsCmd)
}
