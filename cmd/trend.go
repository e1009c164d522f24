package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"tutorfeed/internal/feedback"
)

var trendCmd = &cobra.Command{
	Use:   "trend <student name>",
	Short: "Show score changes against the previous class",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer st.Close()

		student, err := st.Students().FindByName(ctx, args[0])
		if err != nil {
			return fmt.Errorf("look up student: %w", err)
		}

		history, err := st.Sessions().History(ctx, student.ID)
		if err != nil {
			return fmt.Errorf("load history: %w", err)
		}

		trend, err := feedback.ComputeTrend(history)
		if errors.Is(err, feedback.ErrInsufficientHistory) {
			fmt.Printf("%s has %d recorded session(s); a trend needs at least two.\n",
				student.Name, len(history))
			return nil
		}
		if err != nil {
			return err
		}

		fmt.Printf("Score trend for %s (%s vs %s)\n\n",
			student.Name,
			trend.Current.Date.Format("2006-01-02"),
			trend.Previous.Date.Format("2006-01-02"))

		fmt.Printf("%-18s  %-8s  %-8s  %s\n", "Metric", "Current", "Previous", "Change")
		for _, m := range feedback.Metrics {
			mt := trend.Metrics[m]
			if mt.Err != nil {
				fmt.Printf("%-18s  %s\n", m.Label(), "not comparable")
				continue
			}
			fmt.Printf("%-18s  %-8d  %-8d  %s %+d\n",
				m.Label(), mt.Current, mt.Previous, mt.Direction.Symbol(), mt.Change)
		}
		return nil
	},
}
