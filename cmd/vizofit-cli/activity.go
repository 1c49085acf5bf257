package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/meltforce/vizofit/internal/activity"
	"github.com/meltforce/vizofit/internal/app"
	"github.com/spf13/cobra"
)

var activityLimit int

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Show completed workouts, streak and consistency",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app.App) error {
			logs, err := a.Activity.List(cmd.Context())
			if err != nil {
				return err
			}
			r := activity.NewReport(logs, time.Now(), activityLimit)
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Workouts: %d\n", r.Summary.Total)
			fmt.Fprintf(w, "Streak: %d day(s)\n", r.Summary.Streak)
			fmt.Fprintf(w, "Consistency: %s\n", r.Summary.Consistency)
			fmt.Fprintf(w, "Active days in %d: %d\n", r.Summary.Year, len(r.Summary.Days))
			if len(r.Logs) == 0 {
				return nil
			}
			fmt.Fprintln(w)
			tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
			fmt.Fprintln(tw, "DATE\tEQUIPMENT\tDURATION")
			for _, l := range r.Logs {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", l.Date.Local().Format("2006-01-02 15:04"), l.EquipmentName, l.Duration)
			}
			return tw.Flush()
		})
	},
}

func init() {
	activityCmd.Flags().IntVarP(&activityLimit, "limit", "n", 10, "Number of recent workouts to list (0 for all)")
	rootCmd.AddCommand(activityCmd)
}
