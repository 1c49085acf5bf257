package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/meltforce/vizofit/internal/app"
	"github.com/meltforce/vizofit/internal/intensity"
	"github.com/meltforce/vizofit/internal/models"
	"github.com/meltforce/vizofit/internal/session"
	"github.com/meltforce/vizofit/internal/units"
	"github.com/spf13/cobra"
)

var analyzeResolve string

var analyzeCmd = &cobra.Command{
	Use:   "analyze <image>",
	Short: "Analyze an equipment photo into a routine",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		img, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}
		return withApp(cmd, func(a *app.App) error {
			out, err := a.Engine.Analyze(cmd.Context(), img)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if out.Conflict == nil {
				printRoutine(w, out.Routine, a.Settings.Get().Units)
				if out.SavedID != "" {
					fmt.Fprintf(w, "saved %s\n", out.SavedID)
				}
				return nil
			}

			c := out.Conflict
			fmt.Fprintf(w, "%q looks like saved routine %q (%s).\n", c.Incoming.EquipmentName, c.Existing.Routine.EquipmentName, c.Existing.ID)
			res := session.Resolution(analyzeResolve)
			if res == "" {
				res, err = askResolution(cmd.InOrStdin(), w)
				if err != nil {
					return err
				}
			}
			resolved, err := a.Engine.Resolve(cmd.Context(), res)
			if err != nil {
				return err
			}
			printRoutine(w, resolved.Routine, a.Settings.Get().Units)
			switch res {
			case session.UpdateExisting:
				fmt.Fprintf(w, "updated %s\n", resolved.SavedID)
			case session.SaveAsNew:
				fmt.Fprintf(w, "saved %s\n", resolved.SavedID)
			default:
				fmt.Fprintln(w, "not saved")
			}
			return nil
		})
	},
}

func askResolution(in io.Reader, w io.Writer) (session.Resolution, error) {
	fmt.Fprint(w, "[u]pdate existing, save as [n]ew, or [c]ancel? ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "u", "update":
		return session.UpdateExisting, nil
	case "n", "new":
		return session.SaveAsNew, nil
	}
	return session.Discard, nil
}

var libraryCmd = &cobra.Command{
	Use:   "library [query]",
	Short: "List saved routines, favorites first",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := ""
		if len(args) == 1 {
			query = args[0]
		}
		return withApp(cmd, func(a *app.App) error {
			list, err := a.Routines.SortedView(cmd.Context(), query)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No saved routines.")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tEQUIPMENT\tSAVED\tEXERCISES\tFAV")
			for _, s := range list {
				fav := ""
				if s.IsFavorited {
					fav = "*"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", s.ID, s.Routine.EquipmentName, s.Date, len(s.Routine.Exercises), fav)
			}
			return tw.Flush()
		})
	},
}

var (
	showIntensity int
	showUnits     string
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a saved routine at an intensity level",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app.App) error {
			v, err := a.Engine.OpenSaved(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if _, err := v.SetIntensity(showIntensity); err != nil {
				return upgradeHint(err)
			}
			system := a.Settings.Get().Units
			if showUnits != "" {
				system = units.ParseSystem(showUnits)
			}
			d := v.DisplayIn(system)
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s  [%s]\n", d.Routine.EquipmentName, d.Level.Label)
			if d.LanguageMismatch {
				fmt.Fprintf(w, "(generated in %s)\n", d.Routine.GeneratedLanguage)
			}
			printExercises(w, d.Exercises)
			return nil
		})
	},
}

var favoriteCmd = &cobra.Command{
	Use:   "favorite <id>",
	Short: "Toggle the favorite flag of a saved routine",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app.App) error {
			s, err := a.Engine.ToggleFavorite(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			state := "unfavorited"
			if s.IsFavorited {
				state = "favorited"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", state, s.Routine.EquipmentName)
			return nil
		})
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Delete a saved routine",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app.App) error {
			if err := a.Routines.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
			return nil
		})
	},
}

func upgradeHint(err error) error {
	if errors.Is(err, intensity.ErrUpgradeRequired) {
		return fmt.Errorf("%w (run `vizofit upgrade`)", err)
	}
	return err
}

func printRoutine(w io.Writer, r *models.WorkoutRoutine, system models.UnitSystem) {
	fmt.Fprintln(w, r.EquipmentName)
	if r.EquipmentDescription != "" {
		fmt.Fprintln(w, r.EquipmentDescription)
	}
	if len(r.TargetMuscles) > 0 {
		fmt.Fprintf(w, "Targets: %s\n", strings.Join(r.TargetMuscles, ", "))
	}
	if r.EstimatedDuration != "" {
		fmt.Fprintf(w, "Duration: %s\n", r.EstimatedDuration)
	}
	ex := make([]session.DisplayExercise, len(r.Exercises))
	for i, e := range r.Exercises {
		ex[i] = session.DisplayExercise{
			Name:   e.Name,
			Sets:   units.FormatForDisplay(e.Sets, system),
			Reps:   units.FormatForDisplay(e.Reps, system),
			Rest:   units.FormatForDisplay(e.Rest, system),
			Weight: units.FormatForDisplay(e.Weight, system),
		}
	}
	printExercises(w, ex)
	for _, tip := range r.SafetyTips {
		fmt.Fprintf(w, "! %s\n", tip)
	}
}

func printExercises(w io.Writer, ex []session.DisplayExercise) {
	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tEXERCISE\tSETS\tREPS\tREST\tWEIGHT")
	for i, e := range ex {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", i+1, e.Name, e.Sets, e.Reps, e.Rest, e.Weight)
	}
	tw.Flush()
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeResolve, "resolve", "", "Answer for a duplicate: update, new or cancel (default: ask)")
	showCmd.Flags().IntVar(&showIntensity, "intensity", intensity.DefaultLevel, "Intensity level 1-5")
	showCmd.Flags().StringVar(&showUnits, "units", "", "metric or imperial (default: settings)")

	rootCmd.AddCommand(analyzeCmd, libraryCmd, showCmd, favoriteCmd, removeCmd)
}
