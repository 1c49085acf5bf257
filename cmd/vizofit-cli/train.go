package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/meltforce/vizofit/internal/app"
	"github.com/meltforce/vizofit/internal/intensity"
	"github.com/meltforce/vizofit/internal/training"
	"github.com/spf13/cobra"
)

var trainIntensity int

var trainCmd = &cobra.Command{
	Use:   "train <id>",
	Short: "Run an interactive training session for a saved routine",
	Long: `Run an interactive training session for a saved routine.

Commands are read one per line from stdin:
  done, d, <enter>   finish an untimed set
  skip, s            skip the running countdown
  quit, q            abandon the session

Once the workout is finished any input closes the session and records it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app.App) error {
			v, err := a.Engine.OpenSaved(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if _, err := v.SetIntensity(trainIntensity); err != nil {
				return upgradeHint(err)
			}
			return runTraining(cmd.Context(), a, v.StartTraining, cmd.InOrStdin(), cmd.OutOrStdout())
		})
	},
}

type startFunc func(context.Context, training.Options, *slog.Logger) (*training.Machine, error)

// runTraining drives a machine on a single event loop. Stdin lines and
// countdown ticks are both delivered through the loop.
func runTraining(ctx context.Context, a *app.App, start startFunc, in io.Reader, w io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loop := training.NewLoop()
	cue := &termCue{w: w}
	recorded := false
	m, err := start(ctx, training.Options{
		Scheduler:  training.NewLoopScheduler(loop),
		Cue:        cue,
		OnComplete: func() { recorded = true },
	}, a.Log)
	if err != nil {
		return err
	}
	cue.m = m
	cue.show()

	go func() {
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			line := strings.ToLower(strings.TrimSpace(sc.Text()))
			if !loop.Post(ctx, func() { handleTrainInput(m, cue, line, cancel) }) {
				return
			}
		}
		loop.Post(ctx, func() {
			m.Close()
			cancel()
		})
	}()

	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if m.Phase() != training.Closed {
		m.Cancel()
	}
	if recorded {
		fmt.Fprintln(w, "Workout recorded.")
	} else {
		fmt.Fprintln(w, "Session ended without recording.")
	}
	return nil
}

func handleTrainInput(m *training.Machine, cue *termCue, line string, stop func()) {
	if m.Phase() == training.Finished {
		m.Close()
		stop()
		return
	}
	var err error
	switch line {
	case "", "d", "done":
		err = m.Done()
	case "s", "skip":
		err = m.Skip()
	case "q", "quit":
		m.Close()
		stop()
		return
	default:
		fmt.Fprintf(cue.w, "unknown command %q\n", line)
		return
	}
	switch {
	case errors.Is(err, training.ErrNotAvailable) && m.State().Timed:
		fmt.Fprintln(cue.w, "countdown running, type skip to move on")
	case errors.Is(err, training.ErrNotAvailable):
		fmt.Fprintln(cue.w, "nothing to skip, type done when the set is finished")
	case err == nil && m.Phase() == training.Resting:
		cue.show()
	}
}

// termCue prints training progress. m is nil until Start returns.
type termCue struct {
	w io.Writer
	m *training.Machine
}

func (c *termCue) show() {
	if c.m == nil {
		return
	}
	s := c.m.State()
	switch s.Phase {
	case training.Working:
		line := fmt.Sprintf("[%3.0f%%] %s  set %d/%d", s.Progress*100, s.Current.Name, s.Set, s.TotalSets)
		if s.Current.Reps != "" {
			line += "  " + s.Current.Reps
		}
		if s.Current.Weight != "" {
			line += " @ " + s.Current.Weight
		}
		if s.Timed {
			line += fmt.Sprintf("  (%ds)", s.Remaining)
		}
		fmt.Fprintln(c.w, line)
	case training.Resting:
		fmt.Fprintf(c.w, "rest %ds\n", s.Remaining)
	}
}

func (c *termCue) Tick(remaining int) { fmt.Fprintf(c.w, "%d...\n", remaining) }

func (c *termCue) SetStart() { c.show() }

func (c *termCue) SetComplete() { fmt.Fprintln(c.w, "set complete") }

func (c *termCue) WorkoutComplete() {
	fmt.Fprintln(c.w, "Workout complete! Press enter to finish.")
}

func init() {
	trainCmd.Flags().IntVar(&trainIntensity, "intensity", intensity.DefaultLevel, "Intensity level 1-5")
	rootCmd.AddCommand(trainCmd)
}
