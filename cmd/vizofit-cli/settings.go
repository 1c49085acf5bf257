package main

import (
	"fmt"
	"io"

	"github.com/meltforce/vizofit/internal/app"
	"github.com/meltforce/vizofit/internal/models"
	"github.com/meltforce/vizofit/internal/settings"
	"github.com/spf13/cobra"
)

var (
	setUnits      string
	setLanguage   string
	setMute       bool
	setAppearance string
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change user settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var c settings.Change
		flags := cmd.Flags()
		if flags.Changed("units") {
			u := models.UnitSystem(setUnits)
			c.Units = &u
		}
		if flags.Changed("language") {
			c.Language = &setLanguage
		}
		if flags.Changed("mute") {
			c.IsMuted = &setMute
		}
		if flags.Changed("appearance") {
			ap := models.Appearance(setAppearance)
			c.Appearance = &ap
		}
		return withApp(cmd, func(a *app.App) error {
			s := a.Settings.Get()
			if c != (settings.Change{}) {
				var err error
				if s, err = a.Settings.Update(cmd.Context(), c); err != nil {
					return err
				}
			}
			printSettings(cmd.OutOrStdout(), s)
			return nil
		})
	},
}

var upgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Unlock the premium intensity levels",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app.App) error {
			if _, err := a.Settings.Upgrade(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Vizofit Pro unlocked.")
			return nil
		})
	},
}

func printSettings(w io.Writer, s models.UserSettings) {
	fmt.Fprintf(w, "units:      %s\n", s.Units)
	fmt.Fprintf(w, "language:   %s\n", s.Language)
	fmt.Fprintf(w, "muted:      %t\n", s.IsMuted)
	fmt.Fprintf(w, "appearance: %s\n", s.Appearance)
	fmt.Fprintf(w, "pro:        %t\n", s.IsPro)
}

func init() {
	f := settingsCmd.Flags()
	f.StringVar(&setUnits, "units", "", "metric or imperial")
	f.StringVar(&setLanguage, "language", "", "Language code, e.g. en, de, es")
	f.BoolVar(&setMute, "mute", false, "Mute training cues")
	f.StringVar(&setAppearance, "appearance", "", "light, dark or system")

	rootCmd.AddCommand(settingsCmd, upgradeCmd)
}
