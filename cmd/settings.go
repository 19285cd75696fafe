package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/wiggles/internal/feedback"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show cue settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		printSettings(openSettings().Get())
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key=value>...",
	Short: "Change cue settings (sound, speech, haptics, volume)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := openSettings()
		var apply []func(*feedback.Settings)
		for _, arg := range args {
			fn, err := parseSetting(arg)
			if err != nil {
				return err
			}
			apply = append(apply, fn)
		}
		err := store.Update(func(s *feedback.Settings) {
			for _, fn := range apply {
				fn(s)
			}
		})
		if err != nil {
			return fmt.Errorf("save settings: %w", err)
		}
		printSettings(store.Get())
		return nil
	},
}

// parseSetting turns key=value into an update.
func parseSetting(arg string) (func(*feedback.Settings), error) {
	key, value, ok := strings.Cut(arg, "=")
	if !ok {
		return nil, fmt.Errorf("%q: expected key=value", arg)
	}
	key = strings.ToLower(strings.TrimSpace(key))
	value = strings.TrimSpace(value)

	if key == "volume" {
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("volume: %w", err)
		}
		return func(s *feedback.Settings) { s.Volume = v }, nil
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	switch key {
	case "sound":
		return func(s *feedback.Settings) { s.Sound = b }, nil
	case "speech":
		return func(s *feedback.Settings) { s.Speech = b }, nil
	case "haptics":
		return func(s *feedback.Settings) { s.Haptics = b }, nil
	}
	return nil, fmt.Errorf("unknown setting %q", key)
}

func printSettings(s feedback.Settings) {
	onOff := func(b bool) string {
		if b {
			return "on"
		}
		return "off"
	}
	fmt.Printf("sound    %s\n", onOff(s.Sound))
	fmt.Printf("speech   %s\n", onOff(s.Speech))
	fmt.Printf("haptics  %s\n", onOff(s.Haptics))
	fmt.Printf("volume   %.0f%%\n", s.Volume*100)
}

func init() {
	settingsCmd.AddCommand(settingsSetCmd)
}
