package cmd

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/abhisek/wiggles/internal/progress"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recently played games",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		withNotes, _ := cmd.Flags().GetBool("notes")

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		backend, err := progressBackend(st.EventRepo())
		if err != nil {
			return err
		}
		entries, err := backend.Recent(cmd.Context(), limit)
		if err != nil {
			return fmt.Errorf("load history: %w", err)
		}
		if len(entries) == 0 {
			fmt.Println("No games played yet.")
			return nil
		}

		local := progress.NewLocal(st.EventRepo())
		fmt.Printf("%-16s  %-18s  %7s  %5s  %6s  %s\n", "When", "Game", "Correct", "Acc", "XP", "Session")
		fmt.Println(strings.Repeat("─", 90))
		for _, e := range entries {
			fmt.Printf("%-16s  %-18s  %7s  %4d%%  %6s  %s\n",
				humanize.Time(e.LoggedAt),
				truncate(e.GameType, 18),
				fmt.Sprintf("%d/%d", e.Correct, e.Total),
				e.Accuracy,
				fmt.Sprintf("+%d", e.XPAwarded),
				e.SessionID,
			)
			if !withNotes {
				continue
			}
			text, ok, err := local.Note(cmd.Context(), e.SessionID)
			switch {
			case err != nil:
				return fmt.Errorf("load note: %w", err)
			case ok:
				fmt.Printf("    %s\n", text)
			}
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", progress.DefaultRecentLimit, "Number of games to show")
	historyCmd.Flags().Bool("notes", false, "Show the parent note of each game")
}
