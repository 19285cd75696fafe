package cmd

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/abhisek/wiggles/internal/progress"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show XP and play statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		backend, err := progressBackend(st.EventRepo())
		if err != nil {
			return err
		}
		sum, err := backend.Summary(cmd.Context())
		if err != nil {
			return fmt.Errorf("load summary: %w", err)
		}
		printStats(sum, time.Now())
		return nil
	},
}

func printStats(sum progress.Summary, now time.Time) {
	if sum.Plays == 0 {
		fmt.Println("No games played yet.")
		return
	}

	fmt.Printf("Total XP:     %s\n", humanize.Comma(int64(sum.TotalXP)))
	fmt.Printf("Games played: %s\n", humanize.Comma(int64(sum.Plays)))
	fmt.Printf("Last played:  %s\n", humanize.RelTime(sum.LastPlayed, now, "ago", "from now"))

	if len(sum.XPBySkill) > 0 {
		fmt.Println()
		fmt.Println("XP by Skill")
		fmt.Println(strings.Repeat("─", 40))
		for _, e := range sortedDesc(sum.XPBySkill) {
			fmt.Printf("%-28s  %10s\n", e.Key, humanize.Comma(int64(e.Value)))
		}
	}

	fmt.Println()
	fmt.Println("Games")
	fmt.Println(strings.Repeat("─", 40))
	fmt.Printf("%-20s  %6s  %10s\n", "Game", "Plays", "Best")
	for _, e := range sortedDesc(sum.PlaysByGame) {
		fmt.Printf("%-20s  %6d  %9d%%\n", e.Key, e.Value, sum.BestAccuracy[e.Key])
	}
}

// sortedDesc orders m by value, largest first, then by key.
func sortedDesc(m map[string]int) []lo.Entry[string, int] {
	entries := lo.Entries(m)
	slices.SortFunc(entries, func(a, b lo.Entry[string, int]) int {
		if a.Value != b.Value {
			return cmp.Compare(b.Value, a.Value)
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return entries
}
