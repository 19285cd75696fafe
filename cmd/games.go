package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/wiggles/internal/catalog"
)

var gamesCmd = &cobra.Command{
	Use:   "games",
	Short: "List the games in the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog()
		if err != nil {
			return err
		}
		printCatalog(cat)
		return nil
	},
}

var gamesValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a catalog override file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.LoadFile(args[0], version)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d games OK\n", args[0], len(cat.Games()))
		if len(cat.Skipped) > 0 {
			fmt.Printf("Skipped (need a newer wiggles): %s\n", strings.Join(cat.Skipped, ", "))
		}
		return nil
	},
}

func printCatalog(cat *catalog.Catalog) {
	fmt.Printf("%-18s  %-18s  %-7s  %6s  %s\n", "ID", "Name", "Area", "Rounds", "Skills")
	fmt.Println(strings.Repeat("─", 80))
	for _, g := range cat.Games() {
		rounds := fmt.Sprintf("%d", g.Rounds)
		if g.CompleteAfterHits > 0 {
			rounds = fmt.Sprintf("%d/%d", g.CompleteAfterHits, g.Rounds)
		}
		fmt.Printf("%-18s  %-18s  %-7s  %6s  %s\n",
			g.ID, truncate(g.Name, 18), g.Discipline, rounds, strings.Join(g.SkillTags, ", "))
	}
	if len(cat.Skipped) > 0 {
		fmt.Printf("\n%d games need a newer wiggles: %s\n", len(cat.Skipped), strings.Join(cat.Skipped, ", "))
	}
}

func init() {
	gamesCmd.AddCommand(gamesValidateCmd)
}
