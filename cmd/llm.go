package cmd

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/abhisek/wiggles/internal/llm"
	"github.com/abhisek/wiggles/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded LLM requests",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM events",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		if purpose != "" {
			events = lo.Filter(events, func(e store.LLMRequestRecord, _ int) bool { return e.Purpose == purpose })
		}
		if len(events) == 0 {
			fmt.Println("No LLM events found.")
			return nil
		}

		fmt.Printf("%-5s  %-19s  %-14s  %-28s  %-6s  %-6s  %-7s  %s\n",
			"ID", "Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK")
		fmt.Println(strings.Repeat("─", 100))

		for _, e := range events {
			ok := "✓"
			if !e.Success {
				ok = "✗"
			}
			fmt.Printf("%-5d  %-19s  %-14s  %-28s  %-6d  %-6d  %-7d  %s\n",
				e.ID,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				truncate(e.Purpose, 14),
				truncate(e.Model, 28),
				e.InputTokens,
				e.OutputTokens,
				e.LatencyMs,
				ok,
			)
		}
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "View full request/response for an LLM event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetLLMEvent(cmd.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("event %d not found", id)
		}
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}

		sep := strings.Repeat("─", 60)

		fmt.Printf("ID:        %d\n", e.ID)
		fmt.Printf("Time:      %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("Provider:  %s\n", e.Provider)
		fmt.Printf("Model:     %s\n", e.Model)
		fmt.Printf("Purpose:   %s\n", e.Purpose)
		fmt.Printf("Tokens:    %d in / %d out\n", e.InputTokens, e.OutputTokens)
		fmt.Printf("Latency:   %dms\n", e.LatencyMs)
		fmt.Printf("Success:   %v\n", e.Success)
		if e.ErrorMessage != "" {
			fmt.Printf("Error:     %s\n", e.ErrorMessage)
		}

		for _, part := range []struct{ title, body string }{
			{"REQUEST", e.RequestBody},
			{"RESPONSE", e.ResponseBody},
		} {
			fmt.Println()
			fmt.Println(sep)
			fmt.Println(part.title)
			fmt.Println(sep)
			if part.body == "" {
				fmt.Println("(not captured)")
				continue
			}
			fmt.Println(part.body)
		}
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregated LLM token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		stats, err := s.EventRepo().LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		if len(stats) == 0 {
			fmt.Println("No LLM usage recorded yet.")
			return nil
		}

		fmt.Println("Usage by Purpose")
		fmt.Println(strings.Repeat("─", 64))
		fmt.Printf("%-16s  %6s  %10s  %10s  %10s\n", "Purpose", "Calls", "Input", "Output", "Total")
		fmt.Println(strings.Repeat("─", 64))

		var totalCalls, totalIn, totalOut int
		for _, st := range stats {
			fmt.Printf("%-16s  %6d  %10d  %10d  %10d\n",
				truncate(st.Purpose, 16), st.Calls, st.InputTokens, st.OutputTokens, st.InputTokens+st.OutputTokens)
			totalCalls += st.Calls
			totalIn += st.InputTokens
			totalOut += st.OutputTokens
		}
		fmt.Println(strings.Repeat("─", 64))
		fmt.Printf("%-16s  %6d  %10d  %10d  %10d\n",
			"TOTAL", totalCalls, totalIn, totalOut, totalIn+totalOut)

		events, err := s.EventRepo().QueryLLMEvents(ctx, store.QueryOpts{})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		models := usageByModel(events)

		fmt.Println()
		fmt.Println("Estimated Cost (USD)")
		fmt.Println(strings.Repeat("─", 80))
		fmt.Printf("%-32s  %6s  %10s  %10s  %8s  %9s\n",
			"Model", "Calls", "Input", "Output", "Avg Ms", "Cost")
		fmt.Println(strings.Repeat("─", 80))

		var totalCost float64
		var unknown []string
		for _, mu := range models {
			cost := "?"
			if mu.Priced {
				totalCost += mu.Cost
				cost = formatCost(mu.Cost)
			} else {
				unknown = append(unknown, mu.Model)
			}
			fmt.Printf("%-32s  %6d  %10d  %10d  %8d  %9s\n",
				truncate(mu.Model, 32), mu.Calls, mu.InputTokens, mu.OutputTokens, mu.AvgLatencyMs, cost)
		}

		fmt.Println(strings.Repeat("─", 80))
		label := "TOTAL"
		if len(unknown) > 0 {
			label = "TOTAL (partial)"
		}
		fmt.Printf("%-32s  %6s  %10s  %10s  %8s  %9s\n", label, "", "", "", "", formatCost(totalCost))
		if len(unknown) > 0 {
			fmt.Printf("\nPricing unavailable for: %s\n", strings.Join(unknown, ", "))
		}
		return nil
	},
}

// modelUsage aggregates LLM calls for one model.
type modelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
	Cost         float64
	Priced       bool
}

// usageByModel groups events by model, sorted by model name.
func usageByModel(events []store.LLMRequestRecord) []modelUsage {
	groups := lo.GroupBy(events, func(e store.LLMRequestRecord) string { return e.Model })
	out := make([]modelUsage, 0, len(groups))
	for model, evs := range groups {
		mu := modelUsage{
			Model:        model,
			Calls:        len(evs),
			InputTokens:  lo.SumBy(evs, func(e store.LLMRequestRecord) int { return e.InputTokens }),
			OutputTokens: lo.SumBy(evs, func(e store.LLMRequestRecord) int { return e.OutputTokens }),
			AvgLatencyMs: lo.SumBy(evs, func(e store.LLMRequestRecord) int64 { return e.LatencyMs }) / int64(len(evs)),
		}
		if price, ok := llm.LookupPrice(model); ok {
			mu.Priced = true
			mu.Cost = price.Cost(llm.Usage{InputTokens: mu.InputTokens, OutputTokens: mu.OutputTokens})
		}
		out = append(out, mu)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Model < out[j].Model })
	return out
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (e.g. session-note)")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
