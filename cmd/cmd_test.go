package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/wiggles/internal/feedback"
	"github.com/abhisek/wiggles/internal/store"
)

func TestParseSetting(t *testing.T) {
	s := feedback.DefaultSettings()
	for _, arg := range []string{"sound=off", "Speech = false", "haptics=0", "volume=0.25"} {
		fn, err := parseSetting(arg)
		require.NoError(t, err, arg)
		fn(&s)
	}
	assert.Equal(t, feedback.Settings{Volume: 0.25}, s)
}

func TestParseSettingErrors(t *testing.T) {
	for _, arg := range []string{"sound", "volume=loud", "sound=maybe", "colour=true"} {
		_, err := parseSetting(arg)
		assert.Error(t, err, arg)
	}
}

func TestSortedDesc(t *testing.T) {
	got := sortedDesc(map[string]int{"b": 10, "a": 10, "c": 30})
	require.Len(t, got, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{got[0].Key, got[1].Key, got[2].Key})
}

func TestUsageByModel(t *testing.T) {
	events := []store.LLMRequestRecord{
		{Model: "gpt-4o-mini", InputTokens: 1_000_000, OutputTokens: 0, LatencyMs: 100},
		{Model: "gpt-4o-mini", InputTokens: 0, OutputTokens: 1_000_000, LatencyMs: 300},
		{Model: "home-brew", InputTokens: 10, OutputTokens: 5, LatencyMs: 50},
	}
	got := usageByModel(events)
	require.Len(t, got, 2)

	assert.Equal(t, "gpt-4o-mini", got[0].Model)
	assert.Equal(t, 2, got[0].Calls)
	assert.Equal(t, int64(200), got[0].AvgLatencyMs)
	assert.True(t, got[0].Priced)
	assert.InDelta(t, 0.75, got[0].Cost, 1e-9)

	assert.Equal(t, "home-brew", got[1].Model)
	assert.False(t, got[1].Priced)
}

func TestFormatCost(t *testing.T) {
	assert.Equal(t, "$0.0050", formatCost(0.005))
	assert.Equal(t, "$1.25", formatCost(1.25))
}
