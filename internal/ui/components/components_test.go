package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentWidth(t *testing.T) {
	assert.Equal(t, 20, ContentWidth(10))
	assert.Equal(t, 44, ContentWidth(50))
	assert.Equal(t, 60, ContentWidth(200))
}

func TestMenu_SkipsDisabled(t *testing.T) {
	picked := ""
	m := NewMenu([]MenuItem{
		{Label: "LOCKED", Disabled: true},
		{Label: "PLAY", Action: func() tea.Cmd { picked = "PLAY"; return nil }},
		{Label: "SOON", Disabled: true},
		{Label: "EXIT", Action: func() tea.Cmd { picked = "EXIT"; return nil }},
	})
	require.Equal(t, 1, m.Selected)

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	assert.Equal(t, 3, m.Selected)

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	assert.Equal(t, 3, m.Selected, "stays on the last enabled item")

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	assert.Equal(t, 1, m.Selected)

	m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Equal(t, "PLAY", picked)

	item, ok := m.Current()
	require.True(t, ok)
	assert.Equal(t, "PLAY", item.Label)
	assert.Contains(t, m.View(), "▸ PLAY")
}

func TestChoices(t *testing.T) {
	c := NewChoices([]string{"cat", "dog", "cow"})
	assert.Equal(t, "cat", c.Value())

	c = c.Move(5)
	assert.Equal(t, "cow", c.Value())
	c = c.Move(-9)
	assert.Equal(t, "cat", c.Value())

	c, ok := c.Pick(2)
	require.True(t, ok)
	assert.Equal(t, "dog", c.Value())

	_, ok = c.Pick(4)
	assert.False(t, ok)

	view := c.View()
	for _, want := range []string{"1  cat", "2  dog", "3  cow"} {
		assert.Contains(t, view, want)
	}

	assert.Equal(t, "", NewChoices(nil).Value())
}

func TestRoundTrack(t *testing.T) {
	track := RoundTrack(4, []bool{true, false})
	assert.Equal(t, 2, strings.Count(track, "●"))
	assert.Equal(t, 2, strings.Count(track, "○"))
}
