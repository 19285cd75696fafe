package play

import "charm.land/bubbles/v2/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Act      key.Binding
	Turn     key.Binding
	TurnBack key.Binding
}

var keys = keyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓", "down")),
	Left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "left")),
	Right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "right")),
	Act:      key.NewBinding(key.WithKeys("space", "enter"), key.WithHelp("Space", "tap")),
	Turn:     key.NewBinding(key.WithKeys("r"), key.WithHelp("R", "turn")),
	TurnBack: key.NewBinding(key.WithKeys("R", "shift+r"), key.WithHelp("Shift+R", "turn back")),
}

// swipeAngles maps arrow bindings to swipe directions in degrees, with 0
// pointing right and 90 pointing down.
var swipeAngles = []struct {
	binding key.Binding
	angle   float64
}{
	{keys.Right, 0},
	{keys.Down, 90},
	{keys.Left, 180},
	{keys.Up, 270},
}
