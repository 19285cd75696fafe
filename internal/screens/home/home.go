package home

import (
	"context"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/samber/lo"

	"github.com/abhisek/wiggles/internal/catalog"
	"github.com/abhisek/wiggles/internal/progress"
	"github.com/abhisek/wiggles/internal/router"
	"github.com/abhisek/wiggles/internal/screen"
	"github.com/abhisek/wiggles/internal/ui/components"
)

// Options wires the home screen to the rest of the app. Nil screen
// builders disable their menu entry.
type Options struct {
	Catalog  *catalog.Catalog
	Play     func(catalog.Game) screen.Screen
	History  func() screen.Screen
	Settings func() screen.Screen

	// Now defaults to time.Now.
	Now func() time.Time
}

// StatsMsg carries the progress summary shown on the home screen.
type StatsMsg struct {
	Summary progress.Summary
	Err     error
}

// LoadStats reads the progress summary in the background.
func LoadStats(backend progress.Backend) tea.Cmd {
	if backend == nil {
		return nil
	}
	return func() tea.Msg {
		sum, err := backend.Summary(context.Background())
		return StatsMsg{Summary: sum, Err: err}
	}
}

// HomeScreen is the main home screen of the application.
type HomeScreen struct {
	opts  Options
	menu  components.Menu
	stats progress.Summary
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a new HomeScreen listing every catalog game.
func New(opts Options) *HomeScreen {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	var items []components.MenuItem
	if opts.Catalog != nil {
		for _, g := range opts.Catalog.Games() {
			items = append(items, components.MenuItem{
				Label:    g.Name,
				Detail:   disciplineLabel(g.Discipline),
				Disabled: opts.Play == nil,
				Action: func() tea.Cmd {
					return func() tea.Msg { return router.PushScreenMsg{Screen: opts.Play(g)} }
				},
			})
		}
	}
	items = append(items,
		components.MenuItem{
			Label:    "HISTORY",
			Disabled: opts.History == nil,
			Action: func() tea.Cmd {
				return func() tea.Msg { return router.PushScreenMsg{Screen: opts.History()} }
			},
		},
		components.MenuItem{
			Label:    "SETTINGS",
			Disabled: opts.Settings == nil,
			Action: func() tea.Cmd {
				return func() tea.Msg { return router.PushScreenMsg{Screen: opts.Settings()} }
			},
		},
		components.MenuItem{
			Label:  "EXIT",
			Action: func() tea.Cmd { return tea.Quit },
		},
	)

	return &HomeScreen{opts: opts, menu: components.NewMenu(items)}
}

func disciplineLabel(d catalog.Discipline) string {
	switch d {
	case catalog.Occupational:
		return "movement"
	case catalog.Speech:
		return "speech"
	default:
		return string(d)
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(StatsMsg); ok {
		if msg.Err == nil {
			h.stats = msg.Summary
		}
		return h, nil
	}
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	// height is the content area; add back the header and footer.
	termHeight := height + 8
	compact := termHeight < 34 || width < 90
	now := h.opts.Now()

	cw := components.ContentWidth(width)

	sections := []string{renderTitle(cw, compact)}
	if !compact {
		sections = append(sections, renderMascotBox(mascotFor(h.stats.LastPlayed, now), cw))
	}
	sections = append(sections,
		renderStatsBar(h.stats, now, cw, compact),
		renderMenuCard(h.menu, cw),
	)

	return components.Frame(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}

// Selected returns the label of the highlighted menu entry.
func (h *HomeScreen) Selected() string {
	item, _ := h.menu.Current()
	return item.Label
}

// gameCount is the number of playable games on the menu.
func (h *HomeScreen) gameCount() int {
	return lo.CountBy(h.menu.Items, func(it components.MenuItem) bool {
		return it.Detail != "" && !it.Disabled
	})
}
