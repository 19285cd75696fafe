package app

import (
	"fmt"
	"log/slog"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/wiggles/internal/catalog"
	"github.com/abhisek/wiggles/internal/feedback"
	"github.com/abhisek/wiggles/internal/progress"
	"github.com/abhisek/wiggles/internal/router"
	"github.com/abhisek/wiggles/internal/screen"
	"github.com/abhisek/wiggles/internal/screens/history"
	"github.com/abhisek/wiggles/internal/screens/home"
	"github.com/abhisek/wiggles/internal/screens/play"
	"github.com/abhisek/wiggles/internal/screens/settings"
	"github.com/abhisek/wiggles/internal/ui/layout"
)

// Options holds the dependencies of the TUI.
type Options struct {
	Catalog *catalog.Catalog

	// Progress is read for the header XP, home stats and history.
	Progress progress.Backend

	// Notes looks up parent notes in history. Optional.
	Notes history.NoteSource

	// Play is shared by every play screen.
	Play play.Deps

	Settings *feedback.SettingsStore
	Logger   *slog.Logger

	// Start opens this game over the home screen on launch. Optional.
	Start string
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router   *router.Router
	progress progress.Backend
	logger   *slog.Logger
	start    screen.Screen
	xp       int
	width    int
	height   int
}

// newAppModel creates a new AppModel with the home screen.
func newAppModel(opts Options) AppModel {
	if opts.Settings == nil {
		opts.Settings = feedback.NewSettingsStore(nil)
	}
	if opts.Play.Settings == nil {
		opts.Play.Settings = opts.Settings
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	homeOpts := home.Options{
		Catalog:  opts.Catalog,
		Play:     func(g catalog.Game) screen.Screen { return play.New(g, opts.Play) },
		Settings: func() screen.Screen { return settings.New(opts.Settings) },
	}
	if opts.Progress != nil {
		homeOpts.History = func() screen.Screen {
			return history.New(opts.Progress, opts.Notes, opts.Catalog)
		}
	}

	m := AppModel{
		router:   router.New(home.New(homeOpts)),
		progress: opts.Progress,
		logger:   logger,
	}
	if opts.Start != "" && opts.Catalog != nil {
		if g, ok := opts.Catalog.Get(opts.Start); ok {
			m.start = play.New(g, opts.Play)
		}
	}
	return m
}

func (m AppModel) Init() tea.Cmd {
	if m.start != nil {
		return tea.Batch(home.LoadStats(m.progress), m.router.Push(m.start))
	}
	return home.LoadStats(m.progress)
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case home.StatsMsg:
		if msg.Err != nil {
			m.logger.Warn("progress summary failed", "err", msg.Err)
		} else {
			m.xp = msg.Summary.TotalXP
		}

	case router.PopScreenMsg:
		// Back on an earlier screen: XP may have changed.
		return m, tea.Batch(m.router.Update(msg), home.LoadStats(m.progress))

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.xp, m.width)

	var footerHints []layout.KeyHint
	if p, ok := active.(screen.KeyHintProvider); ok {
		footerHints = append(p.KeyHints(), layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
	} else {
		footerHints = []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(m.height-headerHeight-footerHeight, 0)

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program. Screens still open when it exits are
// released, cancelling a session in progress.
func Run(opts Options) error {
	m := newAppModel(opts)
	defer m.router.LeaveAll()

	p := tea.NewProgram(m)
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
