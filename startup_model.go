package main

import (
	"context"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/olivier-w/asciicam/internal/config"
	"github.com/olivier-w/asciicam/internal/term"
	"github.com/olivier-w/asciicam/internal/ui"
)

type startupPhase uint8

const (
	phaseOpening startupPhase = iota
	phaseFailed
)

type startupResolvedMsg struct {
	session *session
	err     error
}

// openFunc opens the capture session in the background.
type openFunc func() (*session, error)

// startupModel shows a spinner while the camera opens, then hands over to ui.Model.
type startupModel struct {
	open      openFunc
	cfg       *config.Config
	colorMode term.Mode
	phase     startupPhase
	errMsg    string
	width     int
	height    int
	spinner   spinner.Model
}

func newStartupModel(cfg *config.Config, colorMode term.Mode, open openFunc) startupModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))

	return startupModel{
		open:      open,
		cfg:       cfg,
		colorMode: colorMode,
		phase:     phaseOpening,
		spinner:   s,
	}
}

func (m startupModel) Init() tea.Cmd {
	open := m.open
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		s, err := open()
		return startupResolvedMsg{session: s, err: err}
	})
}

func (m startupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if m.phase != phaseOpening {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case startupResolvedMsg:
		if msg.err != nil {
			m.phase = phaseFailed
			m.errMsg = msg.err.Error()
			return m, nil
		}

		model := ui.New(ui.Options{
			Session:    msg.session,
			Stats:      msg.session.stats,
			CellPixels: m.cfg.UI.CellPixels,
			ColorMode:  m.colorMode,
			Facing:     msg.session.facing,
		})
		cmds := []tea.Cmd{model.Init()}
		if m.width > 0 || m.height > 0 {
			w, h := m.width, m.height
			cmds = append(cmds, func() tea.Msg {
				return tea.WindowSizeMsg{Width: w, Height: h}
			})
		}
		return model, tea.Batch(cmds...)

	case tea.KeyMsg:
		if startupIsQuit(msg) {
			return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
		}
	}
	return m, nil
}

func (m startupModel) View() string {
	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(startupHeaderStyle.Render("ASCIICAM"))
	b.WriteString("\n\n  ")

	switch m.phase {
	case phaseFailed:
		b.WriteString(startupErrorStyle.Render(m.errMsg))
		b.WriteString("\n")
	default:
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(startupStatusStyle.Render("Opening camera..."))
		b.WriteString("\n")
	}

	b.WriteString("\n  ")
	b.WriteString(startupHelpStyle.Render("q quit"))
	b.WriteString("\n")
	return b.String()
}

func openSessionFunc(ctx context.Context, cfg *config.Config, input string, logger *slog.Logger) openFunc {
	return func() (*session, error) {
		return openSession(ctx, cfg, input, logger)
	}
}

func startupIsQuit(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return true
	}
	return false
}

var (
	startupHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#00FF00"))
	startupStatusStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BBBBBB"})
	startupHelpStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#999999", Dark: "#666666"})
	startupErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#A00000", Dark: "#FF8080"})
)
