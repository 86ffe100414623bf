package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/asciicam/internal/render"
)

// frameInterval paces the terminal preview, independent of the render loop.
const frameInterval = time.Second / 30

type frameMsg time.Time

type statsMsg render.ProcessingStats

type savedMsg struct {
	kind string
	path string
	err  error
}

type recordMsg struct {
	path    string
	started bool
	frames  int64
	err     error
}

type facingMsg struct {
	facing string
	err    error
}

func frameCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}
