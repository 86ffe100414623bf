package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	"github.com/olivier-w/asciicam/internal/render"
	"github.com/olivier-w/asciicam/internal/term"
)

// chromeLines is the number of terminal rows used around the preview,
// plus one spare so the view never scrolls.
const chromeLines = 6

// Session is the capture pipeline behind the UI.
type Session interface {
	Loop() *render.Loop
	Snapshot() (string, error)
	SaveText() (string, error)
	StartRecording() (string, error)
	StopRecording() (path string, frames int64, err error)
	SwitchFacing() (string, error)
	Close() error
}

// Options configures a Model.
type Options struct {
	Session Session
	// Stats receives ProcessingStats from the render loop.
	Stats      <-chan render.ProcessingStats
	CellPixels int
	ColorMode  term.Mode
	Facing     string
}

// Model is the Bubbletea model for the asciicam TUI.
type Model struct {
	session    Session
	loop       *render.Loop
	renderer   *term.Renderer
	statsCh    <-chan render.ProcessingStats
	cellPixels int

	grid     render.Grid
	frame    string
	state    render.State
	settings render.Settings

	spring    harmonica.Spring
	targetFPS float64
	fps       float64
	fpsVel    float64
	renderMs  float64
	renderVel float64
	targetMs  float64

	spinner spinner.Model
	width   int
	height  int

	mode        CaptureMode
	facing      string
	recording   bool
	recordStart time.Time
	busy        bool
	quitting    bool

	saveMsg     string    // transient status message
	saveMsgTime time.Time // when saveMsg was set
	saveErr     bool
}

// New creates a Model driving opts.Session.
func New(opts Options) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))

	if opts.CellPixels <= 0 {
		opts.CellPixels = 10
	}
	loop := opts.Session.Loop()
	return Model{
		session:    opts.Session,
		loop:       loop,
		renderer:   term.NewRenderer(opts.ColorMode),
		statsCh:    opts.Stats,
		cellPixels: opts.CellPixels,
		settings:   loop.Settings(),
		state:      loop.State(),
		spring:     harmonica.NewSpring(harmonica.FPS(int(time.Second/frameInterval)), 4.0, 1.0),
		spinner:    s,
		facing:     opts.Facing,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(frameCmd(), m.spinner.Tick, m.waitForStats(), tea.SetWindowTitle("asciicam"))
}

func (m Model) waitForStats() tea.Cmd {
	if m.statsCh == nil {
		return nil
	}
	ch := m.statsCh
	return func() tea.Msg {
		st, ok := <-ch
		if !ok {
			return nil
		}
		return statsMsg(st)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.handleMsg(msg)
	return next, cmd
}

func (m Model) handleMsg(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case frameMsg:
		m.loop.CopyGrid(&m.grid)
		m.state = m.loop.State()
		w, h := m.previewSize()
		m.frame = m.renderer.Render(&m.grid, w, h)
		m.fps, m.fpsVel = m.spring.Update(m.fps, m.fpsVel, m.targetFPS)
		m.renderMs, m.renderVel = m.spring.Update(m.renderMs, m.renderVel, m.targetMs)
		if m.saveMsg != "" && time.Since(m.saveMsgTime) > 4*time.Second {
			m.saveMsg = ""
		}
		return m, frameCmd()

	case statsMsg:
		m.targetFPS = msg.FPS
		m.targetMs = float64(msg.RenderTime) / float64(time.Millisecond)
		if m.fps == 0 {
			m.fps, m.renderMs = m.targetFPS, m.targetMs
		}
		return m, m.waitForStats()

	case savedMsg:
		m.busy = false
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("%s failed: %v", msg.kind, msg.err), true)
		} else {
			m.setStatus(fmt.Sprintf("Saved %s to %s", msg.kind, msg.path), false)
		}
		return m, nil

	case recordMsg:
		m.busy = false
		switch {
		case msg.err != nil:
			m.recording = false
			m.setStatus(fmt.Sprintf("Recording failed: %v", msg.err), true)
		case msg.started:
			m.recording = true
			m.recordStart = time.Now()
			m.setStatus("Recording to "+msg.path, false)
		default:
			m.recording = false
			m.setStatus(fmt.Sprintf("Saved video to %s (%d frames)", msg.path, msg.frames), false)
		}
		return m, nil

	case facingMsg:
		m.busy = false
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("Flip failed: %v", msg.err), true)
			return m, nil
		}
		m.facing = msg.facing
		m.setStatus("Camera: "+msg.facing, false)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		w, h := m.previewSize()
		m.loop.SetViewport(w*m.cellPixels, h*2*m.cellPixels)
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if isQuit(msg) {
		m.quitting = true
		session := m.session
		recording := m.recording
		return m, tea.Sequence(func() tea.Msg {
			if recording {
				session.StopRecording()
			}
			session.Close()
			return nil
		}, tea.SetWindowTitle(""), tea.Quit)
	}

	key := msg.String()
	if s, ok := adjust(m.settings, key); ok {
		if err := m.loop.SetSettings(s); err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		m.settings = s
		return m, nil
	}

	switch key {
	case "m":
		if !m.recording {
			m.mode = m.mode.Next()
		}
	case " ", "enter":
		if m.mode == ModeVideo || m.recording {
			return m.toggleRecording()
		}
		return m.capture()
	case "s":
		return m.capture()
	case "r":
		return m.toggleRecording()
	case "t":
		if m.busy {
			return m, nil
		}
		m.busy = true
		session := m.session
		return m, func() tea.Msg {
			path, err := session.SaveText()
			return savedMsg{kind: "text", path: path, err: err}
		}
	case "f":
		if m.busy || m.recording {
			return m, nil
		}
		m.busy = true
		m.setStatus("Switching camera...", false)
		session := m.session
		return m, func() tea.Msg {
			facing, err := session.SwitchFacing()
			return facingMsg{facing: facing, err: err}
		}
	}
	return m, nil
}

func (m Model) capture() (Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	m.busy = true
	session := m.session
	return m, func() tea.Msg {
		path, err := session.Snapshot()
		return savedMsg{kind: "snapshot", path: path, err: err}
	}
}

func (m Model) toggleRecording() (Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	m.busy = true
	session := m.session
	if m.recording {
		return m, func() tea.Msg {
			path, frames, err := session.StopRecording()
			return recordMsg{path: path, frames: frames, err: err}
		}
	}
	return m, func() tea.Msg {
		path, err := session.StartRecording()
		return recordMsg{path: path, started: err == nil, err: err}
	}
}

func (m *Model) setStatus(s string, isErr bool) {
	m.saveMsg = s
	m.saveErr = isErr
	m.saveMsgTime = time.Now()
}

// previewSize returns the terminal cells available to the preview.
func (m Model) previewSize() (int, int) {
	w := m.width
	h := m.height - chromeLines
	if w < 1 || h < 1 {
		return 0, 0
	}
	return w, h
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	viewW, viewH := m.loop.Viewport()
	var b strings.Builder
	b.WriteString(" " + titleStyle.Render("ASCIICAM") + "  ")
	b.WriteString(statsStyle.Render(renderStats(m.fps, time.Duration(m.renderMs*float64(time.Millisecond)), m.grid, viewW, viewH)))
	b.WriteString("\n ")
	b.WriteString(settingsStyle.Render(renderSettings(m.settings)))
	b.WriteString("\n")

	_, h := m.previewSize()
	preview := m.frame
	if m.state != render.StateRunning || preview == "" {
		preview = "\n  " + m.spinner.View() + " " + statusStyle.Render("Waiting for camera...")
	}
	b.WriteString(padLines(preview, h))
	b.WriteString("\n\n ")

	if m.recording {
		b.WriteString(recordStyle.Render(renderRecording(time.Since(m.recordStart))))
	} else {
		b.WriteString(statusStyle.Render(m.mode.Icon()))
	}
	if m.facing != "" {
		b.WriteString(statusStyle.Render("  " + m.facing))
	}
	if m.saveMsg != "" {
		b.WriteString("  ")
		if m.saveErr {
			b.WriteString(errorStyle.Render(m.saveMsg))
		} else {
			b.WriteString(statusStyle.Render(m.saveMsg))
		}
	}
	b.WriteString("\n ")
	b.WriteString(helpStyle.Render(helpText(m.mode, m.recording)))
	return b.String()
}
