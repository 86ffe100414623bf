package main

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/asciicam/internal/config"
	"github.com/olivier-w/asciicam/internal/term"
)

func TestStartupModelOpensInBackground(t *testing.T) {
	called := false
	m := newStartupModel(config.DefaultConfig(), term.ModeNone, func() (*session, error) {
		called = true
		return nil, errBoom{}
	})
	if cmd := m.Init(); cmd == nil {
		t.Fatal("expected init command")
	}
	if called {
		t.Fatal("open should not run until the command executes")
	}
	if !strings.Contains(m.View(), "Opening camera") {
		t.Fatalf("unexpected view: %q", m.View())
	}
}

func TestStartupModelErrorShowsMessage(t *testing.T) {
	m := newStartupModel(config.DefaultConfig(), term.ModeNone, nil)

	model, cmd := m.Update(startupResolvedMsg{err: errBoom{}})
	if cmd != nil {
		t.Fatal("expected no command on error")
	}
	startup := model.(startupModel)
	if startup.phase != phaseFailed {
		t.Fatalf("expected phaseFailed, got %v", startup.phase)
	}
	if !strings.Contains(startup.View(), "boom") {
		t.Fatalf("view should show the error: %q", startup.View())
	}
}

func TestStartupModelQuit(t *testing.T) {
	m := newStartupModel(config.DefaultConfig(), term.ModeNone, nil)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
}

func TestStartupModelRemembersSize(t *testing.T) {
	m := newStartupModel(config.DefaultConfig(), term.ModeNone, nil)
	model, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	startup := model.(startupModel)
	if startup.width != 120 || startup.height != 40 {
		t.Fatalf("size = %dx%d", startup.width, startup.height)
	}
}

func TestApplyArgsOverridesConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	a := args{Charset: "blocks", FontSize: 14, Color: true, Dir: "/tmp/shots", Verbose: true}
	if err := applyArgs(cfg, &a); err != nil {
		t.Fatalf("applyArgs() error = %v", err)
	}
	if cfg.Render.Charset != "blocks" || cfg.Render.FontSize != 14 || !cfg.Render.Color {
		t.Fatalf("render = %+v", cfg.Render)
	}
	if cfg.Capture.Dir != "/tmp/shots" || cfg.Log.Level != "debug" {
		t.Fatalf("capture dir %q level %q", cfg.Capture.Dir, cfg.Log.Level)
	}
}

func TestApplyArgsValidates(t *testing.T) {
	cfg := config.DefaultConfig()
	a := args{Charset: "emoji"}
	if err := applyArgs(cfg, &a); !errors.Is(err, config.ErrInvalid) {
		t.Fatalf("applyArgs() error = %v, want ErrInvalid", err)
	}
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }
