package tui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-platformer/internal/config"
	"github.com/vovakirdan/tui-platformer/internal/core"
	"github.com/vovakirdan/tui-platformer/internal/games/platformer"
	"github.com/vovakirdan/tui-platformer/internal/motion"
	"github.com/vovakirdan/tui-platformer/internal/scene"
	"github.com/vovakirdan/tui-platformer/internal/storage"
)

// PlayModel is the Bubble Tea model for one run on one level.
// The session ticks on its own goroutine; the model only forwards key
// codes to it and draws the frames it presents.
type PlayModel struct {
	session *platformer.Session
	sink    *frameSink
	holds   *HoldTracker
	screen  *core.Screen
	store   *storage.Store
	config  core.RuntimeConfig
	player  string
	logger  *log.Logger

	keys PlayKeyMap
	help help.Model

	frame      motion.Frame
	paused     bool
	standalone bool // quit the program instead of returning to a menu
	end        *runEnd
	quitting   bool
	backToMenu bool
}

// runEnd is shared by every copy of a PlayModel so the run is closed and
// recorded exactly once.
type runEnd struct {
	once sync.Once
	done atomic.Bool
}

// NewPlayModel creates a play model for level. The session is not started
// until Init.
func NewPlayModel(cfg config.Config, level scene.Level, store *storage.Store, rc core.RuntimeConfig, player string, logger *log.Logger) (PlayModel, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	sink := newFrameSink()
	session, err := platformer.NewSession(cfg, level, platformer.Options{
		Sink:   sink,
		Logger: logger,
	})
	if err != nil {
		return PlayModel{}, err
	}

	h := help.New()
	h.ShowAll = false

	m := PlayModel{
		session: session,
		sink:    sink,
		holds:   NewHoldTracker(cfg.Input.Hold(), cfg.Input.Repeat()),
		screen:  core.NewScreen(rc.ScreenW, rc.ScreenH),
		store:   store,
		config:  rc,
		player:  player,
		logger:  logger,
		keys:    NewPlayKeyMap(cfg.Bindings()),
		help:    h,
		frame:   session.Character().Frame(),
		end:     &runEnd{},
	}
	m.layout()
	return m, nil
}

// Init starts the session and the UI pollers.
func (m PlayModel) Init() tea.Cmd {
	if err := m.session.Start(); err != nil {
		m.logger.Error("could not start session", "error", err)
		return tea.Quit
	}
	return tea.Batch(m.sink.waitForFrame(), pollCmd(pollRate))
}

// Update handles messages and updates the model state.
func (m PlayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		m.help.Width = msg.Width
		m.layout()
		return m, nil

	case FrameMsg:
		m.frame = motion.Frame(msg)
		if m.end.done.Load() {
			return m, nil
		}
		return m, m.sink.waitForFrame()

	case PollMsg:
		for _, code := range m.holds.Expire(time.Time(msg)) {
			m.session.Keys().Release(code)
		}
		if m.end.done.Load() {
			return m, nil
		}
		return m, pollCmd(pollRate)
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m PlayModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Finish()
		m.quitting = true
		return m, tea.Quit

	case msg.String() == "ctrl+s":
		m.saveScreenshot()
		return m, nil

	case key.Matches(msg, m.keys.Pause):
		m.togglePause()
		return m, nil

	case key.Matches(msg, m.keys.Restart):
		m.holds.Reset()
		m.session.Restart()
		m.frame = m.session.Character().Frame()
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
		return m, nil

	case key.Matches(msg, m.keys.Back) && m.paused:
		m.Finish()
		m.backToMenu = true
		if m.standalone {
			return m, tea.Quit
		}
		return m, nil
	}

	if m.paused {
		return m, nil
	}
	if code := KeyCodeFor(msg); code != "" {
		if m.holds.Touch(code, time.Now()) {
			m.logger.Debug("key down", "code", code)
		}
		m.session.Keys().Press(code)
	}
	return m, nil
}

// togglePause stops or resumes the scheduler. Held keys are dropped on
// pause since their releases would go unseen.
func (m *PlayModel) togglePause() {
	if m.paused {
		if err := m.session.Start(); err != nil {
			m.logger.Error("could not resume", "error", err)
			return
		}
		m.paused = false
		return
	}
	m.session.Stop()
	m.holds.Reset()
	m.session.Keys().ReleaseAll()
	m.paused = true
}

// Finish stops the session and records the run. Only the first call on
// any copy of the model has an effect.
func (m PlayModel) Finish() {
	m.end.once.Do(m.finish)
}

func (m PlayModel) finish() {
	m.end.done.Store(true)
	m.session.Close()
	m.sink.Close()

	st := m.session.Character().Stats()
	level := m.session.Level().ID
	m.logger.Info("run finished", "ticks", st.Ticks, "jumps", st.Jumps,
		"landings", st.Landings, "max_left", st.MaxLeft)

	if m.store == nil || st.Ticks == 0 {
		return
	}
	if _, err := m.store.SaveRun(storage.NewRunEntry(level, m.player, st)); err != nil {
		m.logger.Warn("could not save run", "error", err)
	}
}

// layout sizes the play area to leave room for the help view.
func (m *PlayModel) layout() {
	h := m.config.ScreenH - m.helpHeight()
	if h < 1 {
		h = 1
	}
	m.screen.Resize(m.config.ScreenW, h)
}

func (m PlayModel) helpHeight() int {
	if !m.help.ShowAll {
		return 1
	}
	n := 0
	for _, col := range m.keys.FullHelp() {
		n = max(n, len(col))
	}
	return n
}

// saveScreenshot saves the current screen to a file.
func (m *PlayModel) saveScreenshot() {
	m.session.Render(m.screen, m.frame, m.paused)

	dir := filepath.Join(os.Getenv("HOME"), ".platformer", "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.txt", m.session.Level().ID, timestamp)
	path := filepath.Join(dir, filename)

	//nolint:errcheck // Best-effort save, game continues regardless
	os.WriteFile(path, []byte(m.screen.String()), 0o600)
}

// View renders the current state to a string for display.
func (m PlayModel) View() string {
	if m.quitting || m.backToMenu {
		return ""
	}

	m.session.Render(m.screen, m.frame, m.paused)

	var b strings.Builder
	b.WriteString(RenderScreen(m.screen, platformer.HUDHeight))
	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// Frame returns the most recently drawn frame.
func (m PlayModel) Frame() motion.Frame {
	return m.frame
}

// Paused reports whether the run is paused.
func (m PlayModel) Paused() bool {
	return m.paused
}

// IsQuitting returns true if user requested to quit entirely.
func (m PlayModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m PlayModel) BackToMenu() bool {
	return m.backToMenu
}

// Run plays one level in the terminal until the user quits.
func Run(cfg config.Config, level scene.Level, store *storage.Store, rc core.RuntimeConfig, logger *log.Logger) error {
	model, err := NewPlayModel(cfg, level, store, rc, "", logger)
	if err != nil {
		return err
	}
	model.standalone = true

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(), // Use alternate screen buffer
	)

	final, err := p.Run()
	if pm, ok := final.(PlayModel); ok {
		pm.Finish()
	}
	return err
}
