// Package tui provides the Bubble Tea drawing interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/wwpm/internal/generator"
	"github.com/verte-zerg/wwpm/internal/model"
	"github.com/verte-zerg/wwpm/internal/session"
	"github.com/verte-zerg/wwpm/internal/stats"
	"github.com/verte-zerg/wwpm/internal/store"
	"github.com/verte-zerg/wwpm/internal/surface"
)

const (
	headerRows  = 3
	footerRows  = 1
	canvasTop   = headerRows + 1
	canvasLeft  = 1
	defaultCols = 60
	defaultRows = 12
	submitLimit = 15 * time.Second
)

type phase int

const (
	phasePlaying phase = iota
	phaseUsername
	phaseSubmitting
	phaseDone
)

// Options wires the collaborators of the UI.
type Options struct {
	Config      model.Config
	Words       []string
	Generator   *generator.Generator
	Recognizer  session.Recognizer
	Leaderboard session.Leaderboard
	Store       *store.Store
	Now         func() time.Time
}

type recognizedMsg struct {
	game   int
	result session.Result
}

type submittedMsg struct {
	game int
	sub  session.Submission
	err  error
}

// Model implements the Bubble Tea drawing UI.
type Model struct {
	opts Options

	ctrl    *session.Controller
	canvas  *surface.Braille
	raster  *surface.Raster
	game    int
	phase   phase
	drawing bool

	width  int
	height int

	spinner  spinner.Model
	spinning bool
	input    textinput.Model

	status string
	board  []model.LeaderboardEntry

	lastScore int
	hasLast   bool
	bestScore int
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	targetStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0"))
	matchStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	missStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	canvasStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#6E6E6E"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// NewModel constructs the UI and starts the first session.
func NewModel(opts Options) (*Model, error) {
	if opts.Generator == nil {
		opts.Generator = generator.New()
	}
	if opts.Recognizer == nil {
		return nil, errors.New("tui: recognizer is required")
	}
	input := textinput.New()
	input.Prompt = "Name: "
	input.Placeholder = "abc"
	input.CharLimit = session.UsernameLength

	m := &Model{
		opts:    opts,
		canvas:  surface.NewBraille(defaultCols, defaultRows),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		input:   input,
	}
	dw, dh := m.canvas.DotSize()
	m.raster = surface.NewRaster(dw, dh)
	if opts.Config.Scale > 0 {
		m.raster.Scale = float64(opts.Config.Scale)
	}
	if err := m.newGame(); err != nil {
		return nil, err
	}
	m.loadFooterStats()
	return m, nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case tea.MouseMsg:
		if m.phase != phasePlaying {
			return m, nil
		}
		return m, m.handleMouse(msg)
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case recognizedMsg:
		return m, m.handleRecognized(msg)
	case submittedMsg:
		return m, m.handleSubmitted(msg)
	case spinner.TickMsg:
		if m.ctrl.Snapshot().Pending == 0 && m.phase != phaseSubmitting {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	default:
		if m.phase == phaseUsername {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		return m, nil
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	v := m.ctrl.Snapshot()
	var b strings.Builder
	b.WriteString(titleStyle.Render("WWPM"))
	b.WriteString("\n")
	b.WriteString(m.renderTarget(v))
	b.WriteString("\n")
	b.WriteString(m.renderStatus(v))
	b.WriteString("\n")
	switch m.phase {
	case phasePlaying:
		b.WriteString(canvasStyle.Render(m.canvas.String()))
	default:
		b.WriteString(m.renderResult(v))
	}
	if footer := m.renderFooter(v); footer != "" {
		b.WriteString("\n")
		b.WriteString(footer)
	}
	return b.String()
}

func (m *Model) newGame() error {
	words, err := m.opts.Generator.Generate(m.opts.Words, m.opts.Config.Words, m.opts.Config.MinLen, m.opts.Config.MaxLen)
	if err != nil {
		return fmt.Errorf("failed to pick words: %w", err)
	}
	ctrl, err := session.New(session.Options{
		Words:       words,
		Canvas:      &surface.Layered{Display: m.canvas, Raster: m.raster},
		Leaderboard: m.opts.Leaderboard,
		Now:         m.opts.Now,
		Logf:        log.Printf,
	})
	if err != nil {
		return err
	}
	m.ctrl = ctrl
	m.game++
	m.phase = phasePlaying
	m.drawing = false
	m.status = ""
	m.board = nil
	m.input.Reset()
	m.input.Blur()
	log.Printf("new game %d: %s", m.game, strings.Join(words, " "))
	return nil
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	cols := width - 2
	rows := height - headerRows - footerRows - 2
	if cols < 1 || rows < 1 {
		return
	}
	m.canvas.Resize(cols, rows)
	dw, dh := m.canvas.DotSize()
	m.raster.Resize(dw, dh)
	m.ctrl.Redraw()
}

// cellPoint maps a terminal cell to the center of its braille cell in dot
// space. Points outside the canvas are clamped unless strict is set.
func (m *Model) cellPoint(x, y int, strict bool) (model.Point, bool) {
	cols, rows := m.canvas.Size()
	cx := x - canvasLeft
	cy := y - canvasTop
	if cx < 0 || cy < 0 || cx >= cols || cy >= rows {
		if strict {
			return model.Point{}, false
		}
		cx = clamp(cx, 0, cols-1)
		cy = clamp(cy, 0, rows-1)
	}
	return model.Point{X: float64(cx*2 + 1), Y: float64(cy*4 + 2)}, true
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return nil
		}
		p, ok := m.cellPoint(msg.X, msg.Y, true)
		if !ok {
			return nil
		}
		m.drawing = m.ctrl.OnPressAt(p)
	case tea.MouseActionMotion:
		if !m.drawing {
			return nil
		}
		p, _ := m.cellPoint(msg.X, msg.Y, false)
		m.ctrl.OnMoveTo(p)
	case tea.MouseActionRelease:
		if !m.drawing {
			return nil
		}
		m.drawing = false
		req, ok := m.ctrl.OnRelease()
		if !ok {
			return nil
		}
		return tea.Batch(m.recognizeCmd(req), m.startSpinner())
	}
	return nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		return tea.Quit
	}
	switch m.phase {
	case phaseUsername:
		switch msg.Type {
		case tea.KeyEnter:
			name := m.input.Value()
			if err := session.ValidateUsername(name); err != nil {
				m.status = missStyle.Render(fmt.Sprintf("Name must be %d characters", session.UsernameLength))
				return nil
			}
			m.phase = phaseSubmitting
			m.status = ""
			m.input.Blur()
			return tea.Batch(m.submitCmd(name), m.startSpinner())
		case tea.KeyEsc:
			m.phase = phaseDone
			m.input.Blur()
			return nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return cmd
	case phaseSubmitting:
		return nil
	}

	switch msg.String() {
	case "q", "esc":
		return tea.Quit
	case "ctrl+n", "n":
		if msg.String() == "n" && m.phase != phaseDone {
			return nil
		}
		if err := m.newGame(); err != nil {
			m.status = missStyle.Render(err.Error())
		}
		return nil
	case "ctrl+z", "ctrl+u", "u":
		if m.phase == phasePlaying {
			m.ctrl.OnUndo()
		}
	case "c":
		if m.phase == phasePlaying {
			m.ctrl.OnClear()
		}
	}
	return nil
}

func (m *Model) handleRecognized(msg recognizedMsg) tea.Cmd {
	if msg.game != m.game {
		return nil
	}
	switch m.ctrl.Resolve(msg.result) {
	case session.OutcomeMatch:
		m.status = matchStyle.Render("✓ " + msg.result.Text)
	case session.OutcomeMismatch:
		m.status = ""
	case session.OutcomeFailed:
		m.status = missStyle.Render("could not read that, keep drawing or undo")
	case session.OutcomeCompleted:
		return m.finish()
	}
	return nil
}

func (m *Model) finish() tea.Cmd {
	m.drawing = false
	if st, err := m.ctrl.Stats(m.opts.Config.Lang); err == nil {
		m.lastScore = st.Score
		m.hasLast = true
		if st.Score > m.bestScore {
			m.bestScore = st.Score
		}
		if m.opts.Store != nil {
			if _, err := m.opts.Store.InsertSession(context.Background(), st); err != nil {
				log.Printf("failed to save session: %v", err)
			}
		}
	}
	if m.opts.Leaderboard == nil {
		m.phase = phaseDone
		return nil
	}
	m.phase = phaseUsername
	return m.input.Focus()
}

func (m *Model) handleSubmitted(msg submittedMsg) tea.Cmd {
	if msg.game != m.game {
		return nil
	}
	if msg.err != nil {
		log.Printf("submit score: %v", msg.err)
		m.phase = phaseUsername
		m.status = missStyle.Render("Submit failed, press enter to retry or esc to skip")
		return m.input.Focus()
	}
	m.phase = phaseDone
	m.board = msg.sub.Top
	if msg.sub.RefreshErr != nil {
		log.Printf("refresh leaderboard: %v", msg.sub.RefreshErr)
		m.board = msg.sub.Stored
		m.status = pendingStyle.Render("Score saved, leaderboard unavailable")
		return nil
	}
	m.status = matchStyle.Render("Score saved")
	return nil
}

func (m *Model) recognizeCmd(req session.Request) tea.Cmd {
	game := m.game
	rec := m.opts.Recognizer
	return func() tea.Msg {
		return recognizedMsg{game: game, result: req.Run(context.Background(), rec)}
	}
}

func (m *Model) submitCmd(name string) tea.Cmd {
	game := m.game
	ctrl := m.ctrl
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), submitLimit)
		defer cancel()
		sub, err := ctrl.SubmitScore(ctx, name)
		return submittedMsg{game: game, sub: sub, err: err}
	}
}

func (m *Model) startSpinner() tea.Cmd {
	if m.spinning {
		return nil
	}
	m.spinning = true
	return m.spinner.Tick
}

func (m *Model) renderTarget(v session.View) string {
	if v.Completed {
		return targetStyle.Render("Done!")
	}
	return fmt.Sprintf("Write: %s  %s", targetStyle.Render(v.Target), pendingStyle.Render(fmt.Sprintf("(%d/%d)", v.Index+1, v.Total)))
}

func (m *Model) renderStatus(v session.View) string {
	var parts []string
	if v.Pending > 0 || m.phase == phaseSubmitting {
		parts = append(parts, m.spinner.View())
	}
	switch {
	case m.status != "":
		parts = append(parts, m.status)
	case v.LastText != "":
		parts = append(parts, missStyle.Render("read: "+v.LastText))
	}
	return strings.Join(parts, " ")
}

func (m *Model) renderResult(v session.View) string {
	lines := []string{
		fmt.Sprintf("%d words in %s: %s", v.Total, v.Elapsed.Round(100*time.Millisecond), targetStyle.Render(fmt.Sprintf("%d WWPM", v.Score))),
		"",
	}
	switch m.phase {
	case phaseUsername:
		lines = append(lines, m.input.View())
	case phaseSubmitting:
		lines = append(lines, "Submitting...")
	case phaseDone:
		if len(m.board) > 0 {
			lines = append(lines, "High Scores")
			lines = append(lines, stats.LeaderboardLines(m.board)...)
		}
	}
	return strings.Join(lines, "\n")
}

func (m *Model) loadFooterStats() {
	if m.opts.Store == nil {
		return
	}
	sessions, err := m.opts.Store.ListSessions(context.Background(), model.StatsConfig{Lang: m.opts.Config.Lang})
	if err != nil {
		log.Printf("failed to load session stats: %v", err)
		return
	}
	if len(sessions) == 0 {
		return
	}
	m.lastScore = sessions[len(sessions)-1].Score
	m.hasLast = true
	for _, s := range sessions {
		if s.Score > m.bestScore {
			m.bestScore = s.Score
		}
	}
}

func (m *Model) renderFooter(v session.View) string {
	var segments []string
	if !v.Completed {
		segments = append(segments, fmt.Sprintf("Word %d/%d", v.Index+1, v.Total))
	}
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("Last %d WWPM", m.lastScore))
		segments = append(segments, fmt.Sprintf("Best %d WWPM", m.bestScore))
	}
	switch m.phase {
	case phasePlaying:
		segments = append(segments, "drag to draw · ctrl+z undo · c clear · ctrl+n new · q quit")
	case phaseUsername:
		segments = append(segments, "enter submit · esc skip")
	case phaseDone:
		segments = append(segments, "n new game · q quit")
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
