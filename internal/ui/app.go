package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/mudlark/mudlark/internal/config"
	"github.com/mudlark/mudlark/internal/protocol"
	"github.com/mudlark/mudlark/internal/render"
	"github.com/mudlark/mudlark/internal/source"
	"github.com/mudlark/mudlark/internal/view"
	"github.com/mudlark/mudlark/pkg/highlight"
)

// Mode represents the current UI mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
	ModeGoto
	ModeStream
)

// ModelOptions configures a new session view.
type ModelOptions struct {
	TranscriptPath string
	ConfigPath     string
	Stream         string // initial stream filter, "" for all
	Logger         *zap.Logger
}

// Model is the main application model: one session transcript run
// through parse/highlight/render per visible line.
type Model struct {
	viewport *view.Viewport
	session  *source.TranscriptSource
	filtered *source.FilteredProvider

	cfg        *config.Config
	configPath string
	engine     *highlight.Engine
	renderer   *render.SegmentRenderer
	raw        *render.RawRenderer
	logger     *zap.Logger

	input textinput.Model
	mode  Mode

	width  int
	height int

	rawMode      bool
	following    bool
	streamFilter string

	// Search state
	searchTerm    string
	searchResults []int
	searchIndex   int

	// Sound cues already triggered, keyed by transcript line, so a
	// line does not re-ring on every repaint.
	soundSeen map[int]bool
	sounds    []highlight.Sound

	filename string
}

// NewModelWithOptions builds the full pipeline for one transcript.
func NewModelWithOptions(opts ModelOptions) (*Model, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	session, err := source.NewTranscriptSource(opts.TranscriptPath)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}

	engine := highlight.NewEngine()
	for _, re := range engine.Reload(cfg.Rules()) {
		logger.Warn("highlight rule disabled",
			zap.Int("rule", re.Index),
			zap.String("pattern", re.Rule.Pattern),
			zap.Error(re.Err))
	}

	filtered := source.NewFilteredProvider(session)

	m := &Model{
		session:    session,
		filtered:   filtered,
		cfg:        cfg,
		configPath: opts.ConfigPath,
		engine:     engine,
		renderer:   render.NewSegmentRenderer(cfg),
		raw:        render.NewRawRenderer(),
		logger:     logger,
		mode:       ModeNormal,
		soundSeen:  make(map[int]bool),
		filename:   opts.TranscriptPath,
	}

	m.viewport = view.NewViewport(80, 24)
	m.viewport.SetProvider(filtered)
	m.viewport.SetShowLineNumbers(cfg.Display.ShowLineNumbers)
	m.viewport.SetRenderFunc(m.renderLine)

	if opts.Stream != "" {
		m.setStreamFilter(opts.Stream)
	}

	ti := textinput.New()
	ti.Placeholder = "Search..."
	ti.CharLimit = 256
	m.input = ti

	return m, nil
}

// renderLine is the per-line pipeline: parse the wire markup,
// run the highlight engine, render the result. Raw mode bypasses the
// parser and shows the markup itself.
func (m *Model) renderLine(line *source.Line) string {
	raw := string(line.Raw)
	if m.rawMode {
		return m.raw.Render(raw)
	}

	parsed := protocol.ParseLine(raw)
	segs, sounds := m.engine.Apply(parsed.Segments, parsed.Stream)

	if len(sounds) > 0 && !m.soundSeen[line.OriginalIndex] {
		m.soundSeen[line.OriginalIndex] = true
		m.sounds = append(m.sounds, sounds...)
		for _, snd := range sounds {
			m.logger.Info("sound trigger",
				zap.String("file", snd.File),
				zap.Float64("volume", snd.Volume),
				zap.Int("line", line.OriginalIndex))
		}
	}

	return m.renderer.Render(segs)
}

// tickMsg drives follow mode: each tick checks the transcript for new
// lines while the capture process appends to it.
type tickMsg time.Time

func followTick() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		if !m.following {
			return m, nil
		}
		m.checkNewLines()
		return m, followTick()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Reserve 2 lines for status bar and help line.
		m.viewport.SetSize(msg.Width, msg.Height-2)
		return m, nil
	}

	return m, nil
}

func keyMatches(key string, bindings []string) bool {
	for _, b := range bindings {
		if key == b {
			return true
		}
	}
	return false
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode != ModeNormal {
		return m.handleInputKey(msg)
	}

	key := msg.String()
	kb := m.cfg.Keybindings

	switch {
	case keyMatches(key, kb.Quit):
		return m, tea.Quit

	case keyMatches(key, kb.ScrollDown):
		m.viewport.ScrollDown(1)
	case keyMatches(key, kb.ScrollUp):
		m.viewport.ScrollUp(1)

	case keyMatches(key, kb.PageDown):
		m.viewport.PageDown()
	case keyMatches(key, kb.PageUp):
		m.viewport.PageUp()

	case keyMatches(key, kb.Top):
		m.viewport.GotoTop()
	case keyMatches(key, kb.Bottom):
		m.viewport.GotoBottom()

	case keyMatches(key, kb.Search):
		m.mode = ModeSearch
		m.input.SetValue("")
		m.input.Placeholder = "Search..."
		m.input.Focus()
		return m, textinput.Blink

	case keyMatches(key, kb.Goto):
		m.mode = ModeGoto
		m.input.SetValue("")
		m.input.Placeholder = "Line number..."
		m.input.Focus()
		return m, textinput.Blink

	case keyMatches(key, kb.Stream):
		m.mode = ModeStream
		m.input.SetValue(m.streamFilter)
		m.input.Placeholder = "Stream (empty for all)..."
		m.input.Focus()
		return m, textinput.Blink

	case keyMatches(key, kb.RawMode):
		m.rawMode = !m.rawMode

	case keyMatches(key, kb.Follow):
		m.following = !m.following
		if m.following {
			m.checkNewLines()
			m.viewport.GotoBottom()
			return m, followTick()
		}

	case keyMatches(key, kb.Reload):
		m.reloadRules()

	case keyMatches(key, kb.NextMatch):
		m.nextSearchResult()
	case keyMatches(key, kb.PrevMatch):
		m.prevSearchResult()
	}

	return m, nil
}

func (m *Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		value := m.input.Value()
		switch m.mode {
		case ModeSearch:
			m.searchTerm = value
			m.performSearch()
		case ModeGoto:
			var lineNum int
			fmt.Sscanf(value, "%d", &lineNum)
			if lineNum > 0 {
				m.viewport.GotoLine(lineNum - 1)
			}
		case ModeStream:
			m.setStreamFilter(value)
		}
		m.closeInput()
		return m, nil

	case "esc":
		m.closeInput()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) closeInput() {
	m.mode = ModeNormal
	m.input.Blur()
	m.input.Placeholder = "Search..."
}

// checkNewLines picks up transcript growth: reindex new lines, refresh
// any filtered view, and keep the bottom in sight.
func (m *Model) checkNewLines() {
	added, err := m.session.Refresh()
	if err != nil {
		m.logger.Warn("transcript refresh failed", zap.Error(err))
		return
	}
	if added > 0 {
		m.filtered.MarkDirty()
		m.viewport.GotoBottom()
	}
}

// reloadRules re-reads the config the session was started with and
// swaps in a fresh rule set.
func (m *Model) reloadRules() {
	cfg, err := config.Load(m.configPath)
	if err != nil {
		m.logger.Warn("config reload failed", zap.Error(err))
		return
	}
	m.cfg = cfg
	m.renderer = render.NewSegmentRenderer(cfg)
	for _, re := range m.engine.Reload(cfg.Rules()) {
		m.logger.Warn("highlight rule disabled",
			zap.Int("rule", re.Index),
			zap.String("pattern", re.Rule.Pattern),
			zap.Error(re.Err))
	}
	m.soundSeen = make(map[int]bool)
	m.sounds = nil
}

// setStreamFilter limits the view to one stream ("" shows all).
func (m *Model) setStreamFilter(stream string) {
	m.streamFilter = stream
	if stream == "" {
		m.filtered.SetPredicate(nil)
		return
	}
	m.filtered.SetPredicate(func(raw []byte) bool {
		return strings.EqualFold(protocol.StreamOf(string(raw)), stream)
	})
}

// performSearch finds lines whose parsed plain text contains the term.
func (m *Model) performSearch() {
	m.searchResults = nil
	if m.searchTerm == "" {
		return
	}

	for i := 0; i < m.filtered.LineCount(); i++ {
		line, err := m.filtered.GetLine(i)
		if err != nil || line == nil {
			continue
		}
		if strings.Contains(protocol.ParseLine(string(line.Raw)).Text(), m.searchTerm) {
			m.searchResults = append(m.searchResults, i)
		}
	}

	if len(m.searchResults) > 0 {
		m.searchIndex = 0
		m.viewport.GotoLine(m.searchResults[0])
	}
}

func (m *Model) nextSearchResult() {
	if len(m.searchResults) == 0 {
		return
	}
	m.searchIndex = (m.searchIndex + 1) % len(m.searchResults)
	m.viewport.GotoLine(m.searchResults[m.searchIndex])
}

func (m *Model) prevSearchResult() {
	if len(m.searchResults) == 0 {
		return
	}
	m.searchIndex--
	if m.searchIndex < 0 {
		m.searchIndex = len(m.searchResults) - 1
	}
	m.viewport.GotoLine(m.searchResults[m.searchIndex])
}

// View implements tea.Model.
func (m *Model) View() string {
	var builder strings.Builder

	builder.WriteString(m.viewport.Render())
	builder.WriteString("\n")

	statusStyle := lipgloss.NewStyle().
		Background(lipgloss.Color(m.cfg.Theme.StatusBar)).
		Foreground(lipgloss.Color(m.cfg.Theme.StatusBarText)).
		Width(m.width)

	var status string
	switch m.mode {
	case ModeSearch:
		status = "/" + m.input.View()
	case ModeGoto:
		status = ":" + m.input.View()
	case ModeStream:
		status = "stream:" + m.input.View()
	default:
		lineInfo := fmt.Sprintf("L%d/%d",
			m.viewport.CurrentLine()+1,
			m.filtered.LineCount())
		percent := fmt.Sprintf("%.0f%%", m.viewport.PercentScrolled())

		extras := ""
		if m.streamFilter != "" {
			extras += fmt.Sprintf(" [stream:%s]", m.streamFilter)
		}
		if m.rawMode {
			extras += " [raw]"
		}
		if m.following {
			extras += " [follow]"
		}
		if m.searchTerm != "" {
			extras += fmt.Sprintf(" [%d matches]", len(m.searchResults))
		}
		if n := len(m.sounds); n > 0 {
			extras += fmt.Sprintf(" ♪%d", n)
		}

		status = fmt.Sprintf(" %s  %s  %s%s", m.filename, lineInfo, percent, extras)
	}

	builder.WriteString(statusStyle.Render(status))
	builder.WriteString("\n")

	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	help := "j/k:scroll  f/b:page  g/G:top/bottom  /:search  s:stream  F:follow  tab:raw  r:reload rules  q:quit"
	builder.WriteString(helpStyle.Render(help))

	return builder.String()
}

// Close cleans up resources.
func (m *Model) Close() error {
	if m.session != nil {
		return m.session.Close()
	}
	return nil
}
