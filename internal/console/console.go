// Package console is the operator's terminal surface: a cue list to fire
// manually, the active clip registry with live progress, and the lifecycle
// event log. It talks to the engine only through the public command API.
package console

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"

	"github.com/marmorek/animos/internal/engine"
	"github.com/marmorek/animos/internal/project"
	"github.com/marmorek/animos/internal/types"
)

// Engine is the command surface the console drives.
type Engine interface {
	TriggerCue(cueID string) (types.ClipID, error)
	StopClip(clip types.ClipID, fadeSeconds float64) error
	PauseClip(clip types.ClipID) error
	ResumeClip(clip types.ClipID) error
	StopAll(fadeSeconds float64) error
	ActiveClips() []engine.ClipInfo
	Stats() engine.Diagnostics
}

// Styles used across the console panes.
type styles struct {
	Title    lipgloss.Style
	Selected lipgloss.Style
	Normal   lipgloss.Style
	Label    lipgloss.Style
	Playing  lipgloss.Style
	Stopping lipgloss.Style
	Paused   lipgloss.Style
	Warning  lipgloss.Style
	Bar      lipgloss.Style
}

func defaultStyles() *styles {
	return &styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")),
		Selected: lipgloss.NewStyle().Background(lipgloss.Color("7")).Foreground(lipgloss.Color("0")),
		Normal:   lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
		Label:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Playing:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Stopping: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Paused:   lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Warning:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		Bar:      lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	}
}

type tickMsg time.Time

type eventMsg engine.Event

// Model is the bubbletea model for the console.
type Model struct {
	eng    Engine
	proj   *project.Project
	styles *styles

	cues     []*project.Cue
	cursor   int
	lastClip types.ClipID

	events   []string
	eventCh  chan engine.Event
	eventLog viewport.Model

	width  int
	height int
	ready  bool
}

// New builds the console. Call Events() to get the channel main subscribes
// to the engine.
func New(eng Engine, proj *project.Project) *Model {
	cues := make([]*project.Cue, 0, len(proj.Cues))
	for i := range proj.Cues {
		cues = append(cues, &proj.Cues[i])
	}
	sort.SliceStable(cues, func(i, j int) bool { return cues[i].Number < cues[j].Number })

	return &Model{
		eng:     eng,
		proj:    proj,
		styles:  defaultStyles(),
		cues:    cues,
		eventCh: make(chan engine.Event, 64),
	}
}

// Events is the channel the engine's event subscription should feed.
func (m *Model) Events() chan<- engine.Event { return m.eventCh }

func (m *Model) Init() tea.Cmd {
	return tea.Batch(tick(), m.waitForEvent())
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) waitForEvent() tea.Cmd {
	return func() tea.Msg { return eventMsg(<-m.eventCh) }
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		logHeight := msg.Height - len(m.cues) - 14
		if logHeight < 3 {
			logHeight = 3
		}
		if !m.ready {
			m.eventLog = viewport.New(msg.Width-4, logHeight)
			m.ready = true
		} else {
			m.eventLog.Width = msg.Width - 4
			m.eventLog.Height = logHeight
		}
		m.refreshLog()

	case tickMsg:
		return m, tick()

	case eventMsg:
		m.appendEvent(engine.Event(msg))
		return m, m.waitForEvent()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.cues)-1 {
			m.cursor++
		}
	case "enter", " ":
		if m.cursor < len(m.cues) {
			m.fire(m.cues[m.cursor].ID)
		}
	case "s":
		if m.lastClip != 0 {
			_ = m.eng.StopClip(m.lastClip, 0)
		}
	case "f":
		if m.lastClip != 0 {
			_ = m.eng.StopClip(m.lastClip, 2)
		}
	case "p":
		if m.lastClip != 0 {
			_ = m.eng.PauseClip(m.lastClip)
		}
	case "r":
		if m.lastClip != 0 {
			_ = m.eng.ResumeClip(m.lastClip)
		}
	case "S":
		_ = m.eng.StopAll(0)
	default:
		// digits fire cues by number
		if n := int(msg.String()[0] - '0'); len(msg.String()) == 1 && n >= 1 && n <= 9 {
			if cue, ok := m.proj.CueByNumber(n); ok {
				m.fire(cue.ID)
			}
		}
	}
	return m, nil
}

func (m *Model) fire(cueID string) {
	clip, err := m.eng.TriggerCue(cueID)
	if err != nil {
		m.events = append(m.events, fmt.Sprintf("cue %s rejected: %v", cueID, err))
		m.refreshLog()
		return
	}
	m.lastClip = clip
}

func (m *Model) appendEvent(ev engine.Event) {
	var line string
	switch ev.Type {
	case engine.EventStarted:
		line = fmt.Sprintf("clip %d started (cue %s, tracks %v)", ev.ClipID, ev.CueID, ev.Tracks)
	case engine.EventTracksReleased:
		line = fmt.Sprintf("clip %d released %v (%s)", ev.ClipID, ev.Tracks, ev.Reason)
	case engine.EventFinished:
		line = fmt.Sprintf("clip %d finished", ev.ClipID)
	case engine.EventWarning:
		line = "warning: " + ev.Message
	}
	m.events = append(m.events, line)
	if len(m.events) > 200 {
		m.events = m.events[len(m.events)-200:]
	}
	m.refreshLog()
}

func (m *Model) refreshLog() {
	if !m.ready {
		return
	}
	m.eventLog.SetContent(strings.Join(m.events, "\n"))
	m.eventLog.GotoBottom()
}

// cueColor assigns each cue a stable hue along a ramp, like the mixer's
// level meters.
func (m *Model) cueColor(i int) lipgloss.Color {
	if len(m.cues) == 0 {
		return lipgloss.Color("15")
	}
	hue := 360 * float64(i) / float64(len(m.cues))
	c := colorful.Hsv(hue, 0.55, 0.95)
	return lipgloss.Color(c.Hex())
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("animos — " + m.proj.Name))
	b.WriteString("\n\n")

	b.WriteString(m.styles.Label.Render("CUES"))
	b.WriteString("\n")
	for i, cue := range m.cues {
		label := fmt.Sprintf(" %d  %-24s %s", cue.Number, cue.Name, cue.Action)
		style := m.styles.Normal.Foreground(m.cueColor(i))
		if i == m.cursor {
			style = m.styles.Selected
		}
		if cue.Disabled {
			style = m.styles.Label
		}
		b.WriteString(style.Render(label))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Label.Render("ACTIVE CLIPS"))
	b.WriteString("\n")
	clips := m.eng.ActiveClips()
	if len(clips) == 0 {
		b.WriteString(m.styles.Label.Render(" (none)"))
		b.WriteString("\n")
	}
	for _, clip := range clips {
		style := m.styles.Playing
		switch clip.State {
		case types.ClipStopping:
			style = m.styles.Stopping
		case types.ClipPaused:
			style = m.styles.Paused
		}
		line := fmt.Sprintf(" #%d %-12s %s %s tracks=%v",
			clip.ID, clip.AnimationID, clip.State, progressBar(clip.Progress, 20), clip.Tracks)
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Label.Render("EVENTS"))
	b.WriteString("\n")
	if m.ready {
		b.WriteString(m.eventLog.View())
		b.WriteString("\n")
	}

	stats := m.eng.Stats()
	b.WriteString(m.styles.Label.Render(fmt.Sprintf(
		"\n ticks=%d suppressed=%d formation-skips=%d   enter/1-9 go · s stop · f fade · p/r pause · S stop all · q quit",
		stats.Ticks, stats.BadSamples, stats.FormationSkips)))
	return b.String()
}

func progressBar(p float64, width int) string {
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	filled := int(p * float64(width))
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", width-filled) + "]"
}

// Run starts the console program on the terminal's alternate screen. It
// assumes a real terminal; running without the console is the caller's
// choice (the --headless flag).
func Run(m *Model) error {
	if termenv.ColorProfile() == termenv.Ascii {
		// plain terminals still work, just without the hue ramp
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
