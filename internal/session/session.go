// Package session groups an agent's output into a visually framed session
// and keeps a transcript of what was printed.
package session

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"charon/internal/store"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
)

// AgentStyle controls how one agent's session is framed.
type AgentStyle struct {
	Emoji  string
	Name   string
	Color  lipgloss.Color
	Indent int
}

// Styles for the agents charon knows about, keyed by agent name.
var Styles = map[string]AgentStyle{
	"file_agent":        {Emoji: "📂", Name: "File Agent", Color: lipgloss.Color("33"), Indent: 24},
	"calendar_agent":    {Emoji: "📅", Name: "Calendar Agent", Color: lipgloss.Color("160"), Indent: 24},
	"github_agent":      {Emoji: "🐙", Name: "GitHub Agent", Color: lipgloss.Color("33"), Indent: 24},
	"book_agent":        {Emoji: "📚", Name: "Book Agent", Color: lipgloss.Color("34"), Indent: 16},
	"movie_agent":       {Emoji: "🎬", Name: "Movie Agent", Color: lipgloss.Color("160"), Indent: 16},
	"recommender_agent": {Emoji: "⏯️", Name: "Recommender Agent", Color: lipgloss.Color("19"), Indent: 16},
}

// Sink receives sessions when they end.
type Sink func(store.Session) error

var dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

// Tracker holds at most one active session. It is safe for concurrent use.
type Tracker struct {
	mu     sync.Mutex
	out    io.Writer
	sink   Sink
	now    func() time.Time
	active *store.Session
	style  AgentStyle
}

// NewTracker creates a tracker printing to out (stdout when nil). sink may be nil.
func NewTracker(out io.Writer, sink Sink) *Tracker {
	if out == nil {
		out = os.Stdout
	}
	return &Tracker{out: out, sink: sink, now: time.Now}
}

// StoreSink adapts a store to a Sink.
func StoreSink(st store.Store) Sink {
	if st == nil {
		return nil
	}
	return st.SaveSession
}

// Start opens a session for agent and prints its header. An already active
// session is ended first. It returns the new session ID.
func (t *Tracker) Start(agent, query string) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active != nil {
		t.endLocked()
	}

	style, ok := Styles[agent]
	if !ok {
		style = AgentStyle{Emoji: "🤖", Name: agent, Color: lipgloss.Color("245"), Indent: 8}
	}
	t.style = style
	t.active = &store.Session{
		ID:        uuid.NewString(),
		Agent:     agent,
		Query:     query,
		StartedAt: t.now(),
	}

	header := lipgloss.NewStyle().Bold(true).Foreground(style.Color).
		Render(fmt.Sprintf("🔄 %s %s Session Started", style.Emoji, style.Name))
	body := header + "\n" + dimStyle.Render("Query: "+query)
	fmt.Fprintln(t.out, t.panel(body, style.Emoji+" Agent Working"))
	return t.active.ID
}

// Print writes content within the active session. A main response is framed
// in a panel; anything else is an indented line. Without an active session
// content is printed as is.
func (t *Tracker) Print(content string, main bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active == nil {
		fmt.Fprintln(t.out, content)
		return
	}
	t.active.Transcript = append(t.active.Transcript, content)

	color := lipgloss.NewStyle().Foreground(t.style.Color)
	if main {
		label := color.Render(fmt.Sprintf("%s %s:", t.style.Emoji, t.style.Name))
		fmt.Fprintln(t.out, t.panel(label+" "+content, t.style.Emoji+" Response"))
		return
	}
	fmt.Fprintln(t.out, t.indent(color.Render("│")+" "+content))
}

// Log writes a status line: inside the active session if there is one,
// dimmed otherwise.
func (t *Tracker) Log(message string) {
	t.mu.Lock()
	active := t.active != nil
	t.mu.Unlock()

	if active {
		t.Print(message, false)
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, dimStyle.Render(message))
}

// Logf is Log with formatting.
func (t *Tracker) Logf(format string, args ...any) {
	t.Log(fmt.Sprintf(format, args...))
}

// End closes the active session, printing a footer and handing the session
// to the sink. It returns the sink's error, if any.
func (t *Tracker) End() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.endLocked()
}

func (t *Tracker) endLocked() error {
	if t.active == nil {
		return nil
	}
	sess := *t.active
	sess.EndedAt = t.now()
	color := lipgloss.NewStyle().Foreground(t.style.Color)
	fmt.Fprintln(t.out, t.indent(color.Render(fmt.Sprintf("└─ %s completed", t.style.Name))))
	t.active = nil

	if t.sink != nil {
		return t.sink(sess)
	}
	return nil
}

func (t *Tracker) panel(body, title string) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.style.Color).
		Padding(0, 1).
		MarginLeft(t.style.Indent).
		Render(body)
	return t.indent(dimStyle.Render(title)) + "\n" + box
}

func (t *Tracker) indent(s string) string {
	pad := strings.Repeat(" ", t.style.Indent+2)
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = pad + l
	}
	return strings.Join(lines, "\n")
}
