// Package tui is the interactive finder: type a project name, see where it
// lives, what it contains and its tree.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"charon/internal/agent"
	"charon/internal/resolver"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// Config holds what the CLI layer hands to the TUI.
type Config struct {
	Root     string
	Resolver *resolver.Resolver
	// Agent is optional; without it /ask is disabled.
	Agent *agent.FileAgent
	// Record is called after every resolution. May be nil.
	Record func(query string, res resolver.Result)
}

type state int

const (
	stateIdle state = iota
	stateSearching
	stateAsking
)

type entry struct {
	role    string
	content string
}

// resultMsg is sent when a resolution completes.
type resultMsg struct {
	query  string
	result resolver.Result
}

// answerMsg is sent when the file agent completes.
type answerMsg struct {
	answer string
	err    error
}

// Model is the Bubble Tea model of the finder.
type Model struct {
	cfg         Config
	viewport    viewport.Model
	input       textinput.Model
	spinner     spinner.Model
	renderer    *glamour.TermRenderer
	entries     []entry
	state       state
	width       int
	height      int
	initialized bool
}

const helpText = `Type a project name and press Enter.

Commands:
  /ask <project> <task>  - ask the file agent which files to change
  /clear                 - clear the screen
  /exit                  - quit
  /help                  - show this help`

// New creates the finder model.
func New(cfg Config) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = selectedStyle

	ti := textinput.New()
	ti.Placeholder = "Project name, e.g. charon"
	ti.CharLimit = 500
	ti.Focus()

	return Model{cfg: cfg, spinner: sp, input: ti}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) initViewport(width, height int) {
	m.width = width
	m.height = height

	// viewport + status bar + input
	vpHeight := height - 3
	if vpHeight < 5 {
		vpHeight = 5
	}
	m.viewport = viewport.New(width, vpHeight)
	m.input.Width = width - 4

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-2),
	)
	if err == nil {
		m.renderer = r
	}
	m.initialized = true
	m.refresh()
}

func resolve(cfg Config, query string) tea.Cmd {
	return func() tea.Msg {
		res := cfg.Resolver.ResolveFolder(context.Background(), cfg.Root, query)
		if cfg.Record != nil {
			cfg.Record(query, res)
		}
		return resultMsg{query: query, result: res}
	}
}

func ask(a *agent.FileAgent, project, task string) tea.Cmd {
	return func() tea.Msg {
		rep, err := a.Ask(context.Background(), project, task)
		if err != nil {
			if rep.Result.Message != "" && !rep.Result.Success {
				return answerMsg{err: errors.New(rep.Result.Message)}
			}
			return answerMsg{err: err}
		}
		return answerMsg{answer: rep.Answer}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.initViewport(msg.Width, msg.Height)
		return m, nil

	case resultMsg:
		m.state = stateIdle
		m.entries = append(m.entries, entry{role: "result", content: FormatResult(msg.result)})
		m.refresh()
		return m, nil

	case answerMsg:
		m.state = stateIdle
		if msg.err != nil {
			m.entries = append(m.entries, entry{role: "error", content: msg.err.Error()})
		} else {
			m.entries = append(m.entries, entry{role: "result", content: msg.answer})
		}
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if m.state != stateIdle {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			m.refresh()
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.state != stateIdle {
			return m, nil
		}
		if msg.Type == tea.KeyEnter {
			return m.submit(strings.TrimSpace(m.input.Value()))
		}
	}

	if m.state == stateIdle {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m Model) submit(line string) (tea.Model, tea.Cmd) {
	if line == "" {
		return m, nil
	}
	m.input.Reset()

	fields := strings.Fields(line)
	switch fields[0] {
	case "/exit", "/quit":
		return m, tea.Quit
	case "/clear":
		m.entries = nil
		m.refresh()
		return m, nil
	case "/help":
		m.entries = append(m.entries, entry{role: "system", content: helpText})
		m.refresh()
		return m, nil
	case "/ask":
		if m.cfg.Agent == nil {
			m.entries = append(m.entries, entry{role: "error", content: "the file agent is not configured"})
			m.refresh()
			return m, nil
		}
		if len(fields) < 3 {
			m.entries = append(m.entries, entry{role: "error", content: "usage: /ask <project> <task>"})
			m.refresh()
			return m, nil
		}
		m.entries = append(m.entries, entry{role: "user", content: line})
		m.state = stateAsking
		m.refresh()
		return m, tea.Batch(m.spinner.Tick, ask(m.cfg.Agent, fields[1], strings.Join(fields[2:], " ")))
	}

	m.entries = append(m.entries, entry{role: "user", content: line})
	m.state = stateSearching
	m.refresh()
	return m, tea.Batch(m.spinner.Tick, resolve(m.cfg, line))
}

func (m *Model) refresh() {
	if !m.initialized {
		return
	}
	m.viewport.SetContent(m.renderEntries())
	m.viewport.GotoBottom()
}

func (m Model) renderMarkdown(content string) string {
	if m.renderer == nil {
		return resultStyle.Render(content)
	}
	rendered, err := m.renderer.Render(content)
	if err != nil {
		return resultStyle.Render(content)
	}
	return strings.TrimRight(rendered, "\n")
}

func (m Model) renderEntries() string {
	if len(m.entries) == 0 && m.state == stateIdle {
		return dimStyle.Render("Welcome to charon! " + helpText)
	}

	var sb strings.Builder
	for _, e := range m.entries {
		switch e.role {
		case "user":
			sb.WriteString(queryStyle.Render("> ") + e.content + "\n\n")
		case "result":
			sb.WriteString(m.renderMarkdown(e.content) + "\n\n")
		case "error":
			sb.WriteString(errorStyle.Render("Error: "+e.content) + "\n\n")
		case "system":
			sb.WriteString(dimStyle.Render(e.content) + "\n\n")
		}
	}

	if m.state != stateIdle {
		label := "Searching..."
		if m.state == stateAsking {
			label = "Asking the file agent..."
		}
		sb.WriteString(m.spinner.View() + " " + dimStyle.Render(label) + "\n")
	}
	return sb.String()
}

func (m Model) View() string {
	if !m.initialized {
		return ""
	}

	status := "idle"
	switch m.state {
	case stateSearching:
		status = "searching..."
	case stateAsking:
		status = "asking..."
	}
	statusBar := statusBarStyle.
		Width(m.width).
		Render(fmt.Sprintf(" charon • %s • %s", m.cfg.Root, status))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewport.View(),
		statusBar,
		m.input.View(),
	)
}

// Run starts the finder.
func Run(cfg Config) error {
	p := tea.NewProgram(New(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
