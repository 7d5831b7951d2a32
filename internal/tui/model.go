package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/standardbeagle/dctlforge/internal/dctlfile"
	"github.com/standardbeagle/dctlforge/internal/param"
	"github.com/standardbeagle/dctlforge/internal/roundtrip"
	"github.com/standardbeagle/dctlforge/pkg/events"
)

// WriteFunc persists the edited script text
type WriteFunc func(ctx context.Context, path, text string) error

type writtenMsg struct {
	path string
	err  error
}

// row is one visible line: a group header or a parameter inside an expanded group
type row struct {
	category param.Category
	header   string
	param    *param.ParsedParameter
}

// Model is the bubbletea model for editing the parameters of one script
type Model struct {
	session  *roundtrip.Session
	path     string
	write    WriteFunc
	eventBus *events.EventBus

	keys  KeyMap
	help  help.Model
	input textinput.Model

	rows    []row
	cursor  int
	editing bool

	status string
	err    error
	width  int
	height int
}

type Option func(*Model)

// WithWriter replaces the default locked atomic export
func WithWriter(fn WriteFunc) Option {
	return func(m *Model) { m.write = fn }
}

func WithEventBus(bus *events.EventBus) Option {
	return func(m *Model) { m.eventBus = bus }
}

// New builds an editor over a loaded session. path is where w writes the result.
func New(session *roundtrip.Session, path string, opts ...Option) Model {
	input := textinput.New()
	input.Prompt = "value: "
	input.CharLimit = 64

	m := Model{
		session: session,
		path:    path,
		write:   dctlfile.Export,
		keys:    NewKeyMap(),
		help:    help.New(),
		input:   input,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.rebuild()
	return m
}

// Run starts the editor full-screen and blocks until the user quits
func Run(session *roundtrip.Session, path string, opts ...Option) error {
	_, err := tea.NewProgram(New(session, path, opts...), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case writtenMsg:
		if msg.err != nil {
			m.err = msg.err
			m.status = ""
			return m, nil
		}
		m.err = nil
		m.status = "wrote " + msg.path
		m.publish(events.FileExported, map[string]interface{}{"path": msg.path})
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.updateEditing(msg)
		}
		return m.updateBrowsing(msg)
	}
	return m, nil
}

func (m Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.editing = false
		m.input.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Edit):
		p := m.selected()
		m.editing = false
		m.input.Blur()
		if p == nil {
			return m, nil
		}
		v, err := roundtrip.ParseInput(p, m.input.Value())
		if err == nil {
			err = m.session.Update(p.ID, v)
		}
		if err != nil {
			m.err = err
			m.status = ""
			return m, nil
		}
		m.err = nil
		m.status = "set " + p.Name
		m.publish(events.ParameterEdited, map[string]interface{}{"name": p.Name, "value": m.input.Value()})
		m.rebuild()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.ToggleGroup):
		m.toggleCurrent()

	case key.Matches(msg, m.keys.Edit):
		p := m.selected()
		if p == nil {
			m.toggleCurrent()
			return m, nil
		}
		m.editing = true
		m.input.SetValue(displayValue(p))
		m.input.CursorEnd()
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Reset):
		if p := m.selected(); p != nil {
			if err := m.session.Reset(p.ID); err != nil {
				m.err = err
				return m, nil
			}
			m.status = "reset " + p.Name
			m.rebuild()
		}

	case key.Matches(msg, m.keys.ResetAll):
		m.session.ResetAll()
		m.status = "reset all parameters"
		m.rebuild()

	case key.Matches(msg, m.keys.Write):
		return m, m.writeCmd()
	}
	return m, nil
}

func (m Model) writeCmd() tea.Cmd {
	path, text, write := m.path, m.session.ModifiedCode(), m.write
	return func() tea.Msg {
		return writtenMsg{path: path, err: write(context.Background(), path, text)}
	}
}

func (m *Model) toggleCurrent() {
	if m.cursor >= len(m.rows) {
		return
	}
	cat := m.rows[m.cursor].category
	m.session.ToggleGroup(cat)
	m.rebuild()
	for i, r := range m.rows {
		if r.param == nil && r.category == cat {
			m.cursor = i
			break
		}
	}
}

func (m *Model) rebuild() {
	var rows []row
	for _, g := range m.session.Groups() {
		rows = append(rows, row{category: g.Category, header: g.DisplayName})
		if !g.IsExpanded {
			continue
		}
		for _, p := range g.Parameters {
			rows = append(rows, row{category: g.Category, param: p})
		}
	}
	m.rows = rows
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) selected() *param.ParsedParameter {
	if m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor].param
}

func (m Model) publish(t events.EventType, data map[string]interface{}) {
	if m.eventBus == nil {
		return
	}
	m.eventBus.Publish(events.Event{Type: t, Source: m.path, Data: data})
}

func (m Model) View() string {
	var b strings.Builder

	title := "dctl edit " + filepath.Base(m.path)
	if m.session.Modified() {
		title += " *"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString(dimStyle.Render("  No parameters found in DCTL file"))
		b.WriteString("\n")
	}

	for i, r := range m.rows {
		var line string
		if r.param == nil {
			marker := "▾"
			for _, g := range m.session.Groups() {
				if g.Category == r.category && !g.IsExpanded {
					marker = "▸"
				}
			}
			line = groupStyle.Render(fmt.Sprintf("%s %s", marker, r.header))
		} else {
			line = "  " + paramLine(r.param)
		}
		if i == m.cursor {
			line = selectedItemStyle.Render(line)
		} else {
			line = normalItemStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.editing {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	case m.status != "":
		b.WriteString(okStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func paramLine(p *param.ParsedParameter) string {
	line := fmt.Sprintf("%-24s %s", p.DisplayName, displayValue(p))
	if p.Min != nil && p.Max != nil {
		line += dimStyle.Render(fmt.Sprintf("  [%s, %s]", p.Min.Literal(), p.Max.Literal()))
	}
	if p.Modified() {
		line += modifiedStyle.Render("  (default " + displayDefault(p) + ")")
	}
	return line
}

func displayValue(p *param.ParsedParameter) string {
	return describe(p, p.CurrentValue)
}

func displayDefault(p *param.ParsedParameter) string {
	return describe(p, p.DefaultValue)
}

func describe(p *param.ParsedParameter, v param.Value) string {
	if p.Type == param.UIComboBox {
		if f, ok := v.Float(); ok {
			i := int(f)
			if i >= 0 && i < len(p.Options) {
				return p.Options[i]
			}
		}
	}
	return v.Literal()
}
