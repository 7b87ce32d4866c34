package main

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/enginewrap/wrap"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// transcriptLines is how much of the transcript stays on screen.
const transcriptLines = 200

type shellState int

const (
	statePrompt shellState = iota
	stateSelectFunc
	stateInputArgs
)

type shellModel struct {
	ctx        context.Context
	session    *wrap.Session
	command    *wrap.Command
	funcs      []string
	history    []string
	transcript []string
	inputs     []textinput.Model
	prompt     textinput.Model
	histIdx    int
	selected   int
	focusIdx   int
	height     int
	state      shellState
	busy       bool
}

type entry struct {
	input  string
	output string
	err    error
	quit   bool
}

type commandMsg struct {
	err     error
	command *wrap.Command
}

func newShellModel(ctx context.Context, s *wrap.Session, funcs []string) *shellModel {
	prompt := textinput.New()
	prompt.Prompt = ">> "
	prompt.Placeholder = "statement, :help or tab for declared functions"
	prompt.Focus()
	return &shellModel{
		ctx:     ctx,
		session: s,
		funcs:   funcs,
		prompt:  prompt,
		state:   statePrompt,
	}
}

func (m *shellModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *shellModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.prompt.Width = msg.Width - 4

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "ctrl+d" {
			return m, tea.Quit
		}
		if m.busy {
			return m, nil
		}
		switch m.state {
		case statePrompt:
			if cmd, handled := m.updatePrompt(msg); handled {
				return m, cmd
			}
		case stateSelectFunc:
			return m, m.updateSelect(msg)
		case stateInputArgs:
			if cmd, handled := m.updateInputs(msg); handled {
				return m, cmd
			}
		}

	case entry:
		m.busy = false
		m.record(msg)
		if msg.quit {
			return m, tea.Quit
		}
		return m, nil

	case commandMsg:
		m.busy = false
		if msg.err != nil {
			m.record(entry{input: ":doc " + m.funcs[m.selected], err: msg.err})
			m.backToPrompt()
			return m, nil
		}
		m.command = msg.command
		m.prepareInputs()
		if len(m.inputs) == 0 {
			m.busy = true
			cmd := m.callCommand()
			m.backToPrompt()
			return m, cmd
		}
		m.state = stateInputArgs
		return m, nil
	}

	switch m.state {
	case statePrompt:
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	case stateInputArgs:
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}
	return m, nil
}

func (m *shellModel) updatePrompt(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "enter":
		line := m.prompt.Value()
		m.prompt.SetValue("")
		if strings.TrimSpace(line) == "" {
			return nil, true
		}
		m.history = append(m.history, line)
		m.histIdx = len(m.history)
		m.busy = true
		return m.runLine(line), true

	case "up":
		if m.histIdx > 0 {
			m.histIdx--
			m.prompt.SetValue(m.history[m.histIdx])
			m.prompt.CursorEnd()
		}
		return nil, true

	case "down":
		if m.histIdx < len(m.history)-1 {
			m.histIdx++
			m.prompt.SetValue(m.history[m.histIdx])
			m.prompt.CursorEnd()
		} else {
			m.histIdx = len(m.history)
			m.prompt.SetValue("")
		}
		return nil, true

	case "tab":
		if len(m.funcs) > 0 {
			m.state = stateSelectFunc
			m.prompt.Blur()
		}
		return nil, true
	}
	return nil, false
}

func (m *shellModel) updateSelect(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.funcs)-1 {
			m.selected++
		}
	case "enter":
		m.busy = true
		return m.resolveCommand(m.funcs[m.selected])
	case "esc", "tab":
		m.backToPrompt()
	}
	return nil
}

func (m *shellModel) updateInputs(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "tab":
		if len(m.inputs) > 1 {
			m.inputs[m.focusIdx].Blur()
			m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
			m.inputs[m.focusIdx].Focus()
		}
		return nil, true
	case "enter":
		m.busy = true
		cmd := m.callCommand()
		m.backToPrompt()
		return cmd, true
	case "esc":
		m.backToPrompt()
		return nil, true
	}
	return nil, false
}

func (m *shellModel) backToPrompt() {
	m.state = statePrompt
	m.inputs = nil
	m.prompt.Focus()
}

func (m *shellModel) record(e entry) {
	m.transcript = append(m.transcript, m.prompt.Prompt+e.input)
	if out := strings.TrimRight(e.output, "\n"); out != "" {
		m.transcript = append(m.transcript, resultStyle.Render(out))
	}
	if e.err != nil {
		m.transcript = append(m.transcript, errorStyle.Render(fmt.Sprintf("error: %v", e.err)))
	}
	if n := len(m.transcript); n > transcriptLines {
		m.transcript = m.transcript[n-transcriptLines:]
	}
}

// runLine executes a shell line off the update loop. The busy flag keeps
// the session to one caller at a time.
func (m *shellModel) runLine(line string) tea.Cmd {
	return func() tea.Msg {
		var out bytes.Buffer
		quit, err := execLine(m.ctx, m.session, line, &out)
		return entry{input: line, output: out.String(), err: err, quit: quit}
	}
}

func (m *shellModel) resolveCommand(name string) tea.Cmd {
	return func() tea.Msg {
		c, err := m.session.Command(m.ctx, name)
		return commandMsg{command: c, err: err}
	}
}

func (m *shellModel) prepareInputs() {
	params := m.command.Descriptor().Params
	m.inputs = make([]textinput.Model, len(params))
	for i, p := range params {
		ti := textinput.New()
		ti.Placeholder = witTypeStr(p)
		ti.Prompt = fmt.Sprintf("arg%d: ", i+1)
		ti.Width = 40
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

func (m *shellModel) callCommand() tea.Cmd {
	c := m.command
	texts := make([]string, len(m.inputs))
	for i, in := range m.inputs {
		texts[i] = in.Value()
	}
	return func() tea.Msg {
		input := ":call " + c.Name() + " " + strings.Join(texts, " ")
		var out bytes.Buffer
		err := callFunction(m.ctx, m.session, c.Name(), texts, &out)
		return entry{input: strings.TrimSpace(input), output: out.String(), err: err}
	}
}

func (m *shellModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("enginesh"))
	b.WriteString("\n\n")

	switch m.state {
	case statePrompt:
		lines := m.transcript
		if keep := m.height - 6; keep > 0 && len(lines) > keep {
			lines = lines[len(lines)-keep:]
		}
		for _, l := range lines {
			b.WriteString(l)
			b.WriteString("\n")
		}
		b.WriteString(m.prompt.View())
		b.WriteString("\n\n")
		help := "enter run • ↑/↓ history • ctrl+c quit"
		if len(m.funcs) > 0 {
			help = "enter run • ↑/↓ history • tab functions • ctrl+c quit"
		}
		b.WriteString(helpStyle.Render(help))

	case stateSelectFunc:
		b.WriteString("Select a declared function:\n\n")
		for i, f := range m.funcs {
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + f))
			} else {
				b.WriteString("  " + funcStyle.Render(f))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter call • esc back"))

	case stateInputArgs:
		fmt.Fprintf(&b, "Calling %s\n\n", funcStyle.Render(signatureText(m.command)))
		for _, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString(" ")
			b.WriteString(typeStyle.Render(input.Placeholder))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter call • esc back"))
	}

	return b.String()
}
