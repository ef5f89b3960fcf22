package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/wippyai/contract/spec"
)

type interactiveModel struct {
	err       error
	sess      *session
	opts      options
	report    string
	generated []string
	contracts []*spec.Spec
	visible   []*spec.Spec
	filter    textinput.Model
	selected  int
	offset    int
	width     int
	height    int
	state     modelState
}

type modelState int

const (
	stateSelect modelState = iota
	stateFilter
	stateReport
	stateGenerated
)

func newInteractiveModel(opts options) *interactiveModel {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "filter contracts"
	ti.Width = 40

	m := &interactiveModel{opts: opts, filter: ti, width: 80, height: 24}
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		m.width, m.height = w, h
	}
	return m
}

type loadedMsg struct {
	err       error
	sess      *session
	contracts []*spec.Spec
}

type generatedMsg struct {
	err error
	src []byte
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.load
}

func (m *interactiveModel) load() tea.Msg {
	sess, err := open(context.Background(), m.opts)
	if err != nil {
		return loadedMsg{err: err}
	}
	contracts, err := sess.selected(m.opts.contract)
	if err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{sess: sess, contracts: contracts}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.sess = msg.sess
		m.contracts = msg.contracts
		m.visible = msg.contracts
		return m, nil

	case generatedMsg:
		m.state = stateGenerated
		m.offset = 0
		m.err = msg.err
		m.generated = strings.Split(string(msg.src), "\n")
		return m, nil

	case tea.KeyMsg:
		if m.state == stateFilter {
			return m.updateFilter(msg)
		}
		return m.updateKey(msg)
	}

	return m, nil
}

func (m *interactiveModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "up", "k":
		switch m.state {
		case stateSelect:
			if m.selected > 0 {
				m.selected--
			}
		case stateGenerated:
			if m.offset > 0 {
				m.offset--
			}
		}

	case "down", "j":
		switch m.state {
		case stateSelect:
			if m.selected < len(m.visible)-1 {
				m.selected++
			}
		case stateGenerated:
			if m.offset < len(m.generated)-m.pageSize() {
				m.offset++
			}
		}

	case "/":
		if m.state == stateSelect && m.sess != nil {
			m.state = stateFilter
			return m, m.filter.Focus()
		}

	case "enter":
		if c := m.current(); m.state == stateSelect && c != nil {
			m.report = m.sess.report(c, m.opts.color)
			m.state = stateReport
		}

	case "g":
		if c := m.current(); (m.state == stateSelect || m.state == stateReport) && c != nil {
			return m, m.generate(c)
		}

	case "esc":
		m.state = stateSelect
		m.report = ""
		m.generated = nil
		m.err = nil
	}
	return m, nil
}

func (m *interactiveModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "enter", "esc":
		m.filter.Blur()
		m.state = stateSelect
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m *interactiveModel) applyFilter() {
	q := strings.ToLower(m.filter.Value())
	m.visible = m.visible[:0:0]
	for _, c := range m.contracts {
		if q == "" || strings.Contains(strings.ToLower(c.Name()), q) {
			m.visible = append(m.visible, c)
		}
	}
	if m.selected >= len(m.visible) {
		m.selected = max(len(m.visible)-1, 0)
	}
}

func (m *interactiveModel) current() *spec.Spec {
	if m.selected < len(m.visible) {
		return m.visible[m.selected]
	}
	return nil
}

func (m *interactiveModel) generate(c *spec.Spec) tea.Cmd {
	return func() tea.Msg {
		src, err := m.sess.generate(c, m.opts.genPkg)
		return generatedMsg{src: src, err: err}
	}
}

// pageSize is the number of generated lines that fit under the header.
func (m *interactiveModel) pageSize() int {
	return max(m.height-6, 1)
}

func (m *interactiveModel) View() string {
	if m.err != nil && m.state == stateSelect {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if m.sess == nil {
		return "Loading contracts..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Contract Check"))
	b.WriteString(" ")
	b.WriteString(typeStyle.Render(m.sess.impl.TypeName()))
	b.WriteString(" against ")
	b.WriteString(m.opts.contracts)
	b.WriteString("\n\n")

	p := paint{color: true}
	switch m.state {
	case stateSelect, stateFilter:
		if m.state == stateFilter || m.filter.Value() != "" {
			b.WriteString(m.filter.View())
			b.WriteString("\n\n")
		}
		for i, c := range m.visible {
			mark := okStyle.Render("✓")
			if !m.sess.verify(c).OK() {
				mark = errorStyle.Render("✗")
			}
			line := fmt.Sprintf("%s %s (%d methods)", mark, c.Name(), len(c.Slots()))
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter report • g generate • / filter • q quit"))

	case stateReport:
		b.WriteString(p.contract(m.current()))
		b.WriteString("\n\n")
		b.WriteString(m.report)
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("g generate • esc back • q quit"))

	case stateGenerated:
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			b.WriteString("\n\n")
		} else {
			end := min(m.offset+m.pageSize(), len(m.generated))
			for _, line := range m.generated[m.offset:end] {
				if len(line) > m.width {
					line = line[:m.width]
				}
				b.WriteString(line)
				b.WriteString("\n")
			}
		}
		b.WriteString(helpStyle.Render("↑/↓ scroll • esc back • q quit"))
	}

	return b.String()
}

func runInteractive(opts options) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("interactive mode needs a terminal")
	}
	opts.color = true
	p := tea.NewProgram(newInteractiveModel(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
