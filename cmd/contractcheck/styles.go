package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/contract/spec"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	methodStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// paint applies styles only when color output is enabled.
type paint struct {
	color bool
}

func (p paint) render(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

// report colors a rendered diagnostics report line by line.
func (p paint) report(text string) string {
	if !p.color {
		return text
	}
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for i, line := range lines {
		switch {
		case i == 0 && strings.HasSuffix(line, "satisfied"):
			lines[i] = okStyle.Render(line)
		case i == 0:
			lines[i] = errorStyle.Render(line)
		case strings.Contains(line, "hint: "):
			lines[i] = helpStyle.Render(line)
		}
	}
	return strings.Join(lines, "\n") + "\n"
}

// contract renders a contract with its dispatch slots, one per line.
func (p paint) contract(c *spec.Spec) string {
	var b strings.Builder
	b.WriteString(p.render(titleStyle, c.Name()))
	if emb := c.Embedded(); len(emb) > 0 {
		names := make([]string, len(emb))
		for i, e := range emb {
			names[i] = e.Name()
		}
		b.WriteString(" embeds ")
		b.WriteString(strings.Join(names, ", "))
	}
	for _, slot := range c.Slots() {
		b.WriteString("\n  ")
		b.WriteString(p.render(methodStyle, slot.Name))
		b.WriteString(" ")
		b.WriteString(p.render(typeStyle, slot.Sig.String()))
		if slot.Owner != c {
			b.WriteString(p.render(helpStyle, " (from "+slot.Owner.Name()+")"))
		}
	}
	return b.String()
}
