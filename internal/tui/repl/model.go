// ============================================================================
// exprkit - Expression Toolkit
// ============================================================================
//
// Package:     repl
// Description: Bubbletea model for the interactive evaluator
// Author:      msto63
// Created:     2026-10-14
// License:     MIT
// ============================================================================

package repl

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/msto63/exprkit/foundation/expr/ast"
	"github.com/msto63/exprkit/internal/service"
)

// Config holds model configuration
type Config struct {
	Service  *service.Service
	Prompt   string
	ShowTree bool
	Version  string
}

// Model is the Bubbletea model for the interactive evaluator
type Model struct {
	width  int
	height int
	ready  bool
	busy   bool

	input    textinput.Model
	viewport viewport.Model

	entries   []Entry
	showTree  bool
	variables int

	service *service.Service
	version string
}

// New creates a new model
func New(cfg Config) Model {
	ti := textinput.New()
	ti.Prompt = cfg.Prompt
	if ti.Prompt == "" {
		ti.Prompt = "expr> "
	}
	ti.Placeholder = "x = (1 + 2) * y"
	ti.CharLimit = 4096
	ti.Focus()

	return Model{
		input:    ti,
		showTree: cfg.ShowTree,
		service:  cfg.Service,
		version:  cfg.Version,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadVariables)
}

// Entries returns the transcript
func (m Model) Entries() []Entry {
	return m.entries
}

// ShowTree reports whether syntax trees are shown
func (m Model) ShowTree() bool {
	return m.showTree
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyEnter:
			text := strings.TrimSpace(m.input.Value())
			if text == "" || m.busy {
				return m, nil
			}
			m.input.Reset()
			m.busy = true
			return m, m.evaluate(text)

		case tea.KeyCtrlT:
			m.showTree = !m.showTree
			m.refresh()
			return m, nil

		case tea.KeyCtrlL:
			m.entries = nil
			m.refresh()
			return m, nil

		case tea.KeyPgUp, tea.KeyPgDown:
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 2
		footerHeight := 4
		height := msg.Height - headerHeight - footerHeight
		if height < 1 {
			height = 1
		}

		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = height
		}
		m.input.Width = msg.Width - len(m.input.Prompt) - 2
		m.refresh()

	case evaluatedMsg:
		m.busy = false
		entry := Entry{Input: msg.input, Err: msg.err}
		if msg.err == nil {
			entry.Rendered = msg.result.Rendered
			entry.Dump = ast.Dump(msg.result.Tree, 2)
			entry.Value = msg.result.Value
			entry.Assigned = msg.result.Assigned
		}
		m.entries = append(m.entries, entry)
		m.refresh()
		m.viewport.GotoBottom()
		if entry.Assigned != "" {
			cmds = append(cmds, m.loadVariables)
		}

	case variablesMsg:
		if msg.err == nil {
			m.variables = msg.count
		}
	}

	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m Model) evaluate(text string) tea.Cmd {
	svc := m.service
	return func() tea.Msg {
		result, err := svc.Evaluate(context.Background(), text)
		return evaluatedMsg{input: text, result: result, err: err}
	}
}

func (m Model) loadVariables() tea.Msg {
	if m.service == nil {
		return variablesMsg{}
	}
	vars, err := m.service.Variables(context.Background())
	return variablesMsg{count: len(vars), err: err}
}

// refresh re-renders the transcript into the viewport
func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderEntries())
}

func (m Model) renderEntries() string {
	if len(m.entries) == 0 {
		return SubtitleStyle.Render("Enter a statement and press Enter.")
	}

	var b strings.Builder
	for i, e := range m.entries {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(InputEchoStyle.Render("> " + e.Input))
		b.WriteString("\n")

		if e.Err != nil {
			b.WriteString(ErrorStyle.Render("error: " + e.Err.Error()))
			b.WriteString("\n")
			continue
		}

		if e.Assigned != "" {
			b.WriteString(AssignStyle.Render(fmt.Sprintf("%s = %d", e.Assigned, e.Value)))
		} else {
			b.WriteString(ValueStyle.Render(fmt.Sprintf("%d", e.Value)))
		}
		b.WriteString("\n")

		if m.showTree {
			b.WriteString(TreeStyle.Render(e.Dump))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder

	b.WriteString(TitleStyle.Render("exprkit"))
	b.WriteString(" ")
	b.WriteString(SubtitleStyle.Render(m.version))
	b.WriteString("\n")

	b.WriteString(LogAreaStyle.Width(m.width - 2).Render(m.viewport.View()))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("enter: evaluate  ctrl+t: tree  ctrl+l: clear  pgup/pgdn: scroll  esc: quit"))

	return b.String()
}

func (m Model) renderStatusBar() string {
	tree := "off"
	if m.showTree {
		tree = "on"
	}
	mode := "strict"
	if m.service != nil {
		mode = m.service.Mode().String()
	}

	status := fmt.Sprintf("mode: %s | tree: %s | variables: %d | lines: %d",
		mode, tree, m.variables, len(m.entries))
	if m.busy {
		status += " | evaluating..."
	}
	return StatusBarStyle.Width(m.width).Render(status)
}
