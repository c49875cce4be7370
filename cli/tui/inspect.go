package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/draftyhq/chunkstream/cli/reader"
)

// InspectModel is a Bubble Tea model for inspect views. It pages
// through a stream one chunk at a time.
type InspectModel struct {
	viewType string
	data     any
	cursor   int
	width    int
	height   int
	quitting bool
}

// NewInspectModel creates a new inspect model.
func NewInspectModel(viewType string, data any) InspectModel {
	return InspectModel{
		viewType: viewType,
		data:     data,
	}
}

// Init implements tea.Model.
func (m InspectModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m InspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, keys.Next):
			if m.cursor < m.chunkCount()-1 {
				m.cursor++
			}
			return m, nil
		case key.Matches(msg, keys.Prev):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		}
	}

	return m, nil
}

func (m InspectModel) chunkCount() int {
	stats, ok := m.data.(*reader.StreamStats)
	if !ok {
		return 0
	}
	return len(stats.ChunkInfos)
}

// View implements tea.Model.
func (m InspectModel) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.viewType {
	case "inspect_stream":
		content = m.renderInspectStream()
	default:
		content = fmt.Sprintf("Unknown view type: %s", m.viewType)
	}

	help := HelpStyle.Render("←/→ to page chunks, q or Ctrl+C to quit")
	return content + "\n" + help
}

func (m InspectModel) renderInspectStream() string {
	stats, ok := m.data.(*reader.StreamStats)
	if !ok {
		return "Invalid data type for inspect_stream"
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render(fmt.Sprintf("Stream %s", stats.DraftyID)))
	b.WriteString("\n\n")

	rows := [][]string{
		{"Command", stats.Command},
		{"Chunks", fmt.Sprintf("%d", stats.Chunks)},
		{"Total Bytes", fmt.Sprintf("%d", stats.TotalBytes)},
		{"Updates", fmt.Sprintf("%d", stats.Updates)},
	}
	for _, row := range rows {
		label := LabelStyle.Render(row[0] + ":")
		b.WriteString(fmt.Sprintf("%s %s\n", label, ValueStyle.Render(row[1])))
	}

	if len(stats.ChunkInfos) > 0 {
		info := stats.ChunkInfos[m.cursor]
		b.WriteString("\n")
		b.WriteString(TitleStyle.Render(fmt.Sprintf("Chunk %d/%d", info.Index, info.Count)))
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("%s %s\n",
			LabelStyle.Render("Bytes:"),
			ValueStyle.Render(fmt.Sprintf("%d", info.Bytes))))
		b.WriteString(fmt.Sprintf("%s %s\n",
			LabelStyle.Render("Updates:"),
			ValueStyle.Render(fmt.Sprintf("%d", info.Updates))))
		b.WriteString(LabelStyle.Render("Fields:"))
		b.WriteString("\n")
		for _, field := range info.Fields {
			style := ValueStyle
			if contains(stats.SplitFields, field) {
				style = WarningStyle
			}
			b.WriteString(fmt.Sprintf("  • %s\n", style.Render(field)))
		}
	}

	return BoxStyle.Render(b.String())
}

func contains(fields []string, field string) bool {
	for _, f := range fields {
		if f == field {
			return true
		}
	}
	return false
}

// keyMap defines key bindings.
type keyMap struct {
	Quit key.Binding
	Next key.Binding
	Prev key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Next: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→", "next chunk"),
	),
	Prev: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←", "previous chunk"),
	),
}

// RunInspectTUI runs the inspect TUI.
func RunInspectTUI(viewType string, data any) error {
	model := NewInspectModel(viewType, data)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// RenderInspectStatic renders inspect data without full TUI (for fallback).
func RenderInspectStatic(viewType string, data any) string {
	model := NewInspectModel(viewType, data)
	model.width = 80
	model.height = 24
	return lipgloss.NewStyle().Padding(1, 2).Render(model.View())
}
