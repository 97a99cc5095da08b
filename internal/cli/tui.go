package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/kintree/pkg/graph"
)

var (
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	detailKeyStyle  = lipgloss.NewStyle().Foreground(colorGray).Width(10)
	tableHeadStyle  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	tableBorder     = lipgloss.NewStyle().Foreground(colorDim)
	currentRowStyle = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
)

// =============================================================================
// PersonListModel - Interactive person browser
// =============================================================================

// PersonListModel is the bubbletea model of the inspect command. It lists the
// people of a layout with their generation and position, and shows the
// relatives of the selected person.
type PersonListModel struct {
	Layout   graph.Layout
	Problems []string
	Cursor   int
	Height   int
	Offset   int

	children map[string][]string
	extra    map[string][]string
}

// NewPersonListModel indexes the layout's links for the detail view.
func NewPersonListModel(l graph.Layout, problems []string) PersonListModel {
	m := PersonListModel{
		Layout:   l,
		Problems: problems,
		Height:   15,
		children: make(map[string][]string),
		extra:    make(map[string][]string),
	}
	for _, link := range l.Links {
		if link.Extra {
			m.extra[link.To] = append(m.extra[link.To], link.From)
		} else {
			m.children[link.From] = append(m.children[link.From], link.To)
		}
	}
	return m
}

func (m PersonListModel) Init() tea.Cmd {
	return nil
}

func (m PersonListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	n := len(m.Layout.Nodes)
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < n-1 {
				m.Cursor++
			}
		case "home", "g":
			m.Cursor = 0
		case "end", "G":
			m.Cursor = max(n-1, 0)
		}
	case tea.WindowSizeMsg:
		// Leave room for the title, detail panel and problems.
		m.Height = max(msg.Height-16, 5)
	}
	m.scroll()
	return m, nil
}

// scroll keeps the cursor inside the visible window.
func (m *PersonListModel) scroll() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m PersonListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Family Tree"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  g/G first/last  q quit"))
	b.WriteString("\n\n")

	if len(m.Layout.Nodes) == 0 {
		b.WriteString(listDimStyle.Render("  no people"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(m.table())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Layout.Nodes))))
	b.WriteString("\n\n")
	b.WriteString(m.detail())

	if len(m.Problems) > 0 {
		b.WriteString("\n")
		for _, p := range m.Problems {
			b.WriteString(StyleWarning.Render(iconWarning + " " + p))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m PersonListModel) table() string {
	end := min(m.Offset+m.Height, len(m.Layout.Nodes))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		n := m.Layout.Nodes[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			n.ID,
			orDash(n.Name),
			orDash(n.BirthDate),
			orDash(n.Gender),
			orDash(strings.Join(n.Parents, ";")),
			strconv.Itoa(m.generation(n)),
			strconv.FormatFloat(n.X, 'f', -1, 64),
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorder).
		Headers("", "ID", "Nombre", "Nacimiento", "Género", "Padres", "Gen", "X").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return tableHeadStyle
			}
			if m.Offset+row == m.Cursor {
				return currentRowStyle
			}
			if col >= 6 {
				return listDimStyle
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

func (m PersonListModel) detail() string {
	n := m.Layout.Nodes[m.Cursor]
	var b strings.Builder
	line := func(k, v string) {
		b.WriteString(detailKeyStyle.Render(k) + " " + StyleValue.Render(v) + "\n")
	}

	line("Person", n.Label())
	line("Children", orDash(strings.Join(m.children[n.ID], ", ")))
	line("Extra", orDash(strings.Join(m.extra[n.ID], ", ")))
	avatar := orDash(n.Avatar)
	if n.Preset {
		avatar += " (preset)"
	}
	line("Avatar", avatar)
	line("Position", fmt.Sprintf("%s, %s",
		strconv.FormatFloat(n.X, 'f', -1, 64), strconv.FormatFloat(n.Y, 'f', -1, 64)))
	return b.String()
}

// generation numbers depths from 1, skipping the virtual root.
func (m PersonListModel) generation(n graph.Node) int {
	if m.Layout.VirtualRoot {
		return n.Depth
	}
	return n.Depth + 1
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
