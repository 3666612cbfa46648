package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/kintreehq/kintree/pkg/gen"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// newBrowseCmd creates the browse command for the interactive tree view.
func newBrowseCmd() *cobra.Command {
	var (
		dbPath     string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse persons and relationships interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(configPath)
			if err != nil {
				return err
			}
			st, err := openStore(dbPath, settings)
			if err != nil {
				return err
			}
			defer st.Close()

			persons, err := st.Persons(false)
			if err != nil {
				return err
			}
			families, err := st.Families(false)
			if err != nil {
				return err
			}
			if len(persons) == 0 {
				printInfo("Database is empty; run 'kintree import' first")
				return nil
			}

			model := newPersonListModel(persons, families)
			_, err = tea.NewProgram(model, tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "database file (default: configured path)")
	cmd.Flags().StringVar(&configPath, "config", "", "config file (default: platform config dir)")
	return cmd
}

// =============================================================================
// personListModel - Interactive person browser
// =============================================================================

// personListModel is the bubbletea model for browsing persons with their
// relationships shown for the selected row.
type personListModel struct {
	persons []*gen.Person
	idx     *gen.Index
	cursor  int
	height  int
	offset  int
}

func newPersonListModel(persons []*gen.Person, families []*gen.Family) personListModel {
	return personListModel{
		persons: persons,
		idx:     gen.NewIndex(persons, families),
		height:  15,
	}
}

func (m personListModel) Init() tea.Cmd {
	return nil
}

func (m personListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.persons)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 12
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m personListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Family Tree"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  q quit"))
	b.WriteString("\n\n")

	end := m.offset + m.height
	if end > len(m.persons) {
		end = len(m.persons)
	}

	rows := [][]string{}
	for i := m.offset; i < end; i++ {
		p := m.persons[i]

		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}

		born := "—"
		if !p.Birth.Empty() {
			born = p.Birth.Date
		}
		died := ""
		if !p.Death.Empty() {
			died = p.Death.Date
		}
		rows = append(rows, []string{cursor, p.FullName(), string(p.Sex), born, died})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Name", "Sex", "Born", "Died").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.offset+row == m.cursor {
				return listSelectedStyle
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(m.relationView(m.persons[m.cursor]))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.persons))))

	return b.String()
}

// relationView summarizes the selected person's immediate relationships.
func (m personListModel) relationView(p *gen.Person) string {
	var b strings.Builder
	write := func(label string, people []*gen.Person) {
		if len(people) == 0 {
			return
		}
		names := make([]string, len(people))
		for i, r := range people {
			names[i] = r.FullName()
		}
		b.WriteString("  " + StyleDim.Render(label+":") + " " + StyleValue.Render(strings.Join(names, ", ")) + "\n")
	}
	write("Parents", m.idx.Parents(p.ID))
	write("Spouses", m.idx.Spouses(p.ID))
	write("Children", m.idx.Children(p.ID))
	write("Siblings", m.idx.Siblings(p.ID))
	if b.Len() == 0 {
		return "  " + listDimStyle.Render("No recorded relationships")
	}
	return strings.TrimRight(b.String(), "\n")
}
